package manager

import (
	"context"
	"errors"

	"arbridge/pkg/types"
)

var errModelReplaced = errors.New("model was replaced by a newer load")

// Load loads a model and registers it under req.ID, replacing (and first
// releasing) any entry with the same id. Loading is allowed before tracking:
// the entry is then kept unanchored until placed. While tracking, the model
// is anchored at req.Transform.
func (m *Manager) Load(ctx context.Context, req LoadRequest) error {
	m.mu.Lock()
	if err := m.checkOpenLocked("load"); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.state == StateUninitialized {
		m.mu.Unlock()
		return errInvalidState("load", StateUninitialized)
	}
	if err := m.validateLoad(req); err != nil {
		m.mu.Unlock()
		return err
	}
	t := m.beginOpLocked(ctx, "load", req.ID)
	m.mu.Unlock()

	r, err := t.session.LoadModel(t.ctx, req.Source)
	var anchor Anchor
	if err == nil && t.tracking {
		anchor, err = t.session.CreateAnchor(t.ctx, req.Transform)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.endOpLocked(t)
	if m.abortedLocked(t) {
		discard(r, anchor)
		m.cancelledTotal++
		m.log.Info().Str("event", "load_cancelled").Str("op_id", t.id).Str("model", req.ID).Msg("load aborted")
		m.publish("load_cancelled", req.ID, map[string]any{"op_id": t.id})
		return errCancelled("load", req.ID, context.Cause(t.ctx))
	}
	if err != nil {
		discard(r, anchor)
		m.log.Error().Str("event", "load_failed").Str("model", req.ID).Str("source", req.Source.String()).Err(err).Msg("load failed")
		m.publish("load_failed", req.ID, map[string]any{"error": err.Error()})
		return errRuntime("load model", err)
	}
	if prev := m.models[req.ID]; prev != nil {
		if rerr := releaseEntry(prev); rerr != nil {
			m.log.Warn().Str("model", req.ID).Err(rerr).Msg("release replaced model")
		}
		m.publish("model_replaced", req.ID, nil)
	}
	if err := r.SetVisible(true); err != nil {
		m.log.Warn().Str("model", req.ID).Err(err).Msg("show loaded model")
	}
	now := m.now()
	e := &modelEntry{
		id:          req.ID,
		source:      req.Source,
		format:      req.Source.Format(),
		transform:   cloneTransform(req.Transform),
		visible:     true,
		interactive: req.Interactive,
		renderable:  r,
		anchor:      anchor,
		loadedAt:    now,
	}
	if anchor != nil {
		e.placedAt = now
	}
	m.models[req.ID] = e
	m.loadsTotal++
	m.log.Info().Str("event", "load_done").Str("op_id", t.id).Str("model", req.ID).Str("source", req.Source.String()).Bool("anchored", anchor != nil).Msg("model loaded")
	m.publish("load_done", req.ID, map[string]any{"op_id": t.id, "anchored": anchor != nil})
	return nil
}

// Unload removes a model and releases its anchor and geometry.
func (m *Manager) Unload(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpenLocked("unload"); err != nil {
		return err
	}
	e := m.models[id]
	if e == nil {
		return errNotFound("unload", id)
	}
	delete(m.models, id)
	m.unloadsTotal++
	if err := releaseEntry(e); err != nil {
		return errRuntime("unload model", err)
	}
	m.log.Info().Str("event", "unload_done").Str("model", id).Msg("model unloaded")
	m.publish("unload_done", id, nil)
	return nil
}

// Show makes a loaded model visible.
func (m *Manager) Show(id string) error { return m.setVisible("show", id, true) }

// Hide hides a loaded model without unloading it.
func (m *Manager) Hide(id string) error { return m.setVisible("hide", id, false) }

func (m *Manager) setVisible(op, id string, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkOpenLocked(op); err != nil {
		return err
	}
	e := m.models[id]
	if e == nil {
		return errNotFound(op, id)
	}
	if err := e.renderable.SetVisible(visible); err != nil {
		return errRuntime(op+" model", err)
	}
	e.visible = visible
	m.publish("visibility_changed", id, map[string]any{"visible": visible})
	return nil
}

// Place re-anchors a loaded model at a new transform. Requires tracking.
func (m *Manager) Place(ctx context.Context, id string, req PlaceRequest) error {
	const op = "place"
	m.mu.Lock()
	if err := m.checkOpenLocked(op); err != nil {
		m.mu.Unlock()
		return err
	}
	if m.state != StateTracking {
		st := m.state
		m.mu.Unlock()
		return errNotTracking(op, st)
	}
	e := m.models[id]
	if e == nil {
		m.mu.Unlock()
		return errNotFound(op, id)
	}
	tr := types.Transform{
		Position: req.Position,
		Rotation: append(types.Rotation(nil), req.Rotation...),
		Scale:    e.transform.Scale,
	}
	if req.Scale != nil {
		tr.Scale = *req.Scale
	}
	if err := validateTransform(op, tr); err != nil {
		m.mu.Unlock()
		return err
	}
	t := m.beginOpLocked(ctx, op, id)
	m.mu.Unlock()

	anchor, err := t.session.CreateAnchor(t.ctx, tr)

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.endOpLocked(t)
	if m.abortedLocked(t) {
		discard(nil, anchor)
		m.cancelledTotal++
		m.log.Info().Str("event", "place_cancelled").Str("op_id", t.id).Str("model", id).Msg("place aborted")
		m.publish("place_cancelled", id, map[string]any{"op_id": t.id})
		return errCancelled(op, id, context.Cause(t.ctx))
	}
	if err != nil {
		return errRuntime("place model", err)
	}
	// The entry may have been unloaded or replaced while the anchor was created.
	switch cur := m.models[id]; {
	case cur == nil:
		discard(nil, anchor)
		return errNotFound(op, id)
	case cur != e:
		discard(nil, anchor)
		m.cancelledTotal++
		m.log.Info().Str("event", "place_cancelled").Str("op_id", t.id).Str("model", id).Msg("model replaced during place")
		m.publish("place_cancelled", id, map[string]any{"op_id": t.id, "reason": "replaced"})
		return errCancelled(op, id, errModelReplaced)
	}
	if e.anchor != nil {
		if derr := e.anchor.Detach(); derr != nil {
			m.log.Warn().Str("model", id).Err(derr).Msg("detach previous anchor")
		}
	}
	e.anchor = anchor
	e.transform = tr
	e.placedAt = m.now()
	m.log.Debug().Str("event", "place_done").Str("op_id", t.id).Str("model", id).Msg("model placed")
	m.publish("place_done", id, map[string]any{"op_id": t.id})
	return nil
}
