package manager

import (
	"context"
)

// Initialize moves the session from Uninitialized to Initialized and opens
// the runtime session. It is a no-op once the session is initialized.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateDisposed:
		return errDisposed("initialize")
	case StateInitialized, StateTracking, StateStopped:
		return nil
	}
	if err := m.adapter.Check(ctx); err != nil {
		if ctx.Err() != nil {
			return errRuntime("initialize", err)
		}
		m.log.Warn().Str("event", "initialize_unsupported").Err(err).Msg("AR unavailable")
		return errNotSupported(err)
	}
	sess, err := m.adapter.Open(ctx)
	if err != nil {
		m.log.Error().Str("event", "initialize_error").Err(err).Msg("open runtime session")
		return errRuntime("initialize", err)
	}
	m.session = sess
	if m.location != nil {
		if err := sess.SetLocation(*m.location); err != nil {
			m.log.Warn().Err(err).Msg("replay location")
		}
	}
	m.state = StateInitialized
	m.log.Info().Str("event", "initialized").Msg("AR session initialized")
	m.publish("initialized", "", nil)
	return nil
}

// Start resumes tracking from Initialized or Stopped.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateDisposed:
		return errDisposed("start")
	case StateUninitialized:
		return errInvalidState("start", m.state)
	case StateTracking:
		return nil
	}
	if err := m.session.Resume(ctx); err != nil {
		return errRuntime("start", err)
	}
	from := m.state
	m.state = StateTracking
	m.log.Info().Str("event", "tracking_started").Str("from", string(from)).Msg("AR session started")
	m.publish("tracking_started", "", map[string]any{"from": string(from)})
	return nil
}

// Stop pauses tracking. In-flight loads and placements fail with
// KindCancelled. Stopping a stopped session is a no-op.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateDisposed:
		return errDisposed("stop")
	case StateStopped:
		return nil
	case StateUninitialized, StateInitialized:
		return errInvalidState("stop", m.state)
	}
	if err := m.session.Pause(ctx); err != nil {
		return errRuntime("stop", err)
	}
	cancelled := len(m.inflight)
	m.rotateEpochLocked(true)
	m.state = StateStopped
	m.log.Info().Str("event", "tracking_stopped").Int("cancelled_ops", cancelled).Msg("AR session stopped")
	m.publish("tracking_stopped", "", map[string]any{"cancelled_ops": cancelled})
	return nil
}

// Dispose tears the session down: in-flight ops are cancelled, every model is
// unloaded and the runtime session is closed. Disposed is terminal.
func (m *Manager) Dispose(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDisposed {
		return errDisposed("dispose")
	}
	m.state = StateDisposed
	m.rotateEpochLocked(false)
	unloaded := len(m.models)
	for id, e := range m.models {
		if err := releaseEntry(e); err != nil {
			m.log.Warn().Str("model", id).Err(err).Msg("release on dispose")
		}
		m.unloadsTotal++
	}
	m.models = make(map[string]*modelEntry)
	var closeErr error
	if m.session != nil {
		closeErr = m.session.Close()
		m.session = nil
	}
	m.log.Info().Str("event", "disposed").Int("unloaded", unloaded).Msg("AR session disposed")
	m.publish("disposed", "", map[string]any{"unloaded": unloaded})
	if closeErr != nil {
		return errRuntime("dispose", closeErr)
	}
	return nil
}
