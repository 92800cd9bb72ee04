package manager

import (
	"errors"
	"math"
	"net/url"
	"strings"

	"arbridge/pkg/types"
)

// checkOpenLocked rejects calls into a disposed session.
func (m *Manager) checkOpenLocked(op string) error {
	if m.state == StateDisposed {
		return errDisposed(op)
	}
	return nil
}

// validateLoad checks a load request against the capability descriptor.
func (m *Manager) validateLoad(req LoadRequest) error {
	const op = "load"
	if strings.TrimSpace(req.ID) == "" {
		return errInvalidArgument(op, "modelId is required")
	}
	src := req.Source
	switch {
	case src.URL == "" && src.AssetPath == "":
		return errInvalidArgument(op, "model source is required")
	case src.URL != "" && src.AssetPath != "":
		return errInvalidArgument(op, "model source must be either a URL or an asset path, not both")
	}
	if src.URL != "" {
		u, err := url.Parse(src.URL)
		if err != nil || u.Scheme == "" {
			return errInvalidArgument(op, "invalid model URL %q", src.URL)
		}
	}
	if f := src.Format(); f != "" && !m.caps.SupportsFormat(f) {
		return errInvalidArgument(op, "unsupported model format %q (supported: %s)", f, strings.Join(m.caps.SupportedFormats, ", "))
	}
	return validateTransform(op, req.Transform)
}

func validateTransform(op string, t types.Transform) error {
	for _, v := range t.Position {
		if !finite(v) {
			return errInvalidArgument(op, "position must contain finite numbers")
		}
	}
	if err := validateRotation(op, t.Rotation); err != nil {
		return err
	}
	return validateScale(op, t.Scale)
}

func validateRotation(op string, r types.Rotation) error {
	if len(r) != 3 && len(r) != 4 {
		return errInvalidArgument(op, "rotation must have 3 (euler) or 4 (quaternion) components, got %d", len(r))
	}
	var norm float64
	for _, v := range r {
		if !finite(v) {
			return errInvalidArgument(op, "rotation must contain finite numbers")
		}
		norm += v * v
	}
	if r.IsQuaternion() && math.Sqrt(norm) < 1e-9 {
		return errInvalidArgument(op, "rotation quaternion must not be zero")
	}
	return nil
}

func validateScale(op string, s types.Vec3) error {
	for _, v := range s {
		if !finite(v) || v <= 0 {
			return errInvalidArgument(op, "scale must be positive, got %v", s)
		}
	}
	return nil
}

// releaseEntry detaches the anchor and frees the geometry of e.
func releaseEntry(e *modelEntry) error {
	var errs []error
	if e.anchor != nil {
		if err := e.anchor.Detach(); err != nil {
			errs = append(errs, err)
		}
		e.anchor = nil
	}
	if e.renderable != nil {
		if err := e.renderable.Release(); err != nil {
			errs = append(errs, err)
		}
		e.renderable = nil
	}
	return errors.Join(errs...)
}

// discard frees resources acquired by an op that could not commit.
func discard(r Renderable, a Anchor) {
	if a != nil {
		_ = a.Detach()
	}
	if r != nil {
		_ = r.Release()
	}
}
