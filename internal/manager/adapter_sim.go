package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"arbridge/pkg/types"
)

// Platform profiles understood by the simulated runtime.
const (
	PlatformARCore = "arcore"
	// PlatformNone simulates a device without AR support.
	PlatformNone = "none"
)

// SimConfig tunes the simulated runtime.
type SimConfig struct {
	// Platform selects the capability profile (PlatformARCore by default).
	Platform string
	// Latency is the simulated duration of model loads and anchor creation.
	Latency time.Duration
	// Assets resolves local asset paths. Nil accepts any path.
	Assets AssetResolver
}

// ARCoreCapabilities is the descriptor reported by ARCore builds.
func ARCoreCapabilities() types.Capabilities {
	return types.Capabilities{
		SupportsPlaneDetection:       true,
		SupportsImageTracking:        true,
		SupportsObjectTracking:       false,
		SupportsFaceTracking:         false,
		SupportsBodyTracking:         false,
		SupportsLightEstimation:      true,
		SupportsEnvironmentTexturing: true,
		SupportedFormats:             []string{"gltf", "glb", "obj"},
	}
}

// SimAdapter is an in-process stand-in for the platform AR runtime. It keeps
// the same contract as a real runtime (async loads honoring ctx, anchors only
// while tracking) without any camera or rendering, so the service runs on
// hosts without AR hardware.
type SimAdapter struct {
	cfg SimConfig

	mu          sync.Mutex
	renderables int
	anchors     int
	sessions    int
}

// NewSimAdapter constructs a simulated runtime.
func NewSimAdapter(cfg SimConfig) *SimAdapter {
	if cfg.Platform == "" {
		cfg.Platform = PlatformARCore
	}
	return &SimAdapter{cfg: cfg}
}

func (a *SimAdapter) Capabilities() types.Capabilities {
	if a.cfg.Platform == PlatformNone {
		return types.Capabilities{SupportedFormats: []string{}}
	}
	return ARCoreCapabilities()
}

func (a *SimAdapter) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch a.cfg.Platform {
	case PlatformARCore:
		return nil
	case PlatformNone:
		return errors.New("ARCore is not installed on this device")
	default:
		return fmt.Errorf("unknown platform %q", a.cfg.Platform)
	}
}

func (a *SimAdapter) Open(ctx context.Context) (RuntimeSession, error) {
	if err := a.Check(ctx); err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.sessions++
	a.mu.Unlock()
	return &simSession{a: a}, nil
}

// Live reports how many renderables, anchors and sessions are currently held.
func (a *SimAdapter) Live() (renderables, anchors, sessions int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.renderables, a.anchors, a.sessions
}

func (a *SimAdapter) add(r, an, s int) {
	a.mu.Lock()
	a.renderables += r
	a.anchors += an
	a.sessions += s
	a.mu.Unlock()
}

// wait simulates asynchronous runtime work.
func (a *SimAdapter) wait(ctx context.Context) error {
	if a.cfg.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(a.cfg.Latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type simSession struct {
	a *SimAdapter

	mu      sync.Mutex
	resumed bool
	closed  bool
	loc     *types.Location
}

var errSessionClosed = errors.New("runtime session closed")

func (s *simSession) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	s.resumed = true
	return nil
}

func (s *simSession) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	s.resumed = false
	return nil
}

func (s *simSession) SetLocation(loc types.Location) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	s.loc = &loc
	return nil
}

func (s *simSession) LoadModel(ctx context.Context, src Source) (Renderable, error) {
	if src.Local() && s.a.cfg.Assets != nil {
		if _, err := s.a.cfg.Assets.Resolve(src.AssetPath); err != nil {
			return nil, err
		}
	}
	if err := s.a.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errSessionClosed
	}
	s.a.add(1, 0, 0)
	return &simRenderable{a: s.a, visible: true}, nil
}

func (s *simSession) CreateAnchor(ctx context.Context, t types.Transform) (Anchor, error) {
	if err := s.a.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errSessionClosed
	}
	if !s.resumed {
		return nil, errors.New("camera is not tracking")
	}
	s.a.add(0, 1, 0)
	return &simAnchor{a: s.a}, nil
}

func (s *simSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.a.add(0, 0, -1)
	return nil
}

type simRenderable struct {
	a        *SimAdapter
	mu       sync.Mutex
	visible  bool
	released bool
}

func (r *simRenderable) SetVisible(v bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return errors.New("renderable released")
	}
	r.visible = v
	return nil
}

func (r *simRenderable) Release() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	r.released = true
	r.a.add(-1, 0, 0)
	return nil
}

type simAnchor struct {
	a        *SimAdapter
	mu       sync.Mutex
	detached bool
}

func (an *simAnchor) Detach() error {
	an.mu.Lock()
	defer an.mu.Unlock()
	if an.detached {
		return nil
	}
	an.detached = true
	an.a.add(0, -1, 0)
	return nil
}
