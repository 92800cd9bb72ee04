package manager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"arbridge/pkg/types"
)

// fakeAdapter is a scriptable in-memory runtime used for tests.
type fakeAdapter struct {
	checkErr  error
	openErr   error
	loadErr   error
	anchorErr error
	// gate, when non-nil, blocks LoadModel and CreateAnchor until it is
	// closed or the call's context ends.
	gate chan struct{}
	// ignoreCtx makes gated calls wait for the gate even after ctx ends,
	// simulating a runtime that completes work it already started.
	ignoreCtx bool
	// anchorHold, when non-nil, blocks only the next CreateAnchor call until
	// it is closed or the call's context ends.
	anchorHold chan struct{}
	releaseErr error

	mu        sync.Mutex
	released  []string
	detached  int
	anchors   int
	closed    bool
	lastLoc   *types.Location
	resumes   int
	pauses    int
	loadCalls int
}

func (f *fakeAdapter) Capabilities() types.Capabilities { return ARCoreCapabilities() }

func (f *fakeAdapter) Check(ctx context.Context) error { return f.checkErr }

func (f *fakeAdapter) Open(ctx context.Context) (RuntimeSession, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeSession{f: f}, nil
}

func (f *fakeAdapter) wait(ctx context.Context) error {
	if f.gate == nil {
		return nil
	}
	if f.ignoreCtx {
		<-f.gate
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAdapter) releasedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.released...)
}

type fakeSession struct{ f *fakeAdapter }

func (s *fakeSession) Resume(ctx context.Context) error {
	s.f.mu.Lock()
	s.f.resumes++
	s.f.mu.Unlock()
	return nil
}

func (s *fakeSession) Pause(ctx context.Context) error {
	s.f.mu.Lock()
	s.f.pauses++
	s.f.mu.Unlock()
	return nil
}

func (s *fakeSession) SetLocation(loc types.Location) error {
	s.f.mu.Lock()
	s.f.lastLoc = &loc
	s.f.mu.Unlock()
	return nil
}

func (s *fakeSession) LoadModel(ctx context.Context, src Source) (Renderable, error) {
	s.f.mu.Lock()
	s.f.loadCalls++
	s.f.mu.Unlock()
	if err := s.f.wait(ctx); err != nil {
		return nil, err
	}
	if s.f.loadErr != nil {
		return nil, s.f.loadErr
	}
	return &fakeRenderable{f: s.f, name: src.String()}, nil
}

func (s *fakeSession) CreateAnchor(ctx context.Context, t types.Transform) (Anchor, error) {
	s.f.mu.Lock()
	hold := s.f.anchorHold
	s.f.anchorHold = nil
	s.f.mu.Unlock()
	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := s.f.wait(ctx); err != nil {
		return nil, err
	}
	if s.f.anchorErr != nil {
		return nil, s.f.anchorErr
	}
	s.f.mu.Lock()
	s.f.anchors++
	s.f.mu.Unlock()
	return &fakeAnchor{f: s.f}, nil
}

func (s *fakeSession) Close() error {
	s.f.mu.Lock()
	s.f.closed = true
	s.f.mu.Unlock()
	return nil
}

type fakeRenderable struct {
	f        *fakeAdapter
	name     string
	mu       sync.Mutex
	visible  bool
	released bool
}

func (r *fakeRenderable) SetVisible(v bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return errors.New("renderable released")
	}
	r.visible = v
	return nil
}

func (r *fakeRenderable) Release() error {
	r.mu.Lock()
	r.released = true
	r.mu.Unlock()
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	r.f.released = append(r.f.released, r.name)
	return r.f.releaseErr
}

type fakeAnchor struct{ f *fakeAdapter }

func (a *fakeAnchor) Detach() error {
	a.f.mu.Lock()
	a.f.detached++
	a.f.mu.Unlock()
	return nil
}

// newTracking returns a manager over f that is already tracking.
func newTracking(t *testing.T, f *fakeAdapter) *Manager {
	t.Helper()
	m := NewWithConfig(ManagerConfig{Adapter: f})
	if err := m.Initialize(testCtx(t)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := m.Start(testCtx(t)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return m
}

func localReq(id, path string) LoadRequest {
	return LoadRequest{ID: id, Source: Source{AssetPath: path}, Transform: types.DefaultTransform(), Interactive: true}
}

// waitInflight polls until n ops are in flight.
func waitInflight(t *testing.T, m *Manager, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if m.Status().InFlight == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d in-flight ops (have %d)", n, m.Status().InFlight)
}

func wantKind(t *testing.T, err error, k Kind) {
	t.Helper()
	if got := KindOf(err); got != k {
		t.Fatalf("expected %s, got %s (err=%v)", k, got, err)
	}
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
