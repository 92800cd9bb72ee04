package manager

import (
	"context"
	"errors"
	"testing"
)

func TestNewWithConfigDefaults(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	if m.State() != StateUninitialized {
		t.Fatalf("expected uninitialized, got %s", m.State())
	}
	if _, ok := m.adapter.(*SimAdapter); !ok {
		t.Fatalf("expected default sim adapter, got %T", m.adapter)
	}
	if m.Ready() {
		t.Fatalf("expected not ready before initialize")
	}
}

func TestLifecycle_StateTable(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Adapter: &fakeAdapter{}})
	ctx := testCtx(t)
	steps := []struct {
		name string
		call func() error
		want State
	}{
		{"initialize", func() error { return m.Initialize(ctx) }, StateInitialized},
		{"initialize again", func() error { return m.Initialize(ctx) }, StateInitialized},
		{"start", func() error { return m.Start(ctx) }, StateTracking},
		{"stop", func() error { return m.Stop(ctx) }, StateStopped},
		{"stop again", func() error { return m.Stop(ctx) }, StateStopped},
		{"start from stopped", func() error { return m.Start(ctx) }, StateTracking},
		{"dispose", func() error { return m.Dispose(ctx) }, StateDisposed},
	}
	for _, s := range steps {
		if err := s.call(); err != nil {
			t.Fatalf("%s: %v", s.name, err)
		}
		if got := m.State(); got != s.want {
			t.Fatalf("%s: state=%s want %s", s.name, got, s.want)
		}
	}
}

func TestStartBeforeInitialize_InvalidState(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Adapter: &fakeAdapter{}})
	wantKind(t, m.Start(testCtx(t)), KindInvalidState)
	if m.State() != StateUninitialized {
		t.Fatalf("state changed: %s", m.State())
	}
}

func TestStopBeforeStart_InvalidState(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Adapter: &fakeAdapter{}})
	wantKind(t, m.Stop(testCtx(t)), KindInvalidState)
	if err := m.Initialize(testCtx(t)); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	wantKind(t, m.Stop(testCtx(t)), KindInvalidState)
}

func TestInitialize_NotSupported(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Adapter: &fakeAdapter{checkErr: errors.New("no ARCore")}})
	err := m.Initialize(testCtx(t))
	wantKind(t, err, KindNotSupported)
	if m.State() != StateUninitialized {
		t.Fatalf("state changed: %s", m.State())
	}
}

func TestInitialize_CallerContextEndedIsCancelled(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Adapter: NewSimAdapter(SimConfig{})})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Initialize(ctx)
	wantKind(t, err, KindCancelled)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cause lost: %v", err)
	}

	dctx, dcancel := context.WithTimeout(context.Background(), 0)
	defer dcancel()
	wantKind(t, m.Initialize(dctx), KindCancelled)

	if m.State() != StateUninitialized {
		t.Fatalf("state changed: %s", m.State())
	}
	if err := m.Initialize(testCtx(t)); err != nil {
		t.Fatalf("retry after cancel: %v", err)
	}
}

func TestInitialize_OpenFailureIsRuntimeFailure(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Adapter: &fakeAdapter{openErr: errors.New("camera busy")}})
	err := m.Initialize(testCtx(t))
	wantKind(t, err, KindRuntimeFailure)
	if want := "failed to initialize: camera busy"; err.Error() != want {
		t.Fatalf("message=%q want %q", err.Error(), want)
	}
}

func TestDispose_TerminalForEveryOperation(t *testing.T) {
	f := &fakeAdapter{}
	m := newTracking(t, f)
	if err := m.Dispose(testCtx(t)); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	ctx := testCtx(t)
	calls := map[string]error{
		"initialize": m.Initialize(ctx),
		"start":      m.Start(ctx),
		"stop":       m.Stop(ctx),
		"dispose":    m.Dispose(ctx),
		"load":       m.Load(ctx, localReq("a", "a.glb")),
		"unload":     m.Unload("a"),
		"show":       m.Show("a"),
		"hide":       m.Hide("a"),
		"place":      m.Place(ctx, "a", PlaceRequest{Rotation: []float64{0, 0, 0}}),
		"location":   m.UpdateLocation(45, 90, nil),
		"bad loc":    m.UpdateLocation(91, 0, nil),
		"bad load":   m.Load(ctx, LoadRequest{}),
	}
	for name, err := range calls {
		if !IsDisposed(err) {
			t.Fatalf("%s after dispose: expected DISPOSED, got %v", name, err)
		}
	}
	caps := m.Capabilities()
	if !caps.SupportsPlaneDetection || len(caps.SupportedFormats) == 0 {
		t.Fatalf("capabilities after dispose: %+v", caps)
	}
}

func TestDispose_ReleasesModelsAndSession(t *testing.T) {
	f := &fakeAdapter{}
	m := newTracking(t, f)
	for _, id := range []string{"a", "b"} {
		if err := m.Load(testCtx(t), localReq(id, id+".glb")); err != nil {
			t.Fatalf("Load %s: %v", id, err)
		}
	}
	if err := m.Dispose(testCtx(t)); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if got := len(f.releasedIDs()); got != 2 {
		t.Fatalf("expected 2 released renderables, got %d", got)
	}
	f.mu.Lock()
	closed, detached := f.closed, f.detached
	f.mu.Unlock()
	if !closed {
		t.Fatalf("runtime session not closed")
	}
	if detached != 2 {
		t.Fatalf("expected 2 detached anchors, got %d", detached)
	}
	if st := m.Status(); len(st.Models) != 0 || st.State != string(StateDisposed) {
		t.Fatalf("unexpected status after dispose: %+v", st)
	}
}

func TestDispose_FromUninitialized(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Adapter: &fakeAdapter{}})
	if err := m.Dispose(context.Background()); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	wantKind(t, m.Start(context.Background()), KindDisposed)
}

func TestReadyReflectsState(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Adapter: &fakeAdapter{}})
	if m.Ready() {
		t.Fatalf("ready before initialize")
	}
	_ = m.Initialize(testCtx(t))
	if !m.Ready() {
		t.Fatalf("not ready after initialize")
	}
	_ = m.Dispose(testCtx(t))
	if m.Ready() {
		t.Fatalf("ready after dispose")
	}
}

func TestCapabilitiesReturnsCopy(t *testing.T) {
	m := NewWithConfig(ManagerConfig{})
	c := m.Capabilities()
	c.SupportedFormats[0] = "fbx"
	if m.Capabilities().SupportedFormats[0] != "gltf" {
		t.Fatalf("capabilities mutated via returned slice")
	}
}
