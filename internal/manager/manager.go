package manager

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"arbridge/pkg/types"
)

// Manager is the AR session controller and model registry.
type Manager struct {
	mu       sync.Mutex
	state    State
	location *types.Location
	models   map[string]*modelEntry

	adapter RuntimeAdapter
	session RuntimeSession
	// caps is fixed at construction and read without the lock.
	caps types.Capabilities

	// Session epoch. Stop and Dispose cancel epochCtx and bump epoch.
	epoch       uint64
	epochCtx    context.Context
	epochCancel context.CancelFunc
	inflight    map[string]string

	loadsTotal     uint64
	unloadsTotal   uint64
	cancelledTotal uint64

	publisher EventPublisher
	log       zerolog.Logger
	startTime time.Time
	now       func() time.Time
}

// New constructs a Manager over the given runtime adapter.
func New(adapter RuntimeAdapter) *Manager {
	return NewWithConfig(ManagerConfig{Adapter: adapter})
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready reports whether the session has been initialized and not disposed.
func (m *Manager) Ready() bool {
	switch m.State() {
	case StateInitialized, StateTracking, StateStopped:
		return true
	}
	return false
}

// SetEventPublisher replaces the event sink. Nil restores the no-op sink.
func (m *Manager) SetEventPublisher(p EventPublisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	m.publisher = p
}

func (m *Manager) publish(name, modelID string, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	m.publisher.Publish(Event{Name: name, ModelID: modelID, Fields: fields})
}
