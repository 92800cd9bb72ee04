package manager

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// Adapter is the AR runtime. Defaults to a SimAdapter with the ARCore profile.
	Adapter RuntimeAdapter
	// Logger receives lifecycle logs. Defaults to a disabled logger.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events. Defaults to a no-op sink.
	Publisher EventPublisher
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:     StateUninitialized,
		models:    make(map[string]*modelEntry),
		inflight:  make(map[string]string),
		adapter:   cfg.Adapter,
		publisher: cfg.Publisher,
		log:       zerolog.Nop(),
		startTime: time.Now(),
		now:       time.Now,
	}
	if m.adapter == nil {
		m.adapter = NewSimAdapter(SimConfig{})
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	m.caps = m.adapter.Capabilities()
	m.epochCtx, m.epochCancel = context.WithCancel(context.Background())
	return m
}
