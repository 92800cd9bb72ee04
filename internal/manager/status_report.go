package manager

import (
	"sort"

	"arbridge/pkg/types"
)

// Snapshot returns a read-only view of the session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{State: m.state, Location: copyLocation(m.location), Models: m.modelStatusLocked()}
}

// Status builds a detailed status response for /status and getARStatus.
func (m *Manager) Status() types.StatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	return types.StatusResponse{
		State:          string(m.state),
		Location:       copyLocation(m.location),
		Models:         m.modelStatusLocked(),
		InFlight:       len(m.inflight),
		LoadsTotal:     m.loadsTotal,
		UnloadsTotal:   m.unloadsTotal,
		CancelledTotal: m.cancelledTotal,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}

func (m *Manager) modelStatusLocked() []types.ModelStatus {
	out := make([]types.ModelStatus, 0, len(m.models))
	for _, e := range m.models {
		out = append(out, e.status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
