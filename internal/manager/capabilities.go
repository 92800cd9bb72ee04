package manager

import "arbridge/pkg/types"

// Capabilities returns the static capability descriptor of the runtime. It
// does not take the lock and keeps working after Dispose.
func (m *Manager) Capabilities() types.Capabilities {
	c := m.caps
	c.SupportedFormats = append([]string(nil), m.caps.SupportedFormats...)
	return c
}
