package manager

import (
	"math"

	"arbridge/pkg/types"
)

// UpdateLocation stores the device geolocation (last value wins) and forwards
// it to the runtime session when one is open. Valid in any non-disposed state.
func (m *Manager) UpdateLocation(lat, lon float64, alt *float64) error {
	if err := validateLocation(lat, lon, alt); err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.state == StateDisposed {
			return errDisposed("update location")
		}
		return err
	}
	loc := types.Location{Latitude: lat, Longitude: lon}
	if alt != nil {
		a := *alt
		loc.Altitude = &a
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateDisposed {
		return errDisposed("update location")
	}
	if m.session != nil {
		if err := m.session.SetLocation(loc); err != nil {
			return errRuntime("update location", err)
		}
	}
	m.location = &loc
	m.publish("location_updated", "", map[string]any{"latitude": lat, "longitude": lon})
	return nil
}

// Location returns a copy of the last stored location, or nil.
func (m *Manager) Location() *types.Location {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyLocation(m.location)
}

func copyLocation(l *types.Location) *types.Location {
	if l == nil {
		return nil
	}
	out := *l
	if l.Altitude != nil {
		a := *l.Altitude
		out.Altitude = &a
	}
	return &out
}

func validateLocation(lat, lon float64, alt *float64) error {
	const op = "update location"
	if !finite(lat) || lat < -90 || lat > 90 {
		return errInvalidArgument(op, "latitude %v out of range [-90, 90]", lat)
	}
	if !finite(lon) || lon < -180 || lon > 180 {
		return errInvalidArgument(op, "longitude %v out of range [-180, 180]", lon)
	}
	if alt != nil && !finite(*alt) {
		return errInvalidArgument(op, "altitude must be a finite number")
	}
	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
