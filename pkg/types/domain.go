package types

import "strings"

// Vec3 is an (x, y, z) triple in session space (meters for position).
type Vec3 [3]float64

// Rotation is either Euler angles in degrees (x, y, z) or a unit quaternion
// (x, y, z, w). The length tells which.
type Rotation []float64

// IsQuaternion reports whether r holds four components.
func (r Rotation) IsQuaternion() bool { return len(r) == 4 }

// Transform is the placement of a model relative to its anchor.
type Transform struct {
	// Position in meters. Default (0,0,-1): one meter in front of the camera.
	// example: [0,0,-1]
	Position Vec3 `json:"position"`
	// Rotation as Euler degrees [x,y,z] or quaternion [x,y,z,w].
	// example: [0,90,0]
	Rotation Rotation `json:"rotation"`
	// Per-axis scale. A uniform scale s is stored as [s,s,s].
	// example: [1,1,1]
	Scale Vec3 `json:"scale"`
}

// Defaults applied when a caller omits transform components.
var (
	DefaultPosition = Vec3{0, 0, -1}
	DefaultScale    = 1.0
)

// DefaultTransform returns the transform used when nothing is specified.
func DefaultTransform() Transform {
	return Transform{
		Position: DefaultPosition,
		Rotation: Rotation{0, 0, 0},
		Scale:    UniformScale(DefaultScale),
	}
}

// UniformScale expands a single factor to all three axes.
func UniformScale(s float64) Vec3 { return Vec3{s, s, s} }

// Location is the last geolocation reported by the caller.
type Location struct {
	// example: 45.0
	Latitude float64 `json:"latitude" example:"45.0"`
	// example: 90.0
	Longitude float64 `json:"longitude" example:"90.0"`
	// Altitude in meters; nil when the caller did not send one.
	Altitude *float64 `json:"altitude,omitempty"`
}

// Capabilities describes what the AR runtime of this build supports. It is
// static per platform build and does not depend on session state.
type Capabilities struct {
	SupportsPlaneDetection       bool     `json:"supportsPlaneDetection"`
	SupportsImageTracking        bool     `json:"supportsImageTracking"`
	SupportsObjectTracking       bool     `json:"supportsObjectTracking"`
	SupportsFaceTracking         bool     `json:"supportsFaceTracking"`
	SupportsBodyTracking         bool     `json:"supportsBodyTracking"`
	SupportsLightEstimation      bool     `json:"supportsLightEstimation"`
	SupportsEnvironmentTexturing bool     `json:"supportsEnvironmentTexturing"`
	SupportedFormats             []string `json:"supportedFormats"`
}

// SupportsFormat reports whether ext (without dot, any case) is supported.
func (c Capabilities) SupportsFormat(ext string) bool {
	for _, f := range c.SupportedFormats {
		if strings.EqualFold(f, ext) {
			return true
		}
	}
	return false
}
