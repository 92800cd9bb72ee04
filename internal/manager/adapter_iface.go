package manager

import (
	"context"

	"arbridge/pkg/types"
)

// RuntimeAdapter abstracts the platform AR runtime (e.g. ARCore) together
// with its asset loader. Implementations are consumed as black boxes.
type RuntimeAdapter interface {
	// Capabilities returns the static capability descriptor of this build.
	Capabilities() types.Capabilities
	// Check returns a non-nil error when AR is unavailable on this device.
	Check(ctx context.Context) error
	// Open creates the runtime session. Called once, on initialize.
	Open(ctx context.Context) (RuntimeSession, error)
}

// RuntimeSession is a live AR runtime session. The Manager serializes calls
// that mutate session state; LoadModel and CreateAnchor may run concurrently
// with each other and must return promptly once ctx is done.
type RuntimeSession interface {
	// Resume starts (or restarts) camera tracking.
	Resume(ctx context.Context) error
	// Pause suspends tracking. Anchors survive a pause.
	Pause(ctx context.Context) error
	// SetLocation forwards the device geolocation to the runtime.
	SetLocation(loc types.Location) error
	// LoadModel resolves src into renderable geometry.
	LoadModel(ctx context.Context, src Source) (Renderable, error)
	// CreateAnchor fixes a point in tracked space at the given transform.
	CreateAnchor(ctx context.Context, t types.Transform) (Anchor, error)
	// Close releases the session and everything it owns.
	Close() error
}

// Renderable is loaded model geometry owned by the runtime.
type Renderable interface {
	SetVisible(visible bool) error
	// Release frees the geometry. Must be safe to call once.
	Release() error
}

// Anchor is a fixed point in tracked space a model is attached to.
type Anchor interface {
	Detach() error
}

// AssetResolver maps an asset path supplied by a caller to a file the
// runtime can read.
type AssetResolver interface {
	Resolve(assetPath string) (string, error)
}
