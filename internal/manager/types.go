package manager

import (
	"net/url"
	"path"
	"strings"
	"time"

	"arbridge/pkg/types"
)

// State is the lifecycle state of the AR session.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitialized   State = "initialized"
	StateTracking      State = "tracking"
	StateStopped       State = "stopped"
	StateDisposed      State = "disposed"
)

// Source identifies where a model comes from. Exactly one field is set.
type Source struct {
	URL       string
	AssetPath string
}

// Local reports whether the source is a bundled asset.
func (s Source) Local() bool { return s.AssetPath != "" }

func (s Source) String() string {
	if s.Local() {
		return "asset:" + s.AssetPath
	}
	return s.URL
}

// Format returns the lower-case file extension of the source without the
// dot, or "" when there is none. Query strings of URLs are ignored.
func (s Source) Format() string {
	p := s.AssetPath
	if !s.Local() {
		if u, err := url.Parse(s.URL); err == nil {
			p = u.Path
		} else {
			p = s.URL
		}
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(p)), ".")
}

// LoadRequest describes a model to load.
type LoadRequest struct {
	ID          string
	Source      Source
	Transform   types.Transform
	Interactive bool
}

// PlaceRequest moves a loaded model to a new anchor. A nil Scale keeps the
// model's current scale.
type PlaceRequest struct {
	Position types.Vec3
	Rotation types.Rotation
	Scale    *types.Vec3
}

// Snapshot is a read-only projection of the session.
type Snapshot struct {
	State    State
	Location *types.Location
	Models   []types.ModelStatus
}

// modelEntry is one loaded model. Guarded by Manager.mu.
type modelEntry struct {
	id          string
	source      Source
	format      string
	transform   types.Transform
	visible     bool
	interactive bool
	renderable  Renderable
	anchor      Anchor
	loadedAt    time.Time
	placedAt    time.Time
}

func (e *modelEntry) status() types.ModelStatus {
	st := types.ModelStatus{
		ID:          e.id,
		URL:         e.source.URL,
		AssetPath:   e.source.AssetPath,
		Format:      e.format,
		Transform:   cloneTransform(e.transform),
		Visible:     e.visible,
		Interactive: e.interactive,
		Anchored:    e.anchor != nil,
		LoadedAt:    e.loadedAt.Unix(),
	}
	if !e.placedAt.IsZero() {
		st.PlacedAt = e.placedAt.Unix()
	}
	return st
}

func cloneTransform(t types.Transform) types.Transform {
	t.Rotation = append(types.Rotation(nil), t.Rotation...)
	return t
}
