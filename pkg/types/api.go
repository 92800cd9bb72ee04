package types

// CallRequest is the envelope for one named method call.
type CallRequest struct {
	// Method name, e.g. initializeAR or loadLocalModel.
	// example: loadLocalModel
	Method string `json:"method" example:"loadLocalModel"`
	// Loosely typed argument bag. Keys follow the method's contract.
	Arguments map[string]any `json:"arguments,omitempty"`
}

// CallError is the error half of a call response.
type CallError struct {
	// Machine-readable error kind.
	// example: NOT_FOUND
	Code string `json:"code" example:"NOT_FOUND"`
	// Human-readable message.
	// example: model not found: statue
	Message string `json:"message" example:"model not found: statue"`
}

// CallResponse carries exactly one of Result, Error or NotImplemented.
type CallResponse struct {
	Method string `json:"method,omitempty"`
	// Success value. Nil for methods that return nothing.
	Result any `json:"result"`
	// Set when the call failed.
	Error *CallError `json:"error,omitempty"`
	// Set when the method name is unknown to this build.
	NotImplemented bool `json:"not_implemented,omitempty"`
}

// ErrorResponse is a consistent JSON error payload for transport-level failures.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// ModelStatus summarizes a loaded model for /status.
type ModelStatus struct {
	// example: statue
	ID string `json:"id" example:"statue"`
	// Remote URL, empty for local assets.
	URL string `json:"url,omitempty"`
	// Local asset path, empty for remote models.
	AssetPath string `json:"asset_path,omitempty"`
	// Format derived from the source extension, when present.
	// example: glb
	Format      string    `json:"format,omitempty" example:"glb"`
	Transform   Transform `json:"transform"`
	Visible     bool      `json:"visible"`
	Interactive bool      `json:"interactive"`
	// Whether the model is currently attached to a runtime anchor.
	Anchored bool `json:"anchored"`
	// Load time (unix seconds).
	// example: 1700000000
	LoadedAt int64 `json:"loaded_at_unix" example:"1700000000"`
	// Last placement time (unix seconds), 0 when never placed.
	PlacedAt int64 `json:"placed_at_unix,omitempty"`
}

// StatusResponse is returned by GET /status and the getARStatus method.
type StatusResponse struct {
	// Session state: uninitialized, initialized, tracking, stopped, disposed.
	// example: tracking
	State string `json:"state" example:"tracking"`
	// Last reported location, nil until updateLocation succeeds.
	Location *Location `json:"location,omitempty"`
	// Loaded models ordered by id.
	Models []ModelStatus `json:"models"`
	// Loads and placements currently waiting on the runtime.
	// example: 0
	InFlight int `json:"in_flight" example:"0"`
	// example: 12
	LoadsTotal uint64 `json:"loads_total" example:"12"`
	// example: 3
	UnloadsTotal uint64 `json:"unloads_total" example:"3"`
	// Operations aborted by stop or dispose.
	// example: 1
	CancelledTotal uint64 `json:"cancelled_total" example:"1"`
	// Uptime of the service in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}

// Asset is a model file discovered in the assets directory.
type Asset struct {
	// Path relative to the assets directory, slash separated.
	// example: models/statue.glb
	Path string `json:"path" example:"models/statue.glb"`
	// example: glb
	Format string `json:"format" example:"glb"`
	// example: 204800
	SizeBytes int64 `json:"size_bytes" example:"204800"`
}
