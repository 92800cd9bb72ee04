package httpapi

// maxBodyBytes controls the maximum allowed request body size for call endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// callTimeout bounds a single call, in seconds. Zero means no additional
// timeout beyond server/connection timeouts.
var callTimeout = int64(0)

// SetCallTimeoutSeconds sets the call timeout in seconds (0 disables).
func SetCallTimeoutSeconds(sec int64) {
	if sec < 0 {
		sec = 0
	}
	callTimeout = sec
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server. Empty method
// and header lists fall back to what the call endpoints need.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
