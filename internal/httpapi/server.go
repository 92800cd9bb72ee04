package httpapi

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arbridge/internal/codec"
	"arbridge/internal/common/ctxutil"
	"arbridge/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Dispatch(ctx context.Context, method string, args map[string]any) types.CallResponse
	Methods() []string
	Capabilities() types.Capabilities
	Status() types.StatusResponse
	Ready() bool
}

// AssetLister lists the bundled model assets. May be nil.
type AssetLister interface {
	List() []types.Asset
}

func NewMux(svc Service, assets AssetLister) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		methods := corsAllowedMethods
		if len(methods) == 0 {
			methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
		}
		headers := corsAllowedHeaders
		if len(headers) == 0 {
			headers = []string{"Content-Type", "Accept", "X-Log-Level", "X-Request-Id"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: methods,
			AllowedHeaders: headers,
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/call", func(w http.ResponseWriter, r *http.Request) {
			c, ok := requestCodec(w, r)
			if !ok {
				return
			}
			body, ok := readBody(w, r, c)
			if !ok {
				return
			}
			var req types.CallRequest
			if len(body) == 0 {
				incBodyRejected("empty")
				writeError(w, c, http.StatusBadRequest, "request body is required")
				return
			}
			if err := c.Unmarshal(body, &req); err != nil {
				incBodyRejected("decode")
				writeError(w, c, http.StatusBadRequest, "invalid "+c.ContentType()+" body")
				return
			}
			if strings.TrimSpace(req.Method) == "" {
				writeError(w, c, http.StatusBadRequest, "method is required")
				return
			}
			serveCall(w, r, svc, c, req.Method, req.Arguments)
		})

		r.Post("/call/{method}", func(w http.ResponseWriter, r *http.Request) {
			c, ok := requestCodec(w, r)
			if !ok {
				return
			}
			body, ok := readBody(w, r, c)
			if !ok {
				return
			}
			var args map[string]any
			if len(body) > 0 {
				if err := c.Unmarshal(body, &args); err != nil {
					incBodyRejected("decode")
					writeError(w, c, http.StatusBadRequest, "invalid "+c.ContentType()+" body")
					return
				}
			}
			serveCall(w, r, svc, c, chi.URLParam(r, "method"), args)
		})

		r.Get("/methods", func(w http.ResponseWriter, r *http.Request) {
			writeValue(w, acceptCodec(r), http.StatusOK, map[string]any{"methods": svc.Methods()})
		})

		r.Get("/capabilities", func(w http.ResponseWriter, r *http.Request) {
			writeValue(w, acceptCodec(r), http.StatusOK, svc.Capabilities())
		})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, acceptCodec(r), http.StatusOK, svc.Status())
	})

	r.Get("/assets", func(w http.ResponseWriter, r *http.Request) {
		list := []types.Asset{}
		if assets != nil {
			list = assets.List()
		}
		writeValue(w, acceptCodec(r), http.StatusOK, map[string]any{"assets": list})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not initialized"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// serveCall dispatches one call and writes the envelope with codec c.
func serveCall(w http.ResponseWriter, r *http.Request, svc Service, c codec.Codec, method string, args map[string]any) {
	lvl := requestLogLevel(r)
	start := time.Now()
	if lvl >= LevelDebug {
		ev := zlog.Debug().Str("method", method).Int("args", len(args))
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			ev = ev.Str("request_id", rid)
		}
		ev.Msg("call start")
	}

	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := ctxutil.Join(r.Context(), serverBaseCtx)
	defer cancel()
	if callTimeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, time.Duration(callTimeout)*time.Second)
		defer tcancel()
	}

	resp := svc.Dispatch(ctx, method, args)
	status := statusFor(resp)
	code := ""
	if resp.Error != nil {
		code = resp.Error.Code
	}
	logCallEnd(r, lvl, method, status, start, code)
	if r.Context().Err() != nil {
		// Client went away; nobody is left to read the response.
		return
	}
	writeValue(w, c, status, resp)
}

// requestCodec picks the codec from Content-Type. An empty Content-Type is
// treated as JSON; other media types are rejected with 415.
func requestCodec(w http.ResponseWriter, r *http.Request) (codec.Codec, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return codec.JSON, true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || (mt != codec.ContentTypeJSON && mt != codec.ContentTypeCBOR) {
		incBodyRejected("content_type")
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json or application/cbor")
		return nil, false
	}
	return codec.ForContentType(mt), true
}

// acceptCodec picks the response codec of read-only endpoints from Accept.
func acceptCodec(r *http.Request) codec.Codec {
	return codec.ForContentType(r.Header.Get("Accept"))
}

// readBody reads the request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request, c codec.Codec) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	b, err := io.ReadAll(r.Body)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			incBodyRejected("too_large")
			writeError(w, c, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		incBodyRejected("read")
		writeError(w, c, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return b, true
}
