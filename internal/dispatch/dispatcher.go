// Package dispatch maps named RPC methods and their loosely typed argument
// bags onto the session manager, and turns outcomes into call responses.
package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"arbridge/internal/manager"
	"arbridge/pkg/types"
)

// Service is the subset of *manager.Manager the dispatcher drives.
type Service interface {
	Initialize(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Dispose(ctx context.Context) error
	Load(ctx context.Context, req manager.LoadRequest) error
	Unload(id string) error
	Show(id string) error
	Hide(id string) error
	Place(ctx context.Context, id string, req manager.PlaceRequest) error
	UpdateLocation(lat, lon float64, alt *float64) error
	Capabilities() types.Capabilities
	Status() types.StatusResponse
	Ready() bool
}

// handler runs one method. A nil result is reported as "no value".
type handler func(ctx context.Context, a args) (any, error)

// Dispatcher routes method calls. It holds no session state of its own and
// is safe for concurrent use.
type Dispatcher struct {
	svc      Service
	log      zerolog.Logger
	tracer   trace.Tracer
	handlers map[string]handler
}

// New builds a Dispatcher over svc. The method table is fixed at construction.
func New(svc Service, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		svc:    svc,
		log:    log.With().Str("component", "dispatch").Logger(),
		tracer: otel.Tracer("arbridge/internal/dispatch"),
	}
	d.handlers = map[string]handler{
		"initializeAR":      d.initialize,
		"startARSession":    d.start,
		"stopARSession":     d.stop,
		"loadARModel":       d.loadRemote,
		"loadLocalModel":    d.loadLocal,
		"unloadARModel":     d.unload,
		"showARModel":       d.show,
		"hideARModel":       d.hide,
		"placeModelAt":      d.place,
		"updateLocation":    d.updateLocation,
		"disposeAR":         d.dispose,
		"getARCapabilities": d.capabilities,
		"getARStatus":       d.status,
	}
	return d
}

// Methods lists the method names this build implements, sorted.
func (d *Dispatcher) Methods() []string {
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Implements reports whether method is known.
func (d *Dispatcher) Implements(method string) bool {
	_, ok := d.handlers[method]
	return ok
}

// Capabilities, Status and Ready pass through to the service so transports
// can serve read-only endpoints without a call envelope.
func (d *Dispatcher) Capabilities() types.Capabilities { return d.svc.Capabilities() }

func (d *Dispatcher) Status() types.StatusResponse { return d.svc.Status() }

func (d *Dispatcher) Ready() bool { return d.svc.Ready() }

// Dispatch runs one call. Unknown methods yield a NotImplemented response;
// failures yield a response carrying the error kind code and message.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, arguments map[string]any) types.CallResponse {
	resp := types.CallResponse{Method: method}
	h, ok := d.handlers[method]
	if !ok {
		observeCall("unknown", outcomeNotImplemented, 0)
		d.log.Debug().Str("method", method).Msg("method not implemented")
		resp.NotImplemented = true
		return resp
	}

	ctx, span := d.tracer.Start(ctx, "arbridge."+method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("rpc.method", method)))
	defer span.End()

	start := time.Now()
	result, err := h(ctx, args(arguments))
	dur := time.Since(start)
	if err != nil {
		err = d.preferDisposed(err)
		kind := manager.KindOf(err)
		if kind == manager.KindUnknown {
			kind = manager.KindRuntimeFailure
		}
		resp.Error = &types.CallError{Code: kind.Code(), Message: err.Error()}
		span.RecordError(err)
		span.SetStatus(codes.Error, kind.Code())
		observeCall(method, kind.Code(), dur)
		d.log.Info().Str("method", method).Str("code", kind.Code()).Dur("dur", dur).Err(err).Msg("call failed")
		return resp
	}
	resp.Result = result
	observeCall(method, outcomeOK, dur)
	d.log.Debug().Str("method", method).Dur("dur", dur).Msg("call ok")
	return resp
}

// preferDisposed reports malformed arguments sent to a disposed session as
// Disposed, matching what the session itself returns for valid arguments.
func (d *Dispatcher) preferDisposed(err error) error {
	if manager.KindOf(err) != manager.KindInvalidArgument {
		return err
	}
	if d.svc.Status().State != string(manager.StateDisposed) {
		return err
	}
	return manager.Errorf(manager.KindDisposed, "AR session disposed")
}

func (d *Dispatcher) initialize(ctx context.Context, _ args) (any, error) {
	if err := d.svc.Initialize(ctx); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) start(ctx context.Context, _ args) (any, error) {
	if err := d.svc.Start(ctx); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) stop(ctx context.Context, _ args) (any, error) {
	return nil, d.svc.Stop(ctx)
}

func (d *Dispatcher) dispose(ctx context.Context, _ args) (any, error) {
	return nil, d.svc.Dispose(ctx)
}

func (d *Dispatcher) loadRemote(ctx context.Context, a args) (any, error) {
	p, err := decodeLoad(a, "modelUrl")
	if err != nil {
		return nil, err
	}
	return d.load(ctx, p)
}

func (d *Dispatcher) loadLocal(ctx context.Context, a args) (any, error) {
	p, err := decodeLoad(a, "assetPath")
	if err != nil {
		return nil, err
	}
	return d.load(ctx, p)
}

func (d *Dispatcher) load(ctx context.Context, p manager.LoadRequest) (any, error) {
	if err := d.svc.Load(ctx, p); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) unload(_ context.Context, a args) (any, error) {
	id, err := a.str("modelId")
	if err != nil {
		return nil, err
	}
	if err := d.svc.Unload(id); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) show(_ context.Context, a args) (any, error) {
	id, err := a.str("modelId")
	if err != nil {
		return nil, err
	}
	if err := d.svc.Show(id); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) hide(_ context.Context, a args) (any, error) {
	id, err := a.str("modelId")
	if err != nil {
		return nil, err
	}
	if err := d.svc.Hide(id); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) place(ctx context.Context, a args) (any, error) {
	id, req, err := decodePlace(a)
	if err != nil {
		return nil, err
	}
	if err := d.svc.Place(ctx, id, req); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) updateLocation(_ context.Context, a args) (any, error) {
	lat, err := a.num("latitude")
	if err != nil {
		return nil, err
	}
	lon, err := a.num("longitude")
	if err != nil {
		return nil, err
	}
	alt, err := a.optNum("altitude")
	if err != nil {
		return nil, err
	}
	if err := d.svc.UpdateLocation(lat, lon, alt); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) capabilities(context.Context, args) (any, error) {
	return d.svc.Capabilities(), nil
}

func (d *Dispatcher) status(context.Context, args) (any, error) {
	return d.svc.Status(), nil
}
