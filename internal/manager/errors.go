package manager

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies failures so callers can branch without parsing messages.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotSupported: the platform lacks AR capability.
	KindNotSupported
	// KindInvalidState: the operation is invalid for the current session state.
	KindInvalidState
	// KindInvalidArgument: malformed or out-of-range input.
	KindInvalidArgument
	// KindNotFound: unknown model id.
	KindNotFound
	// KindNotTracking: placement attempted without active tracking.
	KindNotTracking
	// KindCancelled: in-flight operation aborted by stop, dispose or the caller.
	KindCancelled
	// KindDisposed: any call after dispose.
	KindDisposed
	// KindRuntimeFailure: the AR runtime reported an error.
	KindRuntimeFailure
)

var kindCodes = map[Kind]string{
	KindUnknown:         "UNKNOWN",
	KindNotSupported:    "NOT_SUPPORTED",
	KindInvalidState:    "INVALID_STATE",
	KindInvalidArgument: "INVALID_ARGUMENT",
	KindNotFound:        "NOT_FOUND",
	KindNotTracking:     "NOT_TRACKING",
	KindCancelled:       "CANCELLED",
	KindDisposed:        "DISPOSED",
	KindRuntimeFailure:  "RUNTIME_FAILURE",
}

// Code is the wire representation of the kind.
func (k Kind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return kindCodes[KindUnknown]
}

func (k Kind) String() string { return k.Code() }

// Error is the error type returned by Manager operations.
type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "load" or "place".
	Op  string
	Msg string
	// Err is the underlying cause, usually a runtime error.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error of the given kind. Used by the RPC layer for
// argument decoding failures.
func Errorf(kind Kind, format string, a ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// KindOf extracts the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err indicates a missing model id.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsDisposed reports whether err was caused by calling into a disposed session.
func IsDisposed(err error) bool { return KindOf(err) == KindDisposed }

// IsCancelled reports whether err indicates an aborted in-flight operation.
func IsCancelled(err error) bool { return KindOf(err) == KindCancelled }

func errNotFound(op, id string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: "model not found: " + id}
}

func errDisposed(op string) error {
	return &Error{Kind: KindDisposed, Op: op, Msg: "AR session disposed"}
}

func errInvalidState(op string, st State) error {
	return &Error{Kind: KindInvalidState, Op: op, Msg: fmt.Sprintf("cannot %s while session is %s", op, st)}
}

func errNotTracking(op string, st State) error {
	return &Error{Kind: KindNotTracking, Op: op, Msg: fmt.Sprintf("cannot %s: session is %s, not tracking", op, st)}
}

func errInvalidArgument(op, format string, a ...any) error {
	return &Error{Kind: KindInvalidArgument, Op: op, Msg: fmt.Sprintf(format, a...)}
}

func errCancelled(op, id string, cause error) error {
	return &Error{Kind: KindCancelled, Op: op, Msg: fmt.Sprintf("%s %s cancelled", op, id), Err: cause}
}

func errNotSupported(cause error) error {
	return &Error{Kind: KindNotSupported, Op: "initialize", Msg: "AR is not supported on this device", Err: cause}
}

// errRuntime wraps a runtime failure. A failure caused by context
// cancellation is reported as KindCancelled instead.
func errRuntime(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindCancelled, Op: op, Msg: op + " cancelled", Err: err}
	}
	return &Error{Kind: KindRuntimeFailure, Op: op, Msg: "failed to " + op, Err: err}
}
