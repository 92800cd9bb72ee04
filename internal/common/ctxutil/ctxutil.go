// Package ctxutil holds small context helpers shared by the manager and the
// HTTP layer.
package ctxutil

import "context"

// Join returns a context derived from a (keeping its values) that is also
// cancelled, with b's cause, when b is done. The returned cancel func must be
// called to release resources.
func Join(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(a)
	stop := context.AfterFunc(b, func() { cancel(context.Cause(b)) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
