package manager

import (
	"context"

	"github.com/google/uuid"

	"arbridge/internal/common/ctxutil"
)

// opTicket tracks one runtime call that runs outside the lock.
type opTicket struct {
	id      string
	name    string
	modelID string
	epoch   uint64
	// tracking records whether the session was tracking when the op began.
	tracking bool
	session  RuntimeSession
	ctx      context.Context
	cancel   context.CancelFunc
}

// beginOpLocked registers an in-flight op. Its context ends when the caller's
// context ends or when the current epoch is cancelled by Stop or Dispose.
func (m *Manager) beginOpLocked(ctx context.Context, name, modelID string) *opTicket {
	opCtx, cancel := ctxutil.Join(ctx, m.epochCtx)
	t := &opTicket{
		id:       uuid.NewString(),
		name:     name,
		modelID:  modelID,
		epoch:    m.epoch,
		tracking: m.state == StateTracking,
		session:  m.session,
		ctx:      opCtx,
		cancel:   cancel,
	}
	m.inflight[t.id] = name
	m.log.Debug().Str("event", name+"_start").Str("op_id", t.id).Str("model", modelID).Msg("op begin")
	return t
}

func (m *Manager) endOpLocked(t *opTicket) {
	delete(m.inflight, t.id)
	t.cancel()
}

// abortedLocked reports whether t can no longer commit: the epoch moved on,
// the session is gone, or the op's own context ended.
func (m *Manager) abortedLocked(t *opTicket) bool {
	return t.epoch != m.epoch || m.state == StateDisposed || t.ctx.Err() != nil
}

// rotateEpochLocked cancels every in-flight op of the current epoch. A fresh
// epoch context is created unless the session is being disposed.
func (m *Manager) rotateEpochLocked(fresh bool) {
	m.epochCancel()
	m.epoch++
	if fresh {
		m.epochCtx, m.epochCancel = context.WithCancel(context.Background())
	}
}
