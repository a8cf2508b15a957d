package view

import (
	"context"
	"sync"

	"bankclient/internal/domain/session"
	"bankclient/internal/domain/user"
)

// SessionSource is implemented by *session.Service.
type SessionSource interface {
	Subscribe(fn session.Listener) (unsubscribe func())
}

// lifecycle is shared by the data views. mu also guards the embedding
// view's fields.
type lifecycle struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
	user   *user.Profile

	ctx         context.Context
	cancel      context.CancelFunc
	inflight    sync.WaitGroup
	unsubscribe func()
}

// start subscribes to src. A signed-in user triggers refresh in the
// background; sign-out runs reset with mu held.
func (l *lifecycle) start(src SessionSource, refresh func(context.Context) error, reset func()) {
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.unsubscribe = src.Subscribe(func(c session.Change) {
		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			return
		}
		l.user = c.User
		l.gen++
		if c.User == nil {
			reset()
			l.mu.Unlock()
			return
		}
		l.inflight.Add(1)
		l.mu.Unlock()

		go func() {
			defer l.inflight.Done()
			_ = refresh(l.ctx)
		}()
	})
}

// begin opens a fetch generation. ok is false when there is nothing to
// fetch for.
func (l *lifecycle) begin() (gen uint64, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.user == nil {
		return 0, false
	}
	l.gen++
	return l.gen, true
}

// commit applies a fetch result with mu held, unless a newer generation
// started or the view closed in the meantime.
func (l *lifecycle) commit(gen uint64, apply func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || gen != l.gen {
		return false
	}
	apply()
	return true
}

// update applies a mutation outcome unless the view closed.
func (l *lifecycle) update(apply func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		apply()
	}
}

// User is the signed-in user the view is following, or nil.
func (l *lifecycle) User() *user.Profile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.user
}

// Wait blocks until background fetches started by session changes finish.
// It must not overlap a session change: call it once the change that
// started the fetch has been delivered.
func (l *lifecycle) Wait() {
	l.inflight.Wait()
}

// Close stops following the session and cancels in-flight fetches. Results
// arriving afterwards are discarded.
func (l *lifecycle) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.gen++
	l.mu.Unlock()

	l.cancel()
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
}
