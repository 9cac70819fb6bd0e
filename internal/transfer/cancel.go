package transfer

import "sync"

// CancellationToken is a shareable, thread-safe one-shot flag: once
// signalled it stays signalled, any number of clones observe the same
// signal, and Done() returns promptly after Cancel() is called. It is
// built on a channel close rather than a bool+mutex so that Done() can be
// used directly as a select arm without polling.
type CancellationToken struct {
	once sync.Once
	done chan struct{}
}

// NewCancellationToken returns a token in the not-yet-signalled state.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{done: make(chan struct{})}
}

// Cancel signals the token. Safe to call more than once or concurrently
// with Done()/IsCancelled(); only the first call has any effect.
func (t *CancellationToken) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// Done returns a channel that is closed once Cancel has been called. Use it
// as a select arm to race cancellation against other work.
func (t *CancellationToken) Done() <-chan struct{} {
	return t.done
}

// IsCancelled reports whether Cancel has been called, without blocking.
func (t *CancellationToken) IsCancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
