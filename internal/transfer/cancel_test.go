package transfer_test

import (
	"testing"
	"time"

	"github.com/restic/minisftp/internal/transfer"
)

func TestCancellationTokenStartsUnsignalled(t *testing.T) {
	tok := transfer.NewCancellationToken()
	if tok.IsCancelled() {
		t.Fatal("new token should not be cancelled")
	}
	select {
	case <-tok.Done():
		t.Fatal("Done() should not be closed before Cancel()")
	default:
	}
}

func TestCancellationTokenStaysSignalled(t *testing.T) {
	tok := transfer.NewCancellationToken()
	tok.Cancel()
	tok.Cancel() // must not panic or block on double-close

	if !tok.IsCancelled() {
		t.Fatal("expected IsCancelled() true after Cancel()")
	}

	select {
	case <-tok.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not unblock after Cancel()")
	}
}

func TestCancellationTokenObservedFromGoroutine(t *testing.T) {
	tok := transfer.NewCancellationToken()
	fired := make(chan struct{})
	go func() {
		<-tok.Done()
		close(fired)
	}()

	tok.Cancel()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("goroutine waiting on Done() was never woken")
	}
}
