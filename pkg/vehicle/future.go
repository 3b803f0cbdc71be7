package vehicle

import (
	"context"
	"sync"
	"time"

	"github.com/autonomysim/coresim/pkg/errkind"
)

// CommandToken is the non-blocking command handle spec §4.7 requires: every
// command returns one, and Wait resolves when the controller reports goal
// attainment, the timeout expires, or a later command cancels this one.
type CommandToken struct {
	mu     sync.Mutex
	done   chan struct{}
	err    error
	closed bool
}

func newToken() *CommandToken {
	return &CommandToken{done: make(chan struct{})}
}

func (t *CommandToken) resolve(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.err = err
	t.closed = true
	close(t.done)
}

// Wait blocks until the command completes, is cancelled, or timeout
// elapses (a non-positive timeout waits indefinitely).
func (t *CommandToken) Wait(timeout time.Duration) error {
	if timeout <= 0 {
		<-t.done
		return t.err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return errkind.New(errkind.Timeout, "command did not complete within its budget")
	}
}

// Done reports whether the command has resolved (successfully, with an
// error, or via cancellation).
func (t *CommandToken) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
