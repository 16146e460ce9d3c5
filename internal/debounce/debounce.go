// Package debounce provides a cancellable "newest wins" timer.
//
// A Debouncer shares a lock with its owner. Schedule, CancelPending, Pending
// and Stop must be called with that lock held; timer callbacks acquire it
// before running, so a scheduled function always observes the owner's state
// under the same lock as every other handler.
package debounce

import (
	"sync"
	"time"

	"github.com/oakwood-commons/fxpick/internal/clock"
)

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithAfterFire registers a hook invoked after a timer-fired function has run
// and the guard has been released. Owners use it to deliver notifications
// outside their lock.
func WithAfterFire(fn func()) Option {
	return func(d *Debouncer) { d.afterFire = fn }
}

// Debouncer delays a function until no newer Schedule call supersedes it.
type Debouncer struct {
	clk       clock.Clock
	guard     sync.Locker
	afterFire func()

	gen     uint64
	timer   *clock.Timer
	pending bool
	stopped bool
}

// New returns a Debouncer driven by clk and serialized by guard.
func New(clk clock.Clock, guard sync.Locker, opts ...Option) *Debouncer {
	if clk == nil {
		clk = clock.Real()
	}
	d := &Debouncer{clk: clk, guard: guard}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule cancels any pending invocation and arranges for fn to run after
// delay. A non-positive delay runs fn immediately on the calling goroutine.
// After Stop, Schedule is a no-op and reports false.
func (d *Debouncer) Schedule(delay time.Duration, fn func()) bool {
	if d.stopped {
		return false
	}
	d.cancel()
	if delay <= 0 {
		fn()
		return true
	}
	gen := d.gen
	d.pending = true
	d.timer = d.clk.AfterFunc(delay, func() {
		d.guard.Lock()
		if d.stopped || d.gen != gen {
			d.guard.Unlock()
			return
		}
		d.pending = false
		d.timer = nil
		fn()
		d.guard.Unlock()
		if d.afterFire != nil {
			d.afterFire()
		}
	})
	return true
}

// CancelPending drops the pending invocation, if any. It reports whether
// one was pending.
func (d *Debouncer) CancelPending() bool {
	was := d.pending
	d.cancel()
	return was
}

// Pending reports whether an invocation is waiting to fire.
func (d *Debouncer) Pending() bool { return d.pending }

// Stop cancels the pending invocation and refuses future scheduling.
func (d *Debouncer) Stop() {
	d.cancel()
	d.stopped = true
}

// Stopped reports whether Stop has been called.
func (d *Debouncer) Stopped() bool { return d.stopped }

func (d *Debouncer) cancel() {
	// The generation bump covers a callback that already left the clock's
	// queue and is waiting on the guard.
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
}
