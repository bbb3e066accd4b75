// Package debounce coalesces bursts of calls into one delayed call.
package debounce

import (
	"sync"
	"time"
)

// An Invoker delays fn until no Call arrived for the quiescence window.
// Only the argument of the most recent Call is delivered.
type Invoker[T any] struct {
	mu    sync.Mutex
	wait  time.Duration
	fn    func(T)
	timer *time.Timer
	gen   uint64
	last  T
}

func New[T any](wait time.Duration, fn func(T)) *Invoker[T] {
	return &Invoker[T]{wait: wait, fn: fn}
}

// Func wraps a niladic callback.
func Func(wait time.Duration, fn func()) *Invoker[struct{}] {
	return New(wait, func(struct{}) { fn() })
}

// Call restarts the window with v as the pending argument.
func (d *Invoker[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.last = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Cancel drops the pending call. It reports whether one was pending.
func (d *Invoker[T]) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	d.gen++
	return stopped
}

// Flush runs the pending call now, if any.
func (d *Invoker[T]) Flush() bool {
	d.mu.Lock()
	if d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return false
	}
	d.timer = nil
	d.gen++
	v := d.last
	d.mu.Unlock()

	d.fn(v)
	return true
}

// fire ignores timers superseded by a later Call, Cancel or Flush.
func (d *Invoker[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	v := d.last
	d.mu.Unlock()

	d.fn(v)
}
