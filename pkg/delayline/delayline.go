// Package delayline implements the generic output delay-line used by every
// sensor (spec §4.5): a pushed value becomes visible only once its
// configured delay has elapsed, and multiple queued values are emitted in
// FIFO order.
package delayline

import "github.com/autonomysim/coresim/pkg/spatial"

type entry[T any] struct {
	value    T
	pushedAt spatial.TimePoint
	delay    spatial.TimeDelta
}

// DelayLine buffers values of type T behind a configurable output delay.
type DelayLine[T any] struct {
	queue      []entry[T]
	last       T
	haveOutput bool
	zero       T
}

// New builds an empty DelayLine.
func New[T any]() *DelayLine[T] {
	return &DelayLine[T]{}
}

// Push enqueues value, to become visible once delay has elapsed since now.
// Multiple values may be queued concurrently; Reset clears them all.
func (d *DelayLine[T]) Push(value T, now spatial.TimePoint, delay spatial.TimeDelta) {
	d.queue = append(d.queue, entry[T]{value: value, pushedAt: now, delay: delay})
}

// Update pops entries from the front of the queue, in push order, while
// their delay has elapsed as of now, and stops at the first entry that is
// still pending. The newest popped value becomes the current output, so an
// older entry that becomes due in the same tick as a newer one is
// superseded.
func (d *DelayLine[T]) Update(now spatial.TimePoint) {
	i := 0
	for i < len(d.queue) {
		e := d.queue[i]
		if now.Sub(e.pushedAt) >= e.delay {
			d.last = e.value
			d.haveOutput = true
			i++
			continue
		}
		break
	}
	d.queue = d.queue[i:]
}

// GetOutput returns the newest value whose delay has elapsed, and whether
// any output has ever been produced.
func (d *DelayLine[T]) GetOutput() (T, bool) {
	return d.last, d.haveOutput
}

// Reset clears the queue and the last-output state, per spec §4.5.
func (d *DelayLine[T]) Reset() {
	d.queue = nil
	d.haveOutput = false
	d.last = d.zero
}

// Len reports the number of values still queued (not yet due).
func (d *DelayLine[T]) Len() int { return len(d.queue) }
