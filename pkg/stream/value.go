// Package stream provides a broadcast value cell: a container for a single
// value whose subscribers are notified on every change and immediately
// receive the current value when they attach.
package stream

import "sync"

type Value[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[int]func(T)
	next int
}

func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[int]func(T)),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set stores val and notifies every subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.cur = val
	fns := make([]func(T), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(val)
	}
}

// Subscribe registers fn and synchronously replays the current value to it.
// The returned cancel detaches fn; it does not affect other subscribers and
// never interrupts an emission already in flight.
func (v *Value[T]) Subscribe(fn func(T)) (cancel func()) {
	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = fn
	cur := v.cur
	v.mu.Unlock()

	fn(cur)

	return func() {
		v.mu.Lock()
		delete(v.subs, id)
		v.mu.Unlock()
	}
}
