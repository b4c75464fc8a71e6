// Package notify carries ephemeral user-facing messages. Each toast expires
// on its own timer; the current set is exposed as a broadcast stream.
package notify

import (
	"sync"
	"time"

	"github.com/craftorigin/storefront/pkg/stream"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Toast struct {
	ID      int    `json:"id"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

const DefaultTTL = 3 * time.Second

// Channel owns the canonical toast list; the stream only mirrors it.
// Mutation and publication happen under one lock so a timer-driven Dismiss
// can never lose a racing Show.
type Channel struct {
	mu     sync.Mutex
	next   int
	ttl    time.Duration
	list   []Toast
	toasts *stream.Value[[]Toast]
	timers map[int]*time.Timer
}

func NewChannel(ttl time.Duration) *Channel {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Channel{
		ttl:    ttl,
		toasts: stream.NewValue([]Toast(nil)),
		timers: make(map[int]*time.Timer),
	}
}

// Toasts is the stream of currently visible toasts.
func (c *Channel) Toasts() *stream.Value[[]Toast] {
	return c.toasts
}

// Show displays a toast and schedules its removal after the channel TTL.
func (c *Channel) Show(kind Kind, message string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	c.list = append(c.list, Toast{ID: id, Kind: kind, Message: message})
	c.timers[id] = time.AfterFunc(c.ttl, func() { c.Dismiss(id) })
	c.publishLocked()
	return id
}

func (c *Channel) Success(message string) int { return c.Show(KindSuccess, message) }
func (c *Channel) Error(message string) int   { return c.Show(KindError, message) }
func (c *Channel) Info(message string) int    { return c.Show(KindInfo, message) }

// Dismiss removes a toast before its timer fires; dismissing an expired
// toast is a no-op.
func (c *Channel) Dismiss(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	var kept []Toast
	found := false
	for _, t := range c.list {
		if t.ID == id {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if found {
		c.list = kept
		c.publishLocked()
	}
}

// publishLocked mirrors the canonical list into the stream. Callers hold
// c.mu; stream subscribers must not call back into the channel.
func (c *Channel) publishLocked() {
	c.toasts.Set(append([]Toast(nil), c.list...))
}

// Close stops all pending expiry timers.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}
