// Package notify is the toast queue shared by every view
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
	Warning Kind = "warning"
	Info    Kind = "info"
)

type Toast struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier is what views depend on
type Notifier interface {
	Show(message string, kind Kind)
}

// Center keeps pending toasts until the shell drains them and a history of
// recent ones. Both hold at most limit toasts; the oldest go first.
type Center struct {
	mu      sync.Mutex
	pending []Toast
	recent  []Toast
	limit   int
	now     func() time.Time
}

func NewCenter(historyLimit int) *Center {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Center{limit: historyLimit, now: time.Now}
}

func (c *Center) Show(message string, kind Kind) {
	t := Toast{
		ID:      uuid.NewString(),
		Kind:    kind,
		Message: message,
		At:      c.now(),
	}

	c.mu.Lock()
	c.pending = keepLast(append(c.pending, t), c.limit)
	c.recent = keepLast(append(c.recent, t), c.limit)
	c.mu.Unlock()

	event := log.Info()
	if kind == Error || kind == Warning {
		event = log.Warn()
	}
	event.Str("kind", string(kind)).Msg("Toast: " + message)
}

func keepLast(toasts []Toast, limit int) []Toast {
	if len(toasts) <= limit {
		return toasts
	}
	return append([]Toast(nil), toasts[len(toasts)-limit:]...)
}

// Drain returns and clears the pending toasts
func (c *Center) Drain() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.pending
	c.pending = nil
	if out == nil {
		out = []Toast{}
	}
	return out
}

// Recent returns a copy of the history, oldest first
func (c *Center) Recent() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Toast{}, c.recent...)
}

// Count returns how many toasts of kind are in the history
func (c *Center) Count(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.recent {
		if t.Kind == kind {
			n++
		}
	}
	return n
}
