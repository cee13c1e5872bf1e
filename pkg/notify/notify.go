// Package notify delivers user-facing notifications for terminal outcomes.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Kind classifies a notification for display.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Notification is one user-visible message.
type Notification struct {
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier receives fire-and-forget notifications. Implementations must
// not block the caller on delivery.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, kind Kind, message string)

func (f NotifierFunc) Notify(ctx context.Context, kind Kind, message string) {
	f(ctx, kind, message)
}

// Discard drops every notification.
var Discard Notifier = NotifierFunc(func(context.Context, Kind, string) {})

// Collector records notifications in order so a response can carry them.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Notify(_ context.Context, kind Kind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, Notification{
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
}

// Notifications returns a copy of everything collected so far.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Log writes notifications to logger. Errors log at WARN.
func Log(logger *slog.Logger) Notifier {
	logger = logger.With("system", "notify")
	return NotifierFunc(func(ctx context.Context, kind Kind, message string) {
		level := slog.LevelInfo
		if kind == KindError {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "notification", "kind", kind, "message", message)
	})
}

// Multi fans a notification out to every non-nil notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return NotifierFunc(func(ctx context.Context, kind Kind, message string) {
		for _, n := range notifiers {
			if n != nil {
				n.Notify(ctx, kind, message)
			}
		}
	})
}
