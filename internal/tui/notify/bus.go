// Package notify provides the in-process notification bus the TUI and the
// service layer share. Published notifications fan out to subscribers (the
// toast stack) and are retained in a small ring for the logs view.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/rivenmedia/riven-tui/internal/core/notify"
)

const defaultRetained = 100

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(notify.Notification)

// Bus is a synchronous in-process notification bus. It dispatches
// notifications to subscribers inline and retains the most recent ones in
// memory. Publish is safe to call from any goroutine; batch runs publish
// from outside the Bubble Tea update loop.
type Bus struct {
	mu          sync.Mutex
	subscribers []Subscriber
	recent      []notify.Notification
}

// NewBus creates a notification bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish dispatches a notification to all subscribers and retains it.
func (b *Bus) Publish(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.recent = append(b.recent, n)
	if len(b.recent) > defaultRetained {
		b.recent = b.recent[len(b.recent)-defaultRetained:]
	}
	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// Errorf publishes an error-level notification.
func (b *Bus) Errorf(format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelError,
		Message: fmt.Sprintf(format, args...),
	})
}

// Warnf publishes a warning-level notification.
func (b *Bus) Warnf(format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelWarning,
		Message: fmt.Sprintf(format, args...),
	})
}

// Infof publishes an info-level notification.
func (b *Bus) Infof(format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelInfo,
		Message: fmt.Sprintf(format, args...),
	})
}

// Successf publishes a success-level notification.
func (b *Bus) Successf(format string, args ...any) {
	b.Publish(notify.Notification{
		Level:   notify.LevelSuccess,
		Message: fmt.Sprintf(format, args...),
	})
}

// Recent returns the retained notifications, oldest first.
func (b *Bus) Recent() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]notify.Notification, len(b.recent))
	copy(out, b.recent)
	return out
}
