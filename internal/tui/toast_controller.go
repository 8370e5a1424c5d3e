package tui

import (
	"time"

	"github.com/rivenmedia/riven-tui/internal/core/notify"
)

const (
	maxToasts         = 5
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 50
)

// toastTTL is per level: an error (failed batch item, dead backend) is
// worth more reading time than a routine confirmation.
func toastTTL(level notify.Level) time.Duration {
	switch level {
	case notify.LevelError:
		return 10 * time.Second
	case notify.LevelWarning:
		return 7 * time.Second
	default:
		return 5 * time.Second
	}
}

type toast struct {
	notification notify.Notification
	remaining    time.Duration
	repeats      int
}

// ToastController manages the lifecycle of active toast notifications.
// It handles push, repeat collapsing, eviction, TTL countdown, and
// dismissal.
type ToastController struct {
	toasts  []toast
	ticking bool
}

func NewToastController() *ToastController {
	return &ToastController{}
}

// Push adds a notification to the toast stack. A notification identical to
// the newest toast collapses into it with a bumped repeat count instead of
// flooding the stack — a batch failing item after item the same way shows
// one toast, not five. Beyond maxToasts the oldest toast is evicted.
func (c *ToastController) Push(n notify.Notification) {
	if len(c.toasts) > 0 {
		newest := &c.toasts[len(c.toasts)-1]
		if newest.notification.Level == n.Level && newest.notification.Message == n.Message {
			newest.repeats++
			newest.remaining = toastTTL(n.Level)
			return
		}
	}

	c.toasts = append(c.toasts, toast{
		notification: n,
		remaining:    toastTTL(n.Level),
	})
	if len(c.toasts) > maxToasts {
		c.toasts = c.toasts[len(c.toasts)-maxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes
// any that have expired.
func (c *ToastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest (bottom-most) toast.
func (c *ToastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

// DismissAll removes all active toasts.
func (c *ToastController) DismissAll() {
	c.toasts = c.toasts[:0]
}

// HasToasts returns true if there are any active toasts.
func (c *ToastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Toasts returns the current active toast slice.
func (c *ToastController) Toasts() []toast {
	return c.toasts
}

// Ticking returns whether the tick timer is currently running.
func (c *ToastController) Ticking() bool {
	return c.ticking
}

// SetTicking sets the tick timer state.
func (c *ToastController) SetTicking(v bool) {
	c.ticking = v
}
