package tui

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivenmedia/riven-tui/internal/core/notify"
)

func note(msg string) notify.Notification {
	return notify.Notification{Level: notify.LevelInfo, Message: msg}
}

func TestToastController_PushAndEvict(t *testing.T) {
	c := NewToastController()

	for i := 0; i < maxToasts+2; i++ {
		c.Push(note(fmt.Sprintf("toast %d", i)))
	}

	require.Len(t, c.Toasts(), maxToasts)
	assert.Equal(t, "toast 2", c.Toasts()[0].notification.Message)
}

func TestToastController_CollapsesRepeats(t *testing.T) {
	c := NewToastController()

	fail := notify.Notification{Level: notify.LevelError, Message: "item failed: not found"}
	for i := 0; i < 4; i++ {
		c.Push(fail)
	}

	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, 3, c.Toasts()[0].repeats)
}

func TestToastController_RepeatNeedsSameLevel(t *testing.T) {
	c := NewToastController()

	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "done"})
	c.Push(notify.Notification{Level: notify.LevelSuccess, Message: "done"})

	assert.Len(t, c.Toasts(), 2)
}

func TestToastController_TickExpires(t *testing.T) {
	c := NewToastController()
	c.Push(note("short lived"))

	ttl := toastTTL(notify.LevelInfo)
	c.Tick(ttl - time.Millisecond)
	require.True(t, c.HasToasts())

	c.Tick(time.Millisecond)
	assert.False(t, c.HasToasts())
}

func TestToastController_ErrorsLingerLonger(t *testing.T) {
	c := NewToastController()
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "listed"})
	c.Push(notify.Notification{Level: notify.LevelError, Message: "backend unreachable"})

	c.Tick(toastTTL(notify.LevelInfo))

	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, notify.LevelError, c.Toasts()[0].notification.Level)
}

func TestToastController_RepeatResetsTTL(t *testing.T) {
	c := NewToastController()
	msg := note("still going")

	c.Push(msg)
	c.Tick(toastTTL(notify.LevelInfo) - time.Millisecond)
	c.Push(msg)

	c.Tick(time.Millisecond)
	assert.True(t, c.HasToasts(), "a collapsed repeat should restart the countdown")
}

func TestToastController_Dismiss(t *testing.T) {
	c := NewToastController()
	c.Push(note("first"))
	c.Push(note("second"))

	c.Dismiss()
	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "first", c.Toasts()[0].notification.Message)

	c.DismissAll()
	assert.False(t, c.HasToasts())
}

func TestToastController_TickingFlag(t *testing.T) {
	c := NewToastController()
	assert.False(t, c.Ticking())
	c.SetTicking(true)
	assert.True(t, c.Ticking())
}
