package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenotify "github.com/rivenmedia/riven-tui/internal/core/notify"
)

func TestBus_PublishDispatchesToSubscribers(t *testing.T) {
	bus := NewBus()

	var got []corenotify.Notification
	bus.Subscribe(func(n corenotify.Notification) {
		got = append(got, n)
	})

	bus.Infof("hello %s", "world")
	bus.Errorf("boom")

	require.Len(t, got, 2)
	assert.Equal(t, corenotify.LevelInfo, got[0].Level)
	assert.Equal(t, "hello world", got[0].Message)
	assert.Equal(t, corenotify.LevelError, got[1].Level)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestBus_RetainsRecent(t *testing.T) {
	bus := NewBus()

	for i := 0; i < defaultRetained+10; i++ {
		bus.Infof("message %d", i)
	}

	recent := bus.Recent()
	require.Len(t, recent, defaultRetained)
	assert.Equal(t, "message 10", recent[0].Message)
	assert.Equal(t, "message 109", recent[len(recent)-1].Message)
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()

	var first, second int
	bus.Subscribe(func(corenotify.Notification) { first++ })
	bus.Subscribe(func(corenotify.Notification) { second++ })

	bus.Warnf("warned")

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}
