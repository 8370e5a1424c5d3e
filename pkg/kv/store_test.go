package kv

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_GetSet(t *testing.T) {
	s := New[string, int]()

	// Set and get
	s.Set("foo", 42)
	val, ok := s.Get("foo")
	assert.True(t, ok)
	assert.Equal(t, 42, val)

	// Get non-existent
	_, ok = s.Get("bar")
	assert.False(t, ok)
}

func TestStore_SetTTL(t *testing.T) {
	s := New[string, string]()

	s.SetTTL("temp", "gone soon", 5*time.Millisecond)

	val, ok := s.Get("temp")
	assert.True(t, ok)
	assert.Equal(t, "gone soon", val)

	time.Sleep(10 * time.Millisecond)

	_, ok = s.Get("temp")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_SetOverwritesTTL(t *testing.T) {
	s := New[string, int]()

	s.SetTTL("key", 1, 5*time.Millisecond)
	s.Set("key", 2)

	time.Sleep(10 * time.Millisecond)

	val, ok := s.Get("key")
	assert.True(t, ok)
	assert.Equal(t, 2, val)
}

func TestStore_Delete(t *testing.T) {
	s := New[string, string]()
	s.Set("key", "value")

	s.Delete("key")

	_, ok := s.Get("key")
	assert.False(t, ok)
}

func TestStore_Clear(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)

	s.Clear()

	assert.Equal(t, 0, s.Len())
}

func TestStore_Keys(t *testing.T) {
	s := New[string, int]()
	s.Set("a", 1)
	s.Set("b", 2)
	s.SetTTL("c", 3, time.Nanosecond)

	time.Sleep(time.Millisecond)

	keys := s.Keys()
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, "a")
	assert.Contains(t, keys, "b")
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New[int, int]()
	var wg sync.WaitGroup

	// Concurrent writes
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Set(n, n*2)
		}(i)
	}

	// Concurrent reads
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Get(n)
		}(i)
	}

	wg.Wait()

	assert.Equal(t, 100, s.Len())
}
