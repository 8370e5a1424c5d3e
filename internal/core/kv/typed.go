package kv

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// TypedKV provides type-safe, namespaced access to a KV store for a
// specific type T.
type TypedKV[T any] struct {
	store  KV
	prefix string
}

// Scoped returns a TypedKV[T] that prefixes all keys with "namespace:".
func Scoped[T any](store KV, namespace string) *TypedKV[T] {
	return &TypedKV[T]{
		store:  store,
		prefix: namespace + ":",
	}
}

// Get retrieves and deserializes a value by key.
func (t *TypedKV[T]) Get(ctx context.Context, key string) (T, error) {
	var v T
	if err := t.store.Get(ctx, t.prefix+key, &v); err != nil {
		return v, err
	}
	return v, nil
}

// Set stores a value with no expiry.
func (t *TypedKV[T]) Set(ctx context.Context, key string, value T) error {
	return t.store.Set(ctx, t.prefix+key, value)
}

// SetTTL stores a value that expires after the given duration.
func (t *TypedKV[T]) SetTTL(ctx context.Context, key string, value T, ttl time.Duration) error {
	return t.store.SetTTL(ctx, t.prefix+key, value, ttl)
}

// Fetch returns the cached value for key, filling the cache from fill on a
// miss. The fresh value is stored with the given TTL; a failed cache write
// is logged but does not discard the value, since the caller wanted the
// value, not the cache entry.
func (t *TypedKV[T]) Fetch(ctx context.Context, key string, ttl time.Duration, fill func(context.Context) (T, error)) (T, error) {
	if v, err := t.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err := fill(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := t.SetTTL(ctx, key, v, ttl); err != nil {
		log.Debug().Err(err).Str("key", t.prefix+key).Msg("kv: cache fill write failed")
	}
	return v, nil
}

// Delete removes a key.
func (t *TypedKV[T]) Delete(ctx context.Context, key string) error {
	return t.store.Delete(ctx, t.prefix+key)
}

// Has returns whether a key exists.
func (t *TypedKV[T]) Has(ctx context.Context, key string) (bool, error) {
	return t.store.Has(ctx, t.prefix+key)
}
