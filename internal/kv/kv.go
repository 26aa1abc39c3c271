// Package kv defines the key-value document store the profile façade
// persists into, plus an in-memory implementation and a size-limit wrapper.
package kv

import (
	"context"
	"errors"
)

//go:generate mockgen -source=kv.go -destination=../mock/kv_store_mock.go -package=mock

// ErrQuotaExceeded is returned when a write would exceed the store's limit.
var ErrQuotaExceeded = errors.New("kv: quota exceeded")

// Store holds string documents by key. Each Set replaces the whole document
// atomically: it either fully succeeds or leaves the previous value.
type Store interface {
	// Get returns the document stored at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value at key, replacing any previous document.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
