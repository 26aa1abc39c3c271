package kv

import (
	"context"
	"fmt"
)

// limited rejects documents larger than max bytes, the way a browser's
// storage quota rejects an oversized setItem.
type limited struct {
	Store
	max int
}

// WithDocumentLimit wraps s so that Set fails with ErrQuotaExceeded when the
// value is longer than maxBytes. maxBytes <= 0 disables the limit.
func WithDocumentLimit(s Store, maxBytes int) Store {
	if maxBytes <= 0 {
		return s
	}
	return &limited{Store: s, max: maxBytes}
}

// Set implements Store.
func (l *limited) Set(ctx context.Context, key, value string) error {
	if len(value) > l.max {
		return fmt.Errorf("%w: %s is %d bytes (max %d)", ErrQuotaExceeded, key, len(value), l.max)
	}
	return l.Store.Set(ctx, key, value)
}
