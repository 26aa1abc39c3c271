package kv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hpungsan/autofill/internal/kv"
	"github.com/hpungsan/autofill/internal/kv/kvtest"
)

func TestMemory_Contract(t *testing.T) {
	kvtest.RunContract(t, func(t *testing.T) kv.Store {
		return kv.NewMemory()
	})
}

func TestMemory_CancelledContext(t *testing.T) {
	m := kv.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() error = %v, want context.Canceled", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestWithDocumentLimit(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()
	s := kv.WithDocumentLimit(m, 8)

	if err := s.Set(ctx, "k", "12345678"); err != nil {
		t.Fatalf("Set() at limit error = %v", err)
	}

	err := s.Set(ctx, "k", "123456789")
	if !errors.Is(err, kv.ErrQuotaExceeded) {
		t.Fatalf("Set() over limit error = %v, want ErrQuotaExceeded", err)
	}

	v, _, _ := s.Get(ctx, "k")
	if v != "12345678" {
		t.Errorf("rejected write changed the document: got %q", v)
	}
}

func TestWithDocumentLimit_Disabled(t *testing.T) {
	m := kv.NewMemory()
	if s := kv.WithDocumentLimit(m, 0); s != kv.Store(m) {
		t.Error("WithDocumentLimit(s, 0) should return s unchanged")
	}
}
