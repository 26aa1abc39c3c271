// Package kvtest holds the behaviour every kv.Store backend must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/hpungsan/autofill/internal/kv"
)

// RunContract exercises newStore's result against the kv.Store contract.
// newStore must return an empty store for each call.
func RunContract(t *testing.T, newStore func(t *testing.T) kv.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get absent", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(ctx, "autofill_profiles")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if ok || v != "" {
			t.Errorf("Get() = %q, %v; want \"\", false", v, ok)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "autofill_settings", `{"encryptData":true}`); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, ok, err := s.Get(ctx, "autofill_settings")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !ok || v != `{"encryptData":true}` {
			t.Errorf("Get() = %q, %v; want stored document", v, ok)
		}
	})

	t.Run("set replaces", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "k", "first"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := s.Set(ctx, "k", "second"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, _, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if v != "second" {
			t.Errorf("Get() = %q, want %q", v, "second")
		}
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := s.Remove(ctx, "k"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if _, ok, _ := s.Get(ctx, "k"); ok {
			t.Error("key still present after Remove()")
		}
	})

	t.Run("remove absent is no-op", func(t *testing.T) {
		s := newStore(t)
		if err := s.Remove(ctx, "never-set"); err != nil {
			t.Errorf("Remove() error = %v, want nil", err)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "a", "1"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := s.Set(ctx, "b", "2"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := s.Remove(ctx, "a"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		v, ok, _ := s.Get(ctx, "b")
		if !ok || v != "2" {
			t.Errorf("Get(b) = %q, %v; want %q, true", v, ok, "2")
		}
	})
}
