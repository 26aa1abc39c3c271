package boltkv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hpungsan/autofill/internal/kv"
	"github.com/hpungsan/autofill/internal/kv/kvtest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	kvtest.RunContract(t, func(t *testing.T) kv.Store {
		return openTemp(t)
	})
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("Open() with blank path should fail")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Set(ctx, "autofill_profiles", `[{"id":"a"}]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()

	v, ok, err := s.Get(ctx, "autofill_profiles")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || v != `[{"id":"a"}]` {
		t.Errorf("Get() = %q, %v; want stored document", v, ok)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	s := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Error("Set() with canceled context should fail")
	}
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Error("Get() with canceled context should fail")
	}
}

func TestStore_CloseNil(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil store = %v", err)
	}
}
