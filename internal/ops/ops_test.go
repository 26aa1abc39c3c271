package ops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/autofill/internal/kv"
	"github.com/hpungsan/autofill/internal/profile"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

// newTestStorage returns a Storage over a fresh in-memory store with a fixed clock.
func newTestStorage(t *testing.T) (*Storage, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	s := New(mem, nil)
	s.now = func() time.Time { return testNow }
	return s, mem
}

func testProfile(id, name string) profile.UserProfile {
	return profile.UserProfile{
		ID:   id,
		Name: name,
		Data: profile.FormData{
			FullName:     "Ada Lovelace",
			Email:        "ada@example.com",
			Phone:        "+44 20 7946 0958",
			CustomFields: map[string]string{"badge": "A-1"},
		},
		CreatedAt: testNow.Add(-time.Hour),
		LastUsed:  testNow.Add(-time.Hour),
	}
}

func ids(profiles []profile.UserProfile) []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.ID
	}
	return out
}

func mustGet(t *testing.T, store kv.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}
