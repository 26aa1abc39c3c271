package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/autofill/internal/errors"
)

func TestUpsertProfile_Create(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)
	name := "Home"

	p, err := UpsertProfile(ctx, s, "", ProfileEdit{
		Name:   &name,
		Fields: map[string]string{"email": "me@example.com", "city": "Lisbon"},
		Custom: map[string]string{"loyalty": "123"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	stored, ok := s.GetProfile(ctx, p.ID)
	require.True(t, ok)
	assert.Equal(t, "Home", stored.Name)
	assert.Equal(t, "me@example.com", stored.Data.Email)
	assert.Equal(t, "Lisbon", stored.Data.City)
	assert.Equal(t, "123", stored.Data.CustomFields["loyalty"])
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestUpsertProfile_EditKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)
	require.NoError(t, s.SaveProfile(ctx, testProfile("a", "Work")))

	p, err := UpsertProfile(ctx, s, "a", ProfileEdit{Fields: map[string]string{"company": "Analytical Engines"}})
	require.NoError(t, err)

	assert.Equal(t, "Work", p.Name)
	assert.Equal(t, "Ada Lovelace", p.Data.FullName)
	assert.Equal(t, "Analytical Engines", p.Data.Company)
	assert.Equal(t, "A-1", p.Data.CustomFields["badge"])
	assert.Len(t, s.GetProfiles(ctx), 1)
}

func TestUpsertProfile_Errors(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)
	require.NoError(t, s.SaveProfile(ctx, testProfile("a", "Work")))

	_, err := UpsertProfile(ctx, s, "missing", ProfileEdit{})
	assert.True(t, errors.Is(err, errors.ErrNotFound), "got %v", err)

	_, err = UpsertProfile(ctx, s, "a", ProfileEdit{Fields: map[string]string{"shoeSize": "9"}})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)

	// A new draft without a name fails validation.
	_, err = UpsertProfile(ctx, s, "", ProfileEdit{})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
	assert.Len(t, s.GetProfiles(ctx), 1)
}

func TestUpsertProfile_ReplaceCustom(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)
	require.NoError(t, s.SaveProfile(ctx, testProfile("a", "Work")))

	p, err := UpsertProfile(ctx, s, "a", ProfileEdit{
		Custom:        map[string]string{"desk": "4B"},
		ReplaceCustom: true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"desk": "4B"}, p.Data.CustomFields)

	p, err = UpsertProfile(ctx, s, "a", ProfileEdit{ReplaceCustom: true})
	require.NoError(t, err)
	assert.Empty(t, p.Data.CustomFields)
	assert.NotNil(t, p.Data.CustomFields)
}
