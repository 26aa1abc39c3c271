package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/hpungsan/autofill/internal/errors"
	"github.com/hpungsan/autofill/internal/profile"
)

// ProfileEdit is a partial change to a profile. Nil Name leaves the name
// alone; Fields are keyed by FormData JSON key. Custom entries are merged
// into the existing custom fields unless ReplaceCustom is set.
type ProfileEdit struct {
	Name          *string
	Fields        map[string]string
	Custom        map[string]string
	ReplaceCustom bool
}

// Apply writes the edit onto p. Unknown field keys are rejected.
func (e ProfileEdit) Apply(p *profile.UserProfile) error {
	if e.Name != nil {
		p.Name = *e.Name
	}
	for key, value := range e.Fields {
		if err := p.Data.Set(key, value); err != nil {
			return errors.NewInvalidRequest(fmt.Sprintf("unknown field %q", key))
		}
	}
	if e.ReplaceCustom {
		p.Data.CustomFields = make(map[string]string, len(e.Custom))
	}
	for key, value := range e.Custom {
		p.Data.SetCustom(key, value)
	}
	return nil
}

// UpsertProfile applies edit to the stored profile with the given id, or to a
// new draft when id is empty, and saves the result. Edits of an existing
// profile run as one locked read-modify-write.
func UpsertProfile(ctx context.Context, store ProfileStore, id string, edit ProfileEdit) (profile.UserProfile, error) {
	if id != "" {
		return store.UpdateProfile(ctx, id, edit.Apply)
	}

	p := profile.NewProfile(time.Now())
	if err := edit.Apply(&p); err != nil {
		return profile.UserProfile{}, err
	}
	if err := store.SaveProfile(ctx, p); err != nil {
		return profile.UserProfile{}, err
	}
	return p, nil
}
