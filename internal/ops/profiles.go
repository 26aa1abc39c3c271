package ops

import (
	"context"
	"encoding/json"

	"github.com/hpungsan/autofill/internal/errors"
	"github.com/hpungsan/autofill/internal/profile"
)

// GetProfiles returns every stored profile in stored order.
// A missing or unreadable document yields an empty slice; the failure is logged.
func (s *Storage) GetProfiles(ctx context.Context) []profile.UserProfile {
	raw, ok, err := s.store.Get(ctx, KeyProfiles)
	if err != nil {
		s.log.Warn().Err(err).Str("key", KeyProfiles).Msg("error loading profiles")
		return []profile.UserProfile{}
	}
	if !ok {
		return []profile.UserProfile{}
	}

	var profiles []profile.UserProfile
	if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
		s.log.Warn().Err(err).Str("key", KeyProfiles).Msg("error loading profiles")
		return []profile.UserProfile{}
	}
	if profiles == nil {
		profiles = []profile.UserProfile{}
	}
	return profiles
}

// GetProfile returns the first stored profile with the given id.
func (s *Storage) GetProfile(ctx context.Context, id string) (profile.UserProfile, bool) {
	for _, p := range s.GetProfiles(ctx) {
		if p.ID == id {
			return p, true
		}
	}
	return profile.UserProfile{}, false
}

// SaveProfile replaces the stored profile with the same id, or appends p.
func (s *Storage) SaveProfile(ctx context.Context, p profile.UserProfile) error {
	if problems := profile.Validate(p); len(problems) > 0 {
		return errors.NewInvalidProfile(problems)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.GetProfiles(ctx)
	replaced := false
	for i := range profiles {
		if profiles[i].ID == p.ID {
			profiles[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		profiles = append(profiles, p)
	}

	if err := s.writeProfiles(ctx, profiles); err != nil {
		s.log.Error().Err(err).Str("id", p.ID).Msg("error saving profile")
		return errors.NewPersistence(errors.MsgSaveProfile, err)
	}
	s.log.Debug().Str("id", p.ID).Bool("replaced", replaced).Msg("profile saved")
	return nil
}

// DeleteProfile drops every stored profile with the given id.
// An unknown id still rewrites the unchanged collection.
func (s *Storage) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.GetProfiles(ctx)
	kept := make([]profile.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	if err := s.writeProfiles(ctx, kept); err != nil {
		s.log.Error().Err(err).Str("id", id).Msg("error deleting profile")
		return errors.NewPersistence(errors.MsgDeleteProfile, err)
	}
	s.log.Debug().Str("id", id).Int("removed", len(profiles)-len(kept)).Msg("profile deleted")
	return nil
}

// UpdateProfile applies fn to the stored profile with the given id and writes
// the result back, all under the same lock, so concurrent edits of one profile
// do not overwrite each other. fn must not call back into s. The id is fixed:
// a change to p.ID made by fn is undone.
func (s *Storage) UpdateProfile(ctx context.Context, id string, fn func(p *profile.UserProfile) error) (profile.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.GetProfiles(ctx)
	for i := range profiles {
		if profiles[i].ID != id {
			continue
		}

		p := profiles[i]
		if err := fn(&p); err != nil {
			return profile.UserProfile{}, err
		}
		p.ID = id
		if problems := profile.Validate(p); len(problems) > 0 {
			return profile.UserProfile{}, errors.NewInvalidProfile(problems)
		}

		profiles[i] = p
		if err := s.writeProfiles(ctx, profiles); err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("error saving profile")
			return profile.UserProfile{}, errors.NewPersistence(errors.MsgSaveProfile, err)
		}
		s.log.Debug().Str("id", id).Msg("profile updated")
		return p, nil
	}
	return profile.UserProfile{}, errors.NewNotFound(id)
}

// MarkUsed sets LastUsed to now on the stored profile and returns it.
func (s *Storage) MarkUsed(ctx context.Context, id string) (profile.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := s.GetProfiles(ctx)
	for i := range profiles {
		if profiles[i].ID != id {
			continue
		}
		profiles[i].LastUsed = s.now()
		if err := s.writeProfiles(ctx, profiles); err != nil {
			s.log.Error().Err(err).Str("id", id).Msg("error saving profile")
			return profile.UserProfile{}, errors.NewPersistence(errors.MsgSaveProfile, err)
		}
		return profiles[i], nil
	}
	return profile.UserProfile{}, errors.NewNotFound(id)
}

func (s *Storage) writeProfiles(ctx context.Context, profiles []profile.UserProfile) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, KeyProfiles, string(data))
}
