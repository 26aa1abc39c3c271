package ops

import (
	"context"
	"encoding/json"

	"github.com/hpungsan/autofill/internal/errors"
	"github.com/hpungsan/autofill/internal/profile"
)

// GetSettings returns the stored settings laid over the defaults, key by key.
// A missing or unreadable document yields the defaults.
func (s *Storage) GetSettings(ctx context.Context) profile.AutofillSettings {
	raw, ok, err := s.store.Get(ctx, KeySettings)
	if err != nil {
		s.log.Warn().Err(err).Str("key", KeySettings).Msg("error loading settings")
		return profile.DefaultSettings()
	}
	if !ok {
		return profile.DefaultSettings()
	}

	// Unmarshal only touches keys present in the document.
	settings := profile.DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.log.Warn().Err(err).Str("key", KeySettings).Msg("error loading settings")
		return profile.DefaultSettings()
	}
	return settings
}

// SaveSettings overwrites the stored settings.
func (s *Storage) SaveSettings(ctx context.Context, settings profile.AutofillSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := s.store.Set(ctx, KeySettings, string(data)); err != nil {
		s.log.Error().Err(err).Msg("error saving settings")
		return errors.NewPersistence(errors.MsgSaveSettings, err)
	}
	return nil
}
