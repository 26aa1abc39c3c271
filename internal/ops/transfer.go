package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/hpungsan/autofill/internal/errors"
	"github.com/hpungsan/autofill/internal/profile"
)

// ExportTimeFormat is ISO-8601 in UTC with milliseconds.
const ExportTimeFormat = "2006-01-02T15:04:05.000Z"

// ExportDocument is the portable form of everything the façade stores.
type ExportDocument struct {
	Profiles   []profile.UserProfile    `json:"profiles"`
	Settings   profile.AutofillSettings `json:"settings"`
	ExportedAt string                   `json:"exportedAt"`
}

// ExportData returns the current profiles and settings as an indented JSON
// document stamped with the export time. Nothing is written.
func (s *Storage) ExportData(ctx context.Context) (string, error) {
	return marshalExport(ExportDocument{
		Profiles:   s.GetProfiles(ctx),
		Settings:   s.GetSettings(ctx),
		ExportedAt: s.now().UTC().Format(ExportTimeFormat),
	})
}

func marshalExport(doc ExportDocument) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", errors.NewInternal(err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// ImportData overwrites the stored profiles and/or settings with the ones in
// document. It reports false, leaving storage untouched, when the document is
// not a JSON object or a present field has the wrong shape. Absent fields
// keep their stored value; unknown fields are ignored.
func (s *Storage) ImportData(ctx context.Context, document string) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(document), &fields); err != nil || fields == nil {
		s.log.Warn().Err(err).Msg("error importing data")
		return false
	}

	profilesRaw := present(fields["profiles"])
	settingsRaw := present(fields["settings"])

	if profilesRaw != nil {
		var profiles []profile.UserProfile
		if err := json.Unmarshal(profilesRaw, &profiles); err != nil {
			s.log.Warn().Err(err).Msg("error importing data: profiles")
			return false
		}
		seen := make(map[string]bool, len(profiles))
		for _, p := range profiles {
			if strings.TrimSpace(p.ID) == "" || seen[p.ID] {
				s.log.Warn().Str("id", p.ID).Msg("error importing data: missing or duplicate profile id")
				return false
			}
			seen[p.ID] = true
		}
	}
	if settingsRaw != nil {
		var settings profile.AutofillSettings
		if err := json.Unmarshal(settingsRaw, &settings); err != nil {
			s.log.Warn().Err(err).Msg("error importing data: settings")
			return false
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if profilesRaw != nil {
		if err := s.store.Set(ctx, KeyProfiles, compact(profilesRaw)); err != nil {
			s.log.Error().Err(err).Msg("error importing data: writing profiles")
			return false
		}
	}
	if settingsRaw != nil {
		if err := s.store.Set(ctx, KeySettings, compact(settingsRaw)); err != nil {
			s.log.Error().Err(err).Msg("error importing data: writing settings")
			return false
		}
	}

	s.log.Info().
		Bool("profiles", profilesRaw != nil).
		Bool("settings", settingsRaw != nil).
		Msg("data imported")
	return true
}

// ClearAllData removes the profiles, settings and templates documents.
// Failures are logged and the remaining keys are still attempted.
func (s *Storage) ClearAllData(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyProfiles, KeySettings, KeyTemplates} {
		if err := s.store.Remove(ctx, key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("error clearing data")
		}
	}
}

// present treats an absent field and an explicit null the same way.
func present(raw json.RawMessage) json.RawMessage {
	if raw == nil || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	return raw
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
