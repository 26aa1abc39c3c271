// Package ops is the persistence façade over a kv.Store: profile CRUD,
// settings, whole-data export/import/clear, and file transfer.
package ops

import (
	"context"
	"sync"
	"time"

	"github.com/hpungsan/autofill/internal/kv"
	"github.com/hpungsan/autofill/internal/logger"
	"github.com/hpungsan/autofill/internal/profile"
)

// Storage keys. These are the names the documents live under in any backend.
const (
	KeyProfiles  = "autofill_profiles"
	KeySettings  = "autofill_settings"
	KeyTemplates = "autofill_templates"
)

// ProfileStore is what the CLI, MCP server and web UI depend on.
type ProfileStore interface {
	GetProfiles(ctx context.Context) []profile.UserProfile
	GetProfile(ctx context.Context, id string) (profile.UserProfile, bool)
	SaveProfile(ctx context.Context, p profile.UserProfile) error
	UpdateProfile(ctx context.Context, id string, fn func(p *profile.UserProfile) error) (profile.UserProfile, error)
	DeleteProfile(ctx context.Context, id string) error
	MarkUsed(ctx context.Context, id string) (profile.UserProfile, error)

	GetSettings(ctx context.Context) profile.AutofillSettings
	SaveSettings(ctx context.Context, s profile.AutofillSettings) error

	ExportData(ctx context.Context) (string, error)
	ImportData(ctx context.Context, document string) bool
	ClearAllData(ctx context.Context)
}

var _ ProfileStore = (*Storage)(nil)

// Storage reads and writes profiles and settings as whole JSON documents.
// Nothing is cached: every call goes back to the store.
type Storage struct {
	store kv.Store
	log   *logger.Logger

	// mu serialises read-modify-write sequences in this process.
	mu sync.Mutex

	now func() time.Time
}

// New returns a Storage over store. A nil log discards output.
func New(store kv.Store, log *logger.Logger) *Storage {
	if log == nil {
		log = logger.Nop()
	}
	return &Storage{
		store: store,
		log:   log,
		now:   time.Now,
	}
}
