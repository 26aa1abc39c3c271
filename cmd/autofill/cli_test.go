package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hpungsan/autofill/internal/config"
	"github.com/hpungsan/autofill/internal/kv"
	"github.com/hpungsan/autofill/internal/ops"
	"github.com/hpungsan/autofill/internal/profile"
)

// setupTestStore creates an in-memory profile store for testing.
func setupTestStore(t *testing.T) *ops.Storage {
	t.Helper()
	return ops.New(kv.NewMemory(), nil)
}

// testConfig returns a config that allows exports anywhere.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true
	return cfg
}

// runCLI runs the app with args and returns what it wrote.
func runCLI(t *testing.T, store ops.ProfileStore, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newCLIApp(store, cfg)
	app.Writer = &buf
	err := app.Run(append([]string{"autofill"}, args...))
	return buf.String(), err
}

func mustRunCLI(t *testing.T, store ops.ProfileStore, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := runCLI(t, store, cfg, args...)
	if err != nil {
		t.Fatalf("autofill %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func decodeProfile(t *testing.T, out string) profile.UserProfile {
	t.Helper()
	var p profile.UserProfile
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("failed to parse profile output: %v\n%s", err, out)
	}
	return p
}

func TestParseKeyValues(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected map[string]string
		wantErr  bool
	}{
		{name: "none", input: nil, expected: nil},
		{name: "single", input: []string{"email=a@b.co"}, expected: map[string]string{"email": "a@b.co"}},
		{name: "value with equals", input: []string{"note=a=b"}, expected: map[string]string{"note": "a=b"}},
		{name: "empty value", input: []string{"phone="}, expected: map[string]string{"phone": ""}},
		{name: "key trimmed", input: []string{" city =Oslo"}, expected: map[string]string{"city": "Oslo"}},
		{name: "missing equals", input: []string{"email"}, wantErr: true},
		{name: "empty key", input: []string{"=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseKeyValues(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseKeyValues(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseKeyValues(%q) unexpected error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("parseKeyValues(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCLIProfileCreateAndShow(t *testing.T) {
	store := setupTestStore(t)
	cfg := testConfig()

	out := mustRunCLI(t, store, cfg, "profile", "create",
		"--name", "Work",
		"--field", "email=jane@acme.io",
		"--field", "address=1 Main St, Apt 2",
		"--custom", "badge=42",
	)
	created := decodeProfile(t, out)
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Data.Address != "1 Main St, Apt 2" {
		t.Errorf("address = %q, commas must not split flag values", created.Data.Address)
	}
	if created.Data.CustomFields["badge"] != "42" {
		t.Errorf("custom badge = %q, want 42", created.Data.CustomFields["badge"])
	}

	shown := decodeProfile(t, mustRunCLI(t, store, cfg, "profile", "show", created.ID))
	if shown.Name != "Work" || shown.Data.Email != "jane@acme.io" {
		t.Errorf("show returned %+v", shown)
	}
}

func TestCLIProfileEdit(t *testing.T) {
	store := setupTestStore(t)
	cfg := testConfig()

	created := decodeProfile(t, mustRunCLI(t, store, cfg, "profile", "create", "--name", "Home", "--field", "city=Oslo"))

	edited := decodeProfile(t, mustRunCLI(t, store, cfg, "profile", "edit", created.ID, "--field", "zipCode=0150"))
	if edited.Name != "Home" {
		t.Errorf("name = %q, edit without --name must keep it", edited.Name)
	}
	if edited.Data.City != "Oslo" || edited.Data.ZipCode != "0150" {
		t.Errorf("data = %+v", edited.Data)
	}

	if got := len(store.GetProfiles(t.Context())); got != 1 {
		t.Errorf("profiles = %d, want 1", got)
	}
}

func TestCLIProfileListDeleteUse(t *testing.T) {
	store := setupTestStore(t)
	cfg := testConfig()

	a := decodeProfile(t, mustRunCLI(t, store, cfg, "profile", "create", "--name", "A"))
	b := decodeProfile(t, mustRunCLI(t, store, cfg, "profile", "create", "--name", "B"))

	var listed []profile.UserProfile
	if err := json.Unmarshal([]byte(mustRunCLI(t, store, cfg, "profile", "list")), &listed); err != nil {
		t.Fatalf("failed to parse list: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != a.ID || listed[1].ID != b.ID {
		t.Fatalf("list = %+v", listed)
	}

	used := decodeProfile(t, mustRunCLI(t, store, cfg, "profile", "use", b.ID))
	if !used.LastUsed.After(b.LastUsed) && !used.LastUsed.Equal(b.LastUsed) {
		t.Errorf("lastUsed went backwards: %v -> %v", b.LastUsed, used.LastUsed)
	}

	mustRunCLI(t, store, cfg, "profile", "delete", a.ID)
	profiles := store.GetProfiles(t.Context())
	if len(profiles) != 1 || profiles[0].ID != b.ID {
		t.Errorf("after delete = %+v", profiles)
	}
}

func TestCLISettings(t *testing.T) {
	store := setupTestStore(t)
	cfg := testConfig()

	var shown profile.AutofillSettings
	if err := json.Unmarshal([]byte(mustRunCLI(t, store, cfg, "settings", "show")), &shown); err != nil {
		t.Fatalf("failed to parse settings: %v", err)
	}
	if shown != profile.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", shown)
	}

	mustRunCLI(t, store, cfg, "settings", "set", "--confirm-before-fill=false", "--encrypt-data")

	want := profile.DefaultSettings()
	want.ConfirmBeforeFill = false
	want.EncryptData = true
	if got := store.GetSettings(t.Context()); got != want {
		t.Errorf("settings = %+v, want %+v", got, want)
	}
}

func TestCLIExportImport(t *testing.T) {
	src := setupTestStore(t)
	cfg := testConfig()

	mustRunCLI(t, src, cfg, "profile", "create", "--name", "Exported", "--field", "email=x@y.io")
	mustRunCLI(t, src, cfg, "settings", "set", "--auto-detect-fields=false")

	path := filepath.Join(t.TempDir(), "backup.json")
	var exported ops.ExportFileOutput
	if err := json.Unmarshal([]byte(mustRunCLI(t, src, cfg, "export", "--path", path)), &exported); err != nil {
		t.Fatalf("failed to parse export output: %v", err)
	}
	if exported.Path != path || exported.Profiles != 1 {
		t.Errorf("export output = %+v", exported)
	}

	dst := setupTestStore(t)
	var imported ops.ImportFileOutput
	if err := json.Unmarshal([]byte(mustRunCLI(t, dst, cfg, "import", "--path", path)), &imported); err != nil {
		t.Fatalf("failed to parse import output: %v", err)
	}
	if !imported.Imported || imported.Profiles != 1 {
		t.Errorf("import output = %+v", imported)
	}

	profiles := dst.GetProfiles(t.Context())
	if len(profiles) != 1 || profiles[0].Name != "Exported" {
		t.Errorf("imported profiles = %+v", profiles)
	}
	if dst.GetSettings(t.Context()).AutoDetectFields {
		t.Error("imported settings should have autoDetectFields=false")
	}
}

func TestCLIExportStdout(t *testing.T) {
	store := setupTestStore(t)
	cfg := testConfig()

	out := mustRunCLI(t, store, cfg, "export", "--stdout")
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("stdout export is not JSON: %v", err)
	}
	for _, key := range []string{"profiles", "settings", "exportedAt"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("export missing %q", key)
		}
	}
}

func TestImportDocument(t *testing.T) {
	store := setupTestStore(t)

	output, err := importDocument(t.Context(), store, `{"profiles":[]}`)
	if err != nil {
		t.Fatalf("importDocument: %v", err)
	}
	if !output.Imported || output.Profiles != 0 {
		t.Errorf("output = %+v", output)
	}

	if _, err := importDocument(t.Context(), store, `not json`); err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestCLIClear(t *testing.T) {
	store := setupTestStore(t)
	cfg := testConfig()

	mustRunCLI(t, store, cfg, "profile", "create", "--name", "Gone")

	if _, err := runCLI(t, store, cfg, "clear"); err == nil {
		t.Fatal("clear without --yes should fail")
	}
	if len(store.GetProfiles(t.Context())) != 1 {
		t.Fatal("clear without --yes must not remove data")
	}

	mustRunCLI(t, store, cfg, "clear", "--yes")
	if len(store.GetProfiles(t.Context())) != 0 {
		t.Error("profiles remain after clear")
	}
}

func TestCLIErrorHandling(t *testing.T) {
	store := setupTestStore(t)
	cfg := testConfig()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "show unknown", args: []string{"profile", "show", "nope"}, wantErr: "[NOT_FOUND]"},
		{name: "show without id", args: []string{"profile", "show"}, wantErr: "[INVALID_REQUEST]"},
		{name: "edit unknown", args: []string{"profile", "edit", "nope", "--name", "x"}, wantErr: "[NOT_FOUND]"},
		{name: "use unknown", args: []string{"profile", "use", "nope"}, wantErr: "[NOT_FOUND]"},
		{name: "create without name", args: []string{"profile", "create"}, wantErr: "[INVALID_REQUEST]"},
		{name: "create bad field", args: []string{"profile", "create", "--name", "x", "--field", "shoeSize=9"}, wantErr: "[INVALID_REQUEST]"},
		{name: "create bad pair", args: []string{"profile", "create", "--name", "x", "--field", "email"}, wantErr: "[INVALID_REQUEST]"},
		{name: "create bad email", args: []string{"profile", "create", "--name", "x", "--field", "email=nope"}, wantErr: "[INVALID_REQUEST]"},
		{name: "import missing file", args: []string{"import", "--path", filepath.Join(t.TempDir(), "none.json")}, wantErr: "[FILE_NOT_FOUND]"},
		{name: "ui bad port", args: []string{"ui", "--port", "0"}, wantErr: "[INVALID_REQUEST]"},
		{name: "export wrong extension", args: []string{"export", "--path", filepath.Join(t.TempDir(), "out.txt")}, wantErr: "[INVALID_REQUEST]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, store, cfg, tt.args...)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.HasPrefix(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want prefix %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "no args", args: []string{"autofill"}, want: false},
		{name: "profile", args: []string{"autofill", "profile", "list"}, want: true},
		{name: "settings", args: []string{"autofill", "settings", "show"}, want: true},
		{name: "export", args: []string{"autofill", "export"}, want: true},
		{name: "import", args: []string{"autofill", "import"}, want: true},
		{name: "clear", args: []string{"autofill", "clear"}, want: true},
		{name: "ui", args: []string{"autofill", "ui"}, want: true},
		{name: "help flag", args: []string{"autofill", "--help"}, want: true},
		{name: "version flag", args: []string{"autofill", "-v"}, want: true},
		{name: "unknown", args: []string{"autofill", "serve"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCLIMode(tt.args); got != tt.want {
				t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestIsHelpOrVersion(t *testing.T) {
	for _, arg := range []string{"--help", "-h", "--version", "-v", "help"} {
		if !isHelpOrVersion([]string{"autofill", arg}) {
			t.Errorf("isHelpOrVersion(%q) = false", arg)
		}
	}
	if isHelpOrVersion([]string{"autofill", "profile"}) {
		t.Error("isHelpOrVersion(profile) = true")
	}
	if isHelpOrVersion([]string{"autofill"}) {
		t.Error("isHelpOrVersion(no args) = true")
	}
}
