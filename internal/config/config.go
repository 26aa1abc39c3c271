package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "AUTOFILL_"

// DirName is the per-user and per-repo configuration directory name.
const DirName = ".autofill"

// Config holds application configuration.
type Config struct {
	// Backend selects the document store: "sqlite" (default), "bolt" or "memory".
	// "memory" keeps nothing across runs and is mostly useful for trying things out.
	Backend string `json:"backend,omitempty" env:"BACKEND"`

	// MaxDocumentBytes caps the size of a single stored document, like a browser
	// storage quota. Writes above the cap fail with a persistence error.
	// Negative disables the cap.
	MaxDocumentBytes int `json:"max_document_bytes,omitempty" env:"MAX_DOCUMENT_BYTES"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" env:"LOG_LEVEL"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.autofill/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty" env:"ALLOWED_PATHS"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// When true, any directory is allowed (but symlink and extension checks still apply).
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty" env:"ALLOW_UNSAFE_PATHS"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"DB_MAX_IDLE_CONNS"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"DISABLED_TOOLS"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "profile", "settings", "data".
	DisabledTypes []string `json:"disabled_types,omitempty" env:"DISABLED_TYPES"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:          BackendSQLite,
		MaxDocumentBytes: 5 << 20,
		LogLevel:         "info",
	}
}

// Load loads configuration from baseDir/config.json, then applies AUTOFILL_*
// environment variables on top.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.autofill.
func Load(baseDir string) (*Config, error) {
	file, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return build(file)
}

// LoadWithRepo loads configuration from both global (~/.autofill) and repo (.autofill) directories.
// Repo config is found by walking upward from startDir to find the nearest .autofill/config.json.
// Precedence: defaults, global, repo, environment. Arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	merged, err := Merge(global, repo)
	if err != nil {
		return nil, err
	}
	return build(merged)
}

// FindRepoConfig walks upward from startDir to find the nearest .autofill/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DirName, "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// build layers defaults, the file config and the environment, then validates.
func build(file *Config) (*Config, error) {
	fromEnv, err := parseEnv()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	for _, layer := range []*Config{file, fromEnv} {
		if cfg, err = Merge(cfg, layer); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

// parseEnv reads AUTOFILL_* variables into a zero Config.
func parseEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("error getting env configs: %w", err)
	}
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// Merge combines base and overlay configs without modifying either.
// Non-zero overlay scalars win; a true boolean is never reset by the overlay;
// arrays are merged and deduplicated.
func Merge(base, overlay *Config) (*Config, error) {
	result := *base
	result.AllowedPaths = append([]string(nil), base.AllowedPaths...)
	result.DisabledTools = append([]string(nil), base.DisabledTools...)
	result.DisabledTypes = append([]string(nil), base.DisabledTypes...)

	if err := mergo.Merge(&result, overlay, mergo.WithOverride, mergo.WithAppendSlice); err != nil {
		return nil, fmt.Errorf("error merging configs: %w", err)
	}

	result.AllowedPaths = mergeStringSlice(result.AllowedPaths, nil)
	result.DisabledTools = mergeStringSlice(result.DisabledTools, nil)
	result.DisabledTypes = mergeStringSlice(result.DisabledTypes, nil)

	return &result, nil
}

// Validate rejects values no component can act on.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendBolt, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want sqlite, bolt or memory)", c.Backend)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	return nil
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s != "" && !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
