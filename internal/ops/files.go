package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/autofill/internal/config"
	"github.com/hpungsan/autofill/internal/errors"
)

// MaxImportFileBytes bounds how much of an import file is read.
const MaxImportFileBytes = 32 << 20

// ExportFileInput contains parameters for ExportFile.
type ExportFileInput struct {
	Path string // optional, default: ~/.autofill/exports/autofill-data-<YYYY-MM-DD>.json
}

// ExportFileOutput contains the result of ExportFile.
type ExportFileOutput struct {
	Path       string `json:"path"`
	Profiles   int    `json:"profiles"`
	ExportedAt string `json:"exported_at"`
}

// ExportFile writes the export document to a file.
func ExportFile(ctx context.Context, store ProfileStore, cfg *config.Config, input ExportFileInput) (*ExportFileOutput, error) {
	exportPath := input.Path
	if exportPath == "" {
		var err error
		exportPath, err = DefaultExportPath(time.Now())
		if err != nil {
			return nil, err
		}
	}

	// Default paths go through the same checks as user-supplied ones.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	document, err := store.ExportData(ctx)
	if err != nil {
		return nil, err
	}
	var doc ExportDocument
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}
	if err := writeFileAtomic(exportPath, []byte(document+"\n")); err != nil {
		return nil, err
	}

	return &ExportFileOutput{
		Path:       exportPath,
		Profiles:   len(doc.Profiles),
		ExportedAt: doc.ExportedAt,
	}, nil
}

// ImportFileInput contains parameters for ImportFile.
type ImportFileInput struct {
	Path string // required
}

// ImportFileOutput contains the result of ImportFile.
type ImportFileOutput struct {
	Imported bool `json:"imported"`
	Profiles int  `json:"profiles"`
}

// ImportFile reads an export document from a file and imports it.
// Profiles reports how many profiles are stored after the import.
func ImportFile(ctx context.Context, store ProfileStore, cfg *config.Config, input ImportFileInput) (*ImportFileOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if _, ok := err.(*errors.AutofillError); ok {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportFileBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(data) > MaxImportFileBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("import file exceeds %d bytes", MaxImportFileBytes))
	}

	if !store.ImportData(ctx, string(data)) {
		return nil, errors.NewImportFailed()
	}

	return &ImportFileOutput{
		Imported: true,
		Profiles: len(store.GetProfiles(ctx)),
	}, nil
}

// DefaultExportPath returns ~/.autofill/exports/autofill-data-<YYYY-MM-DD>.json for now.
func DefaultExportPath(now time.Time) (string, error) {
	dir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ExportFileName(now)), nil
}

// ExportFileName returns autofill-data-<YYYY-MM-DD>.json for now.
func ExportFileName(now time.Time) string {
	return "autofill-data-" + now.Format("2006-01-02") + ExportExt
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place, so a failed export never leaves a truncated file behind.
func writeFileAtomic(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		if _, ok := err.(*errors.AutofillError); ok {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if isSymlink(path) {
		return errors.NewInvalidRequest("path must not be a symlink")
	}

	if err := os.Rename(tempPath, path); err != nil {
		// Windows refuses to rename over an existing file; keep the old one.
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}
