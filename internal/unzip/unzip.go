// Package unzip extracts ZIP archives into a destination directory.
package unzip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Extension is the only archive suffix this tool recognizes.
const Extension = ".zip"

var defaultValidator = validator.New(validator.WithRequiredStructEnabled())

// Request describes a single operation on one archive.
type Request struct {
	// Archive is the path to the source .zip file.
	Archive string `validate:"required,endswith=.zip"`

	// Output is the destination directory. Empty means
	// <cwd>/<archive basename without extension>.
	Output string
}

// Validate checks the request shape. A failure here is the invalid-input
// category, distinct from a source file that is simply missing.
func (r Request) Validate() error {
	if err := defaultValidator.Struct(r); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fmt.Errorf("failed to validate request: %w", err)
		}
		return fmt.Errorf("%w: %s", ErrNotZipFile, r.Archive)
	}
	return nil
}

// Destination resolves the directory entries are written into. When no
// output directory was supplied, it is derived from the archive's base
// name under the current working directory.
func (r Request) Destination() (string, error) {
	if r.Output != "" {
		return r.Output, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}

	return filepath.Join(cwd, strings.TrimSuffix(filepath.Base(r.Archive), Extension)), nil
}

// Extract validates the request, ensures the destination directory exists
// and writes every archive entry under it, preserving the archive's
// relative paths. There is no rollback: entries written before a
// mid-stream failure stay in place, as does the destination directory.
func Extract(ctx context.Context, logger *zap.Logger, req Request) (err error) {
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := os.Stat(req.Archive); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrArchiveMissing, req.Archive)
		}
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	dest, err := req.Destination()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dest, err)
	}

	reader, err := zip.OpenReader(req.Archive)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBadArchive, req.Archive, err)
	}
	defer func() {
		err = errors.Join(err, reader.Close())
	}()

	logger.Debug("extracting archive",
		zap.String("archive", req.Archive),
		zap.String("destination", dest),
		zap.Int("entries", len(reader.File)))

	// All entry writes go through a filesystem rooted at the destination.
	destFs := afero.NewBasePathFs(afero.NewOsFs(), dest)

	for _, entry := range reader.File {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("extraction cancelled: %w", err)
		}

		if err := writeEntry(destFs, entry); err != nil {
			return fmt.Errorf("failed to extract entry %s: %w", entry.Name, err)
		}
	}

	return nil
}

func writeEntry(destFs afero.Fs, entry *zip.File) (err error) {
	if entry.FileInfo().IsDir() {
		return destFs.MkdirAll(entry.Name, 0755)
	}

	if dir := filepath.Dir(entry.Name); dir != "" && dir != "." {
		if err := destFs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("%w: failed to open entry: %w", ErrBadArchive, err)
	}
	defer func() {
		err = errors.Join(err, rc.Close())
	}()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}

	f, err := destFs.OpenFile(entry.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err := io.Copy(f, rc); err != nil {
		return wrapCorrupt(fmt.Errorf("failed to write file: %w", err))
	}

	return nil
}

// wrapCorrupt tags decode failures from the zip reader as the
// corrupt-archive category. Plain filesystem failures (permissions, disk
// full) pass through untagged and surface as a generic failure.
func wrapCorrupt(err error) error {
	if errors.Is(err, zip.ErrFormat) || errors.Is(err, zip.ErrChecksum) || errors.Is(err, zip.ErrAlgorithm) {
		return fmt.Errorf("%w: %w", ErrBadArchive, err)
	}
	return err
}
