package unzip

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/samber/lo"
)

// Entry is one record of an archive listing.
type Entry struct {
	Path           string    `yaml:"path"`
	Size           uint64    `yaml:"size"`
	CompressedSize uint64    `yaml:"compressed_size"`
	Modified       time.Time `yaml:"modified"`
	Dir            bool      `yaml:"dir,omitempty"`
}

// List validates the request and returns the archive's entry table in
// archive order. It writes nothing and shares the failure categories of
// Extract.
func List(ctx context.Context, req Request) (entries []Entry, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("listing cancelled: %w", err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(req.Archive); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArchiveMissing, req.Archive)
		}
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}

	reader, err := zip.OpenReader(req.Archive)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadArchive, req.Archive, err)
	}
	defer func() {
		err = errors.Join(err, reader.Close())
	}()

	return lo.Map(reader.File, func(f *zip.File, _ int) Entry {
		return Entry{
			Path:           f.Name,
			Size:           f.UncompressedSize64,
			CompressedSize: f.CompressedSize64,
			Modified:       f.Modified,
			Dir:            f.FileInfo().IsDir(),
		}
	}), nil
}
