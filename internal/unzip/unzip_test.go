package unzip

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeArchive builds a zip file at path. Map keys ending in "/" become
// explicit directory entries.
func writeArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if content != "" {
			_, err = io.WriteString(w, content)
			require.NoError(t, err)
		}
	}

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// readTree walks root and returns a map of relative path -> content for
// every regular file under it.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()

	found := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		found[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err)
	return found
}

func TestExtract_RejectsNonZipPath(t *testing.T) {
	tests := []struct {
		name    string
		archive string
	}{
		{name: "wrong extension", archive: "notes.txt"},
		{name: "zip in the middle", archive: "archive.zip.bak"},
		{name: "empty path", archive: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out")

			err := Extract(t.Context(), zap.NewNop(), Request{Archive: tt.archive, Output: dest})
			require.ErrorIs(t, err, ErrNotZipFile)
			assert.NoDirExists(t, dest, "validation failure must not touch the filesystem")
		})
	}
}

func TestExtract_MissingArchive(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	err := Extract(t.Context(), zap.NewNop(), Request{
		Archive: filepath.Join(dir, "missing.zip"),
		Output:  dest,
	})
	require.ErrorIs(t, err, ErrArchiveMissing)
	assert.NoDirExists(t, dest, "missing source must not touch the filesystem")
}

func TestExtract_WritesEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	entries := map[string]string{
		"a.txt":     "alpha",
		"dir/b.txt": "beta",
	}
	writeArchive(t, archive, entries)

	dest := filepath.Join(dir, "out")
	err := Extract(t.Context(), zap.NewNop(), Request{Archive: archive, Output: dest})
	require.NoError(t, err)

	assert.Equal(t, entries, readTree(t, dest))
}

func TestExtract_ExplicitDirectoryEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	writeArchive(t, archive, map[string]string{
		"empty/":        "",
		"nested/c.txt":  "gamma",
		"nested/d/":     "",
		"nested/d/e.md": "# delta",
	})

	dest := filepath.Join(dir, "out")
	err := Extract(t.Context(), zap.NewNop(), Request{Archive: archive, Output: dest})
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(dest, "empty"))
	assert.DirExists(t, filepath.Join(dest, "nested", "d"))
	assert.Equal(t, map[string]string{
		"nested/c.txt":  "gamma",
		"nested/d/e.md": "# delta",
	}, readTree(t, dest))
}

func TestExtract_Idempotent(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	writeArchive(t, archive, map[string]string{"a.txt": "alpha"})

	dest := filepath.Join(dir, "out")
	req := Request{Archive: archive, Output: dest}

	require.NoError(t, Extract(t.Context(), zap.NewNop(), req))

	// Dirty the destination and re-extract: files are overwritten, the
	// existing directory is not an error.
	require.NoError(t, os.WriteFile(filepath.Join(dest, "a.txt"), []byte("stale"), 0644))
	require.NoError(t, Extract(t.Context(), zap.NewNop(), req))

	content, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(content))
}

func TestExtract_DefaultDestination(t *testing.T) {
	archiveDir := t.TempDir()
	archive := filepath.Join(archiveDir, "foo.zip")
	writeArchive(t, archive, map[string]string{"a.txt": "alpha"})

	workDir := t.TempDir()
	t.Chdir(workDir)

	err := Extract(t.Context(), zap.NewNop(), Request{Archive: archive})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(workDir, "foo", "a.txt"))
}

func TestExtract_CorruptArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "garbage.zip")
	require.NoError(t, os.WriteFile(archive, []byte("this is not a zip archive"), 0644))

	dest := filepath.Join(dir, "out")
	err := Extract(t.Context(), zap.NewNop(), Request{Archive: archive, Output: dest})
	require.ErrorIs(t, err, ErrBadArchive)

	// The destination directory is created before the archive is opened
	// and is deliberately not rolled back.
	assert.DirExists(t, dest)
	assert.Empty(t, readTree(t, dest))
}

func TestExtract_TruncatedArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "truncated.zip")
	writeArchive(t, archive, map[string]string{"a.txt": "alpha"})

	data, err := os.ReadFile(archive)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(archive, data[:len(data)/2], 0644))

	err = Extract(t.Context(), zap.NewNop(), Request{Archive: archive, Output: filepath.Join(dir, "out")})
	require.ErrorIs(t, err, ErrBadArchive)
}

func TestExtract_Cancelled(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	writeArchive(t, archive, map[string]string{"a.txt": "alpha"})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := Extract(ctx, zap.NewNop(), Request{Archive: archive, Output: filepath.Join(dir, "out")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequest_Destination(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "explicit output wins",
			req:  Request{Archive: "/tmp/foo.zip", Output: "/data/out"},
			want: "/data/out",
		},
		{
			name: "default derives from archive basename",
			req:  Request{Archive: "/tmp/foo.zip"},
			want: filepath.Join(cwd, "foo"),
		},
		{
			name: "default strips only the final extension",
			req:  Request{Archive: "releases/app-1.2.zip"},
			want: filepath.Join(cwd, "app-1.2"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Destination()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
