package artifact

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/epubpress/internal/adapters/checksum"
	"github.com/iamNilotpal/epubpress/internal/adapters/compression"
	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/pkg/errors"
	"github.com/iamNilotpal/epubpress/pkg/logger"
)

func newStore(t *testing.T, fs afero.Fs, opts Options) *FileStore {
	t.Helper()
	if opts.Dir == "" {
		opts.Dir = "/artifacts"
	}
	s, err := NewFileStore(fs, opts, logger.Nop())
	require.NoError(t, err)
	return s
}

func TestPutFetchOneTime(t *testing.T) {
	ctx := context.Background()
	z, err := compression.NewZstd(compression.DefaultOptions())
	require.NoError(t, err)
	defer z.Close()

	fs := afero.NewMemMapFs()
	s := newStore(t, fs, Options{OneTime: true, Compressor: z, Checksum: checksum.MustNew(domain.CRC32IEEE)})

	data := bytes.Repeat([]byte("epub bytes "), 200)
	meta, err := s.Put(ctx, "task-1.epub", "book-compressed.epub", data)
	require.NoError(t, err)
	assert.True(t, meta.Compressed)
	assert.Equal(t, int64(len(data)), meta.Size)

	stored, err := afero.ReadFile(fs, "/artifacts/task-1.epub")
	require.NoError(t, err)
	assert.Less(t, len(stored), len(data))

	got, body, err := s.Fetch(ctx, "task-1.epub")
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.Equal(t, "book-compressed.epub", got.Filename)

	_, _, err = s.Fetch(ctx, "task-1.epub")
	require.ErrorIs(t, err, errors.ErrArtifactNotFound)
}

func TestFetchDetectsCorruption(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	s := newStore(t, fs, Options{Checksum: checksum.MustNew(domain.SHA256)})

	_, err := s.Put(ctx, "a.epub", "a-compressed.epub", []byte("original contents"))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/artifacts/a.epub", []byte("tampered contents"), 0o644))

	_, _, err = s.Fetch(ctx, "a.epub")
	require.Error(t, err)
	assert.Equal(t, errors.CategoryStorage, errors.CategoryOf(err))
}

func TestRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, afero.NewMemMapFs(), Options{})

	for _, key := range []string{"../etc/passwd", "a b.epub", "book.zip", ".epub", "x/y.epub"} {
		_, _, err := s.Fetch(ctx, key)
		require.Error(t, err, key)
		assert.Equal(t, errors.CodeInvalidFilename, errors.CodeOf(err), key)

		_, err = s.Put(ctx, key, "x", []byte("x"))
		require.Error(t, err, key)
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	s := newStore(t, fs, Options{})

	_, err := s.Put(ctx, "old.epub", "old-compressed.epub", []byte("old"))
	require.NoError(t, err)
	_, err = s.Put(ctx, "new.epub", "new-compressed.epub", []byte("new"))
	require.NoError(t, err)

	removed, err := s.Sweep(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = s.Put(ctx, "kept.epub", "kept-compressed.epub", []byte("kept"))
	require.NoError(t, err)
	removed, err = s.Sweep(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, body, err := s.Fetch(ctx, "kept.epub")
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), body)

	exists, err := afero.Exists(fs, "/artifacts/old.epub.json")
	require.NoError(t, err)
	assert.False(t, exists)
}
