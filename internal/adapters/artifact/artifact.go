// Package artifact stores compressed books until they are downloaded.
package artifact

import (
	"context"
	goerrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/ports"
	"github.com/iamNilotpal/epubpress/internal/serialize"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

const metaSuffix = ".json"

// keyPattern is the only shape of key the store reads or writes, which
// keeps keys from escaping the store directory.
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+\.epub$`)

// Options configures a FileStore.
type Options struct {
	// Dir is the directory holding artifacts and their metadata.
	Dir string

	// OneTime removes an artifact once it has been fetched.
	OneTime bool

	// Compressor, when set, compresses artifact bytes at rest.
	Compressor ports.Compressor

	// Checksum, when set, is recorded on Put and verified on Fetch.
	Checksum ports.Checksummer
}

// FileStore implements ports.ArtifactStore on an afero filesystem. Each
// artifact is two files: <key> with the bytes and <key>.json with its
// domain.Artifact description.
type FileStore struct {
	fs   afero.Afero
	opts Options
	log  *zap.SugaredLogger

	// mu serializes fetches so a one-time artifact is handed out once.
	mu sync.Mutex
}

// Creates the store, making Dir if needed.
func NewFileStore(fs afero.Fs, opts Options, log *zap.SugaredLogger) (*FileStore, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("artifact dir is required")
	}

	store := &FileStore{fs: afero.Afero{Fs: fs}, opts: opts, log: log.With("component", "artifact-store")}
	if err := store.fs.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create artifact dir %q: %w", opts.Dir, err)
	}
	return store, nil
}

// ValidKey reports whether key has the shape of an artifact key.
func ValidKey(key string) bool {
	return keyPattern.MatchString(key)
}

func (s *FileStore) Put(ctx context.Context, key, filename string, data []byte) (*domain.Artifact, error) {
	if !ValidKey(key) {
		return nil, errors.NewValidationError(errors.CodeInvalidFilename, "key", key, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	meta := &domain.Artifact{
		Key:       key,
		Filename:  filename,
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
	}

	if s.opts.Checksum != nil {
		meta.Checksum = s.opts.Checksum.Sum(data)
		meta.Algorithm = s.opts.Checksum.Algorithm()
	}

	body := data
	if s.opts.Compressor != nil {
		out, ok, err := s.opts.Compressor.Compress(data)
		if err != nil {
			return nil, errors.Storage("artifact.put", err)
		}
		body, meta.Compressed = out, ok
	}

	encoded, err := serialize.Encode(meta)
	if err != nil {
		return nil, fmt.Errorf("cannot encode artifact metadata: %w", err)
	}

	if err := s.fs.WriteFile(s.path(key), body, 0o644); err != nil {
		return nil, errors.Storage("artifact.put", err)
	}
	if err := s.fs.WriteFile(s.path(key)+metaSuffix, encoded, 0o644); err != nil {
		_ = s.fs.Remove(s.path(key))
		return nil, errors.Storage("artifact.put", err)
	}

	s.log.Debugw("artifact stored", "key", key, "size", meta.Size, "stored", len(body))
	return meta, nil
}

func (s *FileStore) Fetch(ctx context.Context, key string) (*domain.Artifact, []byte, error) {
	if !ValidKey(key) {
		return nil, nil, errors.NewValidationError(errors.CodeInvalidFilename, "file", key, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMeta(key)
	if err != nil {
		return nil, nil, err
	}

	body, err := s.fs.ReadFile(s.path(key))
	if goerrors.Is(err, os.ErrNotExist) {
		return nil, nil, errors.NotFound(errors.CodeArtifactNotFound, "artifact.fetch", err)
	}
	if err != nil {
		return nil, nil, errors.Storage("artifact.fetch", err)
	}

	if meta.Compressed {
		if s.opts.Compressor == nil {
			return nil, nil, errors.Storage("artifact.fetch", fmt.Errorf("artifact %q is compressed, no compressor configured", key))
		}
		if body, err = s.opts.Compressor.Decompress(body); err != nil {
			return nil, nil, errors.Storage("artifact.fetch", err)
		}
	}

	if s.opts.Checksum != nil && meta.Algorithm == s.opts.Checksum.Algorithm() {
		if s.opts.Checksum.Sum(body) != meta.Checksum {
			return nil, nil, errors.Storage("artifact.fetch", fmt.Errorf("artifact %q failed checksum verification", key))
		}
	}

	if s.opts.OneTime {
		if err := s.remove(key); err != nil {
			s.log.Warnw("cannot remove fetched artifact", "key", key, "error", err)
		}
	}

	return meta, body, nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if !ValidKey(key) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(key)
}

// Sweep removes artifacts created before the cutoff. Data files without
// metadata are judged by their modification time.
func (s *FileStore) Sweep(ctx context.Context, before time.Time) (int, error) {
	infos, err := s.fs.ReadDir(s.opts.Dir)
	if err != nil {
		return 0, errors.Storage("artifact.sweep", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		key := info.Name()
		if info.IsDir() || !ValidKey(key) {
			continue
		}

		created := info.ModTime()
		if meta, err := s.readMeta(key); err == nil {
			created = meta.CreatedAt
		}
		if !created.Before(before) {
			continue
		}

		if err := s.remove(key); err != nil {
			s.log.Warnw("cannot remove expired artifact", "key", key, "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

func (s *FileStore) readMeta(key string) (*domain.Artifact, error) {
	raw, err := s.fs.ReadFile(s.path(key) + metaSuffix)
	if goerrors.Is(err, os.ErrNotExist) {
		return nil, errors.NotFound(errors.CodeArtifactNotFound, "artifact.fetch", fmt.Errorf("artifact %q", key))
	}
	if err != nil {
		return nil, errors.Storage("artifact.fetch", err)
	}

	meta, err := serialize.Decode[domain.Artifact](raw)
	if err != nil {
		return nil, errors.Storage("artifact.fetch", fmt.Errorf("metadata of %q: %w", key, err))
	}
	return meta, nil
}

func (s *FileStore) remove(key string) error {
	var errs []error
	for _, p := range []string{s.path(key), s.path(key) + metaSuffix} {
		if err := s.fs.Remove(p); err != nil && !goerrors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return goerrors.Join(errs...)
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.opts.Dir, key)
}
