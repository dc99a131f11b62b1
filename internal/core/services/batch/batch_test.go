package batch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/epubpress/internal/adapters/archive"
	"github.com/iamNilotpal/epubpress/internal/adapters/artifact"
	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/ports"
	"github.com/iamNilotpal/epubpress/internal/core/services/optimize"
	"github.com/iamNilotpal/epubpress/internal/core/services/pipeline"
	"github.com/iamNilotpal/epubpress/internal/core/services/profile"
	"github.com/iamNilotpal/epubpress/internal/epubtest"
	"github.com/iamNilotpal/epubpress/pkg/errors"
	"github.com/iamNilotpal/epubpress/pkg/logger"
)

func newPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()

	codec, err := archive.NewZipCodec(archive.DefaultOptions())
	require.NoError(t, err)
	return pipeline.New(
		codec, optimize.New(logger.Nop(), optimize.DefaultOptions()), profile.Default(),
		pipeline.Options{MaxInputSize: 50 << 20}, logger.Nop(),
	)
}

func books(t *testing.T, names ...string) []domain.BatchFile {
	book := epubtest.Book(t)
	files := make([]domain.BatchFile, len(names))
	for i, n := range names {
		files[i] = domain.BatchFile{Name: n, Data: book}
	}
	return files
}

func TestRunKeepsOrderAndIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store, err := artifact.NewFileStore(afero.NewMemMapFs(), artifact.Options{Dir: "/out"}, logger.Nop())
	require.NoError(t, err)

	files := books(t, "a.epub", "b.epub", "c.epub", "d.epub", "e.epub")
	files[2].Data = []byte("this is not an archive")

	c := New(newPipeline(t), store, Options{Workers: 3}, logger.Nop())
	res, err := c.Run(ctx, files, domain.LevelMedium)
	require.NoError(t, err)

	require.Len(t, res.Items, 5)
	assert.Equal(t, 4, res.SuccessCount)
	assert.Equal(t, 1, res.ErrorCount)
	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, domain.LevelMedium, res.Level)

	for i, item := range res.Items {
		assert.Equal(t, files[i].Name, item.OriginalName)
		assert.Nil(t, res.Outputs[i])

		if i == 2 {
			assert.Equal(t, domain.BatchError, item.Status)
			require.NotNil(t, item.Error)
			assert.Equal(t, errors.CodeInvalidFormat, item.Error.Code)
			assert.Empty(t, item.Artifact)
			continue
		}

		assert.Equal(t, domain.BatchSuccess, item.Status)
		assert.Nil(t, item.Error)
		assert.Equal(t, domain.OutputName(files[i].Name), item.CompressedName)
		assert.Positive(t, item.BytesSaved)

		art, data, err := store.Fetch(ctx, item.Artifact)
		require.NoError(t, err)
		assert.Equal(t, item.CompressedName, art.Filename)
		assert.Equal(t, item.CompressedSize, int64(len(data)))
	}
}

func TestRunWithoutStoreReturnsOutputs(t *testing.T) {
	c := New(newPipeline(t), nil, Options{}, logger.Nop())

	res, err := c.Run(context.Background(), books(t, "x.epub"), domain.LevelHigh)
	require.NoError(t, err)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, epubtest.Names(t, epubtest.Book(t)), epubtest.Names(t, res.Outputs[0]))
	assert.Empty(t, res.Items[0].Artifact)
}

func TestRunRejectsBatch(t *testing.T) {
	c := New(newPipeline(t), nil, Options{MaxFiles: 2}, logger.Nop())

	tests := []struct {
		name  string
		files []domain.BatchFile
		level domain.Level
		code  string
	}{
		{"empty", nil, domain.LevelMedium, errors.CodeNoFile},
		{"too many", books(t, "a", "b", "c"), domain.LevelMedium, errors.CodeTooManyFiles},
		{"bad level", books(t, "a"), domain.Level("max"), errors.CodeInvalidLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Run(context.Background(), tt.files, tt.level)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

// slowRunner records how many runs overlap.
type slowRunner struct {
	running atomic.Int32
	peak    atomic.Int32
}

func (r *slowRunner) Run(
	context.Context, string, []byte, domain.Level, ports.ProgressTracker,
) (*pipeline.Outcome, error) {
	n := r.running.Add(1)
	defer r.running.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	return &pipeline.Outcome{Archive: []byte("PK")}, nil
}

func TestRunBoundsParallelism(t *testing.T) {
	runner := &slowRunner{}
	c := New(runner, nil, Options{Workers: 2}, logger.Nop())

	res, err := c.Run(context.Background(), books(t, "1", "2", "3", "4", "5", "6"), domain.LevelLow)
	require.NoError(t, err)
	assert.Equal(t, 6, res.SuccessCount)
	assert.LessOrEqual(t, runner.peak.Load(), int32(2))
}
