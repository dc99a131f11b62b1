// Package optimize implements the per-entry optimization strategies.
//
// Every strategy is pure with respect to its input: the caller's slice is
// never modified and, on failure, is returned as-is together with an
// *errors.OptimizationError describing what went wrong.
package optimize

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/pkg/errors"
	"github.com/iamNilotpal/epubpress/pkg/pool"
)

// Options tunes resource limits of the optimizer.
type Options struct {
	// MaxPixels rejects images whose decoded size would exceed this many
	// pixels. Such entries keep their original bytes.
	//
	// Default: 40 megapixels
	MaxPixels int

	// BufferSize is the initial capacity of pooled encode buffers.
	//
	// Default: 256KB
	BufferSize int
}

// Returns the recommended optimizer limits.
func DefaultOptions() Options {
	return Options{MaxPixels: 40_000_000, BufferSize: 256 * 1024}
}

// Optimizer dispatches entries to the strategy of their category.
// It is safe for concurrent use.
type Optimizer struct {
	opts    Options
	log     *zap.SugaredLogger
	buffers *pool.BufferPool
}

// Creates an optimizer. Zero option fields take their defaults.
func New(log *zap.SugaredLogger, opts Options) *Optimizer {
	def := DefaultOptions()
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = def.MaxPixels
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = def.BufferSize
	}

	return &Optimizer{
		opts:    opts,
		log:     log.With("component", "optimizer"),
		buffers: pool.NewBufferPool(opts.BufferSize),
	}
}

// Optimize applies the strategy selected by profile.Category to data.
// The returned bytes are always safe to write: when err is non-nil they are
// data itself.
func (o *Optimizer) Optimize(name string, data []byte, profile domain.Profile) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = data
			err = errors.NewOptimizationError(name, profile.Category.String(), "panic", fmt.Errorf("%v", r))
		}
	}()

	if len(data) == 0 {
		return data, nil
	}

	switch profile.Category {
	case domain.CategoryText:
		return o.optimizeText(name, data, profile.Text)
	case domain.CategoryImage:
		return o.optimizeImage(name, data, profile.Image)
	case domain.CategoryFont:
		return o.optimizeFont(name, data, profile.Font)
	default:
		return data, nil
	}
}

func (o *Optimizer) optimizeFont(name string, data []byte, opts *domain.FontOptions) ([]byte, error) {
	if opts != nil && opts.Subset != domain.SubsetNone {
		o.log.Debugw("font subsetting not available, keeping font", "entry", name, "policy", opts.Subset)
	}
	return data, nil
}

func fail(name string, category domain.Category, reason string, data []byte, err error) ([]byte, error) {
	return data, errors.NewOptimizationError(name, category.String(), reason, err)
}
