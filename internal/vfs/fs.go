package vfs

import (
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/shared/paths"
)

// FS implements the filesystem operations over an injected Store.
// It is safe for concurrent use; it keeps no state between calls other than
// the timestamp clock.
type FS struct {
	entries *facade
	logger  *zap.Logger
}

// Option configures an FS.
type Option func(*FS)

// WithLogger sets the logger used for mutation and walk diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(fs *FS) {
		if logger != nil {
			fs.logger = logger
		}
	}
}

// WithClock replaces the wall clock used to stamp UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(fs *FS) {
		if now != nil {
			fs.entries.clock.now = now
		}
	}
}

// New creates a filesystem backed by store.
func New(store Store, opts ...Option) *FS {
	fs := &FS{
		entries: &facade{
			store: store,
			clock: &clock{now: time.Now},
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

func normalize(p string) (string, error) {
	n, err := paths.Normalize(p)
	if err != nil {
		return "", invalidPath(p, err)
	}
	return n, nil
}

func rootEntry() Entry {
	return Entry{Path: paths.Root, Name: paths.Root, IsDir: true}
}
