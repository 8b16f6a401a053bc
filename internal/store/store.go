// Package store opens the configured entry store backend.
package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docfs/internal/store/memory"
	"github.com/GriffinCanCode/docfs/internal/store/postgres"
	"github.com/GriffinCanCode/docfs/internal/store/snapshot"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// Backend is an opened store. Close releases files or connections held by
// the backend.
type Backend struct {
	vfs.Store
	Name  string
	close func() error
}

// Close releases the backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open creates the backend named by cfg.Backend. When metrics is non-nil
// every store call is instrumented.
func Open(ctx context.Context, cfg config.StoreConfig, metrics *monitoring.Metrics, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		s       vfs.Store
		closeFn func() error
	)
	switch cfg.Backend {
	case config.BackendMemory, "":
		s = memory.New()

	case config.BackendSnapshot:
		snap, err := snapshot.Open(cfg.SnapshotPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		s, closeFn = snap, snap.Close

	case config.BackendPostgres:
		table := cfg.Table
		if table == "" {
			table = postgres.DefaultTable
		}
		pg, err := postgres.New(ctx, cfg.PostgresURL, table, logger)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		s, closeFn = pg, pg.Close

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}

	name := cfg.Backend
	if name == "" {
		name = config.BackendMemory
	}
	logger.Info("store opened", zap.String("backend", name))

	return &Backend{
		Store: monitoring.InstrumentStore(s, metrics, name),
		Name:  name,
		close: closeFn,
	}, nil
}
