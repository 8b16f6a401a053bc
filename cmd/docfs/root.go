package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/docfs/internal/infrastructure/config"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/logging"
	"github.com/GriffinCanCode/docfs/internal/store"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// Global flag values
var (
	configPath   string
	backendFlag  string
	snapshotFlag string
	devMode      bool
	noColor      bool

	cfg    *config.Config
	logger *logging.Logger
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docfs",
		Short: "A virtual filesystem over a document store",
		Long: `docfs stores a file tree as flat, path-keyed entries and lets you work with
it through familiar commands: ls, cat, tail, grep, glob, edit, mkdir, cp and more.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			return loadConfig()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (.toml, .yaml); defaults to $"+config.FileEnv)
	flags.StringVar(&backendFlag, "backend", "", "store backend: memory, snapshot or postgres")
	flags.StringVar(&snapshotFlag, "snapshot", "", "snapshot file for the snapshot backend")
	flags.BoolVar(&devMode, "dev", false, "development logging (debug level, console encoding)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		NewShellCmd(),
		NewExecCmd(),
		NewServeCmd(),
		NewImportCmd(),
		NewExportCmd(),
		NewVersionCmd(),
	)
	return cmd
}

func loadConfig() error {
	path := configPath
	if path == "" {
		path = os.Getenv(config.FileEnv)
	}
	var err error
	cfg, err = config.LoadLayers(path)
	if err != nil {
		return err
	}

	// Flags override file and environment
	if backendFlag != "" {
		cfg.Store.Backend = backendFlag
	}
	if snapshotFlag != "" {
		cfg.Store.SnapshotPath = snapshotFlag
		if backendFlag == "" {
			cfg.Store.Backend = config.BackendSnapshot
		}
	}
	if devMode {
		cfg.Logging.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err = logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	return nil
}

// openFS opens the configured store and a filesystem over it. The caller
// closes the returned backend.
func openFS(ctx context.Context) (*vfs.FS, *store.Backend, error) {
	backend, err := store.Open(ctx, cfg.Store, nil, logger.Named("store"))
	if err != nil {
		return nil, nil, err
	}
	return vfs.New(backend, vfs.WithLogger(logger.Named("vfs"))), backend, nil
}
