package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/docfs/internal/hostfs"
)

func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <host-dir> <dest>",
		Short: "Copy a host directory into the virtual filesystem",
		Long: `Copy a host directory tree into the virtual filesystem below dest.

Directories are created as needed. Text files are stored as-is; binary files
are skipped and counted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, backend, err := openFS(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			report, err := hostfs.New(fs, logger.Named("hostfs")).Import(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printReport(cmd, "Imported", report)
			return nil
		},
	}
}

func NewExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <src> <host-dir>",
		Short: "Write a virtual subtree to a host directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, backend, err := openFS(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			report, err := hostfs.New(fs, logger.Named("hostfs")).Export(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printReport(cmd, "Exported", report)
			return nil
		},
	}
}

func printReport(cmd *cobra.Command, verb string, r hostfs.Report) {
	msg := fmt.Sprintf("%s %d directories and %d files", verb, r.Dirs, r.Files)
	if r.Skipped > 0 {
		msg += fmt.Sprintf(" (%d skipped)", r.Skipped)
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.GreenString(msg))
}
