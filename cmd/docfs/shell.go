package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/GriffinCanCode/docfs/internal/fetch"
	"github.com/GriffinCanCode/docfs/internal/shell"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

func NewShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shell",
		Long: `Start an interactive shell over the configured store.

Type 'help' for the list of commands. Ctrl-D or 'exit' ends the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, backend, err := openFS(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			interactive := term.IsTerminal(int(os.Stdin.Fd()))
			opts := sessionOptions(interactive)
			if interactive {
				opts = append(opts, shell.WithBanner(fmt.Sprintf(
					"docfs interactive shell (%s store). Type 'help' for commands. Ctrl-D to exit.\n", backend.Name)))
			} else {
				opts = append(opts, shell.WithPrompt(""))
			}
			return newSession(fs, opts...).Run(cmd.Context(), os.Stdin, cmd.OutOrStdout())
		},
	}
}

func NewExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <command> [args...]",
		Short: "Run a single shell line",
		Example: `  docfs exec mkdir -p /docs
  docfs exec "curl -L https://example.com | write_file /docs/index.html"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, backend, err := openFS(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			_, err = newSession(fs, sessionOptions(false)...).
				Execute(cmd.Context(), strings.Join(args, " "), cmd.OutOrStdout())
			return err
		},
	}
	// Everything after the verb belongs to the shell line.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func sessionOptions(interactive bool) []shell.Option {
	opts := []shell.Option{
		shell.WithFetcher(fetch.NewClient(cfg.Fetch, fetch.WithLogger(logger.Named("fetch")))),
		shell.WithLogger(logger.Named("shell")),
	}
	if interactive {
		opts = append(opts,
			shell.WithPrompt(color.New(color.FgCyan, color.Bold).Sprint(shell.DefaultPrompt)),
			shell.WithErrorFormatter(color.New(color.FgRed).SprintfFunc()),
		)
	}
	return opts
}

func newSession(fs *vfs.FS, opts ...shell.Option) *shell.Session {
	return shell.NewSession(fs, opts...)
}
