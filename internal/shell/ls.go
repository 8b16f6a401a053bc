package shell

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GriffinCanCode/docfs/internal/vfs"
)

type lsOptions struct {
	all       bool
	long      bool
	recursive bool
	dirOnly   bool
	human     bool
}

// parseLsArgs reads combined short flags up to the first operand.
// Unknown flag letters are ignored.
func parseLsArgs(args []string) (lsOptions, string) {
	var opts lsOptions
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") || len(arg) == 1 {
			return opts, arg
		}
		for _, ch := range arg[1:] {
			switch ch {
			case 'a':
				opts.all = true
			case 'l':
				opts.long = true
			case 'R':
				opts.recursive = true
			case 'd':
				opts.dirOnly = true
			case 'h':
				opts.human = true
			}
		}
	}
	return opts, ""
}

func runLs(ctx context.Context, s *Session, args []string, out io.Writer) error {
	opts, target := parseLsArgs(args)
	p := s.cwd
	if target != "" {
		var err error
		if p, err = s.resolve(target); err != nil {
			return err
		}
	}

	switch {
	case opts.dirOnly:
		e, err := s.fs.Stat(ctx, p)
		if err != nil {
			return err
		}
		printEntry(out, e, opts)
		return nil

	case opts.recursive:
		return s.fs.Walk(ctx, p, func(e vfs.Entry) error {
			if hidden(e, opts) {
				if e.IsDir {
					return vfs.SkipDir
				}
				return nil
			}
			printEntry(out, e, opts)
			return nil
		})

	default:
		entries, err := s.fs.List(ctx, p)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if !hidden(e, opts) {
				printEntry(out, e, opts)
			}
		}
		return nil
	}
}

func hidden(e vfs.Entry, opts lsOptions) bool {
	return !opts.all && strings.HasPrefix(e.Name, ".")
}

func printEntry(out io.Writer, e vfs.Entry, opts lsOptions) {
	if !opts.long {
		if e.IsDir && e.Path != "/" {
			fmt.Fprintf(out, "%s/\n", e.Path)
			return
		}
		fmt.Fprintln(out, e.Path)
		return
	}

	kind := '-'
	if e.IsDir {
		kind = 'd'
	}
	if opts.human {
		value, unit := humanSize(float64(e.Size()))
		fmt.Fprintf(out, "%c %6.1f%s %s\n", kind, value, unit, e.Path)
		return
	}
	fmt.Fprintf(out, "%c %8d %s\n", kind, e.Size(), e.Path)
}

var sizeUnits = []string{"B", "K", "M", "G", "T", "P"}

func humanSize(bytes float64) (float64, string) {
	idx := 0
	for bytes >= 1024 && idx < len(sizeUnits)-1 {
		bytes /= 1024
		idx++
	}
	return bytes, sizeUnits[idx]
}
