package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/fetch"
	"github.com/GriffinCanCode/docfs/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/docfs/internal/shared/paths"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// DefaultPrompt is printed before every line read by Run.
const DefaultPrompt = "docfs> "

var (
	// ErrUsage wraps every argument error; the message names the expected form.
	ErrUsage = errors.New("usage")
	// ErrUnsupportedPipe is returned for pipelines other than curl | write_file.
	ErrUnsupportedPipe = errors.New("piping is currently supported as 'curl ... | write_file <path>'")
	// ErrUnsupportedRedirect is returned when '>' follows anything but curl.
	ErrUnsupportedRedirect = errors.New("piping with '>' is supported only for curl")
	// ErrNoFetcher is returned by curl when the session has no HTTP client.
	ErrNoFetcher = errors.New("curl is not available in this session")
)

// Control tells the caller whether to keep reading lines.
type Control int

const (
	Continue Control = iota
	Exit
)

// Session holds the state of one interactive shell.
type Session struct {
	fs      *vfs.FS
	fetcher *fetch.Client
	cwd     string

	prompt  string
	banner  string
	errorf  func(format string, a ...interface{}) string
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// Option configures a Session.
type Option func(*Session)

// WithFetcher enables curl.
func WithFetcher(c *fetch.Client) Option {
	return func(s *Session) {
		s.fetcher = c
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records every dispatched verb.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithPrompt replaces the prompt printed by Run.
func WithPrompt(prompt string) Option {
	return func(s *Session) {
		s.prompt = prompt
	}
}

// WithBanner sets a greeting printed once when Run starts.
func WithBanner(banner string) Option {
	return func(s *Session) {
		s.banner = banner
	}
}

// WithErrorFormatter styles the "Error: ..." lines printed by Run.
func WithErrorFormatter(f func(format string, a ...interface{}) string) Option {
	return func(s *Session) {
		if f != nil {
			s.errorf = f
		}
	}
}

// WithCwd starts the session somewhere other than the root.
func WithCwd(cwd string) Option {
	return func(s *Session) {
		if p, err := paths.Normalize(cwd); err == nil {
			s.cwd = p
		}
	}
}

// NewSession creates a session rooted at "/".
func NewSession(fs *vfs.FS, opts ...Option) *Session {
	s := &Session{
		fs:     fs,
		cwd:    paths.Root,
		prompt: DefaultPrompt,
		errorf: fmt.Sprintf,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cwd returns the current directory.
func (s *Session) Cwd() string {
	return s.cwd
}

// Run reads lines from in until EOF or exit, writing all output to out.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	if s.banner != "" {
		fmt.Fprintln(out, s.banner)
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, s.prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		ctl, err := s.Execute(ctx, scanner.Text(), out)
		if err != nil {
			fmt.Fprintln(out, s.errorf("Error: %v", err))
		}
		if ctl == Exit {
			return nil
		}
	}
}

// Execute runs a single line.
func (s *Session) Execute(ctx context.Context, line string, out io.Writer) (Control, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Continue, nil
	}

	if left, right, ok := strings.Cut(line, "|"); ok {
		return Continue, s.pipe(ctx, left, right, out)
	}
	if left, right, ok := strings.Cut(line, ">"); ok {
		return Continue, s.redirect(ctx, left, strings.TrimSpace(right), out)
	}

	fields := strings.Fields(line)
	return s.dispatch(ctx, fields[0], fields[1:], out)
}

func (s *Session) dispatch(ctx context.Context, verb string, args []string, out io.Writer) (Control, error) {
	switch verb {
	case "exit", "quit":
		return Exit, nil
	case "help":
		printHelp(out)
		return Continue, nil
	}

	cmd, ok := commands[verb]
	if !ok {
		printHelp(out)
		return Continue, nil
	}

	err := cmd.run(ctx, s, args, out)
	if err == ErrUsage {
		err = usage(cmd.usage)
	}
	s.record(verb, err)
	return Continue, err
}

func (s *Session) pipe(ctx context.Context, left, right string, out io.Writer) error {
	src := strings.Fields(left)
	if len(src) == 0 || src[0] != "curl" {
		return ErrUnsupportedPipe
	}
	sink := strings.Fields(right)
	if len(sink) != 2 || sink[0] != "write_file" {
		return ErrUnsupportedPipe
	}
	target, err := s.resolve(sink[1])
	if err != nil {
		return err
	}
	return s.curlInto(ctx, src[1:], target, out)
}

func (s *Session) redirect(ctx context.Context, left, right string, out io.Writer) error {
	src := strings.Fields(left)
	if len(src) == 0 || src[0] != "curl" {
		return ErrUnsupportedRedirect
	}
	if right == "" {
		return usage(curlUsage)
	}
	target, err := s.resolve(right)
	if err != nil {
		return err
	}
	return s.curlInto(ctx, src[1:], target, out)
}

// resolve turns a command argument into an absolute path against the cwd.
func (s *Session) resolve(arg string) (string, error) {
	p, err := paths.ResolveRelative(s.cwd, arg)
	if err != nil {
		return "", &vfs.Error{Kind: vfs.KindInvalidPath, Path: arg, Err: err}
	}
	return p, nil
}

func (s *Session) record(verb string, err error) {
	if s.metrics != nil {
		s.metrics.RecordShellCommand(verb, err)
	}
	if err != nil {
		s.logger.Debug("shell command failed", zap.String("verb", verb), zap.Error(err))
	}
}

func usage(form string) error {
	return fmt.Errorf("%w: %s", ErrUsage, form)
}
