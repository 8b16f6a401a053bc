package shell

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type command struct {
	usage string
	run   func(ctx context.Context, s *Session, args []string, out io.Writer) error
}

const curlUsage = "curl [options] <url>"

var commands = map[string]command{
	"ls":         {"ls [options] [path]", runLs},
	"cat":        {"cat <path>", runCat},
	"tail":       {"tail [n] <path>", runTail},
	"read":       {"read <path> <offset> <limit>", runRead},
	"nl":         {"nl <path> [start]", runNl},
	"grep":       {"grep [-r|--recursive] <pattern> <path>", runGrep},
	"glob":       {"glob <pattern>", runGlob},
	"touch":      {"touch <path>", runTouch},
	"edit":       {"edit <path> <old> <new> [replace_all]", runEdit},
	"mkdir":      {"mkdir [-p] <path>", runMkdir},
	"write_file": {"write_file <path> <content>", runWriteFile},
	"cp":         {"cp <src> <dest>", runCp},
	"curl":       {curlUsage, runCurl},
	"pwd":        {"pwd", runPwd},
	"cd":         {"cd <path>", runCd},
}

var helpText = `Commands:
  ls [options] [path]
     options: -l (long), -a (all), -R (recursive), -d (dir only), -h (human sizes)
  cat <path>
  tail [n] <path>
  read <path> <offset> <limit>
  nl <path> [start]
  grep [-r|--recursive] <pattern> <path>
  glob <pattern>
  touch <path>
  edit <path> <old> <new> [replace_all]
  mkdir [-p] <path>
  write_file <path> <content>
  cp <src> <dest>
  curl [options] <url>
     options: -o <file>, -O, -L, -H <h:v>, -d <data>, -X <method>, --text, > <file>
     pipeline: curl <url> | write_file <path>
  pwd
  cd <path>
  help
  exit | quit
`

func printHelp(out io.Writer) {
	io.WriteString(out, helpText)
}

func printLines(out io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
}

func runCat(ctx context.Context, s *Session, args []string, out io.Writer) error {
	if len(args) != 1 {
		return ErrUsage
	}
	p, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	content, err := s.fs.Cat(ctx, p)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, content)
	return err
}

func runTail(ctx context.Context, s *Session, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	n, target := 10, args[0]
	if v, err := strconv.ParseUint(args[0], 10, 31); err == nil {
		if len(args) < 2 {
			return ErrUsage
		}
		n, target = int(v), args[1]
	}
	p, err := s.resolve(target)
	if err != nil {
		return err
	}
	lines, err := s.fs.Tail(ctx, p, n)
	if err != nil {
		return err
	}
	printLines(out, lines)
	return nil
}

func runRead(ctx context.Context, s *Session, args []string, out io.Writer) error {
	if len(args) != 3 {
		return ErrUsage
	}
	offset, err := strconv.ParseUint(args[1], 10, 31)
	if err != nil {
		return ErrUsage
	}
	limit, err := strconv.ParseUint(args[2], 10, 31)
	if err != nil {
		return ErrUsage
	}
	p, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	lines, err := s.fs.Read(ctx, p, int(offset), int(limit))
	if err != nil {
		return err
	}
	printLines(out, lines)
	return nil
}

func runNl(ctx context.Context, s *Session, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}
	start := 1
	if len(args) > 1 {
		if v, err := strconv.ParseUint(args[1], 10, 31); err == nil {
			start = int(v)
		}
	}
	p, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	lines, err := s.fs.NumberedLines(ctx, p, start)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintf(out, "%4d  %s\n", l.Number, l.Line)
	}
	return nil
}

func runGrep(ctx context.Context, s *Session, args []string, out io.Writer) error {
	recursive := false
	var rest []string
	for _, a := range args {
		switch a {
		case "-r", "--recursive":
			recursive = true
		default:
			rest = append(rest, a)
		}
	}
	if len(rest) != 2 {
		return ErrUsage
	}
	p, err := s.resolve(rest[1])
	if err != nil {
		return err
	}
	matches, err := s.fs.Search(ctx, rest[0], p, recursive)
	if err != nil {
		return err
	}
	for _, m := range matches {
		fmt.Fprintf(out, "%s:%d: %s\n", m.Path, m.LineNumber, m.Line)
	}
	return nil
}

func runGlob(ctx context.Context, s *Session, args []string, out io.Writer) error {
	if len(args) != 1 {
		return ErrUsage
	}
	pattern, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	matches, err := s.fs.Glob(ctx, pattern)
	if err != nil {
		return err
	}
	printLines(out, matches)
	return nil
}

func runTouch(ctx context.Context, s *Session, args []string, _ io.Writer) error {
	if len(args) != 1 {
		return ErrUsage
	}
	p, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	return s.fs.Touch(ctx, p)
}

func runEdit(ctx context.Context, s *Session, args []string, out io.Writer) error {
	if len(args) < 3 {
		return ErrUsage
	}
	p, err := s.resolve(args[0])
	if err != nil {
		return err
	}

	parts, replaceAll := args[2:], false
	if len(args) >= 4 && isReplaceAllFlag(args[len(args)-1]) {
		parts, replaceAll = args[2:len(args)-1], true
	}

	diff, err := s.fs.Edit(ctx, p, unquote(args[1]), unquote(strings.Join(parts, " ")), replaceAll)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, diff)
	return err
}

func isReplaceAllFlag(arg string) bool {
	switch arg {
	case "true", "1", "yes", "-a", "--all":
		return true
	}
	return false
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func runMkdir(ctx context.Context, s *Session, args []string, _ io.Writer) error {
	recursive := false
	var targets []string
	for _, a := range args {
		if a == "-p" {
			recursive = true
			continue
		}
		targets = append(targets, a)
	}
	if len(targets) != 1 {
		return ErrUsage
	}
	p, err := s.resolve(targets[0])
	if err != nil {
		return err
	}
	return s.fs.Mkdir(ctx, p, recursive)
}

func runWriteFile(ctx context.Context, s *Session, args []string, _ io.Writer) error {
	if len(args) < 2 {
		return ErrUsage
	}
	p, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	return s.fs.WriteFile(ctx, p, strings.Join(args[1:], " "))
}

func runCp(ctx context.Context, s *Session, args []string, _ io.Writer) error {
	if len(args) != 2 {
		return ErrUsage
	}
	src, err := s.resolve(args[0])
	if err != nil {
		return err
	}
	dest, err := s.resolve(args[1])
	if err != nil {
		return err
	}
	return s.fs.Copy(ctx, src, dest)
}

func runPwd(_ context.Context, s *Session, args []string, out io.Writer) error {
	cwd, err := s.fs.CurrentPath(s.cwd)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cwd)
	return nil
}

func runCd(ctx context.Context, s *Session, args []string, _ io.Writer) error {
	if len(args) != 1 {
		return ErrUsage
	}
	cwd, err := s.fs.ChangeDirectory(ctx, s.cwd, args[0])
	if err != nil {
		return err
	}
	s.cwd = cwd
	return nil
}
