package vfs

import (
	"context"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/docfs/internal/shared/paths"
)

func (fs *FS) requireFile(ctx context.Context, p string) (Entry, error) {
	e, ok, err := fs.entries.getEntry(ctx, p)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		if paths.IsRoot(p) {
			return Entry{}, notAFile(p)
		}
		return Entry{}, notFound(p)
	}
	if e.IsDir {
		return Entry{}, notAFile(p)
	}
	return e, nil
}

// splitLines splits content on "\n". A trailing newline does not start an
// extra empty line, and empty content has no lines.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

func (fs *FS) lines(ctx context.Context, path string) ([]string, error) {
	content, err := fs.Cat(ctx, path)
	if err != nil {
		return nil, err
	}
	return splitLines(content), nil
}

// Cat returns the raw content of a file.
func (fs *FS) Cat(ctx context.Context, path string) (string, error) {
	p, err := normalize(path)
	if err != nil {
		return "", err
	}
	e, err := fs.requireFile(ctx, p)
	if err != nil {
		return "", err
	}
	return e.Text(), nil
}

// Tail returns the last n lines of a file, or all of them when it is shorter.
func (fs *FS) Tail(ctx context.Context, path string, n int) ([]string, error) {
	lines, err := fs.lines(ctx, path)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	start := len(lines) - n
	if start < 0 {
		start = 0
	}
	return append([]string{}, lines[start:]...), nil
}

// Read returns lines [offset, offset+limit) clamped to the file.
func (fs *FS) Read(ctx context.Context, path string, offset, limit int) ([]string, error) {
	lines, err := fs.lines(ctx, path)
	if err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || offset >= len(lines) {
		return []string{}, nil
	}
	end := len(lines)
	if limit < end-offset {
		end = offset + limit
	}
	return append([]string{}, lines[offset:end]...), nil
}

// NumberedLines pairs every line with a sequential number starting at startAt.
func (fs *FS) NumberedLines(ctx context.Context, path string, startAt int) ([]NumberedLine, error) {
	lines, err := fs.lines(ctx, path)
	if err != nil {
		return nil, err
	}
	out := make([]NumberedLine, len(lines))
	for i, line := range lines {
		out[i] = NumberedLine{Number: startAt + i, Line: line}
	}
	return out, nil
}

// Search compiles pattern and runs SearchRegexp. A pattern that does not
// compile is an InvalidPath error.
func (fs *FS) Search(ctx context.Context, pattern, path string, recursive bool) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, invalidPath(pattern, err)
	}
	return fs.SearchRegexp(ctx, re, path, recursive)
}

// SearchRegexp reports every line matching re. A file path is scanned
// directly. For a directory, only immediate file children are scanned
// unless recursive is set, in which case every descendant file is.
func (fs *FS) SearchRegexp(ctx context.Context, re *regexp.Regexp, path string, recursive bool) ([]Match, error) {
	p, err := normalize(path)
	if err != nil {
		return nil, err
	}
	root, err := fs.stat(ctx, p)
	if err != nil {
		return nil, err
	}

	matches := []Match{}
	if !root.IsDir {
		return appendMatches(matches, re, root), nil
	}

	if !recursive {
		children, err := fs.entries.listChildren(ctx, p)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if !child.IsDir {
				matches = appendMatches(matches, re, child)
			}
		}
		return matches, nil
	}

	err = fs.Walk(ctx, p, func(e Entry) error {
		if !e.IsDir {
			matches = appendMatches(matches, re, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func appendMatches(dst []Match, re *regexp.Regexp, e Entry) []Match {
	for i, line := range splitLines(e.Text()) {
		if re.MatchString(line) {
			dst = append(dst, Match{Path: e.Path, LineNumber: i + 1, Line: line})
		}
	}
	return dst
}
