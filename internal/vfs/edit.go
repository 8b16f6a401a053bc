package vfs

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
)

const diffHeader = "--- original\n+++ updated\n"

// Edit substitutes old with replacement in the file at path and returns a line diff
// of the change. An empty old replaces the whole file. Without replaceAll
// only the first occurrence is replaced. When nothing changes the diff is
// empty and the file is not written.
func (fs *FS) Edit(ctx context.Context, path, old, replacement string, replaceAll bool) (string, error) {
	p, err := normalize(path)
	if err != nil {
		return "", err
	}
	e, err := fs.requireFile(ctx, p)
	if err != nil {
		return "", err
	}

	before := e.Text()
	var after string
	switch {
	case old == "":
		after = replacement
	case replaceAll:
		after = strings.ReplaceAll(before, old, replacement)
	default:
		after = strings.Replace(before, old, replacement, 1)
	}
	if after == before {
		return "", nil
	}

	e.Content = &after
	if err := fs.entries.persist(ctx, &e); err != nil {
		return "", err
	}
	fs.logger.Debug("edit file",
		zap.String("path", p),
		zap.Bool("replace_all", replaceAll),
		zap.Int("bytes", len(after)),
	)
	return UnifiedDiff(before, after), nil
}

// UnifiedDiff renders every line of before and after with a "-", "+" or " "
// prefix under an original/updated header. Every output line ends in a
// newline. Identical inputs produce an empty string.
func UnifiedDiff(before, after string) string {
	if before == after {
		return ""
	}
	a, b := splitKeepNewline(before), splitKeepNewline(after)

	var sb strings.Builder
	sb.WriteString(diffHeader)
	write := func(prefix byte, lines []string) {
		for _, line := range lines {
			sb.WriteByte(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}

	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		switch op.Tag {
		case 'e':
			write(' ', a[op.I1:op.I2])
		case 'd':
			write('-', a[op.I1:op.I2])
		case 'i':
			write('+', b[op.J1:op.J2])
		case 'r':
			write('-', a[op.I1:op.I2])
			write('+', b[op.J1:op.J2])
		}
	}
	return sb.String()
}

func splitKeepNewline(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
