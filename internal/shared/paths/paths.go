package paths

import (
	"errors"
	"strings"
)

// Root is the canonical path of the implicit root directory.
const Root = "/"

// Separator is the only path separator recognized by the virtual filesystem.
const Separator = "/"

// ErrInvalidPath is returned for input that has no canonical form.
var ErrInvalidPath = errors.New("invalid path")

// Normalize returns the canonical form of input.
// Empty and "." segments are dropped, ".." pops the previous segment and is
// clamped at the root.
func Normalize(input string) (string, error) {
	if input == "" {
		return "", ErrInvalidPath
	}

	segments := make([]string, 0, strings.Count(input, Separator)+1)
	for _, seg := range strings.Split(input, Separator) {
		switch seg {
		case "", ".":
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}

	if len(segments) == 0 {
		return Root, nil
	}
	return Separator + strings.Join(segments, Separator), nil
}

// IsRoot reports whether p is the root path.
func IsRoot(p string) bool {
	return p == Root
}

// Parent returns the containing directory of a canonical path.
// The root has no parent.
func Parent(p string) (string, bool) {
	if p == Root || p == "" {
		return "", false
	}
	trimmed := strings.TrimSuffix(p, Separator)
	idx := strings.LastIndex(trimmed, Separator)
	if idx <= 0 {
		return Root, true
	}
	return trimmed[:idx], true
}

// Leaf returns the last segment of a canonical path, or "/" for the root.
func Leaf(p string) string {
	if p == Root {
		return Root
	}
	trimmed := strings.TrimSuffix(p, Separator)
	return trimmed[strings.LastIndex(trimmed, Separator)+1:]
}

// ResolveRelative resolves target against base.
// Absolute targets ignore base; relative ones are appended to it.
func ResolveRelative(base, target string) (string, error) {
	if target == "" {
		return "", ErrInvalidPath
	}
	if strings.HasPrefix(target, Separator) {
		return Normalize(target)
	}

	combined := base
	if !strings.HasSuffix(combined, Separator) {
		combined += Separator
	}
	return Normalize(combined + target)
}

// Join appends a single child name to a canonical directory path.
func Join(dir, name string) string {
	if dir == Root {
		return Root + name
	}
	return dir + Separator + name
}

// Ancestors returns every proper ancestor of a canonical path, nearest to
// the root first, excluding the root itself.
//
//	Ancestors("/a/b/c") // ["/a", "/a/b"]
func Ancestors(p string) []string {
	if p == Root {
		return nil
	}
	segments := strings.Split(strings.TrimPrefix(p, Separator), Separator)
	out := make([]string, 0, len(segments)-1)
	current := ""
	for _, seg := range segments[:len(segments)-1] {
		current += Separator + seg
		out = append(out, current)
	}
	return out
}
