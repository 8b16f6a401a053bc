package vfs

import (
	"context"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GriffinCanCode/docfs/internal/shared/paths"
)

// Glob returns the paths of all entries matching pattern, most recently
// updated first with ties broken by path. The pattern is matched against
// both the absolute and the root-relative form of every path, so "*.md" and
// "/*.md" are equivalent. "/" is only crossed by "**".
func (fs *FS) Glob(ctx context.Context, pattern string) ([]string, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, invalidPath(pattern, nil)
	}
	absolute, err := normalize(pattern)
	if err != nil {
		return nil, err
	}

	candidates := []string{strings.TrimPrefix(absolute, paths.Separator)}
	if candidates[0] != absolute {
		candidates = append(candidates, absolute)
	}
	for _, c := range candidates {
		if !doublestar.ValidatePattern(c) {
			return nil, invalidPath(pattern, doublestar.ErrBadPattern)
		}
	}

	entries, err := fs.entries.scanAll(ctx)
	if err != nil {
		return nil, err
	}

	var hits []Entry
	for _, e := range entries {
		if globMatch(candidates, e.Path) {
			hits = append(hits, e)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if !hits[i].UpdatedAt.Equal(hits[j].UpdatedAt) {
			return hits[i].UpdatedAt.After(hits[j].UpdatedAt)
		}
		return hits[i].Path < hits[j].Path
	})

	out := make([]string, len(hits))
	for i, e := range hits {
		out[i] = e.Path
	}
	return out, nil
}

func globMatch(candidates []string, p string) bool {
	relative := strings.TrimPrefix(p, paths.Separator)
	for _, c := range candidates {
		for _, name := range [...]string{p, relative} {
			// patterns were validated up front
			if ok, _ := doublestar.Match(c, name); ok {
				return true
			}
		}
	}
	return false
}
