package vfs

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// SkipDir can be returned by a WalkFunc to keep Walk out of a directory.
var SkipDir = errors.New("skip this directory")

// WalkFunc is called for every entry below the walk root.
type WalkFunc func(e Entry) error

// Walk visits every descendant of path using an explicit stack. Children of
// a directory are visited in name order before any of its subdirectories
// are entered. A directory reached twice, which only happens when parent
// pointers were corrupted outside this package, is skipped.
//
// When path names a file, fn is called once with that file. Cancellation
// of ctx stops the walk with a store error wrapping ctx.Err().
func (fs *FS) Walk(ctx context.Context, path string, fn WalkFunc) error {
	p, err := normalize(path)
	if err != nil {
		return err
	}
	root, err := fs.stat(ctx, p)
	if err != nil {
		return err
	}
	if !root.IsDir {
		return fn(root)
	}

	visited := map[string]struct{}{p: {}}
	stack := []string{p}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return storeError(err)
		}
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := fs.entries.listChildren(ctx, dir)
		if err != nil {
			return err
		}

		var subdirs []string
		for _, child := range children {
			if child.IsDir {
				if _, seen := visited[child.Path]; seen {
					fs.logger.Warn("directory revisited during walk",
						zap.String("path", child.Path),
						zap.String("parent", dir),
					)
					continue
				}
				visited[child.Path] = struct{}{}
			}

			err := fn(child)
			if errors.Is(err, SkipDir) {
				continue
			}
			if err != nil {
				return err
			}
			if child.IsDir {
				subdirs = append(subdirs, child.Path)
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return nil
}
