package vfs

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/shared/paths"
)

// Stat returns the entry at path. The root is reported as a directory even
// when it is not stored.
func (fs *FS) Stat(ctx context.Context, path string) (Entry, error) {
	p, err := normalize(path)
	if err != nil {
		return Entry{}, err
	}
	return fs.stat(ctx, p)
}

func (fs *FS) stat(ctx context.Context, p string) (Entry, error) {
	e, ok, err := fs.entries.getEntry(ctx, p)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		if paths.IsRoot(p) {
			return rootEntry(), nil
		}
		return Entry{}, notFound(p)
	}
	return e, nil
}

// ensureDirectory checks that a canonical path names an existing directory.
func (fs *FS) ensureDirectory(ctx context.Context, p string) error {
	if paths.IsRoot(p) {
		return nil
	}
	e, ok, err := fs.entries.getEntry(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(p)
	}
	if !e.IsDir {
		return notADirectory(p)
	}
	return nil
}

// List returns the children of a directory sorted by name, or a single
// element holding the entry itself when path names a file.
func (fs *FS) List(ctx context.Context, path string) ([]Entry, error) {
	p, err := normalize(path)
	if err != nil {
		return nil, err
	}
	e, err := fs.stat(ctx, p)
	if err != nil {
		return nil, err
	}
	if !e.IsDir {
		return []Entry{e}, nil
	}
	return fs.entries.listChildren(ctx, p)
}

// Touch creates an empty file, or refreshes UpdatedAt on an existing one.
// The parent directory must already exist.
func (fs *FS) Touch(ctx context.Context, path string) error {
	p, err := normalize(path)
	if err != nil {
		return err
	}
	if paths.IsRoot(p) {
		return nil
	}
	parent, _ := paths.Parent(p)
	if err := fs.ensureDirectory(ctx, parent); err != nil {
		return err
	}

	e, ok, err := fs.entries.getEntry(ctx, p)
	if err != nil {
		return err
	}
	switch {
	case ok && e.IsDir:
		return notAFile(p)
	case ok:
		fs.logger.Debug("touch", zap.String("path", p))
		return fs.entries.persist(ctx, &e)
	default:
		fs.logger.Debug("create file", zap.String("path", p))
		return fs.entries.createFile(ctx, p, parent, "")
	}
}

// Mkdir creates a directory. With recursive set, every missing ancestor is
// created too and existing directories are accepted; the walk is not atomic
// and stops at the first failure.
func (fs *FS) Mkdir(ctx context.Context, path string, recursive bool) error {
	p, err := normalize(path)
	if err != nil {
		return err
	}
	if paths.IsRoot(p) {
		if recursive {
			return nil
		}
		return alreadyExists(p)
	}

	if !recursive {
		parent, _ := paths.Parent(p)
		if err := fs.ensureDirectory(ctx, parent); err != nil {
			return err
		}
		_, ok, err := fs.entries.getEntry(ctx, p)
		if err != nil {
			return err
		}
		if ok {
			return alreadyExists(p)
		}
		fs.logger.Debug("create directory", zap.String("path", p))
		return fs.entries.createDirectory(ctx, p, parent)
	}

	for _, segment := range append(paths.Ancestors(p), p) {
		e, ok, err := fs.entries.getEntry(ctx, segment)
		if err != nil {
			return err
		}
		if ok {
			if !e.IsDir {
				return notADirectory(segment)
			}
			continue
		}
		parent, _ := paths.Parent(segment)
		fs.logger.Debug("create directory", zap.String("path", segment))
		if err := fs.entries.createDirectory(ctx, segment, parent); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile replaces the content of a file, creating it when absent.
// The parent directory must already exist.
func (fs *FS) WriteFile(ctx context.Context, path, content string) error {
	p, err := normalize(path)
	if err != nil {
		return err
	}
	if paths.IsRoot(p) {
		return notAFile(p)
	}
	parent, _ := paths.Parent(p)
	if err := fs.ensureDirectory(ctx, parent); err != nil {
		return err
	}

	e, ok, err := fs.entries.getEntry(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		fs.logger.Debug("create file", zap.String("path", p), zap.Int("bytes", len(content)))
		return fs.entries.createFile(ctx, p, parent, content)
	}
	if e.IsDir {
		return notAFile(p)
	}
	e.Content = &content
	fs.logger.Debug("write file", zap.String("path", p), zap.Int("bytes", len(content)))
	return fs.entries.persist(ctx, &e)
}

// Copy writes the content of the file at src to dest, overwriting an
// existing destination file. The destination parent must exist.
func (fs *FS) Copy(ctx context.Context, src, dest string) error {
	from, err := normalize(src)
	if err != nil {
		return err
	}
	to, err := normalize(dest)
	if err != nil {
		return err
	}

	e, err := fs.requireFile(ctx, from)
	if err != nil {
		return err
	}
	if paths.IsRoot(to) {
		return notAFile(to)
	}
	parent, _ := paths.Parent(to)
	if err := fs.ensureDirectory(ctx, parent); err != nil {
		return err
	}
	return fs.WriteFile(ctx, to, e.Text())
}

// ChangeDirectory resolves target against current and returns the new
// working directory. The caller owns the working directory string.
func (fs *FS) ChangeDirectory(ctx context.Context, current, target string) (string, error) {
	resolved, err := paths.ResolveRelative(current, target)
	if err != nil {
		return "", invalidPath(target, err)
	}
	e, err := fs.stat(ctx, resolved)
	if err != nil {
		return "", err
	}
	if !e.IsDir {
		return "", notADirectory(resolved)
	}
	return resolved, nil
}

// CurrentPath returns the canonical form of a working directory.
func (fs *FS) CurrentPath(current string) (string, error) {
	return normalize(current)
}
