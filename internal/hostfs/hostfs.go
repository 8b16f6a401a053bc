// Package hostfs copies trees between the host filesystem and the virtual
// filesystem.
package hostfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/shared/paths"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// Report counts what an import or export touched.
type Report struct {
	Dirs    int `json:"dirs"`
	Files   int `json:"files"`
	Skipped int `json:"skipped"`
}

// Bridge moves files between the host and a virtual filesystem.
type Bridge struct {
	fs     *vfs.FS
	logger *zap.Logger
}

// New creates a bridge for fs.
func New(fs *vfs.FS, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{fs: fs, logger: logger}
}

// Import copies the host tree at hostDir below the virtual directory dest,
// creating dest if needed. Text files are stored as-is; binary files,
// symlinks and unreadable entries are skipped.
func (b *Bridge) Import(ctx context.Context, hostDir, dest string) (Report, error) {
	var report Report

	info, err := os.Stat(hostDir)
	if err != nil {
		return report, err
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%s is not a directory", hostDir)
	}
	if err := b.fs.Mkdir(ctx, dest, true); err != nil {
		return report, err
	}
	root, err := b.fs.CurrentPath(dest)
	if err != nil {
		return report, err
	}

	var (
		mu      sync.Mutex
		dirs    []string
		files   []string
		skipped int
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, hostDir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			b.logger.Warn("skipping unreadable host entry", zap.String("path", p), zap.Error(err))
			skipped++
			return nil
		}
		rel, err := filepath.Rel(hostDir, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		switch {
		case d.IsDir():
			dirs = append(dirs, rel)
		case d.Type().IsRegular():
			files = append(files, rel)
		default:
			skipped++
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	report.Skipped = skipped

	// Parents sort before their children.
	sort.Strings(dirs)
	sort.Strings(files)

	for _, rel := range dirs {
		if err := b.fs.Mkdir(ctx, paths.Join(root, rel), true); err != nil {
			return report, err
		}
		report.Dirs++
	}

	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(hostDir, filepath.FromSlash(rel)))
		if err != nil {
			b.logger.Warn("skipping unreadable host file", zap.String("path", rel), zap.Error(err))
			report.Skipped++
			continue
		}
		if !IsText(data) {
			b.logger.Debug("skipping binary file", zap.String("path", rel))
			report.Skipped++
			continue
		}
		if err := b.fs.WriteFile(ctx, paths.Join(root, rel), string(data)); err != nil {
			return report, err
		}
		report.Files++
	}

	b.logger.Info("imported host tree",
		zap.String("host", hostDir),
		zap.String("dest", root),
		zap.Int("dirs", report.Dirs),
		zap.Int("files", report.Files),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// IsText reports whether data can be stored as file content: it must be
// valid UTF-8 and sniff as a text/plain descendant.
func IsText(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Export writes the virtual subtree at src into hostDir. A file src is
// written as hostDir/<name>.
func (b *Bridge) Export(ctx context.Context, src, hostDir string) (Report, error) {
	var report Report

	root, err := b.fs.Stat(ctx, src)
	if err != nil {
		return report, err
	}
	if err := os.MkdirAll(hostDir, 0o755); err != nil {
		return report, err
	}
	if !root.IsDir {
		if err := os.WriteFile(filepath.Join(hostDir, root.Name), []byte(root.Text()), 0o644); err != nil {
			return report, err
		}
		report.Files++
		return report, nil
	}

	err = b.fs.Walk(ctx, root.Path, func(e vfs.Entry) error {
		target := filepath.Join(hostDir, filepath.FromSlash(relative(root.Path, e.Path)))
		if e.IsDir {
			report.Dirs++
			return os.MkdirAll(target, 0o755)
		}
		report.Files++
		return os.WriteFile(target, []byte(e.Text()), 0o644)
	})
	if err != nil {
		return report, err
	}

	b.logger.Info("exported virtual tree",
		zap.String("src", root.Path),
		zap.String("host", hostDir),
		zap.Int("dirs", report.Dirs),
		zap.Int("files", report.Files),
	)
	return report, nil
}

func relative(root, p string) string {
	if paths.IsRoot(root) {
		return strings.TrimPrefix(p, paths.Root)
	}
	return strings.TrimPrefix(p, root+paths.Separator)
}
