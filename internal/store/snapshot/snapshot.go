// Package snapshot provides a file-backed vfs.Store for single-process use.
//
// Records live in a memory.Store. Every mutation rewrites the whole
// collection as a zstd-compressed JSON array, written to a temporary file in
// the same directory and renamed over the snapshot so readers never see a
// partial file.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/store/memory"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// Store is a write-through snapshot store.
type Store struct {
	path   string
	mem    *memory.Store
	logger *zap.Logger

	mu  sync.Mutex // serializes mutations and saves
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open loads the snapshot at path. A missing file is an empty store; the
// file is created on the first mutation.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("snapshot path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	s := &Store{path: path, logger: logger, enc: enc, dec: dec}
	entries, err := s.load()
	if err != nil {
		s.Close()
		return nil, err
	}
	s.mem = memory.NewWithEntries(entries)

	logger.Info("snapshot store opened",
		zap.String("path", path),
		zap.Int("entries", len(entries)),
	)
	return s, nil
}

// Close releases the codec resources. It does not flush; every mutation is
// already on disk.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return nil
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Lookup implements vfs.Store.
func (s *Store) Lookup(ctx context.Context, path string) (vfs.Entry, bool, error) {
	return s.mem.Lookup(ctx, path)
}

// ListByParent implements vfs.Store.
func (s *Store) ListByParent(ctx context.Context, parent string) ([]vfs.Entry, error) {
	return s.mem.ListByParent(ctx, parent)
}

// Scan implements vfs.Store.
func (s *Store) Scan(ctx context.Context) ([]vfs.Entry, error) {
	return s.mem.Scan(ctx)
}

// Insert implements vfs.Store. The record becomes visible only once the
// snapshot holding it is on disk.
func (s *Store) Insert(ctx context.Context, e vfs.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok, _ := s.mem.Lookup(ctx, e.Path); ok {
		return fmt.Errorf("insert %s: %w", e.Path, memory.ErrExists)
	}
	if err := s.save(append(s.mem.Entries(), e)); err != nil {
		return err
	}
	return s.mem.Insert(ctx, e)
}

// Update implements vfs.Store. A failed save leaves the previous record in place.
func (s *Store) Update(ctx context.Context, path string, f vfs.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.mem.Entries()
	found := false
	for i := range next {
		if next[i].Path == path {
			next[i].IsDir = f.IsDir
			next[i].Content = f.Content
			next[i].UpdatedAt = f.UpdatedAt
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("update %s: %w", path, memory.ErrMissing)
	}
	if err := s.save(next); err != nil {
		return err
	}
	return s.mem.Update(ctx, path, f)
}

func (s *Store) load() ([]vfs.Entry, error) {
	compressed, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(compressed) == 0 {
		return nil, nil
	}

	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot %s: %w", s.path, err)
	}
	var entries []vfs.Entry
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *Store) save(entries []vfs.Entry) error {
	raw, err := sonic.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	compressed := s.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2))

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.logger.Debug("snapshot saved",
		zap.String("path", s.path),
		zap.Int("raw_bytes", len(raw)),
		zap.Int("compressed_bytes", len(compressed)),
	)
	return nil
}
