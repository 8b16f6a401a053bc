package vfs

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/docfs/internal/shared/paths"
)

// clock hands out strictly increasing timestamps so recency order is total
// for writes issued by one process. Microsecond resolution matches what
// SQL backends persist.
type clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// facade is the only component that talks to the Store. Each method is one
// round trip; nothing is cached and nothing is locked.
type facade struct {
	store Store
	clock *clock
}

func (f *facade) getEntry(ctx context.Context, p string) (Entry, bool, error) {
	e, ok, err := f.store.Lookup(ctx, p)
	if err != nil {
		return Entry{}, false, storeError(err)
	}
	return e, ok, nil
}

func (f *facade) listChildren(ctx context.Context, dir string) ([]Entry, error) {
	entries, err := f.store.ListByParent(ctx, dir)
	if err != nil {
		return nil, storeError(err)
	}
	return entries, nil
}

func (f *facade) scanAll(ctx context.Context) ([]Entry, error) {
	entries, err := f.store.Scan(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return entries, nil
}

func (f *facade) createDirectory(ctx context.Context, p, parent string) error {
	return storeError(f.store.Insert(ctx, Entry{
		Path:      p,
		Name:      paths.Leaf(p),
		Parent:    parent,
		IsDir:     true,
		UpdatedAt: f.clock.next(),
	}))
}

func (f *facade) createFile(ctx context.Context, p, parent, content string) error {
	return storeError(f.store.Insert(ctx, Entry{
		Path:      p,
		Name:      paths.Leaf(p),
		Parent:    parent,
		Content:   &content,
		UpdatedAt: f.clock.next(),
	}))
}

// persist writes back content and kind and refreshes UpdatedAt on e.
func (f *facade) persist(ctx context.Context, e *Entry) error {
	e.UpdatedAt = f.clock.next()
	return storeError(f.store.Update(ctx, e.Path, Fields{
		IsDir:     e.IsDir,
		Content:   e.Content,
		UpdatedAt: e.UpdatedAt,
	}))
}
