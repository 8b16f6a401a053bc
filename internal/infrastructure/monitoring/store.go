package monitoring

import (
	"context"

	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// InstrumentStore wraps a vfs.Store so every call is counted and timed
// under the given backend label.
func InstrumentStore(store vfs.Store, metrics *Metrics, backend string) vfs.Store {
	if metrics == nil {
		return store
	}
	return &instrumentedStore{next: store, metrics: metrics, backend: backend}
}

type instrumentedStore struct {
	next    vfs.Store
	metrics *Metrics
	backend string
}

func (s *instrumentedStore) Lookup(ctx context.Context, path string) (e vfs.Entry, ok bool, err error) {
	t := NewTimer(s.metrics, s.backend, "lookup")
	defer func() { t.Stop(err) }()
	return s.next.Lookup(ctx, path)
}

func (s *instrumentedStore) ListByParent(ctx context.Context, parent string) (entries []vfs.Entry, err error) {
	t := NewTimer(s.metrics, s.backend, "list_by_parent")
	defer func() { t.Stop(err) }()
	return s.next.ListByParent(ctx, parent)
}

func (s *instrumentedStore) Scan(ctx context.Context) (entries []vfs.Entry, err error) {
	t := NewTimer(s.metrics, s.backend, "scan")
	defer func() { t.Stop(err) }()
	return s.next.Scan(ctx)
}

func (s *instrumentedStore) Insert(ctx context.Context, e vfs.Entry) (err error) {
	t := NewTimer(s.metrics, s.backend, "insert")
	defer func() { t.Stop(err) }()
	return s.next.Insert(ctx, e)
}

func (s *instrumentedStore) Update(ctx context.Context, path string, f vfs.Fields) (err error) {
	t := NewTimer(s.metrics, s.backend, "update")
	defer func() { t.Stop(err) }()
	return s.next.Update(ctx, path, f)
}
