package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/docfs/internal/vfs"
)

func strPtr(s string) *string { return &s }

func TestInsertAndLookup(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Insert(ctx, vfs.Entry{Path: "/a", Name: "a", Parent: "/", IsDir: true}))

	e, ok, err := s.Lookup(ctx, "/a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.IsDir)

	_, ok, err = s.Lookup(ctx, "/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInsertDuplicate(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Insert(ctx, vfs.Entry{Path: "/a", Name: "a", Parent: "/"}))
	err := s.Insert(ctx, vfs.Entry{Path: "/a", Name: "a", Parent: "/"})
	assert.ErrorIs(t, err, ErrExists)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Insert(ctx, vfs.Entry{Path: "/f", Name: "f", Parent: "/", Content: strPtr("x")}))
	require.NoError(t, s.Update(ctx, "/f", vfs.Fields{Content: strPtr("y"), UpdatedAt: now}))

	e, _, _ := s.Lookup(ctx, "/f")
	assert.Equal(t, "y", e.Text())
	assert.Equal(t, now, e.UpdatedAt)

	assert.ErrorIs(t, s.Update(ctx, "/nope", vfs.Fields{}), ErrMissing)
}

func TestListByParentSortedByName(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, s.Insert(ctx, vfs.Entry{Path: "/d/" + name, Name: name, Parent: "/d"}))
	}
	require.NoError(t, s.Insert(ctx, vfs.Entry{Path: "/other", Name: "other", Parent: "/"}))

	children, err := s.ListByParent(ctx, "/d")
	require.NoError(t, err)
	require.Len(t, children, 3)
	assert.Equal(t, "a", children[0].Name)
	assert.Equal(t, "b", children[1].Name)
	assert.Equal(t, "c", children[2].Name)

	empty, err := s.ListByParent(ctx, "/nothing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReturnedEntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Insert(ctx, vfs.Entry{Path: "/f", Name: "f", Parent: "/", Content: strPtr("orig")}))

	e, _, _ := s.Lookup(ctx, "/f")
	*e.Content = "mutated"

	again, _, _ := s.Lookup(ctx, "/f")
	assert.Equal(t, "orig", again.Text())
}

func TestScanAndEntries(t *testing.T) {
	s := NewWithEntries([]vfs.Entry{
		{Path: "/b", Name: "b", Parent: "/"},
		{Path: "/a", Name: "a", Parent: "/", IsDir: true},
	})

	all, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "/a", all[0].Path)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, all, s.Entries())
}
