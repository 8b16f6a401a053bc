package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/docfs/internal/shared/id"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

func TestValidateTable(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"fs_entry", true},
		{"_private", true},
		{"Entries2", true},
		{"", false},
		{"2fast", false},
		{"fs-entry", false},
		{"entries; DROP TABLE users", false},
		{`"quoted"`, false},
		{"a234567890123456789012345678901234567890123456789012345678901234", false},
	}
	for _, tt := range tests {
		err := ValidateTable(tt.name)
		if tt.valid {
			assert.NoError(t, err, tt.name)
		} else {
			assert.ErrorIs(t, err, ErrInvalidTable, tt.name)
		}
	}
}

func TestNewWithDBRejectsBadTable(t *testing.T) {
	_, err := NewWithDB(nil, "bad name", nil)
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestQueriesAreParameterized(t *testing.T) {
	s, err := NewWithDB(nil, "", nil)
	require.NoError(t, err)

	assert.Equal(t, `SELECT path, name, parent, is_dir, content, updated_at FROM "fs_entry" WHERE path = $1`, s.qLookup)
	assert.Contains(t, s.qList, `WHERE parent = $1 ORDER BY name ASC`)
	assert.Contains(t, s.qUpdate, `WHERE path = $1`)
	assert.Contains(t, s.qSchema[1], `"fs_entry_parent_idx"`)
}

// Runs only when DOCFS_TEST_POSTGRES_URL points at a scratch database.
func TestPostgresIntegration(t *testing.T) {
	url := os.Getenv("DOCFS_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("DOCFS_TEST_POSTGRES_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	table := fmt.Sprintf("fs_test_%s", id.NewGenerator().GenerateString())
	s, err := New(ctx, url, table, nil)
	require.NoError(t, err)
	defer func() {
		_, _ = s.DB().ExecContext(context.Background(), `DROP TABLE IF EXISTS "`+table+`"`)
		s.Close()
	}()
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.EnsureSchema(ctx))

	fs := vfs.New(s)
	require.NoError(t, fs.Mkdir(ctx, "/proj/src", true))
	require.NoError(t, fs.WriteFile(ctx, "/proj/src/main.go", "package main\n"))
	require.NoError(t, fs.WriteFile(ctx, "/proj/README", ""))

	children, err := fs.List(ctx, "/proj")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "README", children[0].Name)
	assert.Equal(t, "src", children[1].Name)

	diff, err := fs.Edit(ctx, "/proj/src/main.go", "main", "app", false)
	require.NoError(t, err)
	assert.Contains(t, diff, "+package app\n")

	got, err := fs.Glob(ctx, "**/*.go")
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/src/main.go"}, got)

	err = s.Update(ctx, "/nope", vfs.Fields{})
	assert.ErrorIs(t, err, ErrMissing)
}
