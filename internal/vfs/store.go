package vfs

import (
	"context"
	"time"
)

// Entry is a single file or directory record keyed by canonical path.
type Entry struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Parent    string    `json:"parent,omitempty"` // empty for the root
	IsDir     bool      `json:"is_dir"`
	Content   *string   `json:"content,omitempty"` // nil for directories
	UpdatedAt time.Time `json:"updated_at"`
}

// Text returns the file content, or "" for directories.
func (e Entry) Text() string {
	if e.Content == nil {
		return ""
	}
	return *e.Content
}

// Size returns the content length in bytes. Directories report zero.
func (e Entry) Size() int64 {
	if e.IsDir {
		return 0
	}
	return int64(len(e.Text()))
}

// Fields are the mutable columns of an existing record.
type Fields struct {
	IsDir     bool
	Content   *string
	UpdatedAt time.Time
}

// Store is the document store collaborator.
//
// Implementations provide their own per-call atomicity and nothing more;
// the filesystem never expects a Store to sequence calls.
type Store interface {
	// Lookup fetches the record keyed by path. A missing record is reported
	// with ok == false and a nil error.
	Lookup(ctx context.Context, path string) (e Entry, ok bool, err error)
	// ListByParent returns all records whose parent equals parent, sorted by name.
	ListByParent(ctx context.Context, parent string) ([]Entry, error)
	// Scan returns every record in the collection.
	Scan(ctx context.Context) ([]Entry, error)
	// Insert creates a record. Callers guarantee the key is unused.
	Insert(ctx context.Context, e Entry) error
	// Update overwrites the mutable fields of the record keyed by path.
	Update(ctx context.Context, path string, f Fields) error
}

// NumberedLine pairs a line with its display number.
type NumberedLine struct {
	Number int    `json:"number"`
	Line   string `json:"line"`
}

// Match is a single regex search hit.
type Match struct {
	Path       string `json:"path"`
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
}
