// Package vfs provides a hierarchical, path-addressed filesystem layered on
// top of a flat document store.
//
// The store knows nothing about paths or hierarchy. Each row is an Entry
// keyed by its canonical path and carrying a pointer to its parent
// directory; the tree is recovered through point lookups and parent-scoped
// listings.
//
// The package is organized by concern:
//   - store: the Store collaborator interface and Entry record
//   - facade: the only code that talks to a Store
//   - directory: touch, mkdir, writeFile, copy, list, cd
//   - text: cat, tail, read, numbered lines, regex search
//   - glob: wildcard path search over a full scan
//   - edit: substitution with a line-level diff
//   - walk: explicit-stack traversal with a revisit guard
//
// Invariants:
//   - Paths are canonical (see internal/shared/paths)
//   - Every non-root entry's parent is an existing directory
//   - The root is implicit and never needs to be stored
//   - An entry never switches between file and directory
//
// Operations hold no locks across store calls. Multi-step operations such
// as recursive Mkdir or Edit can interleave with concurrent writers, and a
// failure partway through leaves completed steps in place.
//
// Example Usage:
//
//	fsys := vfs.New(memory.New(), vfs.WithLogger(logger))
//	if err := fsys.Mkdir(ctx, "/proj/src", true); err != nil {
//	    return err
//	}
//	err := fsys.WriteFile(ctx, "/proj/src/main.rs", "fn main() {}\n")
package vfs
