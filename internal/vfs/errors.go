package vfs

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/docfs/internal/shared/paths"
)

// Kind classifies filesystem errors.
type Kind uint8

const (
	KindNotFound Kind = iota + 1
	KindAlreadyExists
	KindNotAFile
	KindNotADirectory
	KindInvalidPath
	KindStore
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAlreadyExists:
		return "already exists"
	case KindNotAFile:
		return "not a file"
	case KindNotADirectory:
		return "not a directory"
	case KindInvalidPath:
		return "invalid path"
	case KindStore:
		return "store error"
	default:
		return "unknown"
	}
}

// Error is the typed error returned by every filesystem operation.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists}
	ErrNotAFile      = &Error{Kind: KindNotAFile}
	ErrNotADirectory = &Error{Kind: KindNotADirectory}
	ErrInvalidPath   = &Error{Kind: KindInvalidPath}
	ErrStore         = &Error{Kind: KindStore}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidPath:
		if e.Err != nil && !errors.Is(e.Err, paths.ErrInvalidPath) {
			return fmt.Sprintf("invalid path: %v", e.Err)
		}
		if e.Path != "" {
			return fmt.Sprintf("invalid path: %s", e.Path)
		}
		return "invalid path"
	case KindStore:
		return fmt.Sprintf("store error: %v", e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Path == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of a filesystem error, or zero for foreign errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

func notFound(p string) error {
	return &Error{Kind: KindNotFound, Path: p}
}

func alreadyExists(p string) error {
	return &Error{Kind: KindAlreadyExists, Path: p}
}

func notAFile(p string) error {
	return &Error{Kind: KindNotAFile, Path: p}
}

func notADirectory(p string) error {
	return &Error{Kind: KindNotADirectory, Path: p}
}

func invalidPath(p string, err error) error {
	if err == nil {
		err = paths.ErrInvalidPath
	}
	return &Error{Kind: KindInvalidPath, Path: p, Err: err}
}

func storeError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStore, Err: err}
}
