package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an update or delete targets a key
	// that is not present.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed or rejected input.
	ErrValidation = errors.New("validation error")

	// ErrInUse is returned when deleting a kanban column that entries
	// still reference.
	ErrInUse = errors.New("in use")

	// ErrPathTraversal is returned for unsafe path input. It is always a
	// rejection, never sanitized-and-continued.
	ErrPathTraversal = errors.New("path traversal rejected")

	// ErrConflict is returned when a create or rename collides with an
	// existing id or name.
	ErrConflict = errors.New("conflict")
)

// ParseError describes a malformed entry block. It names the violated
// invariant so the store can decide between skip-and-log and abort.
type ParseError struct {
	Invariant string
	Line      string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("parse error: %s", e.Invariant)
	}
	return fmt.Sprintf("parse error: %s (at %q)", e.Invariant, e.Line)
}

// Is lets errors.Is treat every ParseError as a validation error.
func (e *ParseError) Is(target error) bool { return target == ErrValidation }
