// Package repository defines error types that are reused across
// multiple repositories. These sentinel values allow handlers to
// distinguish failure scenarios: ErrNotFound covers both unknown ids
// and rows owned by someone else (the two are indistinguishable on
// purpose), while ErrConflict signals a uniqueness violation such as
// a taken username or email.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup matches no row for the
// calling user. Handlers should translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update violates a
// uniqueness constraint. Handlers should translate this into
// HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// error (code 1062). The driver does not expose a typed error for
// it, so the code is matched in the message.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isForeignKeyViolation reports whether err is a MySQL foreign-key
// error (code 1452), raised when an insert references a nonexistent
// parent row such as an unknown genre id.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
