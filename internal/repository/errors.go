// Package repository holds the data access layer.  Each repository
// wraps a *sql.DB and speaks raw SQL; sentinel errors defined here and
// alongside the repositories let handlers translate failure modes into
// HTTP statuses without string matching.
package repository

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a delete or update cannot proceed
// because of dependent state, such as removing a hall that still has
// seat assignments.  Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicateKey reports whether a MySQL error is a unique-key
// violation (error 1062).  The driver does not expose a typed error
// for this, so the code is matched in the message.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
