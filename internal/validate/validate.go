// Package validate holds the pure identifier checks shared by the mutation
// and query paths. None of these touch the store.
package validate

import (
	"fmt"

	"github.com/google/uuid"

	"follow-graph/internal/domain"
)

// UserID reports whether s is a well-formed user identifier. It does not
// check that a user with that id exists.
func UserID(s string) error {
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, s)
	}
	return nil
}

// Distinct fails when both identifiers name the same user.
func Distinct(a, b string) error {
	if a == b {
		return domain.ErrIdentityConflict
	}
	return nil
}
