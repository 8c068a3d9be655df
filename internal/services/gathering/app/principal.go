// Package app composes gathering storage, domain state, and the HTTP API into
// a runnable service.
package app

import (
	"strings"

	apperrors "github.com/mirefield/gatherspace/internal/errors"
)

// Principal identifies the authenticated caller of an operation.
//
// Every provider and save collaborator binds its principal explicitly at
// construction; no operation reads caller identity from ambient state.
type Principal struct {
	UserID string
	OrgID  string
}

// Validate checks that the principal carries a usable identity.
func (p Principal) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return apperrors.E(apperrors.CodePrincipalRequired, "user id is required")
	}
	if strings.TrimSpace(p.OrgID) == "" {
		return apperrors.E(apperrors.CodePrincipalRequired, "org id is required")
	}
	return nil
}
