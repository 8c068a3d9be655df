// Package rsvp models attendance responses to a launched gathering.
package rsvp

import (
	"strings"

	apperrors "github.com/mirefield/gatherspace/internal/errors"
)

// Status describes one member's attendance response.
type Status string

const (
	StatusUnspecified Status = ""
	StatusGoing       Status = "going"
	StatusNotGoing    Status = "not_going"
	StatusWaitlisted  Status = "waitlisted"
)

// NormalizeStatus canonicalizes status labels from external input.
func NormalizeStatus(value string) (Status, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	switch strings.ToUpper(trimmed) {
	case "GOING", "RSVP_STATUS_GOING":
		return StatusGoing, true
	case "NOT_GOING", "RSVP_STATUS_NOT_GOING":
		return StatusNotGoing, true
	case "WAITLISTED", "RSVP_STATUS_WAITLISTED":
		return StatusWaitlisted, true
	default:
		return "", false
	}
}

// Decide resolves a member's requested response against capacity.
//
// A "going" request with no spots left waitlists the member instead of
// rejecting them. Requests for waitlisted status are accepted as-is (a member
// may voluntarily hold a waitlist spot). Repeating the current status is
// idempotent. spotsLeft below zero is treated as zero.
func Decide(current Status, requested Status, spotsLeft int) (Status, error) {
	if requested == StatusUnspecified {
		return "", apperrors.E(apperrors.CodeRSVPInvalidStatus, "rsvp status is required")
	}
	if requested == current {
		return current, nil
	}
	if spotsLeft < 0 {
		spotsLeft = 0
	}
	if requested == StatusGoing && spotsLeft == 0 {
		return StatusWaitlisted, nil
	}
	return requested, nil
}
