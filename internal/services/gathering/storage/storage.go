// Package storage defines persistence contracts for gathering service state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mirefield/gatherspace/internal/services/gathering/domain/rsvp"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
var ErrAlreadyExists = errors.New("record already exists")

// GatheringStatus is the persisted lifecycle label of one gathering.
type GatheringStatus string

const (
	GatheringStatusDraft    GatheringStatus = "draft"
	GatheringStatusLaunched GatheringStatus = "launched"
	GatheringStatusCanceled GatheringStatus = "canceled"
)

// Gathering stores one gathering's persisted fields.
//
// StartTime, EndTime, and Remote are pointers because "unset" is meaningful
// during setup and distinct from the zero value.
type Gathering struct {
	GatheringID         string
	OrgID               string
	CreatedBy           string
	Status              GatheringStatus
	ExperienceTypeLabel string
	Title               string
	HostIDs             []string
	ScribeID            string
	StartTime           *time.Time
	EndTime             *time.Time
	Remote              *bool
	Address             string
	MeetingLink         string
	LocationTBD         bool
	MentorIDs           []string
	Description         string
	Capacity            int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SetupFieldPatch carries one setup item's field updates for a partial write.
//
// Only non-nil members are applied; a nil member leaves the stored column
// untouched. Slices are replaced wholesale when non-nil. This is the save
// collaborator's unit of persistence and must stay idempotent: applying the
// same patch twice yields the same row.
type SetupFieldPatch struct {
	ExperienceTypeLabel *string
	Title               *string
	HostIDs             []string
	ScribeID            *string
	StartTime           *time.Time
	EndTime             *time.Time
	Remote              *bool
	Address             *string
	MeetingLink         *string
	LocationTBD         *bool
	MentorIDs           []string
	Description         *string
}

// RSVP stores one member's attendance response for one gathering.
type RSVP struct {
	GatheringID string
	UserID      string
	Status      rsvp.Status
	RespondedAt time.Time
	UpdatedAt   time.Time
}

// GatheringStore persists gathering records.
type GatheringStore interface {
	CreateGathering(ctx context.Context, gathering Gathering) error
	GetGathering(ctx context.Context, gatheringID string) (Gathering, error)
	UpdateSetupFields(ctx context.Context, gatheringID string, patch SetupFieldPatch) error
	SetGatheringStatus(ctx context.Context, gatheringID string, status GatheringStatus) error
	ListGatheringsByHost(ctx context.Context, hostUserID string) ([]Gathering, error)
}

// RSVPStore persists attendance responses.
//
// ResolveRSVP runs the capacity decision and the upsert under one
// transaction: the count of confirmed attendees and the write must not be
// separable, or two concurrent "going" requests can both take the last spot.
type RSVPStore interface {
	ResolveRSVP(ctx context.Context, record RSVP, capacity int) (RSVP, error)
	PutRSVP(ctx context.Context, record RSVP) error
	GetRSVP(ctx context.Context, gatheringID string, userID string) (RSVP, error)
	ListRSVPs(ctx context.Context, gatheringID string) ([]RSVP, error)
	CountGoing(ctx context.Context, gatheringID string) (int, error)
}
