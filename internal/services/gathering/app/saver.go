package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/mirefield/gatherspace/internal/errors"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/form"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/setup"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/snapshot"
	"github.com/mirefield/gatherspace/internal/services/gathering/storage"
)

// descriptionMaxChars bounds the gathering description length.
const descriptionMaxChars = 500

// SetupItemInput carries the editable fields of one setup item.
//
// Pointer members distinguish "not submitted" from a submitted zero value.
// Only the fields belonging to the saved item are read; the rest are ignored.
type SetupItemInput struct {
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

// ValidationError reports why a setup item save was rejected.
type ValidationError struct {
	Item   setup.ItemKey
	Errors []string
}

// Error renders the first validation message.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("setup item %s is invalid", e.Item)
	}
	return fmt.Sprintf("setup item %s is invalid: %s", e.Item, e.Errors[0])
}

// Unwrap exposes the typed application error for status mapping.
func (e ValidationError) Unwrap() error {
	return apperrors.E(apperrors.CodeGatheringValidationFailed, e.Error())
}

// ValidateItem checks one item's input against its save-time rules.
//
// Validation is stricter than evaluation on purpose: an evaluator reports an
// item as incomplete without complaint, while a save that would persist an
// invalid combination is rejected before it reaches storage. The returned
// slice is nil when the input is acceptable.
func ValidateItem(item setup.ItemKey, input SetupItemInput, experienceTypeLabel string) []string {
	var problems []string
	switch item {
	case setup.ItemGatheringType:
		if input.ExperienceTypeLabel == nil || strings.TrimSpace(*input.ExperienceTypeLabel) == "" {
			problems = append(problems, "experience type is required")
		}
	case setup.ItemTitleAndHosts:
		if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
			problems = append(problems, "title is required")
		}
		if countNonEmpty(input.HostIDs) == 0 {
			problems = append(problems, "at least one host is required")
		}
	case setup.ItemDateTime:
		if input.StartTime == nil {
			problems = append(problems, "start time is required")
		}
		if input.StartTime != nil && input.EndTime != nil && !input.EndTime.After(*input.StartTime) {
			problems = append(problems, "end time must be after start time")
		}
	case setup.ItemLocation:
		problems = validateLocation(input)
	case setup.ItemMentor:
		if experienceTypeLabel == snapshot.ExperienceTypeMentoring && countNonEmpty(input.MentorIDs) == 0 {
			problems = append(problems, "at least one mentor is required for mentoring gatherings")
		}
	case setup.ItemDescription:
		if input.Description == nil || strings.TrimSpace(*input.Description) == "" {
			problems = append(problems, "description is required")
		} else if utf8.RuneCountInString(*input.Description) > descriptionMaxChars {
			problems = append(problems, fmt.Sprintf("description must be at most %d characters", descriptionMaxChars))
		}
	}
	return problems
}

// validateLocation checks the location item's modality rules. A deferred
// location is only allowed for in-person gatherings.
func validateLocation(input SetupItemInput) []string {
	var problems []string
	deferred := input.LocationTBD != nil && *input.LocationTBD
	if input.Remote == nil {
		problems = append(problems, "remote or in-person must be chosen")
		return problems
	}
	if *input.Remote {
		if deferred {
			problems = append(problems, "a remote location cannot be deferred")
		}
		if input.MeetingLink == nil || strings.TrimSpace(*input.MeetingLink) == "" {
			problems = append(problems, "meeting link is required for remote gatherings")
		}
		return problems
	}
	if !deferred && (input.Address == nil || strings.TrimSpace(*input.Address) == "") {
		problems = append(problems, "address is required unless the location is deferred")
	}
	return problems
}

// patchForItem narrows the input to the fields the item owns.
func patchForItem(item setup.ItemKey, input SetupItemInput) storage.SetupFieldPatch {
	var patch storage.SetupFieldPatch
	switch item {
	case setup.ItemGatheringType:
		patch.ExperienceTypeLabel = input.ExperienceTypeLabel
	case setup.ItemTitleAndHosts:
		patch.Title = input.Title
		patch.HostIDs = input.HostIDs
		patch.ScribeID = input.ScribeID
	case setup.ItemDateTime:
		patch.StartTime = input.StartTime
		patch.EndTime = input.EndTime
	case setup.ItemLocation:
		patch.Remote = input.Remote
		patch.Address = input.Address
		patch.MeetingLink = input.MeetingLink
		patch.LocationTBD = input.LocationTBD
	case setup.ItemMentor:
		patch.MentorIDs = input.MentorIDs
	case setup.ItemDescription:
		patch.Description = input.Description
	}
	return patch
}

// ItemSaver builds save collaborators for one gathering's setup items.
//
// The principal and gathering are bound at construction; each SaveFn is a
// self-contained idempotent write suitable for a form session. A retried
// save after a transport failure converges on the same stored row.
type ItemSaver struct {
	store     storage.GatheringStore
	principal Principal
	gathering string
}

// NewItemSaver builds a saver bound to one principal and gathering.
func NewItemSaver(store storage.GatheringStore, principal Principal, gatheringID string) (*ItemSaver, error) {
	if store == nil {
		return nil, fmt.Errorf("gathering store is required")
	}
	if err := principal.Validate(); err != nil {
		return nil, err
	}
	gatheringID = strings.TrimSpace(gatheringID)
	if gatheringID == "" {
		return nil, fmt.Errorf("gathering id is required")
	}
	return &ItemSaver{store: store, principal: principal, gathering: gatheringID}, nil
}

// SaveFn returns the save collaborator for one setup item.
func (s *ItemSaver) SaveFn(item setup.ItemKey) form.SaveFn[SetupItemInput] {
	return func(ctx context.Context, input SetupItemInput) error {
		if s == nil || s.store == nil {
			return fmt.Errorf("item saver is not configured")
		}
		gathering, err := s.store.GetGathering(ctx, s.gathering)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperrors.E(apperrors.CodeGatheringNotFound, "gathering not found")
			}
			return fmt.Errorf("fetch gathering: %w", err)
		}
		if gathering.OrgID != s.principal.OrgID {
			return apperrors.E(apperrors.CodeGatheringNotFound, "gathering not found")
		}
		if err := requireHost(gathering, s.principal); err != nil {
			return err
		}
		if err := requireEditable(gathering); err != nil {
			return err
		}
		if problems := ValidateItem(item, input, gathering.ExperienceTypeLabel); len(problems) > 0 {
			return ValidationError{Item: item, Errors: problems}
		}
		if err := s.store.UpdateSetupFields(ctx, s.gathering, patchForItem(item, input)); err != nil {
			return fmt.Errorf("save setup item %s: %w", item, err)
		}
		return nil
	}
}

// requireHost rejects callers who do not host the gathering.
func requireHost(gathering storage.Gathering, principal Principal) error {
	if principal.UserID == gathering.CreatedBy {
		return nil
	}
	for _, hostID := range gathering.HostIDs {
		if hostID == principal.UserID {
			return nil
		}
	}
	return apperrors.E(apperrors.CodeGatheringNotHost, "only hosts may modify a gathering")
}

// requireEditable rejects setup writes once the gathering left draft.
func requireEditable(gathering storage.Gathering) error {
	switch gathering.Status {
	case storage.GatheringStatusDraft:
		return nil
	case storage.GatheringStatusLaunched:
		return apperrors.E(apperrors.CodeGatheringAlreadyLaunched, "gathering is already launched")
	case storage.GatheringStatusCanceled:
		return apperrors.E(apperrors.CodeGatheringCanceled, "gathering is canceled")
	default:
		return apperrors.E(apperrors.CodeGatheringStatusDisallowsOp, "gathering status disallows setup changes")
	}
}

// countNonEmpty counts entries that survive trimming.
func countNonEmpty(ids []string) int {
	count := 0
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			count++
		}
	}
	return count
}
