package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/mirefield/gatherspace/internal/errors"
	"github.com/mirefield/gatherspace/internal/platform/id"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/rsvp"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/setup"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/snapshot"
	"github.com/mirefield/gatherspace/internal/services/gathering/storage"
)

// Service implements the gathering operations exposed over the HTTP API.
type Service struct {
	gatherings storage.GatheringStore
	rsvps      storage.RSVPStore
	clock      func() time.Time
	newID      func() (string, error)
}

// NewService builds a service over the given stores.
func NewService(gatherings storage.GatheringStore, rsvps storage.RSVPStore) (*Service, error) {
	if gatherings == nil {
		return nil, fmt.Errorf("gathering store is required")
	}
	if rsvps == nil {
		return nil, fmt.Errorf("rsvp store is required")
	}
	return &Service{
		gatherings: gatherings,
		rsvps:      rsvps,
		clock:      func() time.Time { return time.Now().UTC() },
		newID:      id.NewID,
	}, nil
}

// WithClock overrides the service clock.
func (s *Service) WithClock(clock func() time.Time) *Service {
	if s != nil && clock != nil {
		s.clock = clock
	}
	return s
}

// WithIDGenerator overrides the service id generator.
func (s *Service) WithIDGenerator(generate func() (string, error)) *Service {
	if s != nil && generate != nil {
		s.newID = generate
	}
	return s
}

// CreateGatheringInput carries the fields of a new draft gathering.
type CreateGatheringInput struct {
	Title               string
	ExperienceTypeLabel string
	Capacity            int
}

// CreateGathering creates a draft gathering hosted by the caller.
func (s *Service) CreateGathering(ctx context.Context, principal Principal, input CreateGatheringInput) (storage.Gathering, error) {
	if s == nil {
		return storage.Gathering{}, fmt.Errorf("service is not configured")
	}
	if err := principal.Validate(); err != nil {
		return storage.Gathering{}, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return storage.Gathering{}, apperrors.E(apperrors.CodeGatheringTitleEmpty, "title is required")
	}
	if input.Capacity < 0 {
		return storage.Gathering{}, apperrors.E(apperrors.CodeGatheringCapacityNegative, "capacity must not be negative")
	}

	gatheringID, err := s.newID()
	if err != nil {
		return storage.Gathering{}, fmt.Errorf("generate gathering id: %w", err)
	}

	now := s.clock()
	gathering := storage.Gathering{
		GatheringID:         gatheringID,
		OrgID:               principal.OrgID,
		CreatedBy:           principal.UserID,
		Status:              storage.GatheringStatusDraft,
		ExperienceTypeLabel: strings.TrimSpace(input.ExperienceTypeLabel),
		Title:               title,
		HostIDs:             []string{principal.UserID},
		Capacity:            input.Capacity,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.gatherings.CreateGathering(ctx, gathering); err != nil {
		return storage.Gathering{}, fmt.Errorf("create gathering: %w", err)
	}
	return gathering, nil
}

// GetGathering loads one gathering in the caller's org.
func (s *Service) GetGathering(ctx context.Context, principal Principal, gatheringID string) (storage.Gathering, error) {
	if s == nil {
		return storage.Gathering{}, fmt.Errorf("service is not configured")
	}
	if err := principal.Validate(); err != nil {
		return storage.Gathering{}, err
	}
	gathering, err := s.gatherings.GetGathering(ctx, gatheringID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return storage.Gathering{}, apperrors.E(apperrors.CodeGatheringNotFound, "gathering not found")
		}
		return storage.Gathering{}, fmt.Errorf("get gathering: %w", err)
	}
	if gathering.OrgID != principal.OrgID {
		return storage.Gathering{}, apperrors.E(apperrors.CodeGatheringNotFound, "gathering not found")
	}
	return gathering, nil
}

// SetupItemView is one setup item's evaluated status for display.
type SetupItemView struct {
	Key    setup.ItemKey
	Status setup.ItemStatus
}

// SetupState is the full evaluated setup view of one gathering.
type SetupState struct {
	Snapshot          snapshot.Snapshot
	Items             []SetupItemView
	ReadyToLaunch     bool
	CompletionPercent int
	IncompleteItems   []setup.ItemKey
}

// SetupState evaluates the six setup items for one gathering.
func (s *Service) SetupState(ctx context.Context, principal Principal, gatheringID string) (SetupState, error) {
	if s == nil {
		return SetupState{}, fmt.Errorf("service is not configured")
	}
	provider, err := NewSnapshotProvider(s.gatherings, principal)
	if err != nil {
		return SetupState{}, err
	}
	snap, err := provider.FetchFieldSnapshot(ctx, gatheringID)
	if err != nil {
		return SetupState{}, err
	}
	return setupStateFromSnapshot(snap), nil
}

// setupStateFromSnapshot recomputes the full setup view from one snapshot.
func setupStateFromSnapshot(snap snapshot.Snapshot) SetupState {
	session := setup.NewSessionFromSnapshot(snap)
	items := make([]SetupItemView, 0, len(setup.Keys()))
	for _, key := range setup.Keys() {
		items = append(items, SetupItemView{Key: key, Status: session.ItemStatus(key)})
	}
	return SetupState{
		Snapshot:          snap,
		Items:             items,
		ReadyToLaunch:     session.ReadyToLaunch(),
		CompletionPercent: session.CompletionPercent(),
		IncompleteItems:   session.IncompleteItems(),
	}
}

// SaveSetupItem validates and persists one setup item, then returns the
// recomputed setup state.
func (s *Service) SaveSetupItem(ctx context.Context, principal Principal, gatheringID string, item setup.ItemKey, input SetupItemInput) (SetupState, error) {
	if s == nil {
		return SetupState{}, fmt.Errorf("service is not configured")
	}
	if err := principal.Validate(); err != nil {
		return SetupState{}, err
	}
	key, ok := setup.NormalizeItemKey(string(item))
	if !ok {
		return SetupState{}, apperrors.E(apperrors.CodeGatheringInvalidSetupItem, fmt.Sprintf("unknown setup item %q", item))
	}

	saver, err := NewItemSaver(s.gatherings, principal, gatheringID)
	if err != nil {
		return SetupState{}, err
	}
	if err := saver.SaveFn(key)(ctx, input); err != nil {
		return SetupState{}, err
	}
	return s.SetupState(ctx, principal, gatheringID)
}

// IncompleteSetupError reports which items block a launch.
type IncompleteSetupError struct {
	Items []setup.ItemKey
}

// Error renders the blocking items.
func (e IncompleteSetupError) Error() string {
	labels := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		labels = append(labels, string(item))
	}
	return fmt.Sprintf("setup is incomplete: %s", strings.Join(labels, ", "))
}

// Unwrap exposes the typed application error for status mapping.
func (e IncompleteSetupError) Unwrap() error {
	return apperrors.E(apperrors.CodeGatheringSetupIncomplete, e.Error())
}

// Launch moves a draft gathering to launched.
//
// Launch is strictly all-or-nothing: every setup item must be satisfied, and
// a deferred location counts as satisfied. A blocked launch reports the
// incomplete item keys.
func (s *Service) Launch(ctx context.Context, principal Principal, gatheringID string) (storage.Gathering, error) {
	if s == nil {
		return storage.Gathering{}, fmt.Errorf("service is not configured")
	}
	gathering, err := s.GetGathering(ctx, principal, gatheringID)
	if err != nil {
		return storage.Gathering{}, err
	}
	if err := requireHost(gathering, principal); err != nil {
		return storage.Gathering{}, err
	}
	if err := requireEditable(gathering); err != nil {
		return storage.Gathering{}, err
	}

	state := setupStateFromSnapshot(snapshot.New(1, snapshotFields(gathering)))
	if !state.ReadyToLaunch {
		return storage.Gathering{}, IncompleteSetupError{Items: state.IncompleteItems}
	}

	if err := s.gatherings.SetGatheringStatus(ctx, gatheringID, storage.GatheringStatusLaunched); err != nil {
		return storage.Gathering{}, fmt.Errorf("launch gathering: %w", err)
	}
	gathering.Status = storage.GatheringStatusLaunched
	gathering.UpdatedAt = s.clock()
	return gathering, nil
}

// SubmitRSVP upserts the caller's attendance response.
//
// A full gathering waitlists a new "going" request instead of rejecting it.
// Capacity zero means unbounded.
func (s *Service) SubmitRSVP(ctx context.Context, principal Principal, gatheringID string, requested rsvp.Status) (storage.RSVP, error) {
	if s == nil {
		return storage.RSVP{}, fmt.Errorf("service is not configured")
	}
	gathering, err := s.GetGathering(ctx, principal, gatheringID)
	if err != nil {
		return storage.RSVP{}, err
	}
	if gathering.Status != storage.GatheringStatusLaunched {
		return storage.RSVP{}, apperrors.E(apperrors.CodeRSVPNotOpen, "gathering is not open for rsvps")
	}

	now := s.clock()
	record, err := s.rsvps.ResolveRSVP(ctx, storage.RSVP{
		GatheringID: gathering.GatheringID,
		UserID:      principal.UserID,
		Status:      requested,
		RespondedAt: now,
		UpdatedAt:   now,
	}, gathering.Capacity)
	if err != nil {
		return storage.RSVP{}, fmt.Errorf("resolve rsvp: %w", err)
	}
	return record, nil
}

// ListRSVPs lists attendance responses for hosts of the gathering.
func (s *Service) ListRSVPs(ctx context.Context, principal Principal, gatheringID string) ([]storage.RSVP, error) {
	if s == nil {
		return nil, fmt.Errorf("service is not configured")
	}
	gathering, err := s.GetGathering(ctx, principal, gatheringID)
	if err != nil {
		return nil, err
	}
	if err := requireHost(gathering, principal); err != nil {
		return nil, err
	}
	records, err := s.rsvps.ListRSVPs(ctx, gatheringID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	return records, nil
}

// ListGatheringsByHost lists gatherings the caller hosts within their org.
func (s *Service) ListGatheringsByHost(ctx context.Context, principal Principal) ([]storage.Gathering, error) {
	if s == nil {
		return nil, fmt.Errorf("service is not configured")
	}
	if err := principal.Validate(); err != nil {
		return nil, err
	}
	all, err := s.gatherings.ListGatheringsByHost(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("list gatherings by host: %w", err)
	}
	var scoped []storage.Gathering
	for _, gathering := range all {
		if gathering.OrgID == principal.OrgID {
			scoped = append(scoped, gathering)
		}
	}
	return scoped, nil
}
