package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mirefield/gatherspace/internal/services/gathering/domain/rsvp"
	"github.com/mirefield/gatherspace/internal/services/gathering/storage"
)

// fakeStore is an in-memory store used across the package tests.
type fakeStore struct {
	gatherings map[string]storage.Gathering
	rsvps      map[string]storage.RSVP

	getErr    error
	updateErr error
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		gatherings: make(map[string]storage.Gathering),
		rsvps:      make(map[string]storage.RSVP),
	}
}

func (f *fakeStore) CreateGathering(_ context.Context, gathering storage.Gathering) error {
	if _, exists := f.gatherings[gathering.GatheringID]; exists {
		return storage.ErrAlreadyExists
	}
	f.gatherings[gathering.GatheringID] = gathering
	return nil
}

func (f *fakeStore) GetGathering(_ context.Context, gatheringID string) (storage.Gathering, error) {
	if f.getErr != nil {
		return storage.Gathering{}, f.getErr
	}
	gathering, ok := f.gatherings[gatheringID]
	if !ok {
		return storage.Gathering{}, storage.ErrNotFound
	}
	return gathering, nil
}

func (f *fakeStore) UpdateSetupFields(_ context.Context, gatheringID string, patch storage.SetupFieldPatch) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	gathering, ok := f.gatherings[gatheringID]
	if !ok {
		return storage.ErrNotFound
	}
	if patch.ExperienceTypeLabel != nil {
		gathering.ExperienceTypeLabel = *patch.ExperienceTypeLabel
	}
	if patch.Title != nil {
		gathering.Title = *patch.Title
	}
	if patch.HostIDs != nil {
		gathering.HostIDs = patch.HostIDs
	}
	if patch.ScribeID != nil {
		gathering.ScribeID = *patch.ScribeID
	}
	if patch.StartTime != nil {
		gathering.StartTime = patch.StartTime
	}
	if patch.EndTime != nil {
		gathering.EndTime = patch.EndTime
	}
	if patch.Remote != nil {
		gathering.Remote = patch.Remote
	}
	if patch.Address != nil {
		gathering.Address = *patch.Address
	}
	if patch.MeetingLink != nil {
		gathering.MeetingLink = *patch.MeetingLink
	}
	if patch.LocationTBD != nil {
		gathering.LocationTBD = *patch.LocationTBD
	}
	if patch.MentorIDs != nil {
		gathering.MentorIDs = patch.MentorIDs
	}
	if patch.Description != nil {
		gathering.Description = *patch.Description
	}
	f.gatherings[gatheringID] = gathering
	f.updates++
	return nil
}

func (f *fakeStore) SetGatheringStatus(_ context.Context, gatheringID string, status storage.GatheringStatus) error {
	gathering, ok := f.gatherings[gatheringID]
	if !ok {
		return storage.ErrNotFound
	}
	gathering.Status = status
	f.gatherings[gatheringID] = gathering
	return nil
}

func (f *fakeStore) ListGatheringsByHost(_ context.Context, hostUserID string) ([]storage.Gathering, error) {
	var result []storage.Gathering
	for _, gathering := range f.gatherings {
		for _, hostID := range gathering.HostIDs {
			if hostID == hostUserID {
				result = append(result, gathering)
				break
			}
		}
	}
	return result, nil
}

func (f *fakeStore) ResolveRSVP(_ context.Context, record storage.RSVP, capacity int) (storage.RSVP, error) {
	current := rsvp.StatusUnspecified
	if existing, ok := f.rsvps[record.GatheringID+"/"+record.UserID]; ok {
		current = existing.Status
	}
	spotsLeft := 1
	if capacity > 0 {
		going := 0
		for _, held := range f.rsvps {
			if held.GatheringID == record.GatheringID && held.UserID != record.UserID && held.Status == rsvp.StatusGoing {
				going++
			}
		}
		spotsLeft = capacity - going
	}
	resolved, err := rsvp.Decide(current, record.Status, spotsLeft)
	if err != nil {
		return storage.RSVP{}, err
	}
	record.Status = resolved
	f.rsvps[record.GatheringID+"/"+record.UserID] = record
	return record, nil
}

func (f *fakeStore) PutRSVP(_ context.Context, record storage.RSVP) error {
	f.rsvps[record.GatheringID+"/"+record.UserID] = record
	return nil
}

func (f *fakeStore) GetRSVP(_ context.Context, gatheringID string, userID string) (storage.RSVP, error) {
	record, ok := f.rsvps[gatheringID+"/"+userID]
	if !ok {
		return storage.RSVP{}, storage.ErrNotFound
	}
	return record, nil
}

func (f *fakeStore) ListRSVPs(_ context.Context, gatheringID string) ([]storage.RSVP, error) {
	var records []storage.RSVP
	for _, record := range f.rsvps {
		if record.GatheringID == gatheringID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (f *fakeStore) CountGoing(_ context.Context, gatheringID string) (int, error) {
	count := 0
	for _, record := range f.rsvps {
		if record.GatheringID == gatheringID && record.Status == "going" {
			count++
		}
	}
	return count, nil
}

var _ storage.GatheringStore = (*fakeStore)(nil)
var _ storage.RSVPStore = (*fakeStore)(nil)

// hostPrincipal is the fixture used with seedGathering.
var hostPrincipal = Principal{UserID: "host-1", OrgID: "org-1"}

// seedGathering installs one draft gathering hosted by hostPrincipal.
func seedGathering(store *fakeStore, mutate func(*storage.Gathering)) storage.Gathering {
	now := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	gathering := storage.Gathering{
		GatheringID: "gath-1",
		OrgID:       hostPrincipal.OrgID,
		CreatedBy:   hostPrincipal.UserID,
		Status:      storage.GatheringStatusDraft,
		Title:       "Fireside Chat",
		HostIDs:     []string{hostPrincipal.UserID},
		Capacity:    10,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if mutate != nil {
		mutate(&gathering)
	}
	store.gatherings[gathering.GatheringID] = gathering
	return gathering
}

// completeSetup fills every setup field so the gathering is launch-ready.
func completeSetup(gathering *storage.Gathering) {
	start := time.Date(2026, time.September, 1, 18, 0, 0, 0, time.UTC)
	remote := true
	gathering.ExperienceTypeLabel = "Workshop"
	gathering.StartTime = &start
	gathering.Remote = &remote
	gathering.MeetingLink = "https://meet.example.com/gath-1"
	gathering.Description = "An evening workshop."
}

// testService builds a service over the fake store with a fixed clock and
// sequential ids.
func testService(store *fakeStore) *Service {
	service, err := NewService(store, store)
	if err != nil {
		panic(err)
	}
	counter := 0
	return service.
		WithClock(func() time.Time { return time.Date(2026, time.August, 21, 9, 0, 0, 0, time.UTC) }).
		WithIDGenerator(func() (string, error) {
			counter++
			return fmt.Sprintf("generated-%d", counter), nil
		})
}
