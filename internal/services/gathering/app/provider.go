package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	apperrors "github.com/mirefield/gatherspace/internal/errors"
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/snapshot"
	"github.com/mirefield/gatherspace/internal/services/gathering/storage"
)

// SnapshotProvider fetches field snapshots for one caller.
//
// Every fetch returns the full snapshot shape stamped with a monotonically
// increasing sequence number, so competing refreshes can be ordered by the
// setup session. The provider binds its principal at construction.
type SnapshotProvider struct {
	store     storage.GatheringStore
	principal Principal
	seq       atomic.Uint64
}

// NewSnapshotProvider builds a provider bound to one principal.
func NewSnapshotProvider(store storage.GatheringStore, principal Principal) (*SnapshotProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("gathering store is required")
	}
	if err := principal.Validate(); err != nil {
		return nil, err
	}
	return &SnapshotProvider{store: store, principal: principal}, nil
}

// FetchFieldSnapshot loads one gathering's setup fields as a loaded snapshot.
//
// A fetch failure returns the error untouched; callers keep whatever state
// they last computed and never retry automatically.
func (p *SnapshotProvider) FetchFieldSnapshot(ctx context.Context, gatheringID string) (snapshot.Snapshot, error) {
	if p == nil || p.store == nil {
		return snapshot.Snapshot{}, fmt.Errorf("snapshot provider is not configured")
	}
	gathering, err := p.store.GetGathering(ctx, gatheringID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return snapshot.Snapshot{}, apperrors.E(apperrors.CodeGatheringNotFound, "gathering not found")
		}
		return snapshot.Snapshot{}, fmt.Errorf("fetch gathering: %w", err)
	}
	// Gatherings outside the caller's org are indistinguishable from missing.
	if gathering.OrgID != p.principal.OrgID {
		return snapshot.Snapshot{}, apperrors.E(apperrors.CodeGatheringNotFound, "gathering not found")
	}
	return snapshot.New(p.seq.Add(1), snapshotFields(gathering)), nil
}

// snapshotFields maps a stored gathering onto the snapshot field shape.
func snapshotFields(gathering storage.Gathering) snapshot.Fields {
	return snapshot.Fields{
		GatheringID:         gathering.GatheringID,
		ExperienceTypeLabel: gathering.ExperienceTypeLabel,
		Title:               gathering.Title,
		HostIDs:             gathering.HostIDs,
		ScribeID:            gathering.ScribeID,
		StartTime:           gathering.StartTime,
		EndTime:             gathering.EndTime,
		Remote:              gathering.Remote,
		Address:             gathering.Address,
		MeetingLink:         gathering.MeetingLink,
		LocationTBD:         gathering.LocationTBD,
		MentorIDs:           gathering.MentorIDs,
		Description:         gathering.Description,
	}
}
