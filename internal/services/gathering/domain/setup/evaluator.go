package setup

import (
	"github.com/mirefield/gatherspace/internal/services/gathering/domain/snapshot"
)

// The evaluators are pure, total functions from one field snapshot to one
// item status. Presence checks rely on the snapshot being normalized at the
// fetch boundary: strings are trimmed and id lists contain no empty entries.

// EvaluateGatheringType reports whether an experience type is set.
func EvaluateGatheringType(snap snapshot.Snapshot) ItemStatus {
	if !snap.Loaded {
		return StatusIncomplete
	}
	if snap.Fields.ExperienceTypeLabel == "" {
		return StatusIncomplete
	}
	return StatusComplete
}

// EvaluateTitleAndHosts requires a non-empty title and at least one host.
func EvaluateTitleAndHosts(snap snapshot.Snapshot) ItemStatus {
	if !snap.Loaded {
		return StatusIncomplete
	}
	if snap.Fields.Title == "" {
		return StatusIncomplete
	}
	if len(snap.Fields.HostIDs) == 0 {
		return StatusIncomplete
	}
	return StatusComplete
}

// EvaluateDateTime requires a start time. End time never gates this item.
func EvaluateDateTime(snap snapshot.Snapshot) ItemStatus {
	if !snap.Loaded {
		return StatusIncomplete
	}
	if snap.Fields.StartTime == nil || snap.Fields.StartTime.IsZero() {
		return StatusIncomplete
	}
	return StatusComplete
}

// EvaluateLocation branches on the remote flag.
//
// In-person gatherings complete on an address, or defer with the TBD flag.
// Remote gatherings complete only on a meeting link and have no TBD
// affordance. An unset remote flag is ambiguous and never satisfies.
func EvaluateLocation(snap snapshot.Snapshot) ItemStatus {
	if !snap.Loaded || snap.Fields.Remote == nil {
		return StatusIncomplete
	}
	if *snap.Fields.Remote {
		if snap.Fields.MeetingLink == "" {
			return StatusIncomplete
		}
		return StatusComplete
	}
	if snap.Fields.Address != "" {
		return StatusComplete
	}
	if snap.Fields.LocationTBD {
		return StatusCompleteTBD
	}
	return StatusIncomplete
}

// EvaluateMentor requires a mentor only for mentoring gatherings.
//
// For any other experience type the item is inapplicable and must not block
// launch, so it reports complete. An unloaded snapshot reports incomplete to
// avoid flashing a false "complete" during the initial fetch.
func EvaluateMentor(snap snapshot.Snapshot) ItemStatus {
	if !snap.Loaded {
		return StatusIncomplete
	}
	if snap.Fields.ExperienceTypeLabel != snapshot.ExperienceTypeMentoring {
		return StatusComplete
	}
	if len(snap.Fields.MentorIDs) == 0 {
		return StatusIncomplete
	}
	return StatusComplete
}

// EvaluateDescription requires a non-empty description.
func EvaluateDescription(snap snapshot.Snapshot) ItemStatus {
	if !snap.Loaded {
		return StatusIncomplete
	}
	if snap.Fields.Description == "" {
		return StatusIncomplete
	}
	return StatusComplete
}

// Evaluate runs the evaluator for one item key.
func Evaluate(key ItemKey, snap snapshot.Snapshot) ItemStatus {
	switch key {
	case ItemGatheringType:
		return EvaluateGatheringType(snap)
	case ItemTitleAndHosts:
		return EvaluateTitleAndHosts(snap)
	case ItemDateTime:
		return EvaluateDateTime(snap)
	case ItemLocation:
		return EvaluateLocation(snap)
	case ItemMentor:
		return EvaluateMentor(snap)
	case ItemDescription:
		return EvaluateDescription(snap)
	default:
		return StatusIncomplete
	}
}

// EvaluateAll evaluates every item key against one snapshot.
func EvaluateAll(snap snapshot.Snapshot) map[ItemKey]ItemState {
	states := make(map[ItemKey]ItemState, len(Keys()))
	for _, key := range Keys() {
		states[key] = ItemState{Status: Evaluate(key, snap)}
	}
	return states
}
