package setup

import (
	"math"

	"github.com/mirefield/gatherspace/internal/services/gathering/domain/snapshot"
)

// ItemState is the tracked state of one setup item inside a session.
type ItemState struct {
	Status ItemStatus
	// Data carries optional item-scoped payload attached by local overrides.
	Data any
}

// Session aggregates per-item setup statuses for one gathering.
//
// A session recomputes wholesale from each accepted snapshot and may be
// locally overridden between refreshes for optimistic display. Overrides are
// not authoritative: the next accepted recompute always wins. Sessions are
// owned by a single caller and are not safe for concurrent use.
type Session struct {
	items      map[ItemKey]ItemState
	appliedSeq uint64
	recomputed bool
}

// NewSession constructs a session with every item incomplete.
func NewSession() *Session {
	items := make(map[ItemKey]ItemState, len(Keys()))
	for _, key := range Keys() {
		items[key] = ItemState{Status: StatusIncomplete}
	}
	return &Session{items: items}
}

// NewSessionFromSnapshot constructs a session and applies one snapshot.
func NewSessionFromSnapshot(snap snapshot.Snapshot) *Session {
	session := NewSession()
	session.Recompute(snap)
	return session
}

// Recompute replaces the full status map from one snapshot.
//
// Snapshots are ordered by their fetch sequence number: a snapshot whose Seq
// is below the last applied one lost the race to a newer refresh and is
// rejected. Recompute reports whether the snapshot was applied.
func (s *Session) Recompute(snap snapshot.Snapshot) bool {
	if s == nil {
		return false
	}
	if s.recomputed && snap.Seq < s.appliedSeq {
		return false
	}
	s.items = EvaluateAll(snap)
	s.appliedSeq = snap.Seq
	s.recomputed = true
	return true
}

// ItemStatus returns the tracked status for one key.
func (s *Session) ItemStatus(key ItemKey) ItemStatus {
	if s == nil {
		return StatusIncomplete
	}
	state, ok := s.items[key]
	if !ok {
		return StatusIncomplete
	}
	return state.Status
}

// ItemData returns the optional payload attached by a local override.
func (s *Session) ItemData(key ItemKey) any {
	if s == nil {
		return nil
	}
	return s.items[key].Data
}

// ItemComplete reports whether the item's status satisfies launch readiness.
func (s *Session) ItemComplete(key ItemKey) bool {
	return s.ItemStatus(key).Satisfied()
}

// ReadyToLaunch reports whether every item is satisfied. Launch readiness is
// strictly all-or-nothing.
func (s *Session) ReadyToLaunch() bool {
	for _, key := range Keys() {
		if !s.ItemComplete(key) {
			return false
		}
	}
	return true
}

// IncompleteItems returns the keys still blocking launch, in display order.
func (s *Session) IncompleteItems() []ItemKey {
	var blocked []ItemKey
	for _, key := range Keys() {
		if !s.ItemComplete(key) {
			blocked = append(blocked, key)
		}
	}
	return blocked
}

// CompletionPercent returns the rounded share of satisfied items, for
// progress display only. It takes part in no gating decision.
func (s *Session) CompletionPercent() int {
	satisfied := 0
	for _, key := range Keys() {
		if s.ItemComplete(key) {
			satisfied++
		}
	}
	return int(math.Round(100 * float64(satisfied) / float64(len(Keys()))))
}

// CompleteItem locally overrides one item to complete.
func (s *Session) CompleteItem(key ItemKey, data any) {
	s.override(key, StatusComplete, data)
}

// CompleteItemTBD locally overrides one item to complete-but-deferred.
func (s *Session) CompleteItemTBD(key ItemKey, data any) {
	s.override(key, StatusCompleteTBD, data)
}

// MarkIncomplete locally overrides one item back to incomplete.
func (s *Session) MarkIncomplete(key ItemKey) {
	s.override(key, StatusIncomplete, nil)
}

// AppliedSeq returns the sequence number of the last applied snapshot.
func (s *Session) AppliedSeq() uint64 {
	if s == nil {
		return 0
	}
	return s.appliedSeq
}

func (s *Session) override(key ItemKey, status ItemStatus, data any) {
	if s == nil {
		return
	}
	if _, ok := s.items[key]; !ok {
		return
	}
	s.items[key] = ItemState{Status: status, Data: data}
}
