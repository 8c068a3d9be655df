package setup

import (
	"reflect"
	"testing"
	"time"

	"github.com/mirefield/gatherspace/internal/services/gathering/domain/snapshot"
)

func fullyConfiguredFields() snapshot.Fields {
	start := time.Date(2026, time.October, 3, 19, 0, 0, 0, time.UTC)
	remote := false
	return snapshot.Fields{
		ExperienceTypeLabel: "Social",
		Title:               "Book Club",
		HostIDs:             []string{"u1"},
		StartTime:           &start,
		Remote:              &remote,
		Address:             "12 Elm St",
		Description:         "An evening of short stories.",
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	t.Parallel()

	snap := snapshot.New(1, fullyConfiguredFields())
	session := NewSessionFromSnapshot(snap)

	first := make(map[ItemKey]ItemStatus, len(Keys()))
	for _, key := range Keys() {
		first[key] = session.ItemStatus(key)
	}

	if !session.Recompute(snap) {
		t.Fatal("expected same-seq recompute to apply")
	}
	second := make(map[ItemKey]ItemStatus, len(Keys()))
	for _, key := range Keys() {
		second[key] = session.ItemStatus(key)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("status map changed across identical recomputes: %v vs %v", first, second)
	}
}

func TestRecomputeRejectsStaleSeq(t *testing.T) {
	t.Parallel()

	session := NewSession()
	fresh := snapshot.New(5, fullyConfiguredFields())
	if !session.Recompute(fresh) {
		t.Fatal("expected fresh snapshot to apply")
	}

	stale := snapshot.New(3, snapshot.Fields{})
	if session.Recompute(stale) {
		t.Fatal("expected stale snapshot to be rejected")
	}
	if !session.ReadyToLaunch() {
		t.Fatal("stale recompute must not overwrite applied state")
	}
	if session.AppliedSeq() != 5 {
		t.Fatalf("applied seq = %d, want 5", session.AppliedSeq())
	}
}

func TestReadyToLaunchAllOrNothing(t *testing.T) {
	t.Parallel()

	session := NewSessionFromSnapshot(snapshot.New(1, fullyConfiguredFields()))
	if !session.ReadyToLaunch() {
		t.Fatal("expected fully configured gathering to be ready")
	}
	for _, key := range Keys() {
		if !session.ItemComplete(key) {
			t.Fatalf("item %q incomplete on ready session", key)
		}
	}

	session.MarkIncomplete(ItemDescription)
	if session.ReadyToLaunch() {
		t.Fatal("single incomplete item must block launch")
	}
	blocked := session.IncompleteItems()
	if len(blocked) != 1 || blocked[0] != ItemDescription {
		t.Fatalf("incomplete items = %v, want [description]", blocked)
	}
}

func TestCompletionPercent(t *testing.T) {
	t.Parallel()

	session := NewSession()
	if got := session.CompletionPercent(); got != 0 {
		t.Fatalf("empty session percent = %d, want 0", got)
	}

	session.CompleteItem(ItemTitleAndHosts, nil)
	if got := session.CompletionPercent(); got != 17 {
		t.Fatalf("one of six percent = %d, want 17", got)
	}

	session.CompleteItem(ItemGatheringType, nil)
	session.CompleteItem(ItemDateTime, nil)
	if got := session.CompletionPercent(); got != 50 {
		t.Fatalf("three of six percent = %d, want 50", got)
	}

	session.Recompute(snapshot.New(2, fullyConfiguredFields()))
	if got := session.CompletionPercent(); got != 100 {
		t.Fatalf("full session percent = %d, want 100", got)
	}
}

func TestLocationTBDSatisfiesLaunch(t *testing.T) {
	t.Parallel()

	fields := fullyConfiguredFields()
	fields.Address = ""
	fields.LocationTBD = true
	session := NewSessionFromSnapshot(snapshot.New(1, fields))

	if status := session.ItemStatus(ItemLocation); status != StatusCompleteTBD {
		t.Fatalf("location status = %v, want %v", status, StatusCompleteTBD)
	}
	if !session.ItemComplete(ItemLocation) {
		t.Fatal("deferred location must satisfy readiness")
	}
	if !session.ReadyToLaunch() {
		t.Fatal("expected ready with deferred location")
	}
}

func TestLocalOverridesYieldToNextRecompute(t *testing.T) {
	t.Parallel()

	session := NewSessionFromSnapshot(snapshot.New(1, snapshot.Fields{}))
	session.CompleteItem(ItemDescription, map[string]string{"description": "draft"})

	if !session.ItemComplete(ItemDescription) {
		t.Fatal("expected optimistic override to apply")
	}
	if data := session.ItemData(ItemDescription); data == nil {
		t.Fatal("expected override data to be retained")
	}

	if !session.Recompute(snapshot.New(2, snapshot.Fields{})) {
		t.Fatal("expected newer snapshot to apply")
	}
	if session.ItemComplete(ItemDescription) {
		t.Fatal("recompute must win over local override")
	}
	if data := session.ItemData(ItemDescription); data != nil {
		t.Fatalf("override data survived recompute: %v", data)
	}
}

func TestOverrideUnknownKeyIgnored(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.CompleteItem(ItemKey("bogus"), nil)
	if got := session.CompletionPercent(); got != 0 {
		t.Fatalf("percent = %d, want 0 after bogus override", got)
	}
}

func TestNormalizeItemKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  ItemKey
		ok    bool
	}{
		{"exact", "location", ItemLocation, true},
		{"trimmed", "  titleAndHosts ", ItemTitleAndHosts, true},
		{"case folded", "DATETIME", ItemDateTime, true},
		{"empty", "   ", "", false},
		{"unknown", "venue", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeItemKey(tt.value)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNilSessionIsInert(t *testing.T) {
	t.Parallel()

	var session *Session
	if session.Recompute(snapshot.New(1, snapshot.Fields{})) {
		t.Fatal("nil session must reject recompute")
	}
	if session.ItemStatus(ItemLocation) != StatusIncomplete {
		t.Fatal("nil session must report incomplete")
	}
	session.CompleteItem(ItemLocation, nil)
}
