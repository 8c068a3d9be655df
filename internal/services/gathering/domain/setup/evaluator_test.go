package setup

import (
	"testing"
	"time"

	"github.com/mirefield/gatherspace/internal/services/gathering/domain/snapshot"
)

func boolPtr(v bool) *bool { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func loaded(fields snapshot.Fields) snapshot.Snapshot {
	return snapshot.New(1, fields)
}

func TestEvaluateGatheringType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap snapshot.Snapshot
		want ItemStatus
	}{
		{"unloaded", snapshot.Snapshot{}, StatusIncomplete},
		{"missing", loaded(snapshot.Fields{}), StatusIncomplete},
		{"whitespace", loaded(snapshot.Fields{ExperienceTypeLabel: "   "}), StatusIncomplete},
		{"present", loaded(snapshot.Fields{ExperienceTypeLabel: "Social"}), StatusComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateGatheringType(tt.snap); got != tt.want {
				t.Fatalf("status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateTitleAndHosts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap snapshot.Snapshot
		want ItemStatus
	}{
		{"complete", loaded(snapshot.Fields{Title: "Book Club", HostIDs: []string{"u1"}}), StatusComplete},
		{"blank title", loaded(snapshot.Fields{Title: "   ", HostIDs: []string{"u1"}}), StatusIncomplete},
		{"no hosts", loaded(snapshot.Fields{Title: "Book Club"}), StatusIncomplete},
		{"empty host entries", loaded(snapshot.Fields{Title: "Book Club", HostIDs: []string{"", "  "}}), StatusIncomplete},
		{"unloaded", snapshot.Snapshot{}, StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateTitleAndHosts(tt.snap); got != tt.want {
				t.Fatalf("status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateDateTime(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.October, 3, 19, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		snap snapshot.Snapshot
		want ItemStatus
	}{
		{"start set", loaded(snapshot.Fields{StartTime: timePtr(start)}), StatusComplete},
		{"start only gates", loaded(snapshot.Fields{StartTime: timePtr(start), EndTime: nil}), StatusComplete},
		{"missing", loaded(snapshot.Fields{}), StatusIncomplete},
		{"zero time", loaded(snapshot.Fields{StartTime: timePtr(time.Time{})}), StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateDateTime(tt.snap); got != tt.want {
				t.Fatalf("status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap snapshot.Snapshot
		want ItemStatus
	}{
		{"in-person with address", loaded(snapshot.Fields{Remote: boolPtr(false), Address: "12 Elm St"}), StatusComplete},
		{"in-person tbd", loaded(snapshot.Fields{Remote: boolPtr(false), Address: "", LocationTBD: true}), StatusCompleteTBD},
		{"in-person blank address no tbd", loaded(snapshot.Fields{Remote: boolPtr(false), Address: "   "}), StatusIncomplete},
		{"remote with link", loaded(snapshot.Fields{Remote: boolPtr(true), MeetingLink: "https://meet.example/x"}), StatusComplete},
		{"remote without link", loaded(snapshot.Fields{Remote: boolPtr(true)}), StatusIncomplete},
		{"remote ignores tbd", loaded(snapshot.Fields{Remote: boolPtr(true), LocationTBD: true}), StatusIncomplete},
		{"remote unset", loaded(snapshot.Fields{Address: "12 Elm St", LocationTBD: true}), StatusIncomplete},
		{"unloaded", snapshot.Snapshot{}, StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateLocation(tt.snap); got != tt.want {
				t.Fatalf("status = %v, want %v", got, tt.want)
			}
		})
	}
}

// Remote gatherings must never reach the deferred state; TBD is an in-person
// affordance only.
func TestEvaluateLocationRemoteNeverTBD(t *testing.T) {
	t.Parallel()

	variants := []snapshot.Fields{
		{Remote: boolPtr(true)},
		{Remote: boolPtr(true), LocationTBD: true},
		{Remote: boolPtr(true), Address: "12 Elm St", LocationTBD: true},
		{Remote: boolPtr(true), MeetingLink: "https://meet.example/x", LocationTBD: true},
	}
	for _, fields := range variants {
		if got := EvaluateLocation(loaded(fields)); got == StatusCompleteTBD {
			t.Fatalf("remote location reached TBD from %+v", fields)
		}
	}
}

func TestEvaluateMentor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap snapshot.Snapshot
		want ItemStatus
	}{
		{"mentoring with mentor", loaded(snapshot.Fields{ExperienceTypeLabel: "Mentoring", MentorIDs: []string{"m1"}}), StatusComplete},
		{"mentoring without mentor", loaded(snapshot.Fields{ExperienceTypeLabel: "Mentoring"}), StatusIncomplete},
		{"mentoring empty list", loaded(snapshot.Fields{ExperienceTypeLabel: "Mentoring", MentorIDs: []string{}}), StatusIncomplete},
		{"social ignores mentors", loaded(snapshot.Fields{ExperienceTypeLabel: "Social"}), StatusComplete},
		{"social with empty mentors", loaded(snapshot.Fields{ExperienceTypeLabel: "Social", MentorIDs: []string{}}), StatusComplete},
		{"unloaded stays incomplete", snapshot.Snapshot{}, StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateMentor(tt.snap); got != tt.want {
				t.Fatalf("status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		snap snapshot.Snapshot
		want ItemStatus
	}{
		{"present", loaded(snapshot.Fields{Description: "An evening of short stories."}), StatusComplete},
		{"blank", loaded(snapshot.Fields{Description: "   "}), StatusIncomplete},
		{"missing", loaded(snapshot.Fields{}), StatusIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateDescription(tt.snap); got != tt.want {
				t.Fatalf("status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateAllCoversEveryKey(t *testing.T) {
	t.Parallel()

	states := EvaluateAll(loaded(snapshot.Fields{}))
	if len(states) != len(Keys()) {
		t.Fatalf("evaluated %d items, want %d", len(states), len(Keys()))
	}
	for _, key := range Keys() {
		if _, ok := states[key]; !ok {
			t.Fatalf("missing state for %q", key)
		}
	}
}

func TestEvaluateUnknownKey(t *testing.T) {
	t.Parallel()

	if got := Evaluate(ItemKey("bogus"), loaded(snapshot.Fields{})); got != StatusIncomplete {
		t.Fatalf("status = %v, want %v", got, StatusIncomplete)
	}
}
