package snapshot

import (
	"testing"
	"time"
)

func TestNormalizeTrimsStrings(t *testing.T) {
	t.Parallel()

	fields := Normalize(Fields{
		GatheringID:         " gath-1 ",
		ExperienceTypeLabel: " Mentoring ",
		Title:               "  Book Club  ",
		Address:             " 12 Elm St ",
		MeetingLink:         " https://meet.example/abc ",
		Description:         "  hello  ",
	})

	if fields.GatheringID != "gath-1" {
		t.Fatalf("gathering id = %q, want %q", fields.GatheringID, "gath-1")
	}
	if fields.ExperienceTypeLabel != ExperienceTypeMentoring {
		t.Fatalf("experience type = %q, want %q", fields.ExperienceTypeLabel, ExperienceTypeMentoring)
	}
	if fields.Title != "Book Club" {
		t.Fatalf("title = %q, want %q", fields.Title, "Book Club")
	}
	if fields.Address != "12 Elm St" {
		t.Fatalf("address = %q, want %q", fields.Address, "12 Elm St")
	}
	if fields.Description != "hello" {
		t.Fatalf("description = %q, want %q", fields.Description, "hello")
	}
}

func TestNormalizeDropsEmptyIDs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ids  []string
		want int
	}{
		{"nil", nil, 0},
		{"all empty", []string{"", "   "}, 0},
		{"mixed", []string{" u1 ", "", "u2"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := Normalize(Fields{HostIDs: tt.ids})
			if len(fields.HostIDs) != tt.want {
				t.Fatalf("host ids = %v, want %d entries", fields.HostIDs, tt.want)
			}
		})
	}
}

func TestNewMarksLoadedAndStampsSeq(t *testing.T) {
	t.Parallel()

	snap := New(7, Fields{Title: " Book Club "})
	if !snap.Loaded {
		t.Fatal("expected loaded snapshot")
	}
	if snap.Seq != 7 {
		t.Fatalf("seq = %d, want 7", snap.Seq)
	}
	if snap.Fields.Title != "Book Club" {
		t.Fatalf("title = %q, want normalized value", snap.Fields.Title)
	}
}

func TestCloneDetachesListsAndPointers(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.September, 12, 18, 0, 0, 0, time.UTC)
	remote := true
	original := New(1, Fields{
		HostIDs:   []string{"u1", "u2"},
		MentorIDs: []string{"m1"},
		StartTime: &start,
		Remote:    &remote,
	})

	cloned := original.Clone()
	cloned.Fields.HostIDs[0] = "mutated"
	*cloned.Fields.Remote = false
	*cloned.Fields.StartTime = start.Add(time.Hour)

	if original.Fields.HostIDs[0] != "u1" {
		t.Fatalf("original host mutated: %v", original.Fields.HostIDs)
	}
	if *original.Fields.Remote != true {
		t.Fatal("original remote flag mutated")
	}
	if !original.Fields.StartTime.Equal(start) {
		t.Fatal("original start time mutated")
	}
}
