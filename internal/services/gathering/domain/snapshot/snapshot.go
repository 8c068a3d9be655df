// Package snapshot defines the read-only field snapshot of one gathering.
//
// A snapshot is a point-in-time view of a gathering's persisted setup fields.
// It is produced by a provider at the fetch boundary, normalized exactly once
// there, and never mutated afterward: all derived state is recomputed from it.
package snapshot

import (
	"strings"
	"time"
)

// ExperienceTypeMentoring is the experience type label that makes the mentor
// setup item applicable.
const ExperienceTypeMentoring = "Mentoring"

// Fields holds the persisted setup fields of one gathering.
//
// Optional booleans that distinguish "unset" from "false" (Remote) are
// pointers; everything else treats the zero value as absent.
type Fields struct {
	GatheringID         string
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
}

// Snapshot is one fetched view of a gathering's fields.
//
// Loaded is false while no fetch has completed yet; evaluators treat an
// unloaded snapshot as satisfying nothing. Seq is the provider's monotonic
// fetch sequence number and orders competing refreshes.
type Snapshot struct {
	Loaded bool
	Seq    uint64
	Fields Fields
}

// Normalize trims string fields and drops empty list entries.
//
// Normalization runs once at the fetch boundary so downstream evaluators can
// check presence without re-trimming or null-chaining.
func Normalize(fields Fields) Fields {
	normalized := fields
	normalized.GatheringID = strings.TrimSpace(fields.GatheringID)
	normalized.ExperienceTypeLabel = strings.TrimSpace(fields.ExperienceTypeLabel)
	normalized.Title = strings.TrimSpace(fields.Title)
	normalized.ScribeID = strings.TrimSpace(fields.ScribeID)
	normalized.Address = strings.TrimSpace(fields.Address)
	normalized.MeetingLink = strings.TrimSpace(fields.MeetingLink)
	normalized.Description = strings.TrimSpace(fields.Description)
	normalized.HostIDs = normalizeIDs(fields.HostIDs)
	normalized.MentorIDs = normalizeIDs(fields.MentorIDs)
	return normalized
}

// New builds a loaded snapshot from normalized fields.
func New(seq uint64, fields Fields) Snapshot {
	return Snapshot{
		Loaded: true,
		Seq:    seq,
		Fields: Normalize(fields),
	}
}

// Clone copies the snapshot so holders cannot alias its list fields.
func (s Snapshot) Clone() Snapshot {
	result := s
	result.Fields.HostIDs = cloneIDs(s.Fields.HostIDs)
	result.Fields.MentorIDs = cloneIDs(s.Fields.MentorIDs)
	if s.Fields.StartTime != nil {
		start := *s.Fields.StartTime
		result.Fields.StartTime = &start
	}
	if s.Fields.EndTime != nil {
		end := *s.Fields.EndTime
		result.Fields.EndTime = &end
	}
	if s.Fields.Remote != nil {
		remote := *s.Fields.Remote
		result.Fields.Remote = &remote
	}
	return result
}

// normalizeIDs trims entries and discards the empty ones.
func normalizeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	result := make([]string, 0, len(ids))
	for _, raw := range ids {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func cloneIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	result := make([]string, len(ids))
	copy(result, ids)
	return result
}
