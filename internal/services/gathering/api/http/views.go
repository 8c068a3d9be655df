package httpapi

import (
	"time"

	"github.com/mirefield/gatherspace/internal/services/gathering/app"
	"github.com/mirefield/gatherspace/internal/services/gathering/storage"
)

type createGatheringRequest struct {
	Title          string `json:"title"`
	ExperienceType string `json:"experience_type"`
	Capacity       int    `json:"capacity"`
}

// setupItemRequest mirrors the editable setup fields. Pointer members
// distinguish an omitted field from a submitted zero value so partial item
// payloads never clobber stored columns.
type setupItemRequest struct {
	ExperienceType *string    `json:"experience_type"`
	Title          *string    `json:"title"`
	HostIDs        []string   `json:"host_ids"`
	ScribeID       *string    `json:"scribe_id"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	Remote         *bool      `json:"remote"`
	Address        *string    `json:"address"`
	MeetingLink    *string    `json:"meeting_link"`
	LocationTBD    *bool      `json:"location_tbd"`
	MentorIDs      []string   `json:"mentor_ids"`
	Description    *string    `json:"description"`
}

func (r setupItemRequest) toInput() app.SetupItemInput {
	return app.SetupItemInput{
		ExperienceTypeLabel: r.ExperienceType,
		Title:               r.Title,
		HostIDs:             r.HostIDs,
		ScribeID:            r.ScribeID,
		StartTime:           r.StartTime,
		EndTime:             r.EndTime,
		Remote:              r.Remote,
		Address:             r.Address,
		MeetingLink:         r.MeetingLink,
		LocationTBD:         r.LocationTBD,
		MentorIDs:           r.MentorIDs,
		Description:         r.Description,
	}
}

type rsvpRequest struct {
	Status string `json:"status"`
}

type gatheringView struct {
	GatheringID    string     `json:"gathering_id"`
	OrgID          string     `json:"org_id"`
	CreatedBy      string     `json:"created_by"`
	Status         string     `json:"status"`
	ExperienceType string     `json:"experience_type,omitempty"`
	Title          string     `json:"title"`
	HostIDs        []string   `json:"host_ids,omitempty"`
	ScribeID       string     `json:"scribe_id,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Remote         *bool      `json:"remote,omitempty"`
	Address        string     `json:"address,omitempty"`
	MeetingLink    string     `json:"meeting_link,omitempty"`
	LocationTBD    bool       `json:"location_tbd,omitempty"`
	MentorIDs      []string   `json:"mentor_ids,omitempty"`
	Description    string     `json:"description,omitempty"`
	Capacity       int        `json:"capacity,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func gatheringViewFrom(gathering storage.Gathering) gatheringView {
	return gatheringView{
		GatheringID:    gathering.GatheringID,
		OrgID:          gathering.OrgID,
		CreatedBy:      gathering.CreatedBy,
		Status:         string(gathering.Status),
		ExperienceType: gathering.ExperienceTypeLabel,
		Title:          gathering.Title,
		HostIDs:        gathering.HostIDs,
		ScribeID:       gathering.ScribeID,
		StartTime:      gathering.StartTime,
		EndTime:        gathering.EndTime,
		Remote:         gathering.Remote,
		Address:        gathering.Address,
		MeetingLink:    gathering.MeetingLink,
		LocationTBD:    gathering.LocationTBD,
		MentorIDs:      gathering.MentorIDs,
		Description:    gathering.Description,
		Capacity:       gathering.Capacity,
		CreatedAt:      gathering.CreatedAt,
		UpdatedAt:      gathering.UpdatedAt,
	}
}

type setupItemStateView struct {
	Key    string `json:"key"`
	Status string `json:"status"`
}

type setupStateView struct {
	GatheringID       string               `json:"gathering_id"`
	Items             []setupItemStateView `json:"items"`
	ReadyToLaunch     bool                 `json:"ready_to_launch"`
	CompletionPercent int                  `json:"completion_percent"`
	IncompleteItems   []string             `json:"incomplete_items,omitempty"`
}

func setupStateViewFrom(state app.SetupState) setupStateView {
	view := setupStateView{
		GatheringID:       state.Snapshot.Fields.GatheringID,
		Items:             make([]setupItemStateView, 0, len(state.Items)),
		ReadyToLaunch:     state.ReadyToLaunch,
		CompletionPercent: state.CompletionPercent,
	}
	for _, item := range state.Items {
		view.Items = append(view.Items, setupItemStateView{
			Key:    string(item.Key),
			Status: string(item.Status),
		})
	}
	for _, key := range state.IncompleteItems {
		view.IncompleteItems = append(view.IncompleteItems, string(key))
	}
	return view
}

type rsvpView struct {
	GatheringID string    `json:"gathering_id"`
	UserID      string    `json:"user_id"`
	Status      string    `json:"status"`
	RespondedAt time.Time `json:"responded_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func rsvpViewFrom(record storage.RSVP) rsvpView {
	return rsvpView{
		GatheringID: record.GatheringID,
		UserID:      record.UserID,
		Status:      string(record.Status),
		RespondedAt: record.RespondedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}
