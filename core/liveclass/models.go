package liveclass

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Statuses, in their conventional order: scheduled -> live -> completed | cancelled.
const (
	StatusScheduled = "scheduled"
	StatusLive      = "live"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusScheduled, StatusLive, StatusCompleted, StatusCancelled}

type LiveClass struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	ScheduledStart time.Time  `json:"scheduled_start"` // UTC
	ScheduledEnd   time.Time  `json:"scheduled_end"`   // UTC
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualEnd      *time.Time `json:"actual_end,omitempty"`
	Status         string     `json:"status"`
	ClassroomID    string     `json:"classroom_id"`
	CreatedBy      string     `json:"created_by"`
	MeetingURL     string     `json:"meeting_url,omitempty"`
	RecordingURL   string     `json:"recording_url,omitempty"`
	CreatedAt      time.Time  `json:"created_at"` // UTC
}

func liveClassID(lc LiveClass) string { return lc.ID }

// IsOver reports whether the live class was completed or cancelled.
func (lc LiveClass) IsOver() bool {
	return lc.Status == StatusCompleted || lc.Status == StatusCancelled
}

// NewLiveClass contains information needed to schedule a LiveClass.
type NewLiveClass struct {
	Title          string    `json:"title" validate:"required,notblank,max=120"`
	Description    string    `json:"description" validate:"max=2000"`
	ScheduledStart time.Time `json:"scheduled_start" validate:"required"`
	ScheduledEnd   time.Time `json:"scheduled_end" validate:"required,gtfield=ScheduledStart"`
	ClassroomID    string    `json:"classroom_id" validate:"required"`
	MeetingURL     string    `json:"meeting_url" validate:"omitempty,url"`
	CreatedBy      string    `json:"-"`
}

func (nl *NewLiveClass) Clean() {
	nl.Title = core.CleanString(nl.Title)
	nl.Description = core.CleanString(nl.Description)
	nl.ClassroomID = core.CleanString(nl.ClassroomID)
	nl.MeetingURL = core.CleanString(nl.MeetingURL)
}

// UpdateLiveClass defines what information may be provided to modify an existing LiveClass.
type UpdateLiveClass struct {
	Title          string     `json:"title" validate:"max=120"`
	Description    *string    `json:"description" validate:"omitempty,max=2000"`
	ScheduledStart *time.Time `json:"scheduled_start"`
	ScheduledEnd   *time.Time `json:"scheduled_end"`
	MeetingURL     *string    `json:"meeting_url" validate:"omitempty,url"`
	RecordingURL   *string    `json:"recording_url" validate:"omitempty,url"`
}

// Apply returns a copy of orig with the provided fields changed.
func (ul UpdateLiveClass) Apply(orig LiveClass) LiveClass {
	if title := core.CleanString(ul.Title); title != "" {
		orig.Title = title
	}
	if ul.Description != nil {
		orig.Description = core.CleanString(*ul.Description)
	}
	if ul.ScheduledStart != nil {
		orig.ScheduledStart = ul.ScheduledStart.UTC()
	}
	if ul.ScheduledEnd != nil {
		orig.ScheduledEnd = ul.ScheduledEnd.UTC()
	}
	if ul.MeetingURL != nil {
		orig.MeetingURL = core.CleanString(*ul.MeetingURL)
	}
	if ul.RecordingURL != nil {
		orig.RecordingURL = core.CleanString(*ul.RecordingURL)
	}
	return orig
}

type QueryFilter struct {
	ClassroomID string `query:"classroom_id"`
	Status      string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClassroomID == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.ClassroomID = core.CleanString(qf.ClassroomID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

func (qf QueryFilter) Match(lc LiveClass) bool {
	return (qf.ClassroomID == "" || lc.ClassroomID == qf.ClassroomID) &&
		(qf.Status == "" || lc.Status == qf.Status)
}
