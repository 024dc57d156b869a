package assignment

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Statuses, in their conventional order: pending -> submitted -> graded.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusGraded    = "graded"
)

var Statuses = []string{StatusPending, StatusSubmitted, StatusGraded}

// FileMeta describes a submitted file.
type FileMeta struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"` // MIME type
	URL  string `json:"url,omitempty"`
}

type Assignment struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description,omitempty"`
	File                 *FileMeta  `json:"file,omitempty"`
	CreatedAt            time.Time  `json:"created_at"` // UTC
	SubmittedAt          *time.Time `json:"submitted_at,omitempty"`
	Status               string     `json:"status"`
	Feedback             string     `json:"feedback,omitempty"`
	Grade                *float64   `json:"grade,omitempty"`
	ClassroomID          string     `json:"classroom_id"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	AllowLateSubmissions bool       `json:"allow_late_submissions"`
	Points               *int       `json:"points,omitempty"`
	StudentID            string     `json:"student_id,omitempty"`
	Locked               bool       `json:"locked"`
}

func assignmentID(a Assignment) string { return a.ID }

// IsSubmissionAllowed reports whether work may be handed in at now.
// A locked assignment never accepts work; one without due date always does;
// past the due date it depends on AllowLateSubmissions.
func (a Assignment) IsSubmissionAllowed(now time.Time) bool {
	switch {
	case a.Locked:
		return false
	case a.DueDate == nil:
		return true
	case !now.After(*a.DueDate):
		return true
	default:
		return a.AllowLateSubmissions
	}
}

// IsLate reports whether the work was (or would be, when unsubmitted) handed in after the due date.
func (a Assignment) IsLate(now time.Time) bool {
	if a.DueDate == nil {
		return false
	}
	if a.SubmittedAt != nil {
		now = *a.SubmittedAt
	}
	return now.After(*a.DueDate)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title                string     `json:"title" validate:"required,notblank,max=200"`
	Description          string     `json:"description" validate:"max=5000"`
	ClassroomID          string     `json:"classroom_id" validate:"required"`
	DueDate              *time.Time `json:"due_date"`
	AllowLateSubmissions bool       `json:"allow_late_submissions"`
	Points               *int       `json:"points" validate:"omitempty,min=0,max=1000"`
	StudentID            string     `json:"student_id"`
}

func (na *NewAssignment) Clean() {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	na.ClassroomID = core.CleanString(na.ClassroomID)
	na.StudentID = core.CleanString(na.StudentID)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	Title                string     `json:"title" validate:"max=200"`
	Description          *string    `json:"description" validate:"omitempty,max=5000"`
	DueDate              *time.Time `json:"due_date"`
	ClearDueDate         bool       `json:"clear_due_date"`
	AllowLateSubmissions *bool      `json:"allow_late_submissions"`
	Points               *int       `json:"points" validate:"omitempty,min=0,max=1000"`
	Locked               *bool      `json:"locked"`
}

// Apply returns a copy of orig with the provided fields changed.
func (ua UpdateAssignment) Apply(orig Assignment) Assignment {
	if title := core.CleanString(ua.Title); title != "" {
		orig.Title = title
	}
	if ua.Description != nil {
		orig.Description = core.CleanString(*ua.Description)
	}
	if ua.ClearDueDate {
		orig.DueDate = nil
	} else if ua.DueDate != nil {
		due := ua.DueDate.UTC()
		orig.DueDate = &due
	}
	if ua.AllowLateSubmissions != nil {
		orig.AllowLateSubmissions = *ua.AllowLateSubmissions
	}
	if ua.Points != nil {
		orig.Points = ua.Points
	}
	if ua.Locked != nil {
		orig.Locked = *ua.Locked
	}
	return orig
}

type GradeAssignment struct {
	Grade    float64 `json:"grade" validate:"min=0"`
	Feedback string  `json:"feedback" validate:"max=5000"`
}

type QueryFilter struct {
	ClassroomID string `query:"classroom_id"`
	StudentID   string `query:"student_id"`
	Status      string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.ClassroomID == "" && qf.StudentID == "" && qf.Status == ""
}

func (qf *QueryFilter) Clean() {
	qf.ClassroomID = core.CleanString(qf.ClassroomID)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}

func (qf QueryFilter) Match(a Assignment) bool {
	return (qf.ClassroomID == "" || a.ClassroomID == qf.ClassroomID) &&
		(qf.StudentID == "" || a.StudentID == qf.StudentID) &&
		(qf.Status == "" || a.Status == qf.Status)
}
