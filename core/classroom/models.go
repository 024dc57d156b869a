package classroom

import (
	"strings"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/liveclass"
)

type Classroom struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Section        string                `json:"section,omitempty"`
	Subject        string                `json:"subject,omitempty"`
	Description    string                `json:"description,omitempty"`
	CreatedAt      time.Time             `json:"created_at"` // UTC
	TeacherName    string                `json:"teacher_name"`
	TeacherID      string                `json:"teacher_id,omitempty"`
	EnrollmentCode string                `json:"enrollment_code"`
	CoverImage     string                `json:"cover_image,omitempty"`
	LiveClasses    []liveclass.LiveClass `json:"live_classes,omitempty"` // read-side embedding, never persisted remotely
}

func classroomID(c Classroom) string { return c.ID }

// HasCode reports whether code (in any case, with surrounding whitespace) is the classroom's code.
func (c Classroom) HasCode(code string) bool {
	return c.EnrollmentCode != "" && c.EnrollmentCode == core.NormalizeCode(code)
}

// NewClassroom contains information needed to create a new Classroom.
type NewClassroom struct {
	Name        string `json:"name" validate:"required,notblank,max=120"`
	Section     string `json:"section" validate:"max=60"`
	Subject     string `json:"subject" validate:"max=60"`
	Description string `json:"description" validate:"max=2000"`
	CoverImage  string `json:"cover_image" validate:"omitempty,url"`
	TeacherName string `json:"-"`
	TeacherID   string `json:"-"`
}

func (nc *NewClassroom) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Section = core.CleanString(nc.Section)
	nc.Subject = core.CleanString(nc.Subject)
	nc.Description = core.CleanString(nc.Description)
	nc.CoverImage = core.CleanString(nc.CoverImage)
}

// UpdateClassroom defines what information may be provided to modify an existing Classroom.
// Empty fields keep their current value.
type UpdateClassroom struct {
	Name        string  `json:"name" validate:"max=120"`
	Section     *string `json:"section" validate:"omitempty,max=60"`
	Subject     *string `json:"subject" validate:"omitempty,max=60"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	CoverImage  *string `json:"cover_image" validate:"omitempty,url"`
}

// Apply returns a copy of orig with the provided fields changed.
func (uc UpdateClassroom) Apply(orig Classroom) Classroom {
	if name := core.CleanString(uc.Name); name != "" {
		orig.Name = name
	}
	if uc.Section != nil {
		orig.Section = core.CleanString(*uc.Section)
	}
	if uc.Subject != nil {
		orig.Subject = core.CleanString(*uc.Subject)
	}
	if uc.Description != nil {
		orig.Description = core.CleanString(*uc.Description)
	}
	if uc.CoverImage != nil {
		orig.CoverImage = core.CleanString(*uc.CoverImage)
	}
	return orig
}

type JoinClassroom struct {
	Code string `json:"code" validate:"required,enrollcode"`
}

type QueryFilter struct {
	TeacherID string `query:"teacher_id"`
	Search    string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.TeacherID == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.TeacherID = core.CleanString(qf.TeacherID)
	qf.Search = core.CleanString(qf.Search)
}

// Match applies the filter in memory, the way the remote query does.
// Search is a case-insensitive match on one of Name, Section or Subject.
func (qf QueryFilter) Match(c Classroom) bool {
	if qf.TeacherID != "" && c.TeacherID != qf.TeacherID {
		return false
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		return strings.Contains(strings.ToLower(c.Name), s) ||
			strings.Contains(strings.ToLower(c.Section), s) ||
			strings.Contains(strings.ToLower(c.Subject), s)
	}
	return true
}
