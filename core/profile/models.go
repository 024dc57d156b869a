package profile

import (
	"time"

	"github.com/trezcool/darasa/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

var Roles = []string{RoleStudent, RoleTeacher}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Preferences are kept on the device only; the remote profile table does not store them.
type Preferences struct {
	EmailNotifications  bool   `json:"email_notifications"`
	PushNotifications   bool   `json:"push_notifications"`
	AssignmentReminders bool   `json:"assignment_reminders"`
	LiveClassReminders  bool   `json:"live_class_reminders"`
	Theme               string `json:"theme" validate:"omitempty,oneof=light dark system"`
	Language            string `json:"language" validate:"max=35"`
	FontSize            string `json:"font_size" validate:"omitempty,oneof=small medium large"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications:  true,
		PushNotifications:   true,
		AssignmentReminders: true,
		LiveClassReminders:  true,
		Theme:               "system",
		Language:            "en",
		FontSize:            "medium",
	}
}

type UserProfile struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Role            string      `json:"role"`
	AvatarURL       string      `json:"avatar_url,omitempty"`
	Username        string      `json:"username,omitempty"`
	EnrolledClasses []string    `json:"enrolled_classes"`
	Preferences     Preferences `json:"preferences"`
	UpdatedAt       time.Time   `json:"updated_at"` // UTC
}

func (p UserProfile) IsTeacher() bool { return p.Role == RoleTeacher }

func (p UserProfile) IsEnrolled(classroomID string) bool {
	for _, id := range p.EnrolledClasses {
		if id == classroomID {
			return true
		}
	}
	return false
}

// Record converts the profile to the columns shared with the remote profile table.
func (p UserProfile) Record() Record {
	return Record{
		ID:        p.ID,
		FullName:  p.Name,
		Email:     p.Email,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		UpdatedAt: p.UpdatedAt,
	}
}

// normalize materializes EnrolledClasses; every write goes through it.
func (p *UserProfile) normalize() {
	if p.EnrolledClasses == nil {
		p.EnrolledClasses = []string{}
	}
}

// merge folds the remote record into the profile, keeping device-local fields.
func (p *UserProfile) merge(rec Record) {
	p.ID = rec.ID
	if rec.FullName != "" {
		p.Name = rec.FullName
	}
	if rec.Email != "" {
		p.Email = rec.Email
	}
	if rec.Role != "" {
		p.Role = rec.Role
	}
	p.AvatarURL = rec.AvatarURL
	if rec.UpdatedAt.After(p.UpdatedAt) {
		p.UpdatedAt = rec.UpdatedAt
	}
	p.normalize()
}

// Record is a row of the remote profile table.
type Record struct {
	ID        string
	FullName  string
	Email     string
	AvatarURL string
	Role      string
	UpdatedAt time.Time // UTC
}

// Identity is what the auth provider tells about the signed-in user.
type Identity struct {
	ID        string
	Name      string
	Email     string
	Role      string
	AvatarURL string
}

// NewFromIdentity builds the profile created on first sign-in.
func NewFromIdentity(id Identity) UserProfile {
	role := id.Role
	if role != RoleTeacher {
		role = RoleStudent
	}
	return UserProfile{
		ID:              id.ID,
		Name:            core.CleanString(id.Name),
		Email:           core.CleanString(id.Email, true /* lower */),
		Role:            role,
		AvatarURL:       id.AvatarURL,
		EnrolledClasses: []string{},
		Preferences:     DefaultPreferences(),
		UpdatedAt:       core.Now(),
	}
}

// UpdateProfile defines what a user may change on their own profile.
// Role and email come from the auth provider.
type UpdateProfile struct {
	Name      string  `json:"name" validate:"max=120"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Username  *string `json:"username" validate:"omitempty,alphanum,max=30"`
}

// Apply returns a copy of orig with the provided fields changed.
func (up UpdateProfile) Apply(orig UserProfile) UserProfile {
	if name := core.CleanString(up.Name); name != "" {
		orig.Name = name
	}
	if up.AvatarURL != nil {
		orig.AvatarURL = core.CleanString(*up.AvatarURL)
	}
	if up.Username != nil {
		orig.Username = core.CleanString(*up.Username, true /* lower */)
	}
	return orig
}
