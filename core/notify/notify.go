// Package notify emails classroom members about live class events.
package notify

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/liveclass"
	"github.com/trezcool/darasa/core/profile"
)

type LiveClassMailer struct {
	classrooms *classroom.Service
	profiles   *profile.Service
	mailSvc    core.EmailService
	logger     core.Logger
}

var _ liveclass.Notifier = (*LiveClassMailer)(nil) // interface compliance check

func NewLiveClassMailer(
	classrooms *classroom.Service,
	profiles *profile.Service,
	mailSvc core.EmailService,
	logger core.Logger,
) *LiveClassMailer {
	return &LiveClassMailer{
		classrooms: classrooms,
		profiles:   profiles,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

type liveClassData struct {
	Title         string
	ClassroomID   string
	ClassroomName string
	MeetingURL    string
}

// LiveClassStarted emails every member who wants email notifications about live classes.
// Failures are logged; the live class is already started.
func (m *LiveClassMailer) LiveClassStarted(ctx context.Context, lc liveclass.LiveClass) {
	c, err := m.classrooms.GetByID(ctx, lc.ClassroomID)
	if err != nil {
		m.logger.Error(fmt.Sprintf("notify.LiveClassStarted: classroom %s: %v", lc.ClassroomID, err), err)
		return
	}
	members, err := m.classrooms.ListMembers(ctx, c.ID)
	if err != nil {
		m.logger.Error(fmt.Sprintf("notify.LiveClassStarted: members of %s: %v", c.ID, err), err)
		return
	}

	recipients := make([]mail.Address, 0, len(members))
	for _, id := range members {
		p, err := m.profiles.GetByID(ctx, id)
		if err != nil || !wantsLiveClassMail(p) {
			continue
		}
		recipients = append(recipients, mail.Address{Name: p.Name, Address: p.Email})
	}
	if len(recipients) == 0 {
		return
	}

	data := liveClassData{
		Title:         lc.Title,
		ClassroomID:   c.ID,
		ClassroomName: c.Name,
		MeetingURL:    lc.MeetingURL,
	}
	msgs := make([]*core.EmailMessage, 0, len(recipients))
	for _, to := range recipients {
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{to},
			Subject:      fmt.Sprintf("%s is live", lc.Title),
			TemplateName: "live_class_started",
			TemplateData: data,
		})
	}
	m.mailSvc.SendMessages(msgs...)
}

func wantsLiveClassMail(p profile.UserProfile) bool {
	return p.Email != "" && p.Preferences.EmailNotifications && p.Preferences.LiveClassReminders
}
