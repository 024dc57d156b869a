package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/liveclass"
	"github.com/trezcool/darasa/core/notify"
	"github.com/trezcool/darasa/core/profile"
	emailsvc "github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/testutil"
)

func TestLiveClassMailer_LiveClassStarted(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	emailsvc.ResetSentMessages()
	env.LiveClasses.SetNotifier(notify.NewLiveClassMailer(
		env.Classrooms, env.Profiles, emailsvc.NewConsoleServiceMock(env.Conf), env.Logger,
	))

	c := testutil.CreateClassroom(t, env.Classrooms, "Physics", "t1")
	testutil.CreateProfile(t, env.Profiles, "s1", "Ada", profile.RoleStudent)
	quiet := testutil.CreateProfile(t, env.Profiles, "s2", "Bob", profile.RoleStudent)
	quiet.Preferences.LiveClassReminders = false
	if _, err := env.Profiles.UpdatePreferences(ctx, quiet.ID, quiet.Preferences); err != nil {
		t.Fatalf("UpdatePreferences() failed: %v", err)
	}
	for _, uid := range []string{"s1", "s2"} {
		if _, _, err := env.Classrooms.JoinByCode(ctx, c.EnrollmentCode, uid); err != nil {
			t.Fatalf("JoinByCode(%s) failed: %v", uid, err)
		}
	}

	start := time.Now().Add(time.Hour)
	lc, _, err := env.LiveClasses.Create(ctx, liveclass.NewLiveClass{
		Title:          "Optics",
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Hour),
		ClassroomID:    c.ID,
		CreatedBy:      "t1",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if _, _, err := env.LiveClasses.Start(ctx, lc.ID); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	sent := emailsvc.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %d messages; want 1", len(sent))
	}
	if got := sent[0].To[0].Address; got != "s1@example.com" {
		t.Errorf("recipient = %s; want s1@example.com", got)
	}
	if sent[0].TextContent == "" || sent[0].HTMLContent == "" {
		t.Errorf("message not rendered: %+v", sent[0])
	}
}

func TestLiveClassMailer_UnknownClassroom(t *testing.T) {
	env := testutil.NewEnv(t)
	emailsvc.ResetSentMessages()
	m := notify.NewLiveClassMailer(env.Classrooms, env.Profiles, emailsvc.NewConsoleServiceMock(env.Conf), env.Logger)

	m.LiveClassStarted(context.Background(), liveclass.LiveClass{ID: "lc", ClassroomID: "nope"})

	if n := len(emailsvc.Sent()); n != 0 {
		t.Errorf("sent = %d messages; want 0", n)
	}
	if n := env.Logger.Count("ERROR"); n != 1 {
		t.Errorf("logged %d errors; want 1", n)
	}
}
