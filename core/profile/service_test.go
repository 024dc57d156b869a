package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/profile"
	"github.com/trezcool/darasa/storage/cache/memcache"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	"github.com/trezcool/darasa/testutil"
)

var ctx = context.Background()

func newService(t *testing.T) (*profile.Service, profile.Remote, *dummydb.DB) {
	t.Helper()
	db, _ := dummydb.Open()
	remote := dummydb.NewProfileRepository(db)
	return profile.NewService(remote, memcache.New(), new(testutil.Logger)), remote, db
}

func TestService_EnsureFromAuth(t *testing.T) {
	svc, remote, _ := newService(t)
	id := profile.Identity{ID: "u1", Name: " Ada Lovelace ", Email: "Ada@Example.com", Role: "admin"}

	p, sync, err := svc.EnsureFromAuth(ctx, id)
	if err != nil {
		t.Fatalf("EnsureFromAuth() error = %v", err)
	}
	if want := (core.Sync{Remote: true, Cache: true}); sync != want {
		t.Errorf("EnsureFromAuth() sync = %+v, want %+v", sync, want)
	}
	if p.Name != "Ada Lovelace" || p.Email != "ada@example.com" || p.Role != profile.RoleStudent {
		t.Errorf("EnsureFromAuth() = %+v, want cleaned fields and the student role", p)
	}
	if p.EnrolledClasses == nil {
		t.Error("EnrolledClasses = nil, want an empty list")
	}
	if p.Preferences != profile.DefaultPreferences() {
		t.Errorf("Preferences = %+v, want defaults", p.Preferences)
	}
	if rec, err := remote.GetProfile(ctx, "u1"); err != nil || rec.FullName != "Ada Lovelace" {
		t.Errorf("remote GetProfile() = %+v, %v", rec, err)
	}

	// second sign-in: nothing written
	_, sync, err = svc.EnsureFromAuth(ctx, profile.Identity{ID: "u1", Name: "Someone Else"})
	if err != nil || sync != (core.Sync{}) {
		t.Errorf("EnsureFromAuth(again) sync = %+v, error = %v; want no write", sync, err)
	}
	got, _ := svc.GetByID(ctx, "u1")
	if got.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want the first sign-in name", got.Name)
	}
}

func TestService_GetByIDOffline(t *testing.T) {
	svc, _, db := newService(t)
	testutil.CreateProfile(t, svc, "u1", "Ada", profile.RoleTeacher)
	db.SetOffline(true)

	p, err := svc.GetByID(ctx, "u1")
	if err != nil || p.Name != "Ada" || !p.IsTeacher() {
		t.Errorf("GetByID() = %+v, %v; want the cached teacher profile", p, err)
	}
	if _, err := svc.GetByID(ctx, "u2"); errors.Cause(err) != profile.ErrNotFound {
		t.Errorf("GetByID(u2) error = %v, want %v", err, profile.ErrNotFound)
	}
}

func TestService_SyncKeepsLocalFields(t *testing.T) {
	svc, remote, db := newService(t)
	p := testutil.CreateProfile(t, svc, "u1", "Ada", profile.RoleStudent)

	if err := svc.AddEnrollment("u1", "c1"); err != nil {
		t.Fatalf("AddEnrollment() error = %v", err)
	}
	prefs := p.Preferences
	prefs.Theme = "dark"
	if _, err := svc.UpdatePreferences(ctx, "u1", prefs); err != nil {
		t.Fatalf("UpdatePreferences() error = %v", err)
	}

	// changed from another device
	rec := p.Record()
	rec.FullName = "Ada King"
	rec.AvatarURL = "https://example.com/ada.png"
	rec.UpdatedAt = time.Now().Add(time.Hour).UTC()
	_ = remote.UpsertProfile(ctx, rec)

	got, sync, err := svc.Sync(ctx, "u1")
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	if !sync.Remote || !sync.Cache {
		t.Errorf("Sync() sync = %+v, want both", sync)
	}
	if got.Name != "Ada King" || got.AvatarURL != rec.AvatarURL {
		t.Errorf("Sync() = %+v, want the remote name and avatar", got)
	}
	if got.Preferences.Theme != "dark" || !got.IsEnrolled("c1") {
		t.Errorf("Sync() = %+v, want cached preferences and enrollments kept", got)
	}

	db.SetOffline(true)
	got, sync, err = svc.Sync(ctx, "u1")
	if err != nil || sync.Remote || got.Name != "Ada King" {
		t.Errorf("offline Sync() = %+v, %+v, %v; want the cached profile", got, sync, err)
	}
}

func TestService_Update(t *testing.T) {
	svc, _, _ := newService(t)
	p := testutil.CreateProfile(t, svc, "u1", "Ada", profile.RoleStudent)

	p.Name = "Ada L."
	p.EnrolledClasses = nil
	sync, err := svc.Update(ctx, p)
	if err != nil || !sync.Remote || !sync.Cache {
		t.Fatalf("Update() = %+v, %v", sync, err)
	}
	got, _ := svc.GetByID(ctx, "u1")
	if got.Name != "Ada L." || got.EnrolledClasses == nil {
		t.Errorf("GetByID() = %+v, want the new name and materialized enrollments", got)
	}

	sync, err = svc.Update(ctx, profile.UserProfile{ID: "ghost"})
	if err != nil || sync.Cache {
		t.Errorf("Update(ghost) = %+v, %v; want no cache write", sync, err)
	}
	if cached, _ := svc.Cached("ghost"); len(cached) != 0 {
		t.Errorf("Cached(ghost) = %v, want none", cached)
	}
}

func TestService_Enrollments(t *testing.T) {
	svc, _, _ := newService(t)
	testutil.CreateProfile(t, svc, "u1", "Ada", profile.RoleStudent)

	for i := 0; i < 3; i++ {
		_ = svc.AddEnrollment("u1", "c1")
	}
	_ = svc.AddEnrollment("u1", "c2")
	_ = svc.AddEnrollment("u2", "c1") // not cached yet

	got, _ := svc.Enrollments("u1")
	if len(got) != 2 || got[0] != "c1" || got[1] != "c2" {
		t.Errorf("Enrollments(u1) = %v, want [c1 c2]", got)
	}
	in, _ := svc.EnrolledIn("c1")
	if len(in) != 2 || in[0] != "u1" || in[1] != "u2" {
		t.Errorf("EnrolledIn(c1) = %v, want [u1 u2]", in)
	}

	_ = svc.RemoveEnrollment("u1", "c1")
	_ = svc.RemoveEnrollment("nobody", "c1")
	got, _ = svc.Enrollments("u1")
	if len(got) != 1 || got[0] != "c2" {
		t.Errorf("Enrollments(u1) = %v, want [c2]", got)
	}
	if got, _ := svc.Enrollments("nobody"); got == nil || len(got) != 0 {
		t.Errorf("Enrollments(nobody) = %#v, want an empty list", got)
	}
}

func TestService_UpdatePreferencesUnknown(t *testing.T) {
	svc, _, _ := newService(t)
	if _, err := svc.UpdatePreferences(ctx, "u1", profile.DefaultPreferences()); err != profile.ErrNotFound {
		t.Errorf("UpdatePreferences() error = %v, want %v", err, profile.ErrNotFound)
	}
}
