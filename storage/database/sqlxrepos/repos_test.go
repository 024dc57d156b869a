package sqlxrepos

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/liveclass"
	"github.com/trezcool/darasa/core/profile"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/testutil"
)

var ctx = context.Background()

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := testutil.Config()
	conf.Database.Enabled = true
	conf.Database.Engine = database.EngineSQLite
	conf.Database.Name = ":memory:"

	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(ctx, db, "up"); err != nil {
		t.Fatalf("database.Migrate() error = %v", err)
	}
	return db
}

func newClassroom(id, code, teacherID string, createdAt time.Time) classroom.Classroom {
	return classroom.Classroom{
		ID:             id,
		Name:           "Class " + id,
		Subject:        "Science",
		CreatedAt:      createdAt,
		TeacherName:    "Teacher " + teacherID,
		TeacherID:      teacherID,
		EnrollmentCode: code,
	}
}

func TestClassroomRepository(t *testing.T) {
	repo := NewClassroomRepository(openTestDB(t))
	t0 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	c1 := newClassroom("c1", "AAAAAA", "t1", t0)
	c2 := newClassroom("c2", "BBBBBB", "t2", t0.Add(time.Minute))
	for _, c := range []classroom.Classroom{c1, c2} {
		if err := repo.CreateClassroom(ctx, c); err != nil {
			t.Fatalf("CreateClassroom() error = %v", err)
		}
	}

	all, err := repo.ListClassrooms(ctx, classroom.QueryFilter{})
	if err != nil || len(all) != 2 || all[0].ID != "c1" || all[1].ID != "c2" {
		t.Fatalf("ListClassrooms() = %+v, %v", all, err)
	}
	if got := all[0]; got.Section != "" || got.Subject != "Science" || !got.CreatedAt.Equal(t0) {
		t.Errorf("ListClassrooms()[0] = %+v", got)
	}

	mine, _ := repo.ListClassrooms(ctx, classroom.QueryFilter{TeacherID: "t2"})
	if len(mine) != 1 || mine[0].ID != "c2" {
		t.Errorf("ListClassrooms(t2) = %+v", mine)
	}
	found, _ := repo.ListClassrooms(ctx, classroom.QueryFilter{Search: "CLASS C1"})
	if len(found) != 1 || found[0].ID != "c1" {
		t.Errorf("ListClassrooms(search) = %+v", found)
	}

	if got, err := repo.GetClassroomByCode(ctx, "BBBBBB"); err != nil || got.ID != "c2" {
		t.Errorf("GetClassroomByCode() = %+v, %v", got, err)
	}
	if _, err := repo.GetClassroom(ctx, "nope"); errors.Cause(err) != classroom.ErrNotFound {
		t.Errorf("GetClassroom(nope) error = %v, want %v", err, classroom.ErrNotFound)
	}

	c1.Description = "Cells and stuff"
	if err := repo.UpdateClassroom(ctx, c1); err != nil {
		t.Fatalf("UpdateClassroom() error = %v", err)
	}
	if got, _ := repo.GetClassroom(ctx, "c1"); got.Description != "Cells and stuff" {
		t.Errorf("GetClassroom() description = %q", got.Description)
	}
	if err := repo.UpdateClassroom(ctx, newClassroom("ghost", "CCCCCC", "t1", t0)); err != classroom.ErrNotFound {
		t.Errorf("UpdateClassroom(ghost) error = %v, want %v", err, classroom.ErrNotFound)
	}

	if err := repo.CreateClassroom(ctx, newClassroom("c3", "AAAAAA", "t1", t0)); err == nil {
		t.Error("CreateClassroom(duplicate code) error = <nil>, want a unique violation")
	}
}

func TestClassroomRepository_SearchIsLiteral(t *testing.T) {
	repo := NewClassroomRepository(openTestDB(t))
	t0 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	names := map[string]string{
		"pct":   "100% Maths",
		"zeros": "1000 Maths",
		"under": "year_one",
		"x":     "yearXone",
		"slash": `back\slash`,
	}
	var cls []classroom.Classroom
	codes := []string{"AAAAAA", "BBBBBB", "CCCCCC", "DDDDDD", "EEEEEE"}
	i := 0
	for _, id := range []string{"pct", "zeros", "under", "x", "slash"} {
		c := newClassroom(id, codes[i], "t1", t0.Add(time.Duration(i)*time.Minute))
		c.Name = names[id]
		if err := repo.CreateClassroom(ctx, c); err != nil {
			t.Fatalf("CreateClassroom(%s) error = %v", id, err)
		}
		cls = append(cls, c)
		i++
	}

	tests := []struct {
		search string
		want   []string
	}{
		{search: "100%", want: []string{"pct"}},
		{search: "%", want: []string{"pct"}},
		{search: "year_", want: []string{"under"}},
		{search: "_", want: []string{"under"}},
		{search: `\`, want: []string{"slash"}},
		{search: "maths", want: []string{"pct", "zeros"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			filter := classroom.QueryFilter{Search: tt.search}
			found, err := repo.ListClassrooms(ctx, filter)
			if err != nil {
				t.Fatalf("ListClassrooms() error = %v", err)
			}
			var got, inMemory []string
			for _, c := range found {
				got = append(got, c.ID)
			}
			for _, c := range cls {
				if filter.Match(c) {
					inMemory = append(inMemory, c.ID)
				}
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ListClassrooms(%q) = %v, want %v", tt.search, got, tt.want)
			}
			if !reflect.DeepEqual(got, inMemory) {
				t.Errorf("ListClassrooms(%q) = %v, Match() = %v", tt.search, got, inMemory)
			}
		})
	}
}

func TestClassroomRepository_Members(t *testing.T) {
	repo := NewClassroomRepository(openTestDB(t))
	t0 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	_ = repo.CreateClassroom(ctx, newClassroom("c1", "AAAAAA", "t1", t0))
	_ = repo.CreateClassroom(ctx, newClassroom("c2", "BBBBBB", "t1", t0))

	for i, m := range []struct{ classroom, user string }{{"c1", "s1"}, {"c1", "s2"}, {"c2", "s1"}, {"c1", "s1"}} {
		if err := repo.AddMember(ctx, m.classroom, m.user, t0.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("AddMember(%v) error = %v", m, err)
		}
	}

	if ok, err := repo.HasMember(ctx, "c1", "s2"); err != nil || !ok {
		t.Errorf("HasMember(c1, s2) = %v, %v; want true", ok, err)
	}
	if ok, _ := repo.HasMember(ctx, "c2", "s2"); ok {
		t.Error("HasMember(c2, s2) = true, want false")
	}
	if ids, err := repo.ListMembers(ctx, "c1"); err != nil || !reflect.DeepEqual(ids, []string{"s1", "s2"}) {
		t.Errorf("ListMembers(c1) = %v, %v; want [s1 s2]", ids, err)
	}
	cls, err := repo.ListMemberClassrooms(ctx, "s1")
	if err != nil || len(cls) != 2 || cls[0].ID != "c1" || cls[1].ID != "c2" {
		t.Errorf("ListMemberClassrooms(s1) = %+v, %v", cls, err)
	}

	if err := repo.RemoveMember(ctx, "c1", "s1"); err != nil {
		t.Fatalf("RemoveMember() error = %v", err)
	}
	if ids, _ := repo.ListMembers(ctx, "c1"); !reflect.DeepEqual(ids, []string{"s2"}) {
		t.Errorf("ListMembers(c1) = %v, want [s2]", ids)
	}

	if err := repo.DeleteClassroom(ctx, "c1"); err != nil {
		t.Fatalf("DeleteClassroom() error = %v", err)
	}
	if ids, _ := repo.ListMembers(ctx, "c1"); len(ids) != 0 {
		t.Errorf("ListMembers(deleted) = %v, want none", ids)
	}
}

func TestAssignmentRepository(t *testing.T) {
	repo := NewAssignmentRepository(openTestDB(t))
	t0 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	points := 20

	a := assignment.Assignment{
		ID:          "a1",
		Title:       "Essay",
		CreatedAt:   t0,
		Status:      assignment.StatusPending,
		ClassroomID: "c1",
		DueDate:     &t0,
		Points:      &points,
	}
	if err := repo.CreateAssignment(ctx, a); err != nil {
		t.Fatalf("CreateAssignment() error = %v", err)
	}
	got, err := repo.GetAssignment(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAssignment() error = %v", err)
	}
	if got.File != nil || got.Grade != nil || got.SubmittedAt != nil || got.DueDate == nil || !got.DueDate.Equal(t0) ||
		got.Points == nil || *got.Points != 20 || got.AllowLateSubmissions || got.Locked {
		t.Errorf("GetAssignment() = %+v", got)
	}

	grade := 18.5
	a.File = &assignment.FileMeta{Name: "essay.pdf", Size: 2048, Type: "application/pdf"}
	a.SubmittedAt = &t0
	a.Status = assignment.StatusGraded
	a.Grade = &grade
	a.Locked = true
	if err := repo.UpdateAssignment(ctx, a); err != nil {
		t.Fatalf("UpdateAssignment() error = %v", err)
	}
	got, _ = repo.GetAssignment(ctx, "a1")
	if got.File == nil || got.File.Size != 2048 || got.Grade == nil || *got.Grade != 18.5 || !got.Locked {
		t.Errorf("GetAssignment() after update = %+v", got)
	}

	graded, _ := repo.ListAssignments(ctx, assignment.QueryFilter{ClassroomID: "c1", Status: assignment.StatusGraded})
	if len(graded) != 1 {
		t.Errorf("ListAssignments(graded) = %+v", graded)
	}
	if err := repo.DeleteAssignment(ctx, "a1"); err != nil {
		t.Fatalf("DeleteAssignment() error = %v", err)
	}
	if _, err := repo.GetAssignment(ctx, "a1"); err != assignment.ErrNotFound {
		t.Errorf("GetAssignment(deleted) error = %v, want %v", err, assignment.ErrNotFound)
	}
}

func TestLiveClassRepository(t *testing.T) {
	repo := NewLiveClassRepository(openTestDB(t))
	t0 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	lc := liveclass.LiveClass{
		ID:             "l1",
		Title:          "Office hours",
		ScheduledStart: t0,
		ScheduledEnd:   t0.Add(time.Hour),
		Status:         liveclass.StatusScheduled,
		ClassroomID:    "c1",
		CreatedBy:      "t1",
		CreatedAt:      t0,
	}
	if err := repo.CreateLiveClass(ctx, lc); err != nil {
		t.Fatalf("CreateLiveClass() error = %v", err)
	}

	lc.Status = liveclass.StatusLive
	lc.ActualStart = &t0
	if err := repo.UpdateLiveClass(ctx, lc); err != nil {
		t.Fatalf("UpdateLiveClass() error = %v", err)
	}
	live, err := repo.ListLiveClasses(ctx, liveclass.QueryFilter{Status: liveclass.StatusLive})
	if err != nil || len(live) != 1 || live[0].ActualStart == nil || live[0].ActualEnd != nil {
		t.Errorf("ListLiveClasses(live) = %+v, %v", live, err)
	}
	if err := repo.UpdateLiveClass(ctx, liveclass.LiveClass{ID: "ghost"}); err != liveclass.ErrNotFound {
		t.Errorf("UpdateLiveClass(ghost) error = %v, want %v", err, liveclass.ErrNotFound)
	}
}

func TestProfileRepository(t *testing.T) {
	repo := NewProfileRepository(openTestDB(t))
	t0 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := repo.GetProfile(ctx, "u1"); err != profile.ErrNotFound {
		t.Errorf("GetProfile(missing) error = %v, want %v", err, profile.ErrNotFound)
	}
	rec := profile.Record{ID: "u1", FullName: "Ada", Email: "ada@example.com", Role: profile.RoleStudent, UpdatedAt: t0}
	if err := repo.UpsertProfile(ctx, rec); err != nil {
		t.Fatalf("UpsertProfile() error = %v", err)
	}
	rec.FullName = "Ada King"
	rec.AvatarURL = "https://example.com/ada.png"
	if err := repo.UpsertProfile(ctx, rec); err != nil {
		t.Fatalf("UpsertProfile(again) error = %v", err)
	}
	got, err := repo.GetProfile(ctx, "u1")
	if err != nil || got.FullName != "Ada King" || got.AvatarURL != rec.AvatarURL || !got.UpdatedAt.Equal(t0) {
		t.Errorf("GetProfile() = %+v, %v", got, err)
	}
}

func TestServicesOverSQL(t *testing.T) {
	db := openTestDB(t)
	env := testutil.NewEnv(t)
	profiles := profile.NewService(NewProfileRepository(db), env.Store, env.Logger)
	classrooms := classroom.NewService(NewClassroomRepository(db), env.Store, profiles, env.Logger, env.Conf)

	c := testutil.CreateClassroom(t, classrooms, "Biology 101", "t1")
	for i := 0; i < 2; i++ {
		if _, _, err := classrooms.JoinByCode(ctx, " "+c.EnrollmentCode+" ", "s1"); err != nil {
			t.Fatalf("JoinByCode() error = %v", err)
		}
	}
	members, err := classrooms.ListMembers(ctx, c.ID)
	if err != nil || !reflect.DeepEqual(members, []string{"s1"}) {
		t.Errorf("ListMembers() = %v, %v; want [s1]", members, err)
	}
	cls, err := classrooms.ListForUser(ctx, "s1")
	if err != nil || len(cls) != 1 || cls[0].ID != c.ID {
		t.Errorf("ListForUser() = %+v, %v", cls, err)
	}
}
