package echoapi_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/profile"
	emailsvc "github.com/trezcool/darasa/services/email"
)

func Test_classroomApi_create(t *testing.T) {
	srv, env := setup(t)
	teacherToken := getToken(t, env.Conf, "t1", profile.RoleTeacher)
	studentToken := getToken(t, env.Conf, "s1", profile.RoleStudent)

	tests := []httpTest{
		{name: "Auth required", body: []byte(`{"name":"Maths"}`), wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "Teacher required", body: []byte(`{"name":"Maths"}`), token: studentToken,
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Blank name", body: []byte(`{"name":"   "}`), token: teacherToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"name":"this field is required"}`),
		},
		{
			name: "Bad cover image", body: []byte(`{"name":"Maths","cover_image":"nope"}`), token: teacherToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"cover_image":"cover_image must be a valid URL"}`),
		},
		{name: "Created", body: []byte(`{"name":" Maths ","section":"A"}`), token: teacherToken, wantCode: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/classrooms", tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	cls, err := env.Classrooms.List(ctx, classroom.QueryFilter{TeacherID: "t1"})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(cls) != 1 {
		t.Fatalf("classrooms = %d; want 1", len(cls))
	}
	c := cls[0]
	if c.Name != "Maths" || c.TeacherName != "User t1" || len(c.EnrollmentCode) != 6 {
		t.Errorf("created classroom = %+v", c)
	}
}

func Test_classroomApi_enrollment(t *testing.T) {
	srv, env := setup(t)
	teacherToken := getToken(t, env.Conf, "t1", profile.RoleTeacher)
	studentToken := getToken(t, env.Conf, "s1", profile.RoleStudent)

	var c classroom.Classroom
	req, rec := newAuthRequest(http.MethodPost, "/v1/classrooms", teacherToken, []byte(`{"name":"Physics"}`))
	do(t, srv, req, rec, http.StatusCreated, &c)
	checkSync(t, rec, "true", "true")

	t.Run("join", func(t *testing.T) {
		tests := []httpTest{
			{name: "Malformed code", body: []byte(`{"code":"abc"}`), wantCode: http.StatusBadRequest,
				wantData: []byte(`{"code":"enter a valid 6-character class code"}`)},
			{name: "Unknown code", body: []byte(`{"code":"ZZZZZ9"}`), wantCode: http.StatusNotFound,
				wantData: marshalObj(t, httpErr{Error: classroom.ErrInvalidCode.Error()})},
			{name: "Lowercase code", body: marshalObj(t, classroom.JoinClassroom{Code: strings.ToLower(c.EnrollmentCode)}),
				wantCode: http.StatusOK},
			{name: "Idempotent", body: marshalObj(t, classroom.JoinClassroom{Code: c.EnrollmentCode}), wantCode: http.StatusOK},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPost, "/v1/classrooms/join", studentToken, tt.body)
				srv.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
		if got := env.DB.Members(c.ID); len(got) != 1 || got[0] != "s1" {
			t.Errorf("remote members = %v; want [s1]", got)
		}
	})

	t.Run("list for user", func(t *testing.T) {
		var cls []classroom.Classroom
		req, rec := newAuthRequest(http.MethodGet, "/v1/classrooms", studentToken)
		do(t, srv, req, rec, http.StatusOK, &cls)
		if len(cls) != 1 || cls[0].ID != c.ID {
			t.Errorf("classrooms = %+v; want [%s]", cls, c.ID)
		}
	})

	t.Run("members", func(t *testing.T) {
		var members []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		req, rec := newAuthRequest(http.MethodGet, "/v1/classrooms/"+c.ID+"/members", teacherToken)
		do(t, srv, req, rec, http.StatusOK, &members)
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		assert.ElementsMatch(t, []string{"s1"}, ids)
	})

	t.Run("owner only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/classrooms/"+c.ID, studentToken, []byte(`{"name":"Hacked"}`))
		do(t, srv, req, rec, http.StatusForbidden)

		var updated classroom.Classroom
		req, rec = newAuthRequest(http.MethodPut, "/v1/classrooms/"+c.ID, teacherToken, []byte(`{"name":"Physics II"}`))
		do(t, srv, req, rec, http.StatusOK, &updated)
		if updated.Name != "Physics II" || updated.EnrollmentCode != c.EnrollmentCode {
			t.Errorf("updated = %+v", updated)
		}
	})

	t.Run("leave", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/classrooms/"+c.ID+"/leave", studentToken)
		do(t, srv, req, rec, http.StatusNoContent)
		checkSync(t, rec, "true", "true")
		if got := env.DB.Members(c.ID); len(got) != 0 {
			t.Errorf("remote members = %v; want none", got)
		}
	})

	t.Run("unknown classroom", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/classrooms/nope", studentToken)
		do(t, srv, req, rec, http.StatusNotFound)
	})
}

func Test_classroomApi_offline(t *testing.T) {
	srv, env := setup(t)
	teacherToken := getToken(t, env.Conf, "t1", profile.RoleTeacher)
	env.DB.SetOffline(true)

	var c classroom.Classroom
	req, rec := newAuthRequest(http.MethodPost, "/v1/classrooms", teacherToken, []byte(`{"name":"History"}`))
	do(t, srv, req, rec, http.StatusCreated, &c)
	checkSync(t, rec, "false", "true")

	var got classroom.Classroom
	req, rec = newAuthRequest(http.MethodGet, "/v1/classrooms/code/"+c.EnrollmentCode, teacherToken)
	do(t, srv, req, rec, http.StatusOK, &got)
	if got.ID != c.ID {
		t.Errorf("GetByCode() = %s; want %s", got.ID, c.ID)
	}

	req, rec = newAuthRequest(http.MethodDelete, "/v1/classrooms/"+c.ID, teacherToken)
	do(t, srv, req, rec, http.StatusNoContent)
	checkSync(t, rec, "false", "true")
}

func Test_classroomApi_grades(t *testing.T) {
	srv, env := setup(t)
	teacherToken := getToken(t, env.Conf, "t1", profile.RoleTeacher)
	studentToken := getToken(t, env.Conf, "s1", profile.RoleStudent)

	var c classroom.Classroom
	req, rec := newAuthRequest(http.MethodPost, "/v1/classrooms", teacherToken, []byte(`{"name":"Chemistry"}`))
	do(t, srv, req, rec, http.StatusCreated, &c)

	req, rec = newAuthRequest(http.MethodPost, "/v1/assignments", teacherToken, marshalObj(t, map[string]string{
		"title": "Lab report", "classroom_id": c.ID,
	}))
	do(t, srv, req, rec, http.StatusCreated)

	req, rec = newAuthRequest(http.MethodGet, "/v1/classrooms/"+c.ID+"/grades.xlsx", studentToken)
	do(t, srv, req, rec, http.StatusForbidden)

	req, rec = newAuthRequest(http.MethodGet, "/v1/classrooms/"+c.ID+"/grades.xlsx", teacherToken)
	do(t, srv, req, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/vnd.openxmlformats") {
		t.Errorf("Content-Type = %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty grade sheet")
	}
}

func Test_classroomApi_emailGrades(t *testing.T) {
	srv, env := setup(t)
	emailsvc.ResetSentMessages()
	teacherToken := getToken(t, env.Conf, "t1", profile.RoleTeacher)
	otherToken := getToken(t, env.Conf, "t2", profile.RoleTeacher)

	var c classroom.Classroom
	req, rec := newAuthRequest(http.MethodPost, "/v1/classrooms", teacherToken, []byte(`{"name":"Chemistry"}`))
	do(t, srv, req, rec, http.StatusCreated, &c)

	req, rec = newAuthRequest(http.MethodPost, "/v1/classrooms/"+c.ID+"/grades/email", otherToken)
	do(t, srv, req, rec, http.StatusForbidden)

	req, rec = newAuthRequest(http.MethodPost, "/v1/classrooms/"+c.ID+"/grades/email", teacherToken)
	do(t, srv, req, rec, http.StatusAccepted)

	sent := emailsvc.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	msg := sent[0]
	assert.Equal(t, "t1@example.com", msg.To[0].Address)
	assert.Equal(t, "Grades: Chemistry", msg.Subject)
	if assert.Len(t, msg.Attachments, 1) {
		assert.Equal(t, "grades-"+c.EnrollmentCode+".xlsx", msg.Attachments[0].Filename)
		assert.True(t, strings.HasPrefix(msg.Attachments[0].ContentType, "application/vnd.openxmlformats"))
	}
}
