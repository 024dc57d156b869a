package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/profile"
)

func Test_profileApi(t *testing.T) {
	srv, env := setup(t)
	token := getToken(t, env.Conf, "s1", profile.RoleStudent)

	var p profile.UserProfile
	req, rec := newAuthRequest(http.MethodGet, "/v1/profile", token)
	do(t, srv, req, rec, http.StatusCreated, &p)
	checkSync(t, rec, "true", "true")
	if p.ID != "s1" || p.Email != "s1@example.com" || p.Role != profile.RoleStudent {
		t.Errorf("profile = %+v", p)
	}
	if p.Preferences != profile.DefaultPreferences() {
		t.Errorf("preferences = %+v; want defaults", p.Preferences)
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/profile", token)
	do(t, srv, req, rec, http.StatusOK)

	tests := []httpTest{
		{
			name: "Bad theme", method: http.MethodPut, path: "/v1/profile/preferences",
			body: []byte(`{"theme":"neon"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"theme":"must be one of: light, dark, system"}`),
		},
		{name: "Preferences", method: http.MethodPut, path: "/v1/profile/preferences", body: []byte(`{"theme":"dark","font_size":"large"}`), wantCode: http.StatusOK},
		{
			name: "Bad avatar", method: http.MethodPut, path: "/v1/profile",
			body: []byte(`{"avatar_url":"nope"}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"avatar_url":"avatar_url must be a valid URL"}`),
		},
		{name: "Update", method: http.MethodPut, path: "/v1/profile", body: []byte(`{"name":"Ada L."}`), wantCode: http.StatusOK},
		{name: "Sync", method: http.MethodPost, path: "/v1/profile/sync", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	got, err := env.Profiles.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Name != "Ada L." || got.Preferences.Theme != "dark" || got.Preferences.FontSize != "large" {
		t.Errorf("profile = %+v", got)
	}
}

func Test_home(t *testing.T) {
	srv, _ := setup(t)
	req, rec := newAuthRequest(http.MethodGet, "/", "")
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "Welcome to Darasa API!" {
		t.Errorf("home = %d %q", rec.Code, rec.Body.String())
	}
}
