package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/profile"
	emailsvc "github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/filestore"
	"github.com/trezcool/darasa/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func setup(t *testing.T) (*echoapi.Server, *testutil.Env) {
	t.Helper()
	env := testutil.NewEnv(t)
	env.Conf.Storage.LocalDir = t.TempDir()

	files, err := filestore.NewLocalStore(env.Conf.Storage.LocalDir, filestore.LocalURLPrefix)
	if err != nil {
		t.Fatalf("NewLocalStore() failed: %v", err)
	}

	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	srv := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           env.Conf,
		Logger:         env.Logger,
		ClassroomSvc:   env.Classrooms,
		AssignmentSvc:  env.Assignments,
		LiveClassSvc:   env.LiveClasses,
		ProfileSvc:     env.Profiles,
		Files:          files,
		Email:          emailsvc.NewConsoleServiceMock(env.Conf),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return srv, env
}

func getToken(t *testing.T, conf *core.Config, id, role string) string {
	t.Helper()
	claims := echoapi.NewClaims(conf, profile.Identity{ID: id, Name: "User " + id, Email: id + "@example.com", Role: role})
	token, err := echoapi.GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newMultipartRequest(t *testing.T, path, token, field, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	if _, err = fw.Write(content); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

// do serves the request and decodes a JSON response into out, when given.
func do(t *testing.T, srv http.Handler, req *http.Request, rec *httptest.ResponseRecorder, wantCode int, out ...interface{}) {
	t.Helper()
	srv.ServeHTTP(rec, req)
	if rec.Code != wantCode {
		t.Fatalf("%s %s: code = %v; wantCode %v (body %s)", req.Method, req.URL, rec.Code, wantCode, rec.Body.String())
	}
	if len(out) > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), out[0]); err != nil {
			t.Fatalf("%s %s: decoding %s: %v", req.Method, req.URL, rec.Body.String(), err)
		}
	}
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func checkSync(t *testing.T, rec *httptest.ResponseRecorder, wantRemote, wantCache string) {
	t.Helper()
	if got := rec.Header().Get("X-Sync-Remote"); got != wantRemote {
		t.Errorf("X-Sync-Remote = %q; want %q", got, wantRemote)
	}
	if got := rec.Header().Get("X-Sync-Cache"); got != wantCache {
		t.Errorf("X-Sync-Cache = %q; want %q", got, wantCache)
	}
}

var ctx = context.Background()
