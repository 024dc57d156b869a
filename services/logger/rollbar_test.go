package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/profile"
	"github.com/trezcool/darasa/testutil"
)

func TestRollbarLogger_Print(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), testutil.Config())

	usr := profile.Identity{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	logger.Warn("classroom.List: remote unavailable", errors.New("connection refused"), usr)

	out := buf.String()
	if !strings.HasPrefix(out, "WARN classroom.List: remote unavailable\n") {
		t.Errorf("output = %q, want the level and message first", out)
	}
	if !strings.Contains(out, "connection refused") {
		t.Errorf("output = %q, want the error", out)
	}
	if strings.Contains(out, "ada@example.com") {
		t.Errorf("output = %q, want the user left out", out)
	}
}

func TestRollbarLogger_Prepare(t *testing.T) {
	logger := NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), testutil.Config())
	err := errors.New("boom")
	extra := map[string]interface{}{"classroom_id": "c1"}

	got := logger.prepare("msg", []interface{}{err, profile.Identity{ID: "u1"}, extra, profile.Identity{ID: "u2"}})
	if len(got) != 3 || got[0] != "msg" || got[1] != err {
		t.Errorf("prepare() = %v, want msg, the error and the extra data", got)
	}
}
