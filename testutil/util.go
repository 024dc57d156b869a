// Package testutil wires services over in-memory backends for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/liveclass"
	"github.com/trezcool/darasa/core/profile"
	"github.com/trezcool/darasa/storage/cache/memcache"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

// Config returns the configuration used by tests.
func Config() *core.Config {
	return &core.Config{
		AppName:         "Darasa",
		Env:             "TEST",
		Build:           "test",
		TestMode:        true,
		SecretKey:       "secret",
		FrontendBaseURL: "http://localhost:3000",
		JWTExpiration:   10 * time.Minute,
		DefaultFromName: "Darasa",
		DefaultFromAddr: "noreply@localhost",
		Server:          core.ServerConfig{Host: "localhost:8000", ShutdownTimeout: time.Second},
		Cache:           core.CacheConfig{Driver: "memory"},
		Storage:         core.StorageConfig{Driver: "local", MaxFileMiB: 1},
	}
}

// Logger records messages instead of printing them.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

var _ core.Logger = (*Logger)(nil)

func (l *Logger) log(level, msg string) {
	l.mu.Lock()
	l.Messages = append(l.Messages, level+": "+msg)
	l.mu.Unlock()
}

func (l *Logger) Debug(msg string, _ ...interface{}) { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string, _ ...interface{})  { l.log("INFO", msg) }
func (l *Logger) Warn(msg string, _ ...interface{})  { l.log("WARN", msg) }
func (l *Logger) Error(msg string, _ ...interface{}) { l.log("ERROR", msg) }
func (l *Logger) Fatal(msg string, _ ...interface{}) { l.log("FATAL", msg) }

// Count returns the number of messages logged at level.
func (l *Logger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, m := range l.Messages {
		if len(m) > len(level) && m[:len(level)+1] == level+":" {
			n++
		}
	}
	return n
}

// Env holds services sharing one dummy remote and one in-memory cache.
type Env struct {
	Conf   *core.Config
	DB     *dummydb.DB
	Store  *memcache.Store
	Logger *Logger

	Profiles    *profile.Service
	Classrooms  *classroom.Service
	Assignments *assignment.Service
	LiveClasses *liveclass.Service
}

// NewEnv wires every service. Pass a config to override Config().
func NewEnv(t *testing.T, conf ...*core.Config) *Env {
	t.Helper()
	c := Config()
	if len(conf) > 0 {
		c = conf[0]
	}
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	store := memcache.New()
	logger := new(Logger)

	profiles := profile.NewService(dummydb.NewProfileRepository(db), store, logger)
	return &Env{
		Conf:        c,
		DB:          db,
		Store:       store,
		Logger:      logger,
		Profiles:    profiles,
		Classrooms:  classroom.NewService(dummydb.NewClassroomRepository(db), store, profiles, logger, c),
		Assignments: assignment.NewService(dummydb.NewAssignmentRepository(db), store, logger),
		LiveClasses: liveclass.NewService(dummydb.NewLiveClassRepository(db), store, logger),
	}
}

func CreateClassroom(t *testing.T, svc *classroom.Service, name, teacherID string) classroom.Classroom {
	t.Helper()
	c, _, err := svc.Create(context.Background(), classroom.NewClassroom{
		Name:        name,
		TeacherID:   teacherID,
		TeacherName: fmt.Sprintf("Teacher %s", teacherID),
	})
	if err != nil {
		t.Fatalf("CreateClassroom() failed: %v", err)
	}
	return c
}

func CreateProfile(t *testing.T, svc *profile.Service, id, name, role string) profile.UserProfile {
	t.Helper()
	p, _, err := svc.EnsureFromAuth(context.Background(), profile.Identity{
		ID:    id,
		Name:  name,
		Email: id + "@example.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return p
}

// FreezeTime makes core.Now return t until the returned func is called.
func FreezeTime(t time.Time) (reset func()) {
	core.NowFunc = func() time.Time { return t }
	return func() { core.NowFunc = time.Now }
}
