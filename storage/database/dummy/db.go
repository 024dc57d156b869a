// Package dummydb is an in-memory remote data service, with a switch to simulate outages.
package dummydb

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/liveclass"
	"github.com/trezcool/darasa/core/profile"
)

type (
	DB struct {
		offline atomic.Bool

		classroom  *classroomTable
		member     *memberTable
		assignment *assignmentTable
		liveClass  *liveClassTable
		profile    *profileTable
	}

	classroomTable struct {
		sync.RWMutex
		table map[string]*classroom.Classroom
		order []string // insertion order
	}

	membership struct {
		classroomID string
		userID      string
		joinedAt    time.Time
	}

	memberTable struct {
		sync.RWMutex
		rows []membership
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
		order []string
	}

	liveClassTable struct {
		sync.RWMutex
		table map[string]*liveclass.LiveClass
		order []string
	}

	profileTable struct {
		sync.RWMutex
		table map[string]*profile.Record
	}
)

func Open() (*DB, error) {
	db := &DB{
		classroom:  &classroomTable{table: make(map[string]*classroom.Classroom)},
		member:     &memberTable{},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		liveClass:  &liveClassTable{table: make(map[string]*liveclass.LiveClass)},
		profile:    &profileTable{table: make(map[string]*profile.Record)},
	}
	return db, nil
}

// SetOffline makes every call fail with core.ErrOffline until switched back.
func (db *DB) SetOffline(offline bool) {
	db.offline.Store(offline)
}

func (db *DB) check() error {
	if db.offline.Load() {
		return core.ErrOffline
	}
	return nil
}

// Members returns the membership rows of a classroom, in join order.
func (db *DB) Members(classroomID string) []string {
	db.member.RLock()
	defer db.member.RUnlock()
	ids := make([]string, 0)
	for _, m := range db.member.rows {
		if m.classroomID == classroomID {
			ids = append(ids, m.userID)
		}
	}
	return ids
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, o := range order {
		if o != id {
			out = append(out, o)
		}
	}
	return out
}
