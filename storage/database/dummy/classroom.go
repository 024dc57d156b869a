package dummydb

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core/classroom"
)

type classroomRepository struct {
	db *DB
}

var _ classroom.Remote = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *DB) classroom.Remote {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) query(filter classroom.QueryFilter) []classroom.Classroom {
	t := repo.db.classroom
	cls := make([]classroom.Classroom, 0, len(t.table))
	for _, id := range t.order {
		if c := t.table[id]; filter.Match(*c) {
			cls = append(cls, *c)
		}
	}
	return cls
}

func (repo *classroomRepository) ListClassrooms(ctx context.Context, filter classroom.QueryFilter) ([]classroom.Classroom, error) {
	if err := repo.db.check(); err != nil {
		return nil, err
	}
	repo.db.classroom.RLock()
	defer repo.db.classroom.RUnlock()
	return repo.query(filter), nil
}

func (repo *classroomRepository) GetClassroom(ctx context.Context, id string) (classroom.Classroom, error) {
	if err := repo.db.check(); err != nil {
		return classroom.Classroom{}, err
	}
	repo.db.classroom.RLock()
	defer repo.db.classroom.RUnlock()
	if c, ok := repo.db.classroom.table[id]; ok {
		return *c, nil
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}

func (repo *classroomRepository) GetClassroomByCode(ctx context.Context, code string) (classroom.Classroom, error) {
	if err := repo.db.check(); err != nil {
		return classroom.Classroom{}, err
	}
	repo.db.classroom.RLock()
	defer repo.db.classroom.RUnlock()
	for _, c := range repo.query(classroom.QueryFilter{}) {
		if c.HasCode(code) {
			return c, nil
		}
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}

func (repo *classroomRepository) CreateClassroom(ctx context.Context, c classroom.Classroom) error {
	if err := repo.db.check(); err != nil {
		return err
	}
	repo.db.classroom.Lock()
	defer repo.db.classroom.Unlock()
	c.LiveClasses = nil
	repo.db.classroom.table[c.ID] = &c
	repo.db.classroom.order = append(repo.db.classroom.order, c.ID)
	return nil
}

func (repo *classroomRepository) UpdateClassroom(ctx context.Context, c classroom.Classroom) error {
	if err := repo.db.check(); err != nil {
		return err
	}
	repo.db.classroom.Lock()
	defer repo.db.classroom.Unlock()
	if _, ok := repo.db.classroom.table[c.ID]; !ok {
		return classroom.ErrNotFound
	}
	c.LiveClasses = nil
	repo.db.classroom.table[c.ID] = &c
	return nil
}

func (repo *classroomRepository) DeleteClassroom(ctx context.Context, id string) error {
	if err := repo.db.check(); err != nil {
		return err
	}
	repo.db.classroom.Lock()
	delete(repo.db.classroom.table, id)
	repo.db.classroom.order = removeID(repo.db.classroom.order, id)
	repo.db.classroom.Unlock()

	// cascade
	repo.db.member.Lock()
	defer repo.db.member.Unlock()
	kept := repo.db.member.rows[:0]
	for _, m := range repo.db.member.rows {
		if m.classroomID != id {
			kept = append(kept, m)
		}
	}
	repo.db.member.rows = kept
	return nil
}

func (repo *classroomRepository) HasMember(ctx context.Context, classroomID, userID string) (bool, error) {
	if err := repo.db.check(); err != nil {
		return false, err
	}
	repo.db.member.RLock()
	defer repo.db.member.RUnlock()
	for _, m := range repo.db.member.rows {
		if m.classroomID == classroomID && m.userID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *classroomRepository) AddMember(ctx context.Context, classroomID, userID string, joinedAt time.Time) error {
	if err := repo.db.check(); err != nil {
		return err
	}
	repo.db.member.Lock()
	defer repo.db.member.Unlock()
	for _, m := range repo.db.member.rows {
		if m.classroomID == classroomID && m.userID == userID {
			return nil
		}
	}
	repo.db.member.rows = append(repo.db.member.rows, membership{classroomID, userID, joinedAt})
	return nil
}

func (repo *classroomRepository) RemoveMember(ctx context.Context, classroomID, userID string) error {
	if err := repo.db.check(); err != nil {
		return err
	}
	repo.db.member.Lock()
	defer repo.db.member.Unlock()
	kept := repo.db.member.rows[:0]
	for _, m := range repo.db.member.rows {
		if m.classroomID != classroomID || m.userID != userID {
			kept = append(kept, m)
		}
	}
	repo.db.member.rows = kept
	return nil
}

func (repo *classroomRepository) ListMembers(ctx context.Context, classroomID string) ([]string, error) {
	if err := repo.db.check(); err != nil {
		return nil, err
	}
	return repo.db.Members(classroomID), nil
}

func (repo *classroomRepository) ListMemberClassrooms(ctx context.Context, userID string) ([]classroom.Classroom, error) {
	if err := repo.db.check(); err != nil {
		return nil, err
	}
	repo.db.member.RLock()
	ids := make([]string, 0)
	for _, m := range repo.db.member.rows {
		if m.userID == userID {
			ids = append(ids, m.classroomID)
		}
	}
	repo.db.member.RUnlock()

	repo.db.classroom.RLock()
	defer repo.db.classroom.RUnlock()
	cls := make([]classroom.Classroom, 0, len(ids))
	for _, id := range ids {
		if c, ok := repo.db.classroom.table[id]; ok {
			cls = append(cls, *c)
		}
	}
	return cls, nil
}
