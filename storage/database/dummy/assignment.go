package dummydb

import (
	"context"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db   *assignmentTable
	conn *DB
}

var _ assignment.Remote = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) assignment.Remote {
	return &assignmentRepository{db: db.assignment, conn: db}
}

func (repo *assignmentRepository) ListAssignments(ctx context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	if err := repo.conn.check(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	as := make([]assignment.Assignment, 0, len(repo.db.table))
	for _, id := range repo.db.order {
		if a := repo.db.table[id]; filter.Match(*a) {
			as = append(as, *a)
		}
	}
	return as, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	if err := repo.conn.check(); err != nil {
		return assignment.Assignment{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	if a, ok := repo.db.table[id]; ok {
		return *a, nil
	}
	return assignment.Assignment{}, assignment.ErrNotFound
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) error {
	if err := repo.conn.check(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[a.ID] = &a
	repo.db.order = append(repo.db.order, a.ID)
	return nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) error {
	if err := repo.conn.check(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.table[a.ID]; !ok {
		return assignment.ErrNotFound
	}
	repo.db.table[a.ID] = &a
	return nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	if err := repo.conn.check(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}
