package dummydb

import (
	"context"

	"github.com/trezcool/darasa/core/liveclass"
)

type liveClassRepository struct {
	db   *liveClassTable
	conn *DB
}

var _ liveclass.Remote = (*liveClassRepository)(nil) // interface compliance check

func NewLiveClassRepository(db *DB) liveclass.Remote {
	return &liveClassRepository{db: db.liveClass, conn: db}
}

func (repo *liveClassRepository) ListLiveClasses(ctx context.Context, filter liveclass.QueryFilter) ([]liveclass.LiveClass, error) {
	if err := repo.conn.check(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	lcs := make([]liveclass.LiveClass, 0, len(repo.db.table))
	for _, id := range repo.db.order {
		if lc := repo.db.table[id]; filter.Match(*lc) {
			lcs = append(lcs, *lc)
		}
	}
	return lcs, nil
}

func (repo *liveClassRepository) GetLiveClass(ctx context.Context, id string) (liveclass.LiveClass, error) {
	if err := repo.conn.check(); err != nil {
		return liveclass.LiveClass{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	if lc, ok := repo.db.table[id]; ok {
		return *lc, nil
	}
	return liveclass.LiveClass{}, liveclass.ErrNotFound
}

func (repo *liveClassRepository) CreateLiveClass(ctx context.Context, lc liveclass.LiveClass) error {
	if err := repo.conn.check(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[lc.ID] = &lc
	repo.db.order = append(repo.db.order, lc.ID)
	return nil
}

func (repo *liveClassRepository) UpdateLiveClass(ctx context.Context, lc liveclass.LiveClass) error {
	if err := repo.conn.check(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	if _, ok := repo.db.table[lc.ID]; !ok {
		return liveclass.ErrNotFound
	}
	repo.db.table[lc.ID] = &lc
	return nil
}

func (repo *liveClassRepository) DeleteLiveClass(ctx context.Context, id string) error {
	if err := repo.conn.check(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	repo.db.order = removeID(repo.db.order, id)
	return nil
}
