package dummydb

import (
	"context"

	"github.com/trezcool/darasa/core/profile"
)

type profileRepository struct {
	db   *profileTable
	conn *DB
}

var _ profile.Remote = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *DB) profile.Remote {
	return &profileRepository{db: db.profile, conn: db}
}

func (repo *profileRepository) GetProfile(ctx context.Context, id string) (profile.Record, error) {
	if err := repo.conn.check(); err != nil {
		return profile.Record{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return profile.Record{}, profile.ErrNotFound
}

func (repo *profileRepository) UpsertProfile(ctx context.Context, rec profile.Record) error {
	if err := repo.conn.check(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[rec.ID] = &rec
	return nil
}
