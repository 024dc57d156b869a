package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/profile"
)

type profileRow struct {
	ID        string      `db:"id"`
	FullName  string      `db:"full_name"`
	Email     string      `db:"email"`
	AvatarURL null.String `db:"avatar_url"`
	Role      string      `db:"role"`
	UpdatedAt time.Time   `db:"updated_at"`
}

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Remote = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *sqlx.DB) profile.Remote {
	return &profileRepository{db: db}
}

func (repo *profileRepository) GetProfile(ctx context.Context, id string) (profile.Record, error) {
	var row profileRow
	q := repo.db.Rebind("SELECT id, full_name, email, avatar_url, role, updated_at FROM profiles WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return profile.Record{}, trapNoRowsErr(err, profile.ErrNotFound, "finding profile by id")
	}
	return profile.Record{
		ID:        row.ID,
		FullName:  row.FullName,
		Email:     row.Email,
		AvatarURL: row.AvatarURL.String,
		Role:      row.Role,
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}

func (repo *profileRepository) UpsertProfile(ctx context.Context, rec profile.Record) error {
	row := profileRow{
		ID:        rec.ID,
		FullName:  rec.FullName,
		Email:     rec.Email,
		AvatarURL: nullString(rec.AvatarURL),
		Role:      rec.Role,
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
	q := `INSERT INTO profiles (id, full_name, email, avatar_url, role, updated_at)
		VALUES (:id, :full_name, :email, :avatar_url, :role, :updated_at)
		ON CONFLICT (id) DO UPDATE SET full_name = excluded.full_name, email = excluded.email,
			avatar_url = excluded.avatar_url, role = excluded.role, updated_at = excluded.updated_at`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return errors.Wrap(err, "upserting profile")
	}
	return nil
}
