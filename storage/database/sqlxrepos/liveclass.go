package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/liveclass"
)

const liveClassColumns = `id, title, description, scheduled_start, scheduled_end, actual_start,
	actual_end, status, classroom_id, created_by, meeting_url, recording_url, created_at`

type liveClassRow struct {
	ID             string      `db:"id"`
	Title          string      `db:"title"`
	Description    null.String `db:"description"`
	ScheduledStart time.Time   `db:"scheduled_start"`
	ScheduledEnd   time.Time   `db:"scheduled_end"`
	ActualStart    null.Time   `db:"actual_start"`
	ActualEnd      null.Time   `db:"actual_end"`
	Status         string      `db:"status"`
	ClassroomID    string      `db:"classroom_id"`
	CreatedBy      string      `db:"created_by"`
	MeetingURL     null.String `db:"meeting_url"`
	RecordingURL   null.String `db:"recording_url"`
	CreatedAt      time.Time   `db:"created_at"`
}

func (r liveClassRow) model() liveclass.LiveClass {
	return liveclass.LiveClass{
		ID:             r.ID,
		Title:          r.Title,
		Description:    r.Description.String,
		ScheduledStart: r.ScheduledStart.UTC(),
		ScheduledEnd:   r.ScheduledEnd.UTC(),
		ActualStart:    timePtr(r.ActualStart),
		ActualEnd:      timePtr(r.ActualEnd),
		Status:         r.Status,
		ClassroomID:    r.ClassroomID,
		CreatedBy:      r.CreatedBy,
		MeetingURL:     r.MeetingURL.String,
		RecordingURL:   r.RecordingURL.String,
		CreatedAt:      r.CreatedAt.UTC(),
	}
}

func newLiveClassRow(lc liveclass.LiveClass) liveClassRow {
	return liveClassRow{
		ID:             lc.ID,
		Title:          lc.Title,
		Description:    nullString(lc.Description),
		ScheduledStart: lc.ScheduledStart.UTC(),
		ScheduledEnd:   lc.ScheduledEnd.UTC(),
		ActualStart:    nullTime(lc.ActualStart),
		ActualEnd:      nullTime(lc.ActualEnd),
		Status:         lc.Status,
		ClassroomID:    lc.ClassroomID,
		CreatedBy:      lc.CreatedBy,
		MeetingURL:     nullString(lc.MeetingURL),
		RecordingURL:   nullString(lc.RecordingURL),
		CreatedAt:      lc.CreatedAt.UTC(),
	}
}

type liveClassRepository struct {
	db *sqlx.DB
}

var _ liveclass.Remote = (*liveClassRepository)(nil) // interface compliance check

func NewLiveClassRepository(db *sqlx.DB) liveclass.Remote {
	return &liveClassRepository{db: db}
}

func (repo *liveClassRepository) ListLiveClasses(ctx context.Context, filter liveclass.QueryFilter) ([]liveclass.LiveClass, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ClassroomID != "" {
		where = append(where, "classroom_id = ?")
		args = append(args, filter.ClassroomID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	q := "SELECT " + liveClassColumns + " FROM live_classes"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY scheduled_start, created_at, id"

	var rows []liveClassRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "listing live classes")
	}
	lcs := make([]liveclass.LiveClass, 0, len(rows))
	for _, r := range rows {
		lcs = append(lcs, r.model())
	}
	return lcs, nil
}

func (repo *liveClassRepository) GetLiveClass(ctx context.Context, id string) (liveclass.LiveClass, error) {
	var row liveClassRow
	q := repo.db.Rebind("SELECT " + liveClassColumns + " FROM live_classes WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return liveclass.LiveClass{}, trapNoRowsErr(err, liveclass.ErrNotFound, "finding live class by id")
	}
	return row.model(), nil
}

func (repo *liveClassRepository) CreateLiveClass(ctx context.Context, lc liveclass.LiveClass) error {
	q := `INSERT INTO live_classes (` + liveClassColumns + `)
		VALUES (:id, :title, :description, :scheduled_start, :scheduled_end, :actual_start,
			:actual_end, :status, :classroom_id, :created_by, :meeting_url, :recording_url, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newLiveClassRow(lc)); err != nil {
		return errors.Wrap(err, "inserting live class")
	}
	return nil
}

func (repo *liveClassRepository) UpdateLiveClass(ctx context.Context, lc liveclass.LiveClass) error {
	q := `UPDATE live_classes SET title = :title, description = :description,
		scheduled_start = :scheduled_start, scheduled_end = :scheduled_end,
		actual_start = :actual_start, actual_end = :actual_end, status = :status,
		meeting_url = :meeting_url, recording_url = :recording_url
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newLiveClassRow(lc))
	if err != nil {
		return errors.Wrap(err, "updating live class")
	}
	return checkAffected(res, liveclass.ErrNotFound)
}

func (repo *liveClassRepository) DeleteLiveClass(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM live_classes WHERE id = ?"), id); err != nil {
		return errors.Wrap(err, "deleting live class")
	}
	return nil
}
