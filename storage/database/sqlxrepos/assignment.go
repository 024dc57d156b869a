package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/assignment"
)

const assignmentColumns = `id, title, description, file_name, file_size, file_type, file_url,
	created_at, submitted_at, status, feedback, grade, classroom_id, due_date,
	allow_late_submissions, points, student_id, locked`

type assignmentRow struct {
	ID                   string       `db:"id"`
	Title                string       `db:"title"`
	Description          null.String  `db:"description"`
	FileName             null.String  `db:"file_name"`
	FileSize             null.Int64   `db:"file_size"`
	FileType             null.String  `db:"file_type"`
	FileURL              null.String  `db:"file_url"`
	CreatedAt            time.Time    `db:"created_at"`
	SubmittedAt          null.Time    `db:"submitted_at"`
	Status               string       `db:"status"`
	Feedback             null.String  `db:"feedback"`
	Grade                null.Float64 `db:"grade"`
	ClassroomID          string       `db:"classroom_id"`
	DueDate              null.Time    `db:"due_date"`
	AllowLateSubmissions bool         `db:"allow_late_submissions"`
	Points               null.Int     `db:"points"`
	StudentID            null.String  `db:"student_id"`
	Locked               bool         `db:"locked"`
}

func (r assignmentRow) model() assignment.Assignment {
	a := assignment.Assignment{
		ID:                   r.ID,
		Title:                r.Title,
		Description:          r.Description.String,
		CreatedAt:            r.CreatedAt.UTC(),
		SubmittedAt:          timePtr(r.SubmittedAt),
		Status:               r.Status,
		Feedback:             r.Feedback.String,
		Grade:                r.Grade.Ptr(),
		ClassroomID:          r.ClassroomID,
		DueDate:              timePtr(r.DueDate),
		AllowLateSubmissions: r.AllowLateSubmissions,
		Points:               r.Points.Ptr(),
		StudentID:            r.StudentID.String,
		Locked:               r.Locked,
	}
	if r.FileName.Valid {
		a.File = &assignment.FileMeta{
			Name: r.FileName.String,
			Size: r.FileSize.Int64,
			Type: r.FileType.String,
			URL:  r.FileURL.String,
		}
	}
	return a
}

func newAssignmentRow(a assignment.Assignment) assignmentRow {
	r := assignmentRow{
		ID:                   a.ID,
		Title:                a.Title,
		Description:          nullString(a.Description),
		CreatedAt:            a.CreatedAt.UTC(),
		SubmittedAt:          nullTime(a.SubmittedAt),
		Status:               a.Status,
		Feedback:             nullString(a.Feedback),
		Grade:                null.Float64FromPtr(a.Grade),
		ClassroomID:          a.ClassroomID,
		DueDate:              nullTime(a.DueDate),
		AllowLateSubmissions: a.AllowLateSubmissions,
		Points:               null.IntFromPtr(a.Points),
		StudentID:            nullString(a.StudentID),
		Locked:               a.Locked,
	}
	if a.File != nil {
		r.FileName = null.StringFrom(a.File.Name)
		r.FileSize = null.Int64From(a.File.Size)
		r.FileType = nullString(a.File.Type)
		r.FileURL = nullString(a.File.URL)
	}
	return r
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Remote = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) assignment.Remote {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) ListAssignments(ctx context.Context, filter assignment.QueryFilter) ([]assignment.Assignment, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ClassroomID != "" {
		where = append(where, "classroom_id = ?")
		args = append(args, filter.ClassroomID)
	}
	if filter.StudentID != "" {
		where = append(where, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	q := "SELECT " + assignmentColumns + " FROM assignments"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"

	var rows []assignmentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}
	as := make([]assignment.Assignment, 0, len(rows))
	for _, r := range rows {
		as = append(as, r.model())
	}
	return as, nil
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id string) (assignment.Assignment, error) {
	var row assignmentRow
	q := repo.db.Rebind("SELECT " + assignmentColumns + " FROM assignments WHERE id = ?")
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound, "finding assignment by id")
	}
	return row.model(), nil
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, a assignment.Assignment) error {
	q := `INSERT INTO assignments (` + assignmentColumns + `)
		VALUES (:id, :title, :description, :file_name, :file_size, :file_type, :file_url,
			:created_at, :submitted_at, :status, :feedback, :grade, :classroom_id, :due_date,
			:allow_late_submissions, :points, :student_id, :locked)`
	if _, err := repo.db.NamedExecContext(ctx, q, newAssignmentRow(a)); err != nil {
		return errors.Wrap(err, "inserting assignment")
	}
	return nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, a assignment.Assignment) error {
	q := `UPDATE assignments SET title = :title, description = :description,
		file_name = :file_name, file_size = :file_size, file_type = :file_type, file_url = :file_url,
		submitted_at = :submitted_at, status = :status, feedback = :feedback, grade = :grade,
		classroom_id = :classroom_id, due_date = :due_date, allow_late_submissions = :allow_late_submissions,
		points = :points, student_id = :student_id, locked = :locked
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newAssignmentRow(a))
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return checkAffected(res, assignment.ErrNotFound)
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	if _, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM assignments WHERE id = ?"), id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}
