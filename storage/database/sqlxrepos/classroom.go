package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/classroom"
)

const classroomColumns = `id, name, section, subject, description, created_at,
	teacher_name, teacher_id, enrollment_code, cover_image`

type classroomRow struct {
	ID             string      `db:"id"`
	Name           string      `db:"name"`
	Section        null.String `db:"section"`
	Subject        null.String `db:"subject"`
	Description    null.String `db:"description"`
	CreatedAt      time.Time   `db:"created_at"`
	TeacherName    string      `db:"teacher_name"`
	TeacherID      null.String `db:"teacher_id"`
	EnrollmentCode string      `db:"enrollment_code"`
	CoverImage     null.String `db:"cover_image"`
}

func (r classroomRow) model() classroom.Classroom {
	return classroom.Classroom{
		ID:             r.ID,
		Name:           r.Name,
		Section:        r.Section.String,
		Subject:        r.Subject.String,
		Description:    r.Description.String,
		CreatedAt:      r.CreatedAt.UTC(),
		TeacherName:    r.TeacherName,
		TeacherID:      r.TeacherID.String,
		EnrollmentCode: r.EnrollmentCode,
		CoverImage:     r.CoverImage.String,
	}
}

func newClassroomRow(c classroom.Classroom) classroomRow {
	return classroomRow{
		ID:             c.ID,
		Name:           c.Name,
		Section:        nullString(c.Section),
		Subject:        nullString(c.Subject),
		Description:    nullString(c.Description),
		CreatedAt:      c.CreatedAt.UTC(),
		TeacherName:    c.TeacherName,
		TeacherID:      nullString(c.TeacherID),
		EnrollmentCode: c.EnrollmentCode,
		CoverImage:     nullString(c.CoverImage),
	}
}

func classroomModels(rows []classroomRow) []classroom.Classroom {
	cls := make([]classroom.Classroom, 0, len(rows))
	for _, r := range rows {
		cls = append(cls, r.model())
	}
	return cls
}

// likeEscaper makes search terms match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

type classroomRepository struct {
	db *sqlx.DB
}

var _ classroom.Remote = (*classroomRepository)(nil) // interface compliance check

func NewClassroomRepository(db *sqlx.DB) classroom.Remote {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) ListClassrooms(ctx context.Context, filter classroom.QueryFilter) ([]classroom.Classroom, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.TeacherID != "" {
		where = append(where, "teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		where = append(where, `(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(section) LIKE ? ESCAPE '\' OR LOWER(subject) LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}

	q := "SELECT " + classroomColumns + " FROM classrooms"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at, id"

	var rows []classroomRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "listing classrooms")
	}
	return classroomModels(rows), nil
}

func (repo *classroomRepository) get(ctx context.Context, column, value string) (classroom.Classroom, error) {
	var row classroomRow
	q := "SELECT " + classroomColumns + " FROM classrooms WHERE " + column + " = ?"
	if err := repo.db.GetContext(ctx, &row, repo.db.Rebind(q), value); err != nil {
		return classroom.Classroom{}, trapNoRowsErr(err, classroom.ErrNotFound, "finding classroom by "+column)
	}
	return row.model(), nil
}

func (repo *classroomRepository) GetClassroom(ctx context.Context, id string) (classroom.Classroom, error) {
	return repo.get(ctx, "id", id)
}

// GetClassroomByCode expects a normalized (upper-case) code; codes are stored normalized.
func (repo *classroomRepository) GetClassroomByCode(ctx context.Context, code string) (classroom.Classroom, error) {
	return repo.get(ctx, "enrollment_code", code)
}

func (repo *classroomRepository) CreateClassroom(ctx context.Context, c classroom.Classroom) error {
	q := `INSERT INTO classrooms (` + classroomColumns + `)
		VALUES (:id, :name, :section, :subject, :description, :created_at,
			:teacher_name, :teacher_id, :enrollment_code, :cover_image)`
	if _, err := repo.db.NamedExecContext(ctx, q, newClassroomRow(c)); err != nil {
		return errors.Wrap(err, "inserting classroom")
	}
	return nil
}

func (repo *classroomRepository) UpdateClassroom(ctx context.Context, c classroom.Classroom) error {
	q := `UPDATE classrooms SET name = :name, section = :section, subject = :subject,
		description = :description, teacher_name = :teacher_name, teacher_id = :teacher_id,
		enrollment_code = :enrollment_code, cover_image = :cover_image
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, newClassroomRow(c))
	if err != nil {
		return errors.Wrap(err, "updating classroom")
	}
	return checkAffected(res, classroom.ErrNotFound)
}

func (repo *classroomRepository) DeleteClassroom(ctx context.Context, id string) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// SQLite does not enforce the cascade unless foreign keys are enabled
	if _, err = tx.ExecContext(ctx, tx.Rebind("DELETE FROM classroom_members WHERE classroom_id = ?"), id); err != nil {
		return errors.Wrap(err, "deleting classroom members")
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind("DELETE FROM classrooms WHERE id = ?"), id); err != nil {
		return errors.Wrap(err, "deleting classroom")
	}
	return errors.Wrap(tx.Commit(), "committing classroom deletion")
}

func (repo *classroomRepository) HasMember(ctx context.Context, classroomID, userID string) (bool, error) {
	var n int
	q := repo.db.Rebind("SELECT COUNT(*) FROM classroom_members WHERE classroom_id = ? AND user_id = ?")
	if err := repo.db.GetContext(ctx, &n, q, classroomID, userID); err != nil {
		return false, errors.Wrap(err, "checking membership")
	}
	return n > 0, nil
}

func (repo *classroomRepository) AddMember(ctx context.Context, classroomID, userID string, joinedAt time.Time) error {
	q := repo.db.Rebind(`INSERT INTO classroom_members (classroom_id, user_id, joined_at)
		VALUES (?, ?, ?) ON CONFLICT (classroom_id, user_id) DO NOTHING`)
	if _, err := repo.db.ExecContext(ctx, q, classroomID, userID, joinedAt.UTC()); err != nil {
		return errors.Wrap(err, "inserting membership")
	}
	return nil
}

func (repo *classroomRepository) RemoveMember(ctx context.Context, classroomID, userID string) error {
	q := repo.db.Rebind("DELETE FROM classroom_members WHERE classroom_id = ? AND user_id = ?")
	if _, err := repo.db.ExecContext(ctx, q, classroomID, userID); err != nil {
		return errors.Wrap(err, "deleting membership")
	}
	return nil
}

func (repo *classroomRepository) ListMembers(ctx context.Context, classroomID string) ([]string, error) {
	ids := make([]string, 0)
	q := repo.db.Rebind("SELECT user_id FROM classroom_members WHERE classroom_id = ? ORDER BY joined_at, user_id")
	if err := repo.db.SelectContext(ctx, &ids, q, classroomID); err != nil {
		return nil, errors.Wrap(err, "listing members")
	}
	return ids, nil
}

func (repo *classroomRepository) ListMemberClassrooms(ctx context.Context, userID string) ([]classroom.Classroom, error) {
	q := `SELECT c.id, c.name, c.section, c.subject, c.description, c.created_at,
			c.teacher_name, c.teacher_id, c.enrollment_code, c.cover_image
		FROM classrooms c
		JOIN classroom_members m ON m.classroom_id = c.id
		WHERE m.user_id = ?
		ORDER BY m.joined_at, c.id`

	var rows []classroomRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), userID); err != nil {
		return nil, errors.Wrap(err, "listing member classrooms")
	}
	return classroomModels(rows), nil
}
