// Package export renders classroom data to spreadsheets.
package export

import (
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
)

const (
	dateLayout     = "2006-01-02 15:04"
	maxSheetName   = 31
	defaultSheet   = "Sheet1"
	gradeSheetName = "Grades"
)

var gradeHeader = []interface{}{
	"Assignment", "Student", "Status", "Due", "Submitted", "Late", "Points", "Grade", "Feedback",
}

// GradeSheet builds a workbook with one row per assignment of the classroom.
// students maps student ids to display names; unknown ids are written as is.
func GradeSheet(c classroom.Classroom, as []assignment.Assignment, students map[string]string) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := sheetName(c.Name)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, errors.Wrap(err, "naming sheet")
	}

	if err := f.SetSheetRow(sheet, "A1", &gradeHeader); err != nil {
		return nil, errors.Wrap(err, "writing header")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, errors.Wrap(err, "creating header style")
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return nil, errors.Wrap(err, "styling header")
	}

	rows := append([]assignment.Assignment(nil), as...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Title != rows[j].Title {
			return rows[i].Title < rows[j].Title
		}
		return rows[i].StudentID < rows[j].StudentID
	})

	now := time.Now().UTC()
	for i, a := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := gradeRow(a, students, now)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, errors.Wrapf(err, "writing row %d", i+2)
		}
	}

	if err := f.SetColWidth(sheet, "A", "B", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "I", "I", 48); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteGradeSheet writes the grade sheet of the classroom as xlsx to w.
func WriteGradeSheet(w io.Writer, c classroom.Classroom, as []assignment.Assignment, students map[string]string) error {
	f, err := GradeSheet(c, as, students)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return errors.Wrap(err, "writing xlsx")
}

func gradeRow(a assignment.Assignment, students map[string]string, now time.Time) []interface{} {
	student := a.StudentID
	if name, ok := students[a.StudentID]; ok && name != "" {
		student = name
	}
	row := []interface{}{a.Title, student, a.Status, formatTime(a.DueDate), formatTime(a.SubmittedAt), "", "", "", a.Feedback}
	if a.SubmittedAt != nil && a.IsLate(now) {
		row[5] = "yes"
	}
	if a.Points != nil {
		row[6] = *a.Points
	}
	if a.Grade != nil {
		row[7] = *a.Grade
	}
	return row
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// sheetName strips the characters excel refuses in sheet names.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.Trim(strings.TrimSpace(name), "'"))
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		return gradeSheetName
	}
	return name
}
