package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
)

func TestWriteGradeSheet(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	late := due.Add(time.Hour)
	grade := 17.5
	points := 20

	c := classroom.Classroom{ID: "c1", Name: "Maths: Term [1]"}
	as := []assignment.Assignment{
		{ID: "a2", Title: "Vectors", ClassroomID: "c1", Status: assignment.StatusPending},
		{
			ID: "a1", Title: "Algebra", ClassroomID: "c1", Status: assignment.StatusGraded,
			StudentID: "s1", DueDate: &due, SubmittedAt: &late, Grade: &grade, Points: &points, Feedback: "good",
		},
	}

	var buf bytes.Buffer
	if err := WriteGradeSheet(&buf, c, as, map[string]string{"s1": "Ada"}); err != nil {
		t.Fatalf("WriteGradeSheet() failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() failed: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetName(0); got != "Maths Term 1" {
		t.Errorf("sheet name = %q; want %q", got, "Maths Term 1")
	}
	rows, err := f.GetRows("Maths Term 1")
	if err != nil {
		t.Fatalf("GetRows() failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d; want 3", len(rows))
	}

	tests := []struct {
		name string
		row  int
		col  int
		want string
	}{
		{name: "header", row: 0, col: 0, want: "Assignment"},
		{name: "sorted by title", row: 1, col: 0, want: "Algebra"},
		{name: "student name", row: 1, col: 1, want: "Ada"},
		{name: "due", row: 1, col: 3, want: "2026-03-01 12:00"},
		{name: "late", row: 1, col: 5, want: "yes"},
		{name: "points", row: 1, col: 6, want: "20"},
		{name: "grade", row: 1, col: 7, want: "17.5"},
		{name: "feedback", row: 1, col: 8, want: "good"},
		{name: "pending", row: 2, col: 2, want: assignment.StatusPending},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := rows[tc.row][tc.col]; got != tc.want {
				t.Errorf("rows[%d][%d] = %q; want %q", tc.row, tc.col, got, tc.want)
			}
		})
	}
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Physics", want: "Physics"},
		{in: "a/b?c*", want: "abc"},
		{in: "  ", want: gradeSheetName},
		{in: "abcdefghijklmnopqrstuvwxyz0123456789", want: "abcdefghijklmnopqrstuvwxyz01234"},
	}
	for _, tc := range tests {
		if got := sheetName(tc.in); got != tc.want {
			t.Errorf("sheetName(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}
