package assignment

import (
	"testing"
	"time"
)

func TestAssignment_IsSubmissionAllowed(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		a    Assignment
		want bool
	}{
		{"no due date", Assignment{}, true},
		{"no due date, late flag unset", Assignment{AllowLateSubmissions: false}, true},
		{"due in the future", Assignment{DueDate: &future}, true},
		{"due right now", Assignment{DueDate: &now}, true},
		{"past due", Assignment{DueDate: &past}, false},
		{"past due, late allowed", Assignment{DueDate: &past, AllowLateSubmissions: true}, true},
		{"locked", Assignment{Locked: true}, false},
		{"locked, late allowed", Assignment{Locked: true, DueDate: &past, AllowLateSubmissions: true}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.IsSubmissionAllowed(now); got != tc.want {
				t.Errorf("IsSubmissionAllowed() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAssignment_IsLate(t *testing.T) {
	due := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	early := due.Add(-time.Minute)
	late := due.Add(time.Minute)

	if (Assignment{}).IsLate(late) {
		t.Error("IsLate() without due date = true")
	}
	if !(Assignment{DueDate: &due}).IsLate(late) {
		t.Error("IsLate(unsubmitted, after due) = false")
	}
	if (Assignment{DueDate: &due, SubmittedAt: &early}).IsLate(late) {
		t.Error("IsLate(submitted on time) = true")
	}
}

func TestUpdateAssignment_Apply(t *testing.T) {
	due := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	orig := Assignment{Title: "Essay", DueDate: &due}

	got := UpdateAssignment{Title: "  "}.Apply(orig)
	if got.Title != "Essay" || got.DueDate == nil {
		t.Errorf("Apply(empty) = %+v, want unchanged", got)
	}

	yes := true
	got = UpdateAssignment{Title: "Long essay", ClearDueDate: true, Locked: &yes}.Apply(orig)
	if got.Title != "Long essay" || got.DueDate != nil || !got.Locked {
		t.Errorf("Apply() = %+v", got)
	}
	if orig.DueDate == nil {
		t.Error("Apply() changed the original")
	}
}
