package assignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
)

var (
	// errors
	ErrNotFound         = errors.New("assignment not found")
	ErrSubmissionClosed = errors.New("this assignment no longer accepts submissions")
)

type (
	// Remote is the assignment table of the remote data service.
	Remote interface {
		ListAssignments(ctx context.Context, filter QueryFilter) ([]Assignment, error)
		GetAssignment(ctx context.Context, id string) (Assignment, error)
		CreateAssignment(ctx context.Context, a Assignment) error
		UpdateAssignment(ctx context.Context, a Assignment) error
		DeleteAssignment(ctx context.Context, id string) error
	}

	Service struct {
		remote Remote // nil when offline
		cache  *cache.Collection[Assignment]
		logger core.Logger
	}
)

func NewService(remote Remote, store cache.Store, logger core.Logger) *Service {
	return &Service{
		remote: remote,
		cache:  cache.NewCollection(store, cache.KeyAssignments, assignmentID),
		logger: logger,
	}
}

func (svc *Service) warn(op string, err error) {
	svc.logger.Warn(fmt.Sprintf("assignment.%s: remote unavailable, using cache: %v", op, err), err)
}

func (svc *Service) online() (Remote, error) {
	if svc.remote == nil {
		return nil, core.ErrOffline
	}
	return svc.remote, nil
}

// List queries the remote and mirrors the result into the cache, else serves the cached snapshot.
func (svc *Service) List(ctx context.Context, filter QueryFilter) ([]Assignment, error) {
	filter.Clean()
	remote, err := svc.online()
	if err == nil {
		var as []Assignment
		if as, err = remote.ListAssignments(ctx, filter); err == nil {
			if filter.IsEmpty() {
				err = svc.cache.Replace(as)
			} else {
				err = svc.cache.ReplaceWhere(filter.Match, as)
			}
			return as, errors.Wrap(err, "mirroring assignments")
		}
	}
	svc.warn("List", err)
	return svc.cache.Filter(filter.Match)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Assignment, error) {
	remote, err := svc.online()
	if err == nil {
		var a Assignment
		if a, err = remote.GetAssignment(ctx, id); err == nil {
			return a, errors.Wrap(svc.cache.Upsert(a), "mirroring assignment")
		}
	}
	if errors.Cause(err) != ErrNotFound {
		svc.warn("GetByID", err)
	}

	a, found, err := svc.cache.FindByID(id)
	if err != nil {
		return a, err
	}
	if !found {
		return a, ErrNotFound
	}
	return a, nil
}

// Create stores a new pending assignment.
func (svc *Service) Create(ctx context.Context, na NewAssignment) (Assignment, core.Sync, error) {
	na.Clean()
	a := Assignment{
		ID:                   uuid.NewString(),
		Title:                na.Title,
		Description:          na.Description,
		CreatedAt:            core.Now(),
		Status:               StatusPending,
		ClassroomID:          na.ClassroomID,
		AllowLateSubmissions: na.AllowLateSubmissions,
		Points:               na.Points,
		StudentID:            na.StudentID,
	}
	if na.DueDate != nil {
		due := na.DueDate.UTC()
		a.DueDate = &due
	}

	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.CreateAssignment(ctx, a)
	}
	if err != nil {
		svc.warn("Create", err)
	} else {
		sync.Remote = true
	}

	if err := svc.cache.Append(a); err != nil {
		return a, sync, errors.Wrap(err, "caching assignment")
	}
	sync.Cache = true
	return a, sync, nil
}

// Update writes the assignment remotely and replaces its cached copy, if any.
func (svc *Service) Update(ctx context.Context, a Assignment) (Assignment, core.Sync, error) {
	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.UpdateAssignment(ctx, a)
	}
	if err != nil {
		svc.warn("Update", err)
	} else {
		sync.Remote = true
	}

	found, err := svc.cache.Update(a)
	if err != nil {
		return a, sync, errors.Wrap(err, "caching assignment")
	}
	sync.Cache = found
	return a, sync, nil
}

func (svc *Service) Delete(ctx context.Context, id string) (core.Sync, error) {
	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.DeleteAssignment(ctx, id)
	}
	if err != nil {
		svc.warn("Delete", err)
	} else {
		sync.Remote = true
	}

	if _, err := svc.cache.Remove(id); err != nil {
		return sync, errors.Wrap(err, "uncaching assignment")
	}
	sync.Cache = true
	return sync, nil
}

// Submit attaches the student's file and marks the assignment as submitted.
// It fails with ErrSubmissionClosed once the assignment stopped accepting work.
func (svc *Service) Submit(ctx context.Context, id, studentID string, file FileMeta) (Assignment, core.Sync, error) {
	a, err := svc.GetByID(ctx, id)
	if err != nil {
		return a, core.Sync{}, err
	}
	now := core.Now()
	if !a.IsSubmissionAllowed(now) {
		return a, core.Sync{}, ErrSubmissionClosed
	}

	a.File = &file
	a.SubmittedAt = &now
	a.StudentID = studentID
	a.Status = StatusSubmitted
	return svc.Update(ctx, a)
}

// Grade records the grade and feedback and marks the assignment as graded.
func (svc *Service) Grade(ctx context.Context, id string, grade float64, feedback string) (Assignment, core.Sync, error) {
	a, err := svc.GetByID(ctx, id)
	if err != nil {
		return a, core.Sync{}, err
	}
	a.Grade = &grade
	a.Feedback = core.CleanString(feedback)
	a.Status = StatusGraded
	return svc.Update(ctx, a)
}
