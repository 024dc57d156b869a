package classroom

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
	"github.com/trezcool/darasa/core/profile"
)

var (
	// errors
	ErrNotFound      = errors.New("classroom not found")
	ErrInvalidCode   = errors.New("invalid class code")
	ErrCodeExhausted = errors.New("could not generate a unique class code")

	maxCodeAttempts = 10
)

type (
	// Remote is the classroom and membership tables of the remote data service.
	Remote interface {
		ListClassrooms(ctx context.Context, filter QueryFilter) ([]Classroom, error)
		GetClassroom(ctx context.Context, id string) (Classroom, error)
		GetClassroomByCode(ctx context.Context, code string) (Classroom, error)
		CreateClassroom(ctx context.Context, c Classroom) error
		UpdateClassroom(ctx context.Context, c Classroom) error
		DeleteClassroom(ctx context.Context, id string) error

		HasMember(ctx context.Context, classroomID, userID string) (bool, error)
		AddMember(ctx context.Context, classroomID, userID string, joinedAt time.Time) error
		RemoveMember(ctx context.Context, classroomID, userID string) error
		ListMembers(ctx context.Context, classroomID string) ([]string, error)
		ListMemberClassrooms(ctx context.Context, userID string) ([]Classroom, error)
	}

	Service struct {
		remote   Remote // nil when offline
		cache    *cache.Collection[Classroom]
		profiles *profile.Service
		logger   core.Logger
		dedupe   bool
	}
)

func NewService(remote Remote, store cache.Store, profiles *profile.Service, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		remote:   remote,
		cache:    cache.NewCollection(store, cache.KeyClassrooms, classroomID),
		profiles: profiles,
		logger:   logger,
		dedupe:   conf.DedupeForUser,
	}
}

func (svc *Service) warn(op string, err error) {
	svc.logger.Warn(fmt.Sprintf("classroom.%s: remote unavailable, using cache: %v", op, err), err)
}

// online returns the remote, or core.ErrOffline when there is none.
func (svc *Service) online() (Remote, error) {
	if svc.remote == nil {
		return nil, core.ErrOffline
	}
	return svc.remote, nil
}

// List queries the remote and mirrors the result into the cache (only the filtered
// part of the snapshot when a filter is set). When the remote fails the cached
// snapshot is filtered in memory instead.
func (svc *Service) List(ctx context.Context, filter QueryFilter) ([]Classroom, error) {
	filter.Clean()
	remote, err := svc.online()
	if err == nil {
		var cls []Classroom
		if cls, err = remote.ListClassrooms(ctx, filter); err == nil {
			if filter.IsEmpty() {
				err = svc.cache.Replace(cls)
			} else {
				err = svc.cache.ReplaceWhere(filter.Match, cls)
			}
			return cls, errors.Wrap(err, "mirroring classrooms")
		}
	}
	svc.warn("List", err)
	return svc.cache.Filter(filter.Match)
}

// GetByID returns the classroom, remote first. Absent everywhere is ErrNotFound.
func (svc *Service) GetByID(ctx context.Context, id string) (Classroom, error) {
	remote, err := svc.online()
	if err == nil {
		var c Classroom
		if c, err = remote.GetClassroom(ctx, id); err == nil {
			return c, errors.Wrap(svc.cache.Upsert(c), "mirroring classroom")
		}
	}
	if errors.Cause(err) != ErrNotFound {
		svc.warn("GetByID", err)
	}

	c, found, err := svc.cache.FindByID(id)
	if err != nil {
		return c, err
	}
	if !found {
		return c, ErrNotFound
	}
	return c, nil
}

// GetByCode looks a classroom up by enrollment code, ignoring case and surrounding whitespace.
func (svc *Service) GetByCode(ctx context.Context, code string) (Classroom, error) {
	code = core.NormalizeCode(code)
	if code == "" {
		return Classroom{}, ErrNotFound
	}

	remote, err := svc.online()
	if err == nil {
		var c Classroom
		if c, err = remote.GetClassroomByCode(ctx, code); err == nil {
			return c, errors.Wrap(svc.cache.Upsert(c), "mirroring classroom")
		}
	}
	if errors.Cause(err) != ErrNotFound {
		svc.warn("GetByCode", err)
	}

	c, found, err := svc.cache.Find(func(c Classroom) bool { return c.HasCode(code) })
	if err != nil {
		return c, err
	}
	if !found {
		return c, ErrNotFound
	}
	return c, nil
}

func (svc *Service) uniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := GenerateCode()
		if err != nil {
			return "", errors.Wrap(err, "generating class code")
		}
		_, err = svc.GetByCode(ctx, code)
		switch errors.Cause(err) {
		case ErrNotFound:
			return code, nil
		case nil:
			continue // taken
		default:
			return "", err
		}
	}
	return "", ErrCodeExhausted
}

// Create stores a new classroom with a fresh id and enrollment code.
// The cache append happens whatever the remote outcome.
func (svc *Service) Create(ctx context.Context, nc NewClassroom) (Classroom, core.Sync, error) {
	nc.Clean()
	code, err := svc.uniqueCode(ctx)
	if err != nil {
		return Classroom{}, core.Sync{}, err
	}

	c := Classroom{
		ID:             uuid.NewString(),
		Name:           nc.Name,
		Section:        nc.Section,
		Subject:        nc.Subject,
		Description:    nc.Description,
		CreatedAt:      core.Now(),
		TeacherName:    nc.TeacherName,
		TeacherID:      nc.TeacherID,
		EnrollmentCode: code,
		CoverImage:     nc.CoverImage,
	}

	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.CreateClassroom(ctx, c)
	}
	if err != nil {
		svc.warn("Create", err)
	} else {
		sync.Remote = true
	}

	if err := svc.cache.Append(c); err != nil {
		return c, sync, errors.Wrap(err, "caching classroom")
	}
	sync.Cache = true
	return c, sync, nil
}

// Update writes the classroom to the remote and replaces its cached copy.
// A classroom missing from the cache is not inserted (Sync.Cache is false).
func (svc *Service) Update(ctx context.Context, c Classroom) (Classroom, core.Sync, error) {
	c.EnrollmentCode = core.NormalizeCode(c.EnrollmentCode)
	c.LiveClasses = nil

	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.UpdateClassroom(ctx, c)
	}
	if err != nil {
		svc.warn("Update", err)
	} else {
		sync.Remote = true
	}

	found, err := svc.cache.Update(c)
	if err != nil {
		return c, sync, errors.Wrap(err, "caching classroom")
	}
	sync.Cache = found
	return c, sync, nil
}

// Delete removes the classroom from the remote and from the cache.
// Its assignments and live classes are left in place.
func (svc *Service) Delete(ctx context.Context, id string) (core.Sync, error) {
	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.DeleteClassroom(ctx, id)
	}
	if err != nil {
		svc.warn("Delete", err)
	} else {
		sync.Remote = true
	}

	if _, err := svc.cache.Remove(id); err != nil {
		return sync, errors.Wrap(err, "uncaching classroom")
	}
	sync.Cache = true
	return sync, nil
}
