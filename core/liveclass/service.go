package liveclass

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
	ErrNotFound = errors.New("live class not found")
)

type (
	// Remote is the live class table of the remote data service.
	Remote interface {
		ListLiveClasses(ctx context.Context, filter QueryFilter) ([]LiveClass, error)
		GetLiveClass(ctx context.Context, id string) (LiveClass, error)
		CreateLiveClass(ctx context.Context, lc LiveClass) error
		UpdateLiveClass(ctx context.Context, lc LiveClass) error
		DeleteLiveClass(ctx context.Context, id string) error
	}

	// Notifier is told when a live class goes live.
	Notifier interface {
		LiveClassStarted(ctx context.Context, lc LiveClass)
	}

	Service struct {
		remote   Remote // nil when offline
		cache    *cache.Collection[LiveClass]
		notifier Notifier
		logger   core.Logger
	}
)

func NewService(remote Remote, store cache.Store, logger core.Logger) *Service {
	return &Service{
		remote: remote,
		cache:  cache.NewCollection(store, cache.KeyLiveClasses, liveClassID),
		logger: logger,
	}
}

// SetNotifier registers the notifier told about started live classes.
func (svc *Service) SetNotifier(n Notifier) {
	svc.notifier = n
}

func (svc *Service) warn(op string, err error) {
	svc.logger.Warn(fmt.Sprintf("liveclass.%s: remote unavailable, using cache: %v", op, err), err)
}

func (svc *Service) online() (Remote, error) {
	if svc.remote == nil {
		return nil, core.ErrOffline
	}
	return svc.remote, nil
}

// List queries the remote and mirrors the result into the cache, else serves the cached snapshot.
func (svc *Service) List(ctx context.Context, filter QueryFilter) ([]LiveClass, error) {
	filter.Clean()
	remote, err := svc.online()
	if err == nil {
		var lcs []LiveClass
		if lcs, err = remote.ListLiveClasses(ctx, filter); err == nil {
			if filter.IsEmpty() {
				err = svc.cache.Replace(lcs)
			} else {
				err = svc.cache.ReplaceWhere(filter.Match, lcs)
			}
			return lcs, errors.Wrap(err, "mirroring live classes")
		}
	}
	svc.warn("List", err)
	return svc.cache.Filter(filter.Match)
}

func (svc *Service) GetByID(ctx context.Context, id string) (LiveClass, error) {
	remote, err := svc.online()
	if err == nil {
		var lc LiveClass
		if lc, err = remote.GetLiveClass(ctx, id); err == nil {
			return lc, errors.Wrap(svc.cache.Upsert(lc), "mirroring live class")
		}
	}
	if errors.Cause(err) != ErrNotFound {
		svc.warn("GetByID", err)
	}

	lc, found, err := svc.cache.FindByID(id)
	if err != nil {
		return lc, err
	}
	if !found {
		return lc, ErrNotFound
	}
	return lc, nil
}

// Create schedules a new live class.
func (svc *Service) Create(ctx context.Context, nl NewLiveClass) (LiveClass, core.Sync, error) {
	nl.Clean()
	lc := LiveClass{
		ID:             uuid.NewString(),
		Title:          nl.Title,
		Description:    nl.Description,
		ScheduledStart: nl.ScheduledStart.UTC(),
		ScheduledEnd:   nl.ScheduledEnd.UTC(),
		Status:         StatusScheduled,
		ClassroomID:    nl.ClassroomID,
		CreatedBy:      nl.CreatedBy,
		MeetingURL:     nl.MeetingURL,
		CreatedAt:      core.Now(),
	}

	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.CreateLiveClass(ctx, lc)
	}
	if err != nil {
		svc.warn("Create", err)
	} else {
		sync.Remote = true
	}

	if err := svc.cache.Append(lc); err != nil {
		return lc, sync, errors.Wrap(err, "caching live class")
	}
	sync.Cache = true
	return lc, sync, nil
}

// Update writes the live class remotely and replaces its cached copy, if any.
func (svc *Service) Update(ctx context.Context, lc LiveClass) (LiveClass, core.Sync, error) {
	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.UpdateLiveClass(ctx, lc)
	}
	if err != nil {
		svc.warn("Update", err)
	} else {
		sync.Remote = true
	}

	found, err := svc.cache.Update(lc)
	if err != nil {
		return lc, sync, errors.Wrap(err, "caching live class")
	}
	sync.Cache = found
	return lc, sync, nil
}

func (svc *Service) Delete(ctx context.Context, id string) (core.Sync, error) {
	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.DeleteLiveClass(ctx, id)
	}
	if err != nil {
		svc.warn("Delete", err)
	} else {
		sync.Remote = true
	}

	if _, err := svc.cache.Remove(id); err != nil {
		return sync, errors.Wrap(err, "uncaching live class")
	}
	sync.Cache = true
	return sync, nil
}

// Start marks the live class as live now and tells the notifier.
// Status transitions are not guarded here.
func (svc *Service) Start(ctx context.Context, id string) (LiveClass, core.Sync, error) {
	lc, sync, err := svc.transition(ctx, id, func(lc *LiveClass) {
		now := core.Now()
		lc.Status = StatusLive
		lc.ActualStart = &now
	})
	if err == nil && svc.notifier != nil {
		svc.notifier.LiveClassStarted(ctx, lc)
	}
	return lc, sync, err
}

// End marks the live class as completed now.
func (svc *Service) End(ctx context.Context, id string) (LiveClass, core.Sync, error) {
	return svc.transition(ctx, id, func(lc *LiveClass) {
		now := core.Now()
		lc.Status = StatusCompleted
		lc.ActualEnd = &now
	})
}

func (svc *Service) Cancel(ctx context.Context, id string) (LiveClass, core.Sync, error) {
	return svc.transition(ctx, id, func(lc *LiveClass) {
		lc.Status = StatusCancelled
	})
}

func (svc *Service) transition(ctx context.Context, id string, fn func(lc *LiveClass)) (LiveClass, core.Sync, error) {
	lc, err := svc.GetByID(ctx, id)
	if err != nil {
		return lc, core.Sync{}, err
	}
	fn(&lc)
	return svc.Update(ctx, lc)
}
