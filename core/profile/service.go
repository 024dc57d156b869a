package profile

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
)

var (
	// errors
	ErrNotFound = errors.New("profile not found")
)

type (
	// Remote is the profile table of the remote data service.
	Remote interface {
		GetProfile(ctx context.Context, id string) (Record, error)
		UpsertProfile(ctx context.Context, rec Record) error
	}

	// Service reads profiles remote-first and mirrors them into the local
	// snapshot (a map keyed by user id under cache.KeyUserProfiles).
	Service struct {
		remote Remote // nil when offline
		store  cache.Store
		logger core.Logger
	}

	snapshot map[string]UserProfile
)

func NewService(remote Remote, store cache.Store, logger core.Logger) *Service {
	return &Service{remote: remote, store: store, logger: logger}
}

func (svc *Service) loadAll() (snapshot, error) {
	return cache.Get(svc.store, cache.KeyUserProfiles, make(snapshot))
}

func (svc *Service) modify(fn func(snap snapshot) (bool, error)) error {
	return cache.Modify(svc.store, cache.KeyUserProfiles, make(snapshot), func(snap *snapshot) (bool, error) {
		if *snap == nil {
			*snap = make(snapshot)
		}
		return fn(*snap)
	})
}

func (svc *Service) cached(id string) (UserProfile, bool, error) {
	snap, err := svc.loadAll()
	if err != nil {
		return UserProfile{}, false, err
	}
	p, ok := snap[id]
	if ok {
		p.normalize()
	}
	return p, ok, nil
}

func (svc *Service) warn(op string, err error) {
	svc.logger.Warn(fmt.Sprintf("profile.%s: remote unavailable, using cache: %v", op, err), err)
}

func (svc *Service) fetchRemote(ctx context.Context, id string) (Record, error) {
	if svc.remote == nil {
		return Record{}, core.ErrOffline
	}
	return svc.remote.GetProfile(ctx, id)
}

// pull fetches the remote record, folds it into the cached profile and mirrors the result.
// remoteOK is false when the cached profile was served instead.
func (svc *Service) pull(ctx context.Context, id string) (p UserProfile, remoteOK bool, err error) {
	rec, rerr := svc.fetchRemote(ctx, id)
	if rerr == nil {
		err = svc.modify(func(snap snapshot) (bool, error) {
			var cached bool
			if p, cached = snap[id]; !cached {
				p.Preferences = DefaultPreferences()
			}
			p.merge(rec)
			snap[id] = p
			return true, nil
		})
		return p, true, err
	}
	if errors.Cause(rerr) != ErrNotFound {
		svc.warn("Get", rerr)
	}

	p, ok, err := svc.cached(id)
	if err != nil {
		return p, false, err
	}
	if !ok {
		return p, false, ErrNotFound
	}
	return p, false, nil
}

// GetByID returns the profile, preferring the remote record.
func (svc *Service) GetByID(ctx context.Context, id string) (UserProfile, error) {
	p, _, err := svc.pull(ctx, id)
	return p, err
}

// Sync pulls the remote record into the cached profile. Preferences and enrolled
// classes stay as cached. Sync.Remote reports whether the remote answered.
func (svc *Service) Sync(ctx context.Context, id string) (UserProfile, core.Sync, error) {
	p, remoteOK, err := svc.pull(ctx, id)
	return p, core.Sync{Remote: remoteOK, Cache: remoteOK && err == nil}, err
}

// Save writes the profile to the remote table and, unconditionally, to the cache.
func (svc *Service) Save(ctx context.Context, p UserProfile) (core.Sync, error) {
	p.normalize()
	p.UpdatedAt = core.Now()

	var sync core.Sync
	sync.Remote = svc.upsertRemote(ctx, p)

	err := svc.modify(func(snap snapshot) (bool, error) {
		snap[p.ID] = p
		return true, nil
	})
	if err != nil {
		return sync, errors.Wrap(err, "caching profile")
	}
	sync.Cache = true
	return sync, nil
}

// Update is Save restricted to cached profiles: an unknown id leaves the cache unchanged.
func (svc *Service) Update(ctx context.Context, p UserProfile) (core.Sync, error) {
	p.normalize()
	p.UpdatedAt = core.Now()

	var sync core.Sync
	sync.Remote = svc.upsertRemote(ctx, p)

	err := svc.modify(func(snap snapshot) (bool, error) {
		if _, ok := snap[p.ID]; !ok {
			return false, nil
		}
		snap[p.ID] = p
		sync.Cache = true
		return true, nil
	})
	if err != nil {
		sync.Cache = false
		return sync, errors.Wrap(err, "caching profile")
	}
	return sync, nil
}

func (svc *Service) upsertRemote(ctx context.Context, p UserProfile) bool {
	if svc.remote == nil {
		svc.warn("Save", core.ErrOffline)
		return false
	}
	if err := svc.remote.UpsertProfile(ctx, p.Record()); err != nil {
		svc.warn("Save", err)
		return false
	}
	return true
}

// EnsureFromAuth returns the user's profile, creating it from the identity on first sign-in.
func (svc *Service) EnsureFromAuth(ctx context.Context, id Identity) (UserProfile, core.Sync, error) {
	p, err := svc.GetByID(ctx, id.ID)
	switch {
	case err == nil:
		return p, core.Sync{}, nil
	case errors.Cause(err) != ErrNotFound:
		return p, core.Sync{}, err
	}

	p = NewFromIdentity(id)
	sync, err := svc.Save(ctx, p)
	return p, sync, err
}

// UpdatePreferences replaces the cached preferences of a profile.
func (svc *Service) UpdatePreferences(ctx context.Context, id string, prefs Preferences) (UserProfile, error) {
	var p UserProfile
	err := svc.modify(func(snap snapshot) (bool, error) {
		var ok bool
		if p, ok = snap[id]; !ok {
			return false, ErrNotFound
		}
		p.Preferences = prefs
		p.UpdatedAt = core.Now()
		p.normalize()
		snap[id] = p
		return true, nil
	})
	if errors.Cause(err) == ErrNotFound {
		return p, ErrNotFound
	}
	return p, err
}

// AddEnrollment appends classroomID to the cached profile's enrolled classes,
// once. A profile not cached yet is started with just its id.
func (svc *Service) AddEnrollment(userID, classroomID string) error {
	return svc.modify(func(snap snapshot) (bool, error) {
		p := snap[userID]
		p.ID = userID
		p.normalize()
		if p.IsEnrolled(classroomID) {
			return false, nil
		}
		p.EnrolledClasses = append(p.EnrolledClasses, classroomID)
		snap[userID] = p
		return true, nil
	})
}

// RemoveEnrollment drops classroomID from the cached profile's enrolled classes.
func (svc *Service) RemoveEnrollment(userID, classroomID string) error {
	return svc.modify(func(snap snapshot) (bool, error) {
		p, ok := snap[userID]
		if !ok {
			return false, nil
		}
		kept := make([]string, 0, len(p.EnrolledClasses))
		for _, id := range p.EnrolledClasses {
			if id != classroomID {
				kept = append(kept, id)
			}
		}
		p.EnrolledClasses = kept
		snap[userID] = p
		return true, nil
	})
}

// Enrollments returns the cached enrolled classes of a user (empty when unknown).
func (svc *Service) Enrollments(userID string) ([]string, error) {
	p, _, err := svc.cached(userID)
	if err != nil {
		return nil, err
	}
	p.normalize()
	return p.EnrolledClasses, nil
}

// EnrolledIn returns the ids of cached profiles enrolled in classroomID, sorted.
func (svc *Service) EnrolledIn(classroomID string) ([]string, error) {
	snap, err := svc.loadAll()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	for id, p := range snap {
		if p.IsEnrolled(classroomID) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Cached returns the cached profiles of the given users, skipping unknown ids.
func (svc *Service) Cached(ids ...string) ([]UserProfile, error) {
	snap, err := svc.loadAll()
	if err != nil {
		return nil, err
	}
	out := make([]UserProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := snap[id]; ok {
			p.normalize()
			out = append(out, p)
		}
	}
	return out, nil
}
