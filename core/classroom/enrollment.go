package classroom

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// JoinByCode enrolls the user in the classroom owning code. The remote membership
// row is inserted only when missing and the classroom id is added once to the
// cached profile, so joining twice has no further effect.
// Once the classroom is found it is returned whatever the membership writes did.
func (svc *Service) JoinByCode(ctx context.Context, code, userID string) (Classroom, core.Sync, error) {
	var sync core.Sync
	c, err := svc.GetByCode(ctx, code)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return c, sync, ErrInvalidCode
		}
		return c, sync, err
	}

	remote, err := svc.online()
	if err == nil {
		var member bool
		if member, err = remote.HasMember(ctx, c.ID, userID); err == nil && !member {
			err = remote.AddMember(ctx, c.ID, userID, core.Now())
		}
	}
	if err != nil {
		svc.warn("JoinByCode", err)
	} else {
		sync.Remote = true
	}

	if err := svc.profiles.AddEnrollment(userID, c.ID); err != nil {
		svc.logger.Error("classroom.JoinByCode: caching enrollment", err)
		return c, sync, nil
	}
	sync.Cache = true
	return c, sync, nil
}

// Leave removes the user's membership remotely and, unconditionally, from the cached profile.
func (svc *Service) Leave(ctx context.Context, classroomID, userID string) (core.Sync, error) {
	var sync core.Sync
	remote, err := svc.online()
	if err == nil {
		err = remote.RemoveMember(ctx, classroomID, userID)
	}
	if err != nil {
		svc.warn("Leave", err)
	} else {
		sync.Remote = true
	}

	if err := svc.profiles.RemoveEnrollment(userID, classroomID); err != nil {
		return sync, errors.Wrap(err, "uncaching enrollment")
	}
	sync.Cache = true
	return sync, nil
}

// ListForUser returns the classrooms taught by the user followed by the ones they
// joined. A teacher enrolled in their own classroom gets it twice unless
// deduplication is configured.
func (svc *Service) ListForUser(ctx context.Context, userID string) ([]Classroom, error) {
	owned, joined, err := svc.remoteForUser(ctx, userID)
	if err == nil {
		cls := svc.union(owned, joined)
		mirror := make(map[string]bool, len(cls))
		for _, c := range cls {
			mirror[c.ID] = true
		}
		// upsert: drop stale copies of the returned classrooms, then append them once
		err = svc.cache.ReplaceWhere(
			func(c Classroom) bool { return mirror[c.ID] },
			svc.distinct(cls),
		)
		return cls, errors.Wrap(err, "mirroring classrooms")
	}
	svc.warn("ListForUser", err)

	owned, err = svc.cache.Filter(func(c Classroom) bool { return c.TeacherID == userID })
	if err != nil {
		return nil, err
	}
	enrolled, err := svc.profiles.Enrollments(userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(enrolled))
	for _, id := range enrolled {
		ids[id] = true
	}
	joined, err = svc.cache.Filter(func(c Classroom) bool { return ids[c.ID] })
	if err != nil {
		return nil, err
	}
	return svc.union(owned, joined), nil
}

func (svc *Service) remoteForUser(ctx context.Context, userID string) (owned, joined []Classroom, err error) {
	remote, err := svc.online()
	if err != nil {
		return nil, nil, err
	}
	if owned, err = remote.ListClassrooms(ctx, QueryFilter{TeacherID: userID}); err != nil {
		return nil, nil, err
	}
	if joined, err = remote.ListMemberClassrooms(ctx, userID); err != nil {
		return nil, nil, err
	}
	return owned, joined, nil
}

func (svc *Service) union(owned, joined []Classroom) []Classroom {
	cls := make([]Classroom, 0, len(owned)+len(joined))
	cls = append(cls, owned...)
	cls = append(cls, joined...)
	if svc.dedupe {
		return svc.distinct(cls)
	}
	return cls
}

func (svc *Service) distinct(cls []Classroom) []Classroom {
	seen := make(map[string]bool, len(cls))
	out := make([]Classroom, 0, len(cls))
	for _, c := range cls {
		if !seen[c.ID] {
			seen[c.ID] = true
			out = append(out, c)
		}
	}
	return out
}

// ListMembers returns the ids of the users enrolled in the classroom.
// Offline, it is answered from the cached profiles.
func (svc *Service) ListMembers(ctx context.Context, classroomID string) ([]string, error) {
	remote, err := svc.online()
	if err == nil {
		var ids []string
		if ids, err = remote.ListMembers(ctx, classroomID); err == nil {
			return ids, nil
		}
	}
	svc.warn("ListMembers", err)
	return svc.profiles.EnrolledIn(classroomID)
}
