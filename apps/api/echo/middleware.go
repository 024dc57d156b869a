package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/liveclass"
)

const objectKey = "object"

// teacherMiddleware lets through users whose token carries the teacher role.
func teacherMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsTeacher() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// classroomMiddleware loads the classroom named by the :id param into the context.
func classroomMiddleware(svc *classroom.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			c, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding classroom by ID")
			}
			ctx.Set(objectKey, c)
			return next(ctx)
		}
	}
}

// ownerMiddleware lets through the teacher owning the context classroom.
func ownerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			c, ok := ctx.Get(objectKey).(classroom.Classroom)
			if !ok {
				return errors.Wrap(errObjNotFoundInCtx, "retrieving classroom from context")
			}
			if c.TeacherID != claims.Subject {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// checkClassroomOwner fails unless the signed-in user teaches the classroom.
// An unknown classroom is not found.
func checkClassroomOwner(ctx echo.Context, svc *classroom.Service, classroomID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	c, err := svc.GetByID(ctx.Request().Context(), classroomID)
	if err != nil {
		return errors.Wrap(err, "finding classroom by ID")
	}
	if c.TeacherID != claims.Subject {
		return errHttpForbidden
	}
	return nil
}

// assignmentOwnerMiddleware loads the assignment named by the :id param into the context
// and lets through the teacher owning its classroom.
func assignmentOwnerMiddleware(assignments *assignment.Service, classrooms *classroom.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			a, err := assignments.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding assignment by ID")
			}
			if err := checkClassroomOwner(ctx, classrooms, a.ClassroomID); err != nil {
				return err
			}
			ctx.Set(objectKey, a)
			return next(ctx)
		}
	}
}

// liveClassOwnerMiddleware loads the live class named by the :id param into the context
// and lets through the teacher owning its classroom.
func liveClassOwnerMiddleware(liveClasses *liveclass.Service, classrooms *classroom.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			lc, err := liveClasses.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding live class by ID")
			}
			if err := checkClassroomOwner(ctx, classrooms, lc.ClassroomID); err != nil {
				return err
			}
			ctx.Set(objectKey, lc)
			return next(ctx)
		}
	}
}
