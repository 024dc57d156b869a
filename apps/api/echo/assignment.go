package echoapi

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
)

const submissionFileField = "file"

var assignmentOrdering = lessFuncs[assignment.Assignment]{
	"title":      func(a, b assignment.Assignment) bool { return a.Title < b.Title },
	"created_at": func(a, b assignment.Assignment) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"due_date": func(a, b assignment.Assignment) bool {
		// no due date sorts last
		if a.DueDate == nil || b.DueDate == nil {
			return a.DueDate != nil && b.DueDate == nil
		}
		return a.DueDate.Before(*b.DueDate)
	},
}

type assignmentApi struct {
	ServerDeps
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := assignmentApi{deps}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, teacherMiddleware())
	ag.GET("/:id", api.retrieve)
	ag.POST("/:id/submit", api.submit)

	owner := assignmentOwnerMiddleware(api.AssignmentSvc, api.ClassroomSvc)
	ag.PUT("/:id", api.update, teacherMiddleware(), owner)
	ag.DELETE("/:id", api.destroy, teacherMiddleware(), owner)
	ag.POST("/:id/grade", api.grade, teacherMiddleware(), owner)
}

func contextAssignment(ctx echo.Context) (assignment.Assignment, error) {
	a, ok := ctx.Get(objectKey).(assignment.Assignment)
	if !ok {
		return a, errors.Wrap(errObjNotFoundInCtx, "retrieving assignment from context")
	}
	return a, nil
}

func (api *assignmentApi) query(ctx echo.Context) error {
	filter := new(assignment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []assignment.Assignment{})
	}

	as, err := api.AssignmentSvc.List(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)
	orderBy(as, *ordering, assignmentOrdering)
	if as == nil {
		as = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, as)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	data.Clean()
	if err := api.Validate.Struct(data); err != nil {
		return err
	}
	if err := checkClassroomOwner(ctx, api.ClassroomSvc, data.ClassroomID); err != nil {
		return err
	}

	a, sync, err := api.AssignmentSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	a, err := api.AssignmentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	a, err := contextAssignment(ctx)
	if err != nil {
		return err
	}

	var data assignment.UpdateAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}

	a, sync, err := api.AssignmentSvc.Update(ctx.Request().Context(), data.Apply(a))
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	a, err := contextAssignment(ctx)
	if err != nil {
		return err
	}
	sync, err := api.AssignmentSvc.Delete(ctx.Request().Context(), a.ID)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	setSyncHeaders(ctx, sync)
	return ctx.NoContent(http.StatusNoContent)
}

// submit uploads the multipart `file` to the file store and hands the assignment in.
func (api *assignmentApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rctx := ctx.Request().Context()
	a, err := api.AssignmentSvc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding assignment by ID")
	}
	if !a.IsSubmissionAllowed(core.Now()) {
		return assignment.ErrSubmissionClosed
	}

	fh, err := ctx.FormFile(submissionFileField)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: submissionFileField, Error: errMissingSubmission})
	}
	if fh.Size > api.Conf.Storage.MaxFileMiB<<20 {
		return core.NewValidationError(nil, core.FieldError{Field: submissionFileField, Error: errFileTooLarge})
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening submitted file")
	}
	defer src.Close()

	name := filepath.Base(fh.Filename)
	contentType := fh.Header.Get(echo.HeaderContentType)
	key := fmt.Sprintf("assignments/%s/%s/%s-%s", a.ID, claims.Subject, uuid.NewString(), name)
	url, err := api.Files.Put(rctx, key, src, contentType)
	if err != nil {
		return errors.Wrap(err, "storing submitted file")
	}

	file := assignment.FileMeta{Name: name, Size: fh.Size, Type: contentType, URL: url}
	a, sync, err := api.AssignmentSvc.Submit(rctx, a.ID, claims.Subject, file)
	if err != nil {
		return errors.Wrap(err, "submitting assignment")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	a, err := contextAssignment(ctx)
	if err != nil {
		return err
	}

	var data assignment.GradeAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeAssignment")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}

	a, sync, err := api.AssignmentSvc.Grade(ctx.Request().Context(), a.ID, data.Grade, data.Feedback)
	if err != nil {
		return errors.Wrap(err, "grading assignment")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusOK, a)
}
