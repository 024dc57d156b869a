package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/liveclass"
)

var liveClassOrdering = lessFuncs[liveclass.LiveClass]{
	"title":           func(a, b liveclass.LiveClass) bool { return a.Title < b.Title },
	"scheduled_start": func(a, b liveclass.LiveClass) bool { return a.ScheduledStart.Before(b.ScheduledStart) },
	"created_at":      func(a, b liveclass.LiveClass) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

type liveClassApi struct {
	ServerDeps
}

func registerLiveClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := liveClassApi{deps}

	lg := g.Group("/live-classes", jwt)
	lg.GET("", api.query)
	lg.POST("", api.create, teacherMiddleware())
	lg.GET("/:id", api.retrieve)

	owner := liveClassOwnerMiddleware(api.LiveClassSvc, api.ClassroomSvc)
	lg.PUT("/:id", api.update, teacherMiddleware(), owner)
	lg.DELETE("/:id", api.destroy, teacherMiddleware(), owner)
	lg.POST("/:id/start", api.transition(api.LiveClassSvc.Start), teacherMiddleware(), owner)
	lg.POST("/:id/end", api.transition(api.LiveClassSvc.End), teacherMiddleware(), owner)
	lg.POST("/:id/cancel", api.transition(api.LiveClassSvc.Cancel), teacherMiddleware(), owner)
}

func contextLiveClass(ctx echo.Context) (liveclass.LiveClass, error) {
	lc, ok := ctx.Get(objectKey).(liveclass.LiveClass)
	if !ok {
		return lc, errors.Wrap(errObjNotFoundInCtx, "retrieving live class from context")
	}
	return lc, nil
}

func (api *liveClassApi) query(ctx echo.Context) error {
	filter := new(liveclass.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []liveclass.LiveClass{})
	}

	lcs, err := api.LiveClassSvc.List(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying live classes")
	}

	ordering := new(Ordering)
	ordering.Bind(ctx)
	orderBy(lcs, *ordering, liveClassOrdering)
	if lcs == nil {
		lcs = []liveclass.LiveClass{}
	}
	return ctx.JSON(http.StatusOK, lcs)
}

func (api *liveClassApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data liveclass.NewLiveClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLiveClass")
	}
	data.Clean()
	if err := api.Validate.Struct(data); err != nil {
		return err
	}
	if err := checkClassroomOwner(ctx, api.ClassroomSvc, data.ClassroomID); err != nil {
		return err
	}
	data.CreatedBy = claims.Subject

	lc, sync, err := api.LiveClassSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating live class")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusCreated, lc)
}

func (api *liveClassApi) retrieve(ctx echo.Context) error {
	lc, err := api.LiveClassSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding live class by ID")
	}
	return ctx.JSON(http.StatusOK, lc)
}

func (api *liveClassApi) update(ctx echo.Context) error {
	lc, err := contextLiveClass(ctx)
	if err != nil {
		return err
	}

	var data liveclass.UpdateLiveClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLiveClass")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}
	lc = data.Apply(lc)
	if !lc.ScheduledEnd.After(lc.ScheduledStart) {
		return core.NewValidationError(nil, core.FieldError{Field: "scheduled_end", Error: "must be after scheduled_start"})
	}

	lc, sync, err := api.LiveClassSvc.Update(ctx.Request().Context(), lc)
	if err != nil {
		return errors.Wrap(err, "updating live class")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusOK, lc)
}

// destroy deletes a live class once it is completed or cancelled.
func (api *liveClassApi) destroy(ctx echo.Context) error {
	lc, err := contextLiveClass(ctx)
	if err != nil {
		return err
	}
	if !lc.IsOver() {
		return errLiveClassNotOver
	}

	sync, err := api.LiveClassSvc.Delete(ctx.Request().Context(), lc.ID)
	if err != nil {
		return errors.Wrap(err, "deleting live class")
	}
	setSyncHeaders(ctx, sync)
	return ctx.NoContent(http.StatusNoContent)
}

type transitionFunc func(ctx context.Context, id string) (liveclass.LiveClass, core.Sync, error)

func (api *liveClassApi) transition(fn transitionFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		lc, err := contextLiveClass(ctx)
		if err != nil {
			return err
		}
		lc, sync, err := fn(ctx.Request().Context(), lc.ID)
		if err != nil {
			return errors.Wrap(err, "changing live class status")
		}
		setSyncHeaders(ctx, sync)
		return ctx.JSON(http.StatusOK, lc)
	}
}
