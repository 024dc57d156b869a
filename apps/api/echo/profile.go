package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/profile"
)

type profileApi struct {
	ServerDeps
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := profileApi{deps}

	pg := g.Group("/profile", jwt)
	pg.GET("", api.retrieve)
	pg.PUT("", api.update)
	pg.PUT("/preferences", api.updatePreferences)
	pg.POST("/sync", api.sync)
}

// retrieve returns the signed-in user's profile, creating it on first sign-in.
func (api *profileApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, sync, err := api.ProfileSvc.EnsureFromAuth(ctx.Request().Context(), claims.Identity())
	if err != nil {
		return errors.Wrap(err, "ensuring profile")
	}
	if sync.Remote || sync.Cache { // created
		setSyncHeaders(ctx, sync)
		return ctx.JSON(http.StatusCreated, p)
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *profileApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data profile.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	p, err := api.ProfileSvc.GetByID(rctx, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "finding profile by ID")
	}
	p = data.Apply(p)

	sync, err := api.ProfileSvc.Update(rctx, p)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusOK, p)
}

func (api *profileApi) updatePreferences(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data profile.Preferences
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Preferences")
	}
	if err := api.Validate.Struct(data); err != nil {
		return err
	}

	p, err := api.ProfileSvc.UpdatePreferences(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "updating preferences")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *profileApi) sync(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	p, sync, err := api.ProfileSvc.Sync(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "syncing profile")
	}
	setSyncHeaders(ctx, sync)
	return ctx.JSON(http.StatusOK, p)
}
