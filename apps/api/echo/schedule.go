package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/schedule"
	"github.com/casitakids/backend/storage/cache"
)

type scheduleApi struct {
	svc      schedule.Service
	cache    *cache.Cache
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc schedule.Service, c *cache.Cache, validate *validator.Validate) {
	api := scheduleApi{svc: svc, cache: c, validate: validate}

	sg := g.Group("/schedules", jwt)
	sg.GET("", api.query)
	sg.POST("/generate/:planningID", api.generate, adminMiddleware())

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PATCH("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *scheduleApi) generate(ctx echo.Context) error {
	planningID, err := intParam(ctx, "planningID")
	if err != nil {
		return err
	}

	res, err := api.svc.Generate(ctx.Request().Context(), planningID, contextUserID(ctx))
	if err != nil {
		return err
	}
	api.invalidate(ctx)
	return ctx.JSON(http.StatusCreated, res)
}

// query lists schedules, optionally filtered by weekday name. Results
// are served from the cache when fresh.
func (api *scheduleApi) query(ctx echo.Context) error {
	var day *core.Weekday
	key := "schedules:all"
	if v := ctx.QueryParam("day"); v != "" {
		d, err := core.ParseWeekday(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		day = &d
		key = fmt.Sprintf("schedules:day:%s", d)
	}

	reqCtx := ctx.Request().Context()
	if api.cache != nil {
		var cached []schedule.DailySchedule
		if err := api.cache.Get(reqCtx, key, &cached); err == nil {
			return ctx.JSON(http.StatusOK, cached)
		}
	}

	schedules, err := api.svc.QueryAllSchedules(reqCtx, day)
	if err != nil {
		return err
	}
	if api.cache != nil {
		_ = api.cache.Set(reqCtx, key, schedules)
	}
	return ctx.JSON(http.StatusOK, schedules)
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	ds, err := api.svc.GetSchedule(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ds)
}

func (api *scheduleApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(schedule.UpdateSchedule)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	ds, err := api.svc.UpdateSchedule(ctx.Request().Context(), id, *data)
	if err != nil {
		return err
	}
	api.invalidate(ctx)
	return ctx.JSON(http.StatusOK, ds)
}

func (api *scheduleApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteSchedule(ctx.Request().Context(), id); err != nil {
		return err
	}
	api.invalidate(ctx)
	return ctx.NoContent(http.StatusNoContent)
}

func (api *scheduleApi) invalidate(ctx echo.Context) {
	if api.cache == nil {
		return
	}
	keys := []string{"schedules:all"}
	for _, d := range core.SchoolDays {
		keys = append(keys, fmt.Sprintf("schedules:day:%s", d))
	}
	_ = api.cache.Delete(ctx.Request().Context(), keys...)
}
