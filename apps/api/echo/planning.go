package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/casitakids/backend/core/schedule"
)

type planningApi struct {
	svc      schedule.Service
	validate *validator.Validate
}

func registerPlanningAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc schedule.Service, validate *validator.Validate) {
	api := planningApi{svc: svc, validate: validate}

	pg := g.Group("/plannings", jwt)
	pg.POST("", api.create, adminMiddleware())
	pg.GET("", api.query)

	dg := pg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.GET("/schedules", api.querySchedules)
}

// create makes the planning for one week, or for every week of the
// month when week is omitted. Existing plannings are returned as-is.
func (api *planningApi) create(ctx echo.Context) error {
	data := new(schedule.NewPlanning)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if data.Week == 0 {
		res := api.svc.CreateWeeks(reqCtx, *data)
		return ctx.JSON(http.StatusCreated, res)
	}

	p, err := api.svc.GetOrCreatePlanning(reqCtx, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *planningApi) query(ctx echo.Context) error {
	filter := new(schedule.PlanningFilter)
	if err := ctx.Bind(filter); err != nil {
		return err
	}
	plannings, err := api.svc.QueryPlannings(ctx.Request().Context(), *filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, plannings)
}

func (api *planningApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	p, err := api.svc.GetPlanning(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

type updatePlanningRequest struct {
	Notes string `json:"notes"`
}

func (api *planningApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(updatePlanningRequest)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = api.svc.UpdatePlanningNotes(ctx.Request().Context(), id, data.Notes); err != nil {
		return err
	}
	p, err := api.svc.GetPlanning(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *planningApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeletePlanning(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *planningApi) querySchedules(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	schedules, err := api.svc.QuerySchedules(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, schedules)
}
