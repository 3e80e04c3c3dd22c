package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/casitakids/backend/core/campus"
)

type campusApi struct {
	svc      campus.Service
	validate *validator.Validate
}

func registerCampusAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc campus.Service, validate *validator.Validate) {
	api := campusApi{svc: svc, validate: validate}

	cg := g.Group("/campuses", jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *campusApi) create(ctx echo.Context) error {
	data := new(campus.NewCampus)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	cp, err := api.svc.Create(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cp)
}

func (api *campusApi) query(ctx echo.Context) error {
	campuses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, campuses)
}

func (api *campusApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cp)
}

func (api *campusApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	data := new(campus.UpdateCampus)
	if err = ctx.Bind(data); err != nil {
		return err
	}
	if err = api.validate.Struct(data); err != nil {
		return err
	}

	cp, err := api.svc.Update(ctx.Request().Context(), id, *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cp)
}

func (api *campusApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
