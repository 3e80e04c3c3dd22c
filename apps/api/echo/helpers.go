package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// intParam parses a numeric path parameter.
func intParam(ctx echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be an integer")
	}
	return v, nil
}
