package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"limeplan/pkg/liming"
	"limeplan/pkg/parcel"
	"limeplan/pkg/plan"
	"limeplan/pkg/product"
	"limeplan/pkg/sample"
	"limeplan/pkg/soil"
)

// StatusOf maps domain errors to HTTP status codes.
func StatusOf(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, soil.ErrInvalidMeasurement),
		errors.Is(err, liming.ErrInvalidPlanInput),
		errors.Is(err, plan.ErrInvalidInput),
		errors.Is(err, parcel.ErrInvalid),
		errors.Is(err, product.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, plan.ErrPlanNotFound),
		errors.Is(err, plan.ErrProductNotFound),
		errors.Is(err, parcel.ErrNotFound),
		errors.Is(err, sample.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, liming.ErrApplicationNotFound):
		return http.StatusNotFound
	case errors.Is(err, plan.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, liming.ErrNoActiveProducts):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// JSONError writes err as {"error": "..."} with the mapped status.
func JSONError(c echo.Context, err error) error {
	return c.JSON(StatusOf(err), echo.Map{"error": err.Error()})
}
