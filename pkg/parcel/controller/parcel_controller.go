package controller

import "github.com/labstack/echo/v4"

type ParcelController interface {
	Create(c echo.Context) error
	Get(c echo.Context) error
	Patch(c echo.Context) error
}
