package controller

import "github.com/labstack/echo/v4"

type SampleController interface {
	Create(c echo.Context) error
	List(c echo.Context) error
	Classification(c echo.Context) error
}
