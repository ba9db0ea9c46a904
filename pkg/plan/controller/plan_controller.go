package controller

import "github.com/labstack/echo/v4"

type PlanController interface {
	Generate(c echo.Context) error
	ListByParcel(c echo.Context) error
	Get(c echo.Context) error
	Logs(c echo.Context) error
	Approve(c echo.Context) error
	InsertApplication(c echo.Context) error
	UpdateApplication(c echo.Context) error
	DeleteApplication(c echo.Context) error
}
