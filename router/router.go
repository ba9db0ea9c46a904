package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	authCtrl "limeplan/pkg/auth/controller"
	"limeplan/pkg/middleware"
	parcelCtrl "limeplan/pkg/parcel/controller"
	planCtrl "limeplan/pkg/plan/controller"
	productCtrl "limeplan/pkg/product/controller"
	sampleCtrl "limeplan/pkg/sample/controller"
)

type Controllers struct {
	Auth    authCtrl.AuthController
	Health  interface{ Health(echo.Context) error }
	Parcel  parcelCtrl.ParcelController
	Sample  sampleCtrl.SampleController
	Product productCtrl.ProductController
	Plan    planCtrl.PlanController
}

type Options struct {
	EnableLIFF bool
	// AccessLog turns on echo's request logger.
	AccessLog bool
}

func New(e *echo.Echo, c Controllers, opts Options) *echo.Echo {
	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}
		_ = middleware.JSONError(ctx, err)
	}
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestIDWithConfig(echoMiddleware.RequestIDConfig{Generator: uuid.NewString}))
	if opts.AccessLog {
		e.Use(echoMiddleware.Logger())
	}

	e.GET("/health", c.Health.Health)
	e.GET("/devlogin", c.Auth.DevLogin)

	api := e.Group("", middleware.LIFF(opts.EnableLIFF), middleware.DevLogin())
	api.GET("/whoami", c.Auth.WhoAmI)

	api.POST("/parcels", c.Parcel.Create)
	api.GET("/parcels/:id", c.Parcel.Get)
	api.PATCH("/parcels/:id", c.Parcel.Patch)

	api.POST("/parcels/:id/samples", c.Sample.Create)
	api.GET("/parcels/:id/samples", c.Sample.List)
	api.GET("/parcels/:id/samples/:sid/classification", c.Sample.Classification)

	api.GET("/products", c.Product.List)
	api.POST("/products", c.Product.Create)
	api.POST("/products/import", c.Product.Import)

	api.POST("/parcels/:id/plan", c.Plan.Generate)
	api.GET("/parcels/:id/plans", c.Plan.ListByParcel)
	api.GET("/plans/:pid", c.Plan.Get)
	api.GET("/plans/:pid/logs", c.Plan.Logs)
	api.POST("/plans/:pid/approve", c.Plan.Approve)
	api.POST("/plans/:pid/applications", c.Plan.InsertApplication)
	api.PATCH("/plans/:pid/applications/:aid", c.Plan.UpdateApplication)
	api.DELETE("/plans/:pid/applications/:aid", c.Plan.DeleteApplication)
	return e
}
