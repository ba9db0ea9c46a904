package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"limeplan/pkg/auth/controller"
	"limeplan/pkg/middleware"
)

type authCtrl struct{}

func NewAuthController() controller.AuthController { return &authCtrl{} }

// DevLogin switches the development user: GET /devlogin?uid=alice.
func (h *authCtrl) DevLogin(c echo.Context) error {
	uid := c.QueryParam("uid")
	if uid == "" {
		uid = middleware.DefaultUID
	}
	c.SetCookie(&http.Cookie{Name: middleware.UIDCookie, Value: uid, Path: "/", HttpOnly: true})
	return c.JSON(http.StatusOK, echo.Map{"uid": uid})
}

func (h *authCtrl) WhoAmI(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"uid": middleware.UID(c)})
}
