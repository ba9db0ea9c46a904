package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	UIDCookie  = "LIMEPLAN_UID"
	DefaultUID = "U_DEV_DEFAULT"
)

// DevLogin identifies the caller from the uid cookie or ?uid= and falls back
// to a shared development user.
func DevLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get("uid").(string); ok {
				return next(c)
			}
			uid := ""
			if ck, err := c.Cookie(UIDCookie); err == nil {
				uid = ck.Value
			}
			if uid == "" {
				uid = c.QueryParam("uid")
				if uid == "" {
					uid = DefaultUID
				}
				c.SetCookie(&http.Cookie{Name: UIDCookie, Value: uid, Path: "/"})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}
