package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LIFF requires the LINE front end to identify the user through the
// X-Line-Uid header or the uid cookie. Disabled, it passes through and
// DevLogin decides.
func LIFF(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}
			uid := c.Request().Header.Get("X-Line-Uid")
			if uid == "" {
				if ck, err := c.Cookie(UIDCookie); err == nil {
					uid = ck.Value
				}
			}
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "LIFF required: missing UID"})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}

// UID returns the caller id set by DevLogin or LIFF.
func UID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
