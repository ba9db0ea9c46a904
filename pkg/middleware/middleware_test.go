package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"limeplan/pkg/liming"
	"limeplan/pkg/plan"
	"limeplan/pkg/soil"
)

func serve(mw echo.MiddlewareFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	e.Use(mw)
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, UID(c)) })
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestDevLogin(t *testing.T) {
	rec := serve(DevLogin(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, DefaultUID, rec.Body.String())

	rec = serve(DevLogin(), httptest.NewRequest(http.MethodGet, "/?uid=farmer-1", nil))
	assert.Equal(t, "farmer-1", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Set-Cookie"), UIDCookie+"=farmer-1")

	req := httptest.NewRequest(http.MethodGet, "/?uid=other", nil)
	req.AddCookie(&http.Cookie{Name: UIDCookie, Value: "from-cookie"})
	assert.Equal(t, "from-cookie", serve(DevLogin(), req).Body.String())
}

func TestLIFF(t *testing.T) {
	rec := serve(LIFF(true), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Line-Uid", "line-7")
	assert.Equal(t, "line-7", serve(LIFF(true), req).Body.String())

	rec = serve(LIFF(false), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		fmt.Errorf("x: %w", soil.ErrInvalidMeasurement): http.StatusBadRequest,
		fmt.Errorf("x: %w", plan.ErrPlanNotFound):       http.StatusNotFound,
		fmt.Errorf("x: %w", plan.ErrVersionConflict):    http.StatusConflict,
		liming.ErrNoActiveProducts:                      http.StatusUnprocessableEntity,
		echo.NewHTTPError(http.StatusTeapot):            http.StatusTeapot,
		errors.New("boom"):                              http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusOf(err), err.Error())
	}
}
