package controllerImp

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"limeplan/entities"
	"limeplan/pkg/middleware"
	"limeplan/pkg/plan/service"
	"limeplan/pkg/plan/types"
)

type PlanCtrl struct{ svc service.PlanService }

func New(svc service.PlanService) *PlanCtrl { return &PlanCtrl{svc} }

func parseID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}

// version reads the plan version the caller last saw from If-Match, the
// request body or ?version=, in that order.
func version(c echo.Context, fromBody *int) (int, error) {
	if v := strings.TrimSpace(c.Request().Header.Get("If-Match")); v != "" {
		v = strings.Trim(strings.TrimPrefix(v, "W/"), `"`)
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid If-Match version")
		}
		return n, nil
	}
	if fromBody != nil {
		return *fromBody, nil
	}
	if q := c.QueryParam("version"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid version")
		}
		return n, nil
	}
	return 0, echo.NewHTTPError(http.StatusPreconditionRequired, "plan version required (If-Match header or version field)")
}

func writePlan(c echo.Context, status int, p *entities.Plan) error {
	c.Response().Header().Set("ETag", fmt.Sprintf(`"%d"`, p.Version))
	return c.JSON(status, p)
}

func (h *PlanCtrl) Generate(c echo.Context) error {
	parcelID, err := parseID(c, "id")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	var opts types.GenerateOptions
	if err := c.Bind(&opts); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	p, err := h.svc.GeneratePlan(c.Request().Context(), middleware.UID(c), parcelID, opts)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return writePlan(c, http.StatusCreated, p)
}

func (h *PlanCtrl) ListByParcel(c echo.Context) error {
	parcelID, err := parseID(c, "id")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	out, err := h.svc.ListByParcel(c.Request().Context(), middleware.UID(c), parcelID)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PlanCtrl) Get(c echo.Context) error {
	planID, err := parseID(c, "pid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	p, err := h.svc.Get(c.Request().Context(), middleware.UID(c), planID)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return writePlan(c, http.StatusOK, p)
}

func (h *PlanCtrl) Logs(c echo.Context) error {
	planID, err := parseID(c, "pid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	out, err := h.svc.Logs(c.Request().Context(), middleware.UID(c), planID)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

type versionReq struct {
	Version *int `json:"version"`
}

func (h *PlanCtrl) Approve(c echo.Context) error {
	planID, err := parseID(c, "pid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	var req versionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	v, err := version(c, req.Version)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	p, err := h.svc.Approve(c.Request().Context(), middleware.UID(c), planID, v)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return writePlan(c, http.StatusOK, p)
}

type insertReq struct {
	types.ApplicationInput
	Version *int `json:"version"`
}

func (h *PlanCtrl) InsertApplication(c echo.Context) error {
	planID, err := parseID(c, "pid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	var req insertReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	v, err := version(c, req.Version)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	p, err := h.svc.InsertApplication(c.Request().Context(), middleware.UID(c), planID, v, req.ApplicationInput)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return writePlan(c, http.StatusCreated, p)
}

type patchReq struct {
	types.ApplicationPatch
	Version *int `json:"version"`
}

func (h *PlanCtrl) UpdateApplication(c echo.Context) error {
	planID, err := parseID(c, "pid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	appID, err := parseID(c, "aid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	var req patchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	v, err := version(c, req.Version)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	p, err := h.svc.UpdateApplication(c.Request().Context(), middleware.UID(c), planID, appID, v, req.ApplicationPatch)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return writePlan(c, http.StatusOK, p)
}

func (h *PlanCtrl) DeleteApplication(c echo.Context) error {
	planID, err := parseID(c, "pid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	appID, err := parseID(c, "aid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	v, err := version(c, nil)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	p, err := h.svc.DeleteApplication(c.Request().Context(), middleware.UID(c), planID, appID, v)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return writePlan(c, http.StatusOK, p)
}
