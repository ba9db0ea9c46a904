package controllerImp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"limeplan/entities"
	"limeplan/pkg/middleware"
	"limeplan/pkg/sample/service"
)

type SampleCtrl struct{ svc service.SampleService }

func New(svc service.SampleService) *SampleCtrl { return &SampleCtrl{svc} }

type sampleReq struct {
	Date       string   `json:"date"`
	PH         *float64 `json:"ph"`
	Phosphorus *float64 `json:"phosphorus"`
	Potassium  *float64 `json:"potassium"`
	Magnesium  *float64 `json:"magnesium"`
	Calcium    *float64 `json:"calcium"`
	Sulfur     *float64 `json:"sulfur"`
	Lab        string   `json:"lab"`
	Note       string   `json:"note"`
}

func parseID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(v), nil
}

func (h *SampleCtrl) Create(c echo.Context) error {
	pid, err := parseID(c, "id")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	var req sampleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	if req.PH == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ph is required"})
	}
	s := &entities.SoilSample{
		ParcelID: pid, PH: *req.PH,
		Phosphorus: req.Phosphorus, Potassium: req.Potassium, Magnesium: req.Magnesium,
		Calcium: req.Calcium, Sulfur: req.Sulfur, Lab: req.Lab, Note: req.Note,
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
		}
		s.Date = d
	}
	out, err := h.svc.Create(middleware.UID(c), s)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *SampleCtrl) List(c echo.Context) error {
	pid, err := parseID(c, "id")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	out, err := h.svc.List(middleware.UID(c), pid)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SampleCtrl) Classification(c echo.Context) error {
	pid, err := parseID(c, "id")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	sid, err := parseID(c, "sid")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	rep, err := h.svc.Classify(middleware.UID(c), pid, sid)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}
