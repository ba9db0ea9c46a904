package controllerImp

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"limeplan/entities"
	"limeplan/pkg/middleware"
	"limeplan/pkg/parcel/service"
)

type ParcelCtrl struct{ svc service.ParcelService }

func New(svc service.ParcelService) *ParcelCtrl { return &ParcelCtrl{svc} }

type createReq struct {
	Name     string  `json:"name"`
	AreaHa   float64 `json:"area_ha"`
	SoilType string  `json:"soil_type"`
	LandUse  string  `json:"land_use"`
	Province string  `json:"province"`
	District string  `json:"district"`
}

func (h *ParcelCtrl) Create(c echo.Context) error {
	var req createReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	p := &entities.Parcel{
		UserID: middleware.UID(c), Name: req.Name, AreaHa: req.AreaHa, SoilType: req.SoilType,
		LandUse: req.LandUse, Province: req.Province, District: req.District,
	}
	out, err := h.svc.CreateParcel(p)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ParcelCtrl) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.svc.GetParcel(uint(id), middleware.UID(c))
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ParcelCtrl) Patch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var patch service.ParcelPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	p, err := h.svc.UpdateParcel(uint(id), middleware.UID(c), patch)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
