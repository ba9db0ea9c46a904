package controllerImp

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"limeplan/entities"
	"limeplan/pkg/middleware"
	"limeplan/pkg/product/service"
)

const maxImportBytes = 2 << 20

type ProductCtrl struct{ svc service.ProductService }

func New(svc service.ProductService) *ProductCtrl { return &ProductCtrl{svc} }

type createReq struct {
	Name            string          `json:"name"`
	NeutralizingPct float64         `json:"neutralizing_pct"`
	SecondaryPct    float64         `json:"secondary_pct"`
	Form            string          `json:"form"`
	PricePerTonne   decimal.Decimal `json:"price_per_tonne"`
	MaxDosePerArea  float64         `json:"max_dose_per_area"`
}

// List hides discontinued products unless ?all=true.
func (h *ProductCtrl) List(c echo.Context) error {
	out, err := h.svc.List(c.QueryParam("all") == "true")
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductCtrl) Create(c echo.Context) error {
	var req createReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad json"})
	}
	p, err := h.svc.Create(&entities.Product{
		Name: req.Name, NeutralizingPct: req.NeutralizingPct, SecondaryPct: req.SecondaryPct,
		Form: req.Form, PricePerTonne: req.PricePerTonne, MaxDosePerArea: req.MaxDosePerArea,
	})
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Import takes the HTML price list as the request body.
func (h *ProductCtrl) Import(c echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxImportBytes)
	defer body.Close()
	res, err := h.svc.Import(body)
	if err != nil {
		return middleware.JSONError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
