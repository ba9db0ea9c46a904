package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var appStart = time.Now()

type HealthCtrl struct {
	db            *gorm.DB
	tablesVersion string
}

func NewHealthCtrl(db *gorm.DB, tablesVersion string) *HealthCtrl {
	return &HealthCtrl{db: db, tablesVersion: tablesVersion}
}

type check struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) database(ctx context.Context) check {
	if h.db == nil {
		return check{Err: "gorm db is nil"}
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return check{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return check{Err: "ping: " + err.Error()}
	}
	return check{OK: true}
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	db := h.database(ctx)
	tables := check{OK: h.tablesVersion != ""}
	if !tables.OK {
		tables.Err = "reference tables not loaded"
	}

	allOK := db.OK && tables.OK
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{
		"status":         echo.Map{"ok": allOK},
		"uptime_sec":     int(time.Since(appStart).Seconds()),
		"tables_version": h.tablesVersion,
		"checks": echo.Map{
			"database": db,
			"tables":   tables,
		},
		"time": time.Now().Format(time.RFC3339),
	})
}
