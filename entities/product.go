package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID       uint            `gorm:"primaryKey" json:"product_id"`
	Name            string          `gorm:"uniqueIndex;size:160" json:"name"`
	NeutralizingPct float64         `json:"neutralizing_pct"` // % CaO equivalent
	SecondaryPct    float64         `json:"secondary_pct"`    // % MgO
	Form            string          `gorm:"size:16" json:"form"` // oxide|carbonate|mixed
	PricePerTonne   decimal.Decimal `gorm:"type:decimal(12,2)" json:"price_per_tonne"`
	MaxDosePerArea  float64         `json:"max_dose_per_area,omitempty"` // kg/ha, 0 = default
	Discontinued    bool            `gorm:"index" json:"discontinued"`
	Source          string          `gorm:"size:16" json:"source"` // manual|import|seed

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
