package entities

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	PlanDraft    = "draft"
	PlanApproved = "approved"
)

// Plan snapshots the measurement it was generated from; later samples do not
// change it.
type Plan struct {
	PlanID        uint      `gorm:"primaryKey" json:"plan_id"`
	PublicID      string    `gorm:"uniqueIndex;size:36" json:"public_id"`
	ParcelID      uint      `gorm:"index" json:"parcel_id"`
	UserID        string    `gorm:"index" json:"user_id"`
	Status        string    `gorm:"size:16;index" json:"status"`
	Version       int       `json:"version"`
	TablesVersion string    `gorm:"size:32" json:"tables_version"`
	SampleID      uint      `json:"sample_id"`
	SampleDate    time.Time `json:"sample_date"`
	AnchorPH      float64   `json:"anchor_ph"`
	TargetPH      float64   `json:"target_ph"`
	SoilType      string    `gorm:"size:16" json:"soil_type"`
	LandUse       string    `gorm:"size:16" json:"land_use"`
	AreaHa        float64   `json:"area_ha"`
	Magnesium     *float64  `json:"magnesium"`
	Requirement   float64   `json:"requirement"` // kg CaO/ha anchor -> target

	TotalNeutralizing float64         `json:"total_neutralizing"` // kg CaO/ha
	TotalSecondary    float64         `json:"total_secondary"`    // kg MgO/ha
	TotalMass         float64         `json:"total_mass"`         // kg on the whole parcel
	TotalCost         decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_cost"`
	FinalPH           float64         `json:"final_ph"`

	Warnings   datatypes.JSONSlice[string] `json:"warnings"`
	SummaryMD  string                      `json:"summary_md"`
	ApprovedAt *time.Time                  `json:"approved_at,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`

	Applications []Application `gorm:"foreignKey:PlanID" json:"applications"`
}

type Application struct {
	ApplicationID uint   `gorm:"primaryKey" json:"application_id"`
	PlanID        uint   `gorm:"index" json:"plan_id"`
	Seq           int    `json:"seq"`
	Year          int    `json:"year"`
	Season        string `gorm:"size:8" json:"season"` // spring|summer|autumn
	Status        string `gorm:"size:16" json:"status"` // planned|ordered|applied

	PhBefore            float64         `json:"ph_before"`
	PhAfter             float64         `json:"ph_after"`
	NeutralizingPerArea float64         `json:"neutralizing_per_area"`
	SecondaryPerArea    float64         `json:"secondary_per_area"`
	SecondaryCarryover  float64         `json:"secondary_carryover"`
	MassPerArea         float64         `json:"mass_per_area"`
	TotalMass           float64         `json:"total_mass"`
	Cost                decimal.Decimal `gorm:"type:decimal(14,2)" json:"cost"`

	Recommendation string                      `json:"recommendation"`
	AdviceCodes    datatypes.JSONSlice[string] `json:"advice_codes"`

	Products  []ApplicationProduct `gorm:"foreignKey:ApplicationID" json:"products"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// ApplicationProduct copies the catalog composition and price at the time the
// dose was chosen so old applications stay reproducible.
type ApplicationProduct struct {
	ID              uint            `gorm:"primaryKey" json:"-"`
	ApplicationID   uint            `gorm:"index" json:"-"`
	ProductID       uint            `gorm:"index" json:"product_id"`
	Name            string          `json:"name"`
	NeutralizingPct float64         `json:"neutralizing_pct"`
	SecondaryPct    float64         `json:"secondary_pct"`
	PricePerTonne   decimal.Decimal `gorm:"type:decimal(12,2)" json:"price_per_tonne"`
	DosePerArea     float64         `json:"dose_per_area"` // kg product/ha
}

type PlanLog struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	PlanID    uint                        `gorm:"index" json:"plan_id"`
	ParcelID  uint                        `json:"parcel_id"`
	UserID    string                      `json:"user_id"`
	Action    string                      `gorm:"size:32" json:"action"`
	Detail    string                      `json:"detail"`
	Version   int                         `json:"version"`
	Conflicts datatypes.JSONSlice[string] `json:"conflicts,omitempty"`
	CreatedAt time.Time                   `json:"created_at"`
}
