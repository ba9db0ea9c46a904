package entities

import "time"

// SoilSample is never updated once stored; a new test is a new row.
// Nutrients are mg per 100 g soil, nil when not measured.
type SoilSample struct {
	SampleID   uint      `gorm:"primaryKey" json:"sample_id"`
	ParcelID   uint      `gorm:"index" json:"parcel_id"`
	Date       time.Time `json:"date"`
	PH         float64   `json:"ph"`
	Phosphorus *float64  `json:"phosphorus"`
	Potassium  *float64  `json:"potassium"`
	Magnesium  *float64  `json:"magnesium"`
	Calcium    *float64  `json:"calcium"`
	Sulfur     *float64  `json:"sulfur"`
	Lab        string    `json:"lab"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}
