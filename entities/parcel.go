package entities

import "time"

type Parcel struct {
	ParcelID uint    `gorm:"primaryKey" json:"parcel_id"`
	UserID   string  `json:"user_id" gorm:"index"`
	Name     string  `json:"name"`
	AreaHa   float64 `json:"area_ha"`
	SoilType string  `json:"soil_type" gorm:"size:16"` // light|medium|heavy
	LandUse  string  `json:"land_use" gorm:"size:16"`  // arable|grassland
	Province string  `json:"province"`
	District string  `json:"district"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
