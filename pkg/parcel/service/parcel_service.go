package service

import "limeplan/entities"

type ParcelPatch struct {
	Name     *string  `json:"name"`
	AreaHa   *float64 `json:"area_ha"`
	SoilType *string  `json:"soil_type"`
	LandUse  *string  `json:"land_use"`
}

type ParcelService interface {
	CreateParcel(p *entities.Parcel) (*entities.Parcel, error)
	GetParcel(id uint, uid string) (*entities.Parcel, error)
	UpdateParcel(id uint, uid string, patch ParcelPatch) (*entities.Parcel, error)
}
