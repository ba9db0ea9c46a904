package repository

import "limeplan/entities"

type ParcelRepository interface {
	Create(p *entities.Parcel) error
	FindByID(id uint, uid string) (*entities.Parcel, error)
	Update(p *entities.Parcel) error
}
