package repositoryImp

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"limeplan/entities"
	"limeplan/pkg/parcel"
	"limeplan/pkg/parcel/repository"
)

type parcelRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ParcelRepository { return &parcelRepo{db} }

func (r *parcelRepo) Create(p *entities.Parcel) error { return r.db.Create(p).Error }

func (r *parcelRepo) FindByID(id uint, uid string) (*entities.Parcel, error) {
	var p entities.Parcel
	err := r.db.Where("parcel_id = ? AND user_id = ?", id, uid).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", parcel.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *parcelRepo) Update(p *entities.Parcel) error {
	return r.db.Model(p).Select("name", "area_ha", "soil_type", "land_use", "province", "district", "updated_at").Updates(p).Error
}
