package repositoryImp

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"limeplan/entities"
	"limeplan/pkg/sample"
	"limeplan/pkg/sample/repository"
)

type sampleRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.SampleRepository { return &sampleRepo{db} }

func (r *sampleRepo) Create(s *entities.SoilSample) error { return r.db.Create(s).Error }

func (r *sampleRepo) List(parcelID uint) ([]entities.SoilSample, error) {
	var out []entities.SoilSample
	if err := r.db.Where("parcel_id = ?", parcelID).Order("date DESC, sample_id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sampleRepo) FindByID(parcelID, sampleID uint) (*entities.SoilSample, error) {
	return r.first(r.db.Where("parcel_id = ? AND sample_id = ?", parcelID, sampleID), sampleID)
}

func (r *sampleRepo) Latest(parcelID uint) (*entities.SoilSample, error) {
	return r.first(r.db.Where("parcel_id = ?", parcelID).Order("date DESC, sample_id DESC"), 0)
}

func (r *sampleRepo) first(q *gorm.DB, id uint) (*entities.SoilSample, error) {
	var s entities.SoilSample
	err := q.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if id == 0 {
			return nil, fmt.Errorf("%w: parcel has no samples", sample.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %d", sample.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
