package repository

import "limeplan/entities"

type SampleRepository interface {
	Create(s *entities.SoilSample) error
	List(parcelID uint) ([]entities.SoilSample, error)
	FindByID(parcelID, sampleID uint) (*entities.SoilSample, error)
	Latest(parcelID uint) (*entities.SoilSample, error)
}
