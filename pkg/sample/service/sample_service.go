package service

import (
	"limeplan/entities"
	"limeplan/pkg/soil"
)

type SampleService interface {
	Create(uid string, s *entities.SoilSample) (*entities.SoilSample, error)
	List(uid string, parcelID uint) ([]entities.SoilSample, error)
	// Classify labels a stored sample against its parcel's current soil type.
	Classify(uid string, parcelID, sampleID uint) (soil.Report, error)
}
