package serviceImp

import (
	"time"

	"limeplan/entities"
	parcelrepo "limeplan/pkg/parcel/repository"
	repo "limeplan/pkg/sample/repository"
	"limeplan/pkg/sample/service"
	"limeplan/pkg/soil"
)

type sampleSvc struct {
	r          repo.SampleRepository
	parcels    parcelrepo.ParcelRepository
	classifier *soil.Classifier
	now        func() time.Time
}

func NewSampleService(r repo.SampleRepository, parcels parcelrepo.ParcelRepository, c *soil.Classifier) service.SampleService {
	return &sampleSvc{r: r, parcels: parcels, classifier: c, now: time.Now}
}

// ToSoilSample converts a stored row for the classifier.
func ToSoilSample(s *entities.SoilSample) soil.Sample {
	return soil.Sample{
		PH:         s.PH,
		Phosphorus: s.Phosphorus,
		Potassium:  s.Potassium,
		Magnesium:  s.Magnesium,
		Calcium:    s.Calcium,
		Sulfur:     s.Sulfur,
	}
}

func (s *sampleSvc) Create(uid string, in *entities.SoilSample) (*entities.SoilSample, error) {
	p, err := s.parcels.FindByID(in.ParcelID, uid)
	if err != nil {
		return nil, err
	}
	// classifying validates every value before anything is stored
	if _, err := s.classifier.Classify(ToSoilSample(in), soil.SoilType(p.SoilType)); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	in.SampleID = 0
	if err := s.r.Create(in); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *sampleSvc) List(uid string, parcelID uint) ([]entities.SoilSample, error) {
	if _, err := s.parcels.FindByID(parcelID, uid); err != nil {
		return nil, err
	}
	return s.r.List(parcelID)
}

func (s *sampleSvc) Classify(uid string, parcelID, sampleID uint) (soil.Report, error) {
	p, err := s.parcels.FindByID(parcelID, uid)
	if err != nil {
		return soil.Report{}, err
	}
	smp, err := s.r.FindByID(parcelID, sampleID)
	if err != nil {
		return soil.Report{}, err
	}
	return s.classifier.Classify(ToSoilSample(smp), soil.SoilType(p.SoilType))
}
