package serviceImp

import (
	"fmt"
	"strings"

	"limeplan/entities"
	"limeplan/pkg/liming"
	"limeplan/pkg/parcel"
	repo "limeplan/pkg/parcel/repository"
	"limeplan/pkg/parcel/service"
	"limeplan/pkg/soil"
)

type parcelSvc struct{ r repo.ParcelRepository }

func NewParcelService(r repo.ParcelRepository) service.ParcelService { return &parcelSvc{r} }

// normalize stores canonical soil type and land use spellings.
func normalize(p *entities.Parcel) error {
	p.Name = strings.TrimSpace(p.Name)
	if !(p.AreaHa > 0) {
		return fmt.Errorf("%w: area_ha must be positive", parcel.ErrInvalid)
	}
	st, err := soil.ParseSoilType(p.SoilType)
	if err != nil {
		return fmt.Errorf("%w: %v", parcel.ErrInvalid, err)
	}
	lu, err := liming.ParseLandUse(strings.ToLower(strings.TrimSpace(p.LandUse)))
	if err != nil {
		return fmt.Errorf("%w: %v", parcel.ErrInvalid, err)
	}
	p.SoilType, p.LandUse = string(st), string(lu)
	return nil
}

func (s *parcelSvc) CreateParcel(p *entities.Parcel) (*entities.Parcel, error) {
	if err := normalize(p); err != nil {
		return nil, err
	}
	if err := s.r.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *parcelSvc) GetParcel(id uint, uid string) (*entities.Parcel, error) {
	return s.r.FindByID(id, uid)
}

// UpdateParcel is the only way a parcel's soil type changes. Existing plans
// keep the soil type they were generated with.
func (s *parcelSvc) UpdateParcel(id uint, uid string, patch service.ParcelPatch) (*entities.Parcel, error) {
	p, err := s.r.FindByID(id, uid)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.AreaHa != nil {
		p.AreaHa = *patch.AreaHa
	}
	if patch.SoilType != nil {
		p.SoilType = *patch.SoilType
	}
	if patch.LandUse != nil {
		p.LandUse = *patch.LandUse
	}
	if err := normalize(p); err != nil {
		return nil, err
	}
	if err := s.r.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}
