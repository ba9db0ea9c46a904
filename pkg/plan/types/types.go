package types

// GenerateOptions tunes plan generation. Zero values take defaults: the
// parcel's latest sample, the land-use target pH, the current year, spring.
type GenerateOptions struct {
	SampleID     uint    `json:"sample_id"`
	TargetPH     float64 `json:"target_ph"`
	StartYear    int     `json:"start_year"`
	StartSeason  string  `json:"start_season"`
	HorizonYears int     `json:"horizon_years"`
}

type ProductDoseInput struct {
	ProductID   uint    `json:"product_id"`
	DosePerArea float64 `json:"dose_per_area"` // kg product/ha
}

type ApplicationInput struct {
	Year     int                `json:"year"`
	Season   string             `json:"season"`
	Status   string             `json:"status"`
	Products []ProductDoseInput `json:"products"`
}

// ApplicationPatch changes only the non-nil fields.
type ApplicationPatch struct {
	Year     *int                `json:"year"`
	Season   *string             `json:"season"`
	Status   *string             `json:"status"`
	Products *[]ProductDoseInput `json:"products"`
}

func (p ApplicationPatch) Structural() bool {
	return p.Year != nil || p.Season != nil || p.Products != nil
}
