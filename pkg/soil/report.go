package soil

// Sample is one soil-test reading. Nutrients that were not measured are nil.
type Sample struct {
	PH         float64
	Phosphorus *float64
	Potassium  *float64
	Magnesium  *float64
	Calcium    *float64
	Sulfur     *float64
}

func (s Sample) value(n Nutrient) *float64 {
	switch n {
	case Phosphorus:
		return s.Phosphorus
	case Potassium:
		return s.Potassium
	case Magnesium:
		return s.Magnesium
	case Calcium:
		return s.Calcium
	case Sulfur:
		return s.Sulfur
	}
	return nil
}

type NutrientResult struct {
	Nutrient    Nutrient      `json:"nutrient"`
	Value       float64       `json:"value"`
	Class       NutrientClass `json:"-"`
	ClassLabel  string        `json:"class"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
}

// Report is the full classification of one sample. It is derived on demand and
// never stored.
type Report struct {
	SoilType   SoilType         `json:"soil_type"`
	PH         float64          `json:"ph"`
	PHBand     string           `json:"ph_band"`
	PHCategory Category         `json:"ph_category"`
	LimingNeed string           `json:"liming_need"`
	Nutrients  []NutrientResult `json:"nutrients"`
}

// MagnesiumClass returns the magnesium class of the report, ClassUnknown when
// magnesium was not measured.
func (r Report) MagnesiumClass() NutrientClass {
	for _, n := range r.Nutrients {
		if n.Nutrient == Magnesium {
			return n.Class
		}
	}
	return ClassUnknown
}

// Classify labels pH, liming need and every measured nutrient of s.
func (c *Classifier) Classify(s Sample, st SoilType) (Report, error) {
	band, phCat, err := c.ClassifyPH(s.PH)
	if err != nil {
		return Report{}, err
	}
	need, _, err := c.LimingNeed(st, s.PH)
	if err != nil {
		return Report{}, err
	}
	r := Report{SoilType: st, PH: s.PH, PHBand: band.String(), PHCategory: phCat, LimingNeed: need.String()}
	for _, n := range Nutrients {
		v := s.value(n)
		if v == nil {
			continue
		}
		cl, cat, err := c.ClassifyNutrient(n, st, *v)
		if err != nil {
			return Report{}, err
		}
		r.Nutrients = append(r.Nutrients, NutrientResult{
			Nutrient: n, Value: *v, Class: cl, ClassLabel: cl.String(), Description: cl.Description(), Category: cat,
		})
	}
	return r, nil
}
