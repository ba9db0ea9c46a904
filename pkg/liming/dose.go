package liming

import (
	"github.com/shopspring/decimal"
)

// ProductDose is one product spread in an application, with the product's
// composition copied at the time it was chosen.
type ProductDose struct {
	ProductID       uint            `json:"product_id"`
	Name            string          `json:"name"`
	NeutralizingPct float64         `json:"neutralizing_pct"`
	SecondaryPct    float64         `json:"secondary_pct"`
	PricePerTonne   decimal.Decimal `json:"price_per_tonne"`
	DosePerArea     float64         `json:"dose_per_area"` // kg product/ha
}

func (d ProductDose) NeutralizingPerArea() float64 { return d.DosePerArea * d.NeutralizingPct / 100 }

func (d ProductDose) SecondaryPerArea() float64 { return d.DosePerArea * d.SecondaryPct / 100 }

// TotalMass is the kg of product spread on area hectares.
func (d ProductDose) TotalMass(area float64) float64 { return d.DosePerArea * area }

func (d ProductDose) Cost(area float64) decimal.Decimal {
	return d.PricePerTonne.Mul(decimal.NewFromFloat(d.TotalMass(area) / 1000)).Round(2)
}

// DoseTotals sums a blend of products spread in one event, or a whole plan.
type DoseTotals struct {
	NeutralizingPerArea float64         `json:"neutralizing_per_area"`
	SecondaryPerArea    float64         `json:"secondary_per_area"`
	MassPerArea         float64         `json:"mass_per_area"`
	TotalMass           float64         `json:"total_mass"`
	Cost                decimal.Decimal `json:"cost"`
}

func (t DoseTotals) add(o DoseTotals) DoseTotals {
	return DoseTotals{
		NeutralizingPerArea: t.NeutralizingPerArea + o.NeutralizingPerArea,
		SecondaryPerArea:    t.SecondaryPerArea + o.SecondaryPerArea,
		MassPerArea:         t.MassPerArea + o.MassPerArea,
		TotalMass:           t.TotalMass + o.TotalMass,
		Cost:                t.Cost.Add(o.Cost),
	}
}

// CombineDoses sums the doses of a blend into the single combined dose the
// trajectory engine sees.
func CombineDoses(doses []ProductDose, area float64) DoseTotals {
	var t DoseTotals
	for _, d := range doses {
		t = t.add(DoseTotals{
			NeutralizingPerArea: d.NeutralizingPerArea(),
			SecondaryPerArea:    d.SecondaryPerArea(),
			MassPerArea:         d.DosePerArea,
			TotalMass:           d.TotalMass(area),
			Cost:                d.Cost(area),
		})
	}
	return t
}

// PlanTotals aggregates a whole schedule.
type PlanTotals struct {
	DoseTotals
	Applications int     `json:"applications"`
	FirstYear    int     `json:"first_year,omitempty"`
	LastYear     int     `json:"last_year,omitempty"`
	FinalPH      float64 `json:"final_ph"`
}

// Totals aggregates apps spread on area hectares. anchorPH is reported as the
// final pH of an empty schedule.
func Totals(apps []Application, area, anchorPH float64) PlanTotals {
	out := PlanTotals{FinalPH: anchorPH, Applications: len(apps)}
	for i, a := range apps {
		out.DoseTotals = out.DoseTotals.add(CombineDoses(a.Products, area))
		if i == 0 || a.Year < out.FirstYear {
			out.FirstYear = a.Year
		}
		if a.Year > out.LastYear {
			out.LastYear = a.Year
		}
	}
	if n := len(apps); n > 0 {
		out.FinalPH = apps[n-1].PhAfter
	}
	return out
}
