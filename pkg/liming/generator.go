package liming

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"limeplan/pkg/soil"
)

const (
	// MaxPlanApplications bounds the length of a generated schedule.
	MaxPlanApplications = 10
	DefaultHorizonYears = 6

	doseEpsilon = 1.0 // kg CaO/ha not worth an application
)

// LandUse sets the default target pH.
type LandUse string

const (
	Arable    LandUse = "arable"
	Grassland LandUse = "grassland"
)

func ParseLandUse(v string) (LandUse, error) {
	switch LandUse(v) {
	case Arable, "":
		return Arable, nil
	case Grassland:
		return Grassland, nil
	}
	return "", fmt.Errorf("unknown land use %q", v)
}

func (l LandUse) DefaultTargetPH() float64 {
	if l == Grassland {
		return 6.0
	}
	return 6.5
}

// ProductForm is the chemical form of a liming product.
type ProductForm string

const (
	FormOxide     ProductForm = "oxide"
	FormCarbonate ProductForm = "carbonate"
	FormMixed     ProductForm = "mixed"
)

// Product is a catalog entry offered to the generator.
type Product struct {
	ID              uint
	Name            string
	NeutralizingPct float64
	SecondaryPct    float64
	Form            ProductForm
	PricePerTonne   decimal.Decimal
	// MaxDosePerArea caps kg product/ha per event; zero uses the table default.
	MaxDosePerArea float64
}

func (p Product) Dose(kgPerArea float64) ProductDose {
	return ProductDose{
		ProductID:       p.ID,
		Name:            p.Name,
		NeutralizingPct: p.NeutralizingPct,
		SecondaryPct:    p.SecondaryPct,
		PricePerTonne:   p.PricePerTonne,
		DosePerArea:     kgPerArea,
	}
}

type GenerateInput struct {
	CurrentPH    float64
	TargetPH     float64 // zero picks the land use default
	SoilType     soil.SoilType
	LandUse      LandUse
	Area         float64 // ha
	Magnesium    soil.NutrientClass
	Products     []Product
	StartYear    int
	StartSeason  Season // zero means Spring
	HorizonYears int    // zero means DefaultHorizonYears
}

type GenerateResult struct {
	TargetPH     float64
	Requirement  float64 // kg CaO/ha between current and target pH
	Applications []Application
	Totals       PlanTotals
	Warnings     []string
}

type warnings []string

func (w *warnings) add(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	for _, v := range *w {
		if v == msg {
			return
		}
	}
	*w = append(*w, msg)
}

// Generate builds the initial schedule for a parcel from one measurement.
func (t *Tables) Generate(in GenerateInput) (GenerateResult, error) {
	st := in.SoilType
	if !st.Valid() {
		return GenerateResult{}, fmt.Errorf("%w: soil type %q", ErrInvalidPlanInput, st)
	}
	if math.IsNaN(in.CurrentPH) || in.CurrentPH <= 0 || in.CurrentPH > 14 {
		return GenerateResult{}, fmt.Errorf("%w: current pH %v", soil.ErrInvalidMeasurement, in.CurrentPH)
	}
	if math.IsNaN(in.TargetPH) || in.TargetPH < 0 || in.TargetPH > 14 {
		return GenerateResult{}, fmt.Errorf("%w: target pH %v", ErrInvalidPlanInput, in.TargetPH)
	}
	if !(in.Area > 0) {
		return GenerateResult{}, fmt.Errorf("%w: area must be positive", ErrInvalidPlanInput)
	}
	if in.StartYear <= 0 {
		return GenerateResult{}, fmt.Errorf("%w: start year required", ErrInvalidPlanInput)
	}
	if len(in.Products) == 0 {
		return GenerateResult{}, ErrNoActiveProducts
	}
	horizon := in.HorizonYears
	if horizon <= 0 {
		horizon = DefaultHorizonYears
	}
	startSeason := in.StartSeason
	if !startSeason.Valid() {
		startSeason = Spring
	}

	var warn warnings
	target := in.TargetPH
	if target == 0 {
		target = in.LandUse.DefaultTargetPH()
	}
	if ceiling := t.Ceiling(st); target > ceiling {
		warn.add("Target pH %.1f is above the %.1f reference ceiling for %s soil; planning to %.1f.", target, ceiling, st, ceiling)
		target = ceiling
	}

	res := GenerateResult{TargetPH: target}
	if in.CurrentPH >= target {
		warn.add("Current pH %.2f is at or above target %.1f; no liming is needed.", in.CurrentPH, target)
		res.Totals = Totals(nil, in.Area, in.CurrentPH)
		res.Warnings = warn
		return res, nil
	}

	cands := t.candidates(st, in.Magnesium, in.Products)
	if len(cands) == 0 {
		return GenerateResult{}, fmt.Errorf("%w: none suitable for %s soil", ErrNoActiveProducts, st)
	}

	res.Requirement = t.RequirementBetween(st, in.CurrentPH, target)
	maxDose := t.MaxSingleDose(st)
	slot := func(i int) (int, Season) {
		s := startSeason
		if i%2 == 1 {
			s = alternate(startSeason)
		}
		return in.StartYear + i, s
	}
	event := func(i int, dose float64) Application {
		year, season := slot(i)
		doses, short := t.blend(dose, cands)
		if short > doseEpsilon {
			warn.add("Application in %d %s is limited by the product mass ceiling; %.0f kg CaO/ha could not be placed.", year, season, short)
		}
		return Application{Seq: i + 1, Year: year, Season: season, Status: StatusPlanned, Products: doses}
	}

	var apps []Application
	for remaining := res.Requirement; remaining > doseEpsilon && len(apps) < MaxPlanApplications; {
		d := math.Min(remaining, maxDose)
		apps = append(apps, event(len(apps), d))
		remaining -= d
	}

	if len(apps) == 0 {
		warn.add("Lime requirement of %.0f kg CaO/ha is negligible; no application planned.", res.Requirement)
		res.Totals = Totals(nil, in.Area, in.CurrentPH)
		res.Warnings = warn
		return res, nil
	}

	// top up what re-acidification between years took back
	for {
		apps = t.Recalculate(apps, in.CurrentPH, st)
		last := apps[len(apps)-1]
		if last.PhAfter >= target-targetTolerance {
			break
		}
		if len(apps) >= MaxPlanApplications {
			warn.add("Target pH %.1f is not reached within %d applications; final pH %.2f.", target, MaxPlanApplications, last.PhAfter)
			break
		}
		year, _ := slot(len(apps))
		d := math.Min(t.RequirementBetween(st, t.ProjectPH(st, last.PhAfter, year-last.Year), target), maxDose)
		if d <= doseEpsilon {
			break
		}
		apps = append(apps, event(len(apps), d))
	}

	if span := apps[len(apps)-1].Year - in.StartYear + 1; span > horizon {
		warn.add("Lime requirement of %.0f kg CaO/ha cannot be delivered within %d years at the safe single dose of %.0f kg CaO/ha; the schedule spans %d years.",
			res.Requirement, horizon, maxDose, span)
	}

	res.Applications = t.Annotate(apps, target, st, in.Magnesium)
	res.Totals = Totals(res.Applications, in.Area, in.CurrentPH)
	res.Warnings = warn
	return res, nil
}

func alternate(s Season) Season {
	if s == Autumn {
		return Spring
	}
	return Autumn
}

// candidates filters products usable on st, ordered by descending
// neutralizing content. Magnesium-bearing products go first when soil
// magnesium is low. Oxide lime is not used on light soils.
func (t *Tables) candidates(st soil.SoilType, mg soil.NutrientClass, products []Product) []Product {
	var out []Product
	for _, p := range products {
		if p.NeutralizingPct <= 0 || p.NeutralizingPct > 100 {
			continue
		}
		if st == soil.Light && p.Form == FormOxide {
			continue
		}
		out = append(out, p)
	}
	lowMg := mg != soil.ClassUnknown && mg <= soil.ClassB
	sort.SliceStable(out, func(i, j int) bool {
		if lowMg && (out[i].SecondaryPct > 0) != (out[j].SecondaryPct > 0) {
			return out[i].SecondaryPct > 0
		}
		return out[i].NeutralizingPct > out[j].NeutralizingPct
	})
	return out
}

func (t *Tables) maxMass(p Product) float64 {
	if p.MaxDosePerArea > 0 {
		return p.MaxDosePerArea
	}
	return t.maxProductMass
}

// blend picks the first candidate that delivers dose kg CaO/ha within its mass
// ceiling. When none can, the first candidate is spread at its ceiling and the
// second fills the remainder. The undelivered CaO is returned.
func (t *Tables) blend(dose float64, cands []Product) ([]ProductDose, float64) {
	for _, p := range cands {
		if mass := dose * 100 / p.NeutralizingPct; mass <= t.maxMass(p) {
			return []ProductDose{p.Dose(mass)}, 0
		}
	}
	primary := cands[0]
	m := t.maxMass(primary)
	out := []ProductDose{primary.Dose(m)}
	rem := dose - m*primary.NeutralizingPct/100
	if len(cands) > 1 && rem > 0 {
		sec := cands[1]
		m2 := math.Min(rem*100/sec.NeutralizingPct, t.maxMass(sec))
		out = append(out, sec.Dose(m2))
		rem -= m2 * sec.NeutralizingPct / 100
	}
	return out, math.Max(rem, 0)
}
