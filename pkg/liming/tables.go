package liming

import (
	"fmt"
	"sort"

	"limeplan/pkg/soil"
)

const (
	// HardCeilingPH is the highest pH any application may produce.
	HardCeilingPH = 8.0
	// MinViablePH is the floor natural re-acidification cannot go below.
	MinViablePH = 3.5
)

// Point is one row of a lime requirement table: kg CaO/ha needed at PH to reach
// the soil type's ceiling.
type Point struct {
	PH          float64 `yaml:"ph"`
	Requirement float64 `yaml:"requirement"`
}

// SoilParams holds everything the engine knows about one soil type.
type SoilParams struct {
	Points            []Point
	AcidificationRate float64 // pH units lost per year without lime
	MaxSingleDose     float64 // kg CaO/ha safe in one application
}

// Tables is the immutable, versioned set of liming constants.
type Tables struct {
	version        string
	soils          map[soil.SoilType]SoilParams
	maxProductMass float64
}

// NewTables validates and copies the given parameters. Every soil type must be
// present, requirement points must be ascending in pH and strictly decreasing
// in requirement down to zero at the ceiling, and acidification must slow down
// as soils get heavier.
func NewTables(version string, soils map[soil.SoilType]SoilParams, maxProductMass float64) (*Tables, error) {
	if maxProductMass <= 0 {
		return nil, fmt.Errorf("max product mass must be positive, got %v", maxProductMass)
	}
	t := &Tables{version: version, soils: map[soil.SoilType]SoilParams{}, maxProductMass: maxProductMass}
	prevRate := 0.0
	for i, st := range soil.SoilTypes {
		p, ok := soils[st]
		if !ok {
			return nil, fmt.Errorf("lime table missing soil type %s", st)
		}
		if err := checkPoints(st, p.Points); err != nil {
			return nil, err
		}
		if p.AcidificationRate <= 0 {
			return nil, fmt.Errorf("%s: acidification rate must be positive", st)
		}
		if i > 0 && !(p.AcidificationRate < prevRate) {
			return nil, fmt.Errorf("%s: acidification rate must be lower than for lighter soils", st)
		}
		prevRate = p.AcidificationRate
		if p.MaxSingleDose <= 0 {
			return nil, fmt.Errorf("%s: max single dose must be positive", st)
		}
		pts := append([]Point(nil), p.Points...)
		t.soils[st] = SoilParams{Points: pts, AcidificationRate: p.AcidificationRate, MaxSingleDose: p.MaxSingleDose}
	}
	return t, nil
}

func checkPoints(st soil.SoilType, pts []Point) error {
	if len(pts) < 2 {
		return fmt.Errorf("%s: lime table needs at least two points", st)
	}
	if !sort.SliceIsSorted(pts, func(i, j int) bool { return pts[i].PH < pts[j].PH }) {
		return fmt.Errorf("%s: lime table points must be in ascending pH", st)
	}
	for i := 1; i < len(pts); i++ {
		if !(pts[i].PH > pts[i-1].PH) {
			return fmt.Errorf("%s: duplicate pH %v in lime table", st, pts[i].PH)
		}
		if !(pts[i].Requirement < pts[i-1].Requirement) {
			return fmt.Errorf("%s: requirement must decrease with pH (at pH %v)", st, pts[i].PH)
		}
	}
	last := pts[len(pts)-1]
	if last.Requirement != 0 {
		return fmt.Errorf("%s: requirement at ceiling pH %v must be zero", st, last.PH)
	}
	if last.PH > HardCeilingPH {
		return fmt.Errorf("%s: ceiling pH %v above %v", st, last.PH, HardCeilingPH)
	}
	return nil
}

func (t *Tables) Version() string { return t.version }

// MaxProductMass is the practical ceiling of one product's spread mass per
// hectare in a single event.
func (t *Tables) MaxProductMass() float64 { return t.maxProductMass }

// Ceiling is the reference pH the requirement table leads to.
func (t *Tables) Ceiling(st soil.SoilType) float64 {
	p, ok := t.soils[st]
	if !ok {
		return 0
	}
	return p.Points[len(p.Points)-1].PH
}

func (t *Tables) AcidificationRate(st soil.SoilType) float64 { return t.soils[st].AcidificationRate }

func (t *Tables) MaxSingleDose(st soil.SoilType) float64 { return t.soils[st].MaxSingleDose }

// Points returns a copy of the requirement table of st.
func (t *Tables) Points(st soil.SoilType) []Point {
	return append([]Point(nil), t.soils[st].Points...)
}
