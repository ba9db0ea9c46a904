package liming

import (
	"math"

	"limeplan/pkg/soil"
)

// Requirement is the kg CaO/ha needed to lift soil of type st from ph to the
// ceiling. Values between tabulated points are interpolated linearly; below the
// lowest point the first bracket's slope is extrapolated. At or above the
// ceiling it is zero.
func (t *Tables) Requirement(st soil.SoilType, ph float64) float64 {
	p, ok := t.soils[st]
	if !ok {
		return 0
	}
	pts := p.Points
	if ph >= pts[len(pts)-1].PH {
		return 0
	}
	if ph < pts[0].PH {
		slope := (pts[0].Requirement - pts[1].Requirement) / (pts[1].PH - pts[0].PH)
		return pts[0].Requirement + (pts[0].PH-ph)*slope
	}
	for i := 0; i < len(pts)-1; i++ {
		lo, hi := pts[i], pts[i+1]
		if ph >= lo.PH && ph < hi.PH {
			f := (ph - lo.PH) / (hi.PH - lo.PH)
			return lo.Requirement + f*(hi.Requirement-lo.Requirement)
		}
	}
	return 0
}

// RequirementBetween is the lime needed to move from one pH to a higher one.
func (t *Tables) RequirementBetween(st soil.SoilType, from, to float64) float64 {
	return math.Max(t.Requirement(st, from)-t.Requirement(st, to), 0)
}

// phForRequirement inverts Requirement.
func (t *Tables) phForRequirement(st soil.SoilType, r float64) float64 {
	pts := t.soils[st].Points
	if r <= 0 {
		return pts[len(pts)-1].PH
	}
	if r > pts[0].Requirement {
		slope := (pts[0].Requirement - pts[1].Requirement) / (pts[1].PH - pts[0].PH)
		return math.Max(pts[0].PH-(r-pts[0].Requirement)/slope, 0)
	}
	for i := 0; i < len(pts)-1; i++ {
		lo, hi := pts[i], pts[i+1]
		if r <= lo.Requirement && r >= hi.Requirement {
			f := (lo.Requirement - r) / (lo.Requirement - hi.Requirement)
			return lo.PH + f*(hi.PH-lo.PH)
		}
	}
	return pts[len(pts)-1].PH
}

// PHIncrement is the pH rise produced by dose kg CaO/ha applied at phBefore.
// The remaining requirement is floored at zero, the result never lowers pH and
// never lifts it past HardCeilingPH.
func (t *Tables) PHIncrement(st soil.SoilType, dose, phBefore float64) float64 {
	if _, ok := t.soils[st]; !ok || dose <= 0 {
		return 0
	}
	remaining := math.Max(t.Requirement(st, phBefore)-dose, 0)
	after := math.Min(t.phForRequirement(st, remaining), HardCeilingPH)
	inc := after - phBefore
	if inc <= 0 {
		return 0
	}
	return inc
}
