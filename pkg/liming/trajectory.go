package liming

import (
	"math"
	"sort"

	"limeplan/pkg/soil"
)

// Recalculate recomputes the whole pH trajectory of a plan from its anchor
// measurement. apps must be one plan's full application set; it is not
// modified and a new list ordered by sequence number is returned.
//
// The first application starts at anchorPH. Each later one starts at the
// previous pH-after, lowered by the soil's annual acidification rate for every
// year between them (none within the same year) but never below MinViablePH.
func (t *Tables) Recalculate(apps []Application, anchorPH float64, st soil.SoilType) []Application {
	out := cloneAll(apps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })

	rate := t.AcidificationRate(st)
	carry := 0.0
	for i := range out {
		a := &out[i]
		if i == 0 {
			a.PhBefore = anchorPH
		} else {
			a.PhBefore = acidify(out[i-1].PhAfter, a.Year-out[i-1].Year, rate)
		}
		totals := CombineDoses(a.Products, 0)
		a.NeutralizingPerArea = totals.NeutralizingPerArea
		a.SecondaryPerArea = totals.SecondaryPerArea
		carry += totals.SecondaryPerArea
		a.SecondaryCarryover = carry

		a.PhAfter = a.PhBefore + t.PHIncrement(st, a.NeutralizingPerArea, a.PhBefore)
		if a.PhAfter > HardCeilingPH {
			a.PhAfter = math.Max(HardCeilingPH, a.PhBefore)
		}
	}
	return out
}

// acidify applies years of natural re-acidification to ph.
func acidify(ph float64, years int, rate float64) float64 {
	if years <= 0 {
		return ph
	}
	v := ph - float64(years)*rate
	if v < MinViablePH {
		return math.Min(MinViablePH, ph)
	}
	return v
}

// ProjectPH is the pH expected years after ph without further lime.
func (t *Tables) ProjectPH(st soil.SoilType, ph float64, years int) float64 {
	return acidify(ph, years, t.AcidificationRate(st))
}
