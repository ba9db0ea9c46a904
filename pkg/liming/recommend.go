package liming

import (
	"fmt"
	"math"
	"strings"

	"limeplan/pkg/soil"
)

type AdviceCode string

const (
	AdviceTargetReached       AdviceCode = "target_reached"
	AdviceFollowUp            AdviceCode = "follow_up"
	AdviceTargetNotReached    AdviceCode = "target_not_reached"
	AdviceMaintenance         AdviceCode = "maintenance"
	AdviceAboveTarget         AdviceCode = "above_target"
	AdviceMagnesiumOversupply AdviceCode = "magnesium_oversupply"
	AdviceMagnesiumDeficit    AdviceCode = "magnesium_deficit"
)

// targetTolerance is how close to target a pH counts as reached.
const targetTolerance = 0.05

// TargetReached reports whether ph counts as having reached target.
func TargetReached(ph, target float64) bool { return ph >= target-targetTolerance }

// MagnesiumCarryoverLimit is the kg MgO/ha spread within a plan above which
// further magnesium-bearing lime risks oversupply.
const MagnesiumCarryoverLimit = 600.0

// Advice is one agronomic message attached to an application.
type Advice struct {
	Code  AdviceCode `json:"code"`
	Years int        `json:"years,omitempty"`
	Text  string     `json:"text"`
}

// AdviceContext is what the composer needs beyond the application itself.
type AdviceContext struct {
	TargetPH          float64
	Magnesium         soil.NutrientClass
	AcidificationRate float64
	// NextYear is the year of the following application, nil for the last one.
	NextYear *int
}

// Compose derives the advisory messages for one recalculated application.
func Compose(a Application, ctx AdviceContext) []Advice {
	var out []Advice
	switch {
	case a.PhBefore >= ctx.TargetPH-targetTolerance:
		out = append(out, Advice{Code: AdviceAboveTarget,
			Text: fmt.Sprintf("pH %.2f already meets target %.1f; this application is not required.", a.PhBefore, ctx.TargetPH)})
	case a.PhAfter >= ctx.TargetPH-targetTolerance:
		out = append(out, Advice{Code: AdviceTargetReached,
			Text: fmt.Sprintf("Target pH %.1f reached (pH %.2f).", ctx.TargetPH, a.PhAfter)})
	case ctx.NextYear != nil:
		n := *ctx.NextYear - a.Year
		out = append(out, Advice{Code: AdviceFollowUp, Years: n, Text: followUpText(n)})
	default:
		out = append(out, Advice{Code: AdviceTargetNotReached,
			Text: fmt.Sprintf("pH %.2f remains below target %.1f; an additional application is needed next year.", a.PhAfter, ctx.TargetPH)})
	}

	if ctx.NextYear == nil && a.PhAfter >= ctx.TargetPH-targetTolerance && ctx.AcidificationRate > 0 {
		// years until pH drifts half a unit below target
		n := int(math.Floor((a.PhAfter - (ctx.TargetPH - 0.5)) / ctx.AcidificationRate))
		if n < 1 {
			n = 1
		}
		out = append(out, Advice{Code: AdviceMaintenance, Years: n,
			Text: fmt.Sprintf("Maintenance liming expected in %d years; re-test soil before then.", n)})
	}

	if a.SecondaryPerArea > 0 && (ctx.Magnesium >= soil.ClassD || a.SecondaryCarryover > MagnesiumCarryoverLimit) {
		out = append(out, Advice{Code: AdviceMagnesiumOversupply,
			Text: fmt.Sprintf("Magnesium oversupply risk: %.0f kg MgO/ha applied so far; prefer a magnesium-free lime.", a.SecondaryCarryover)})
	}
	if a.SecondaryPerArea == 0 && ctx.Magnesium != soil.ClassUnknown && ctx.Magnesium <= soil.ClassB {
		out = append(out, Advice{Code: AdviceMagnesiumDeficit,
			Text: "Soil magnesium is low; consider a magnesium-bearing lime."})
	}
	return out
}

func followUpText(n int) string {
	switch n {
	case 0:
		return "Additional application needed later this year."
	case 1:
		return "Additional application needed in 1 year."
	}
	return fmt.Sprintf("Additional application needed in %d years.", n)
}

// AdviceText joins advice into the single recommendation line stored with an
// application.
func AdviceText(advice []Advice) string {
	parts := make([]string, 0, len(advice))
	for _, a := range advice {
		parts = append(parts, a.Text)
	}
	return strings.Join(parts, " ")
}

// Annotate runs Compose over a recalculated, sequence-ordered schedule.
func (t *Tables) Annotate(apps []Application, targetPH float64, st soil.SoilType, mg soil.NutrientClass) []Application {
	out := cloneAll(apps)
	rate := t.AcidificationRate(st)
	for i := range out {
		ctx := AdviceContext{TargetPH: targetPH, Magnesium: mg, AcidificationRate: rate}
		if i+1 < len(out) {
			y := out[i+1].Year
			ctx.NextYear = &y
		}
		out[i].Advice = Compose(out[i], ctx)
	}
	return out
}
