package ai

import (
	"fmt"
	"strings"

	"limeplan/entities"
)

func parcelLabel(parcel *entities.Parcel) string {
	if parcel == nil {
		return "parcel"
	}
	if parcel.Name != "" {
		return fmt.Sprintf("%s (#%d)", parcel.Name, parcel.ParcelID)
	}
	return fmt.Sprintf("parcel #%d", parcel.ParcelID)
}

func fallbackSummary(parcel *entities.Parcel, p *entities.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Liming plan for %s**\n\n", parcelLabel(parcel))
	fmt.Fprintf(&b, "- Soil: %s, %.2f ha, pH %.2f, target %.1f\n", p.SoilType, p.AreaHa, p.AnchorPH, p.TargetPH)
	if len(p.Applications) == 0 {
		b.WriteString("- No liming is scheduled.\n")
	} else {
		first, last := p.Applications[0], p.Applications[len(p.Applications)-1]
		fmt.Fprintf(&b, "- %d applications, %s %d to %s %d, %.0f kg CaO/ha in total\n",
			len(p.Applications), first.Season, first.Year, last.Season, last.Year, p.TotalNeutralizing)
		fmt.Fprintf(&b, "- Expected pH after the last application: %.2f\n", p.FinalPH)
	}
	if !p.TotalCost.IsZero() {
		fmt.Fprintf(&b, "- Estimated product cost: %s\n", p.TotalCost.StringFixed(2))
	}
	for _, w := range p.Warnings {
		fmt.Fprintf(&b, "- Note: %s\n", w)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderSummaryPrompt(parcel *entities.Parcel, p *entities.Plan) string {
	var rows strings.Builder
	for _, a := range p.Applications {
		names := make([]string, 0, len(a.Products))
		for _, pr := range a.Products {
			names = append(names, fmt.Sprintf("%s %.0f kg/ha", pr.Name, pr.DosePerArea))
		}
		fmt.Fprintf(&rows, "%d. %d %s: %s, pH %.2f -> %.2f\n", a.Seq, a.Year, a.Season, strings.Join(names, " + "), a.PhBefore, a.PhAfter)
	}
	return fmt.Sprintf(`Summarize this multi-year liming plan for a farmer in at most 8 Markdown bullet lines.
State what to spread, when, and the expected pH. Mention warnings briefly. Do not invent doses.

PARCEL: %s, %.2f ha, %s soil, %s
MEASURED pH: %.2f  TARGET pH: %.1f  REQUIREMENT: %.0f kg CaO/ha

APPLICATIONS:
%s
WARNINGS: %s
`, parcelLabel(parcel), p.AreaHa, p.SoilType, p.LandUse, p.AnchorPH, p.TargetPH, p.Requirement,
		rows.String(), strings.Join(p.Warnings, "; "))
}
