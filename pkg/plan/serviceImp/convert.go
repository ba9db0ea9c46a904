package serviceImp

import (
	"fmt"

	"limeplan/entities"
	"limeplan/pkg/liming"
	"limeplan/pkg/plan"
)

func toLimingApps(rows []entities.Application) ([]liming.Application, error) {
	out := make([]liming.Application, 0, len(rows))
	for _, r := range rows {
		season, err := liming.ParseSeason(r.Season)
		if err != nil {
			return nil, fmt.Errorf("application %d: %w", r.ApplicationID, err)
		}
		doses := make([]liming.ProductDose, 0, len(r.Products))
		for _, p := range r.Products {
			doses = append(doses, liming.ProductDose{
				ProductID:       p.ProductID,
				Name:            p.Name,
				NeutralizingPct: p.NeutralizingPct,
				SecondaryPct:    p.SecondaryPct,
				PricePerTonne:   p.PricePerTonne,
				DosePerArea:     p.DosePerArea,
			})
		}
		out = append(out, liming.Application{
			ID:       r.ApplicationID,
			Seq:      r.Seq,
			Year:     r.Year,
			Season:   season,
			Status:   liming.Status(r.Status),
			Products: doses,
		})
	}
	return out, nil
}

func toEntityApp(planID uint, a liming.Application, area float64) entities.Application {
	t := liming.CombineDoses(a.Products, area)
	codes := make([]string, 0, len(a.Advice))
	for _, adv := range a.Advice {
		codes = append(codes, string(adv.Code))
	}
	products := make([]entities.ApplicationProduct, 0, len(a.Products))
	for _, d := range a.Products {
		products = append(products, entities.ApplicationProduct{
			ApplicationID:   a.ID,
			ProductID:       d.ProductID,
			Name:            d.Name,
			NeutralizingPct: d.NeutralizingPct,
			SecondaryPct:    d.SecondaryPct,
			PricePerTonne:   d.PricePerTonne,
			DosePerArea:     d.DosePerArea,
		})
	}
	return entities.Application{
		ApplicationID:       a.ID,
		PlanID:              planID,
		Seq:                 a.Seq,
		Year:                a.Year,
		Season:              a.Season.String(),
		Status:              string(a.Status),
		PhBefore:            a.PhBefore,
		PhAfter:             a.PhAfter,
		NeutralizingPerArea: a.NeutralizingPerArea,
		SecondaryPerArea:    a.SecondaryPerArea,
		SecondaryCarryover:  a.SecondaryCarryover,
		MassPerArea:         t.MassPerArea,
		TotalMass:           t.TotalMass,
		Cost:                t.Cost,
		Recommendation:      liming.AdviceText(a.Advice),
		AdviceCodes:         codes,
		Products:            products,
	}
}

// applyTrajectory replaces the plan's applications and totals with a
// recalculated, annotated schedule.
func applyTrajectory(p *entities.Plan, apps []liming.Application) {
	p.Applications = make([]entities.Application, 0, len(apps))
	for _, a := range apps {
		p.Applications = append(p.Applications, toEntityApp(p.PlanID, a, p.AreaHa))
	}
	t := liming.Totals(apps, p.AreaHa, p.AnchorPH)
	p.TotalNeutralizing = t.NeutralizingPerArea
	p.TotalSecondary = t.SecondaryPerArea
	p.TotalMass = t.TotalMass
	p.TotalCost = t.Cost
	p.FinalPH = t.FinalPH
}

// findApp returns the index of the application with the given row id.
func findApp(apps []liming.Application, applicationID uint) (int, error) {
	for i, a := range apps {
		if a.ID == applicationID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", liming.ErrApplicationNotFound, applicationID)
}

func parseStatus(v string) (liming.Status, error) {
	if v == "" {
		return liming.StatusPlanned, nil
	}
	st := liming.Status(v)
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown application status %q", plan.ErrInvalidInput, v)
	}
	return st, nil
}
