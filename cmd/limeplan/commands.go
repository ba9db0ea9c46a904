package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"limeplan/pkg/liming"
	"limeplan/pkg/reftables"
	"limeplan/pkg/soil"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// optional returns a pointer to the flag value when the flag was given.
func optional(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

// ------------------------------------------------------------------
// classify
// ------------------------------------------------------------------

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var soilType string
	var ph float64
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify one soil sample",
		Example: "  limeplan classify --soil medium --ph 5.2 --p 12 --k 9 --mg 4 --ca 80 --s 2",
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := opts.tables()
			if err != nil {
				return err
			}
			st, err := soil.ParseSoilType(soilType)
			if err != nil {
				return err
			}
			rep, err := set.Classifier.Classify(soil.Sample{
				PH:         ph,
				Phosphorus: optional(cmd, "p"),
				Potassium:  optional(cmd, "k"),
				Magnesium:  optional(cmd, "mg"),
				Calcium:    optional(cmd, "ca"),
				Sulfur:     optional(cmd, "s"),
			}, st)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return printJSON(out, rep)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "soil\t%s\n", rep.SoilType)
			fmt.Fprintf(tw, "pH\t%.2f\t%s\n", rep.PH, rep.PHBand)
			fmt.Fprintf(tw, "liming need\t\t%s\n", rep.LimingNeed)
			for _, n := range rep.Nutrients {
				fmt.Fprintf(tw, "%s\t%.1f\t%s (%s)\n", n.Nutrient, n.Value, n.ClassLabel, n.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&soilType, "soil", "", "soil type (light, medium, heavy or a legacy code)")
	cmd.Flags().Float64Var(&ph, "ph", 0, "pH measured in KCl")
	cmd.Flags().Float64("p", 0, "phosphorus mg/100 g")
	cmd.Flags().Float64("k", 0, "potassium mg/100 g")
	cmd.Flags().Float64("mg", 0, "magnesium mg/100 g")
	cmd.Flags().Float64("ca", 0, "calcium mg/100 g")
	cmd.Flags().Float64("s", 0, "sulfur mg/100 g")
	_ = cmd.MarkFlagRequired("soil")
	_ = cmd.MarkFlagRequired("ph")
	return cmd
}

// ------------------------------------------------------------------
// requirement
// ------------------------------------------------------------------

type requirementOut struct {
	SoilType    soil.SoilType `json:"soil_type"`
	PH          float64       `json:"ph"`
	TargetPH    float64       `json:"target_ph"`
	Requirement float64       `json:"requirement"`
}

func newRequirementCmd(opts *rootOptions) *cobra.Command {
	var soilType string
	var ph, target float64
	cmd := &cobra.Command{
		Use:     "requirement",
		Short:   "Lime requirement in kg CaO/ha between a pH and the target",
		Example: "  limeplan requirement --soil medium --ph 4.1 --target 6.5",
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := opts.tables()
			if err != nil {
				return err
			}
			st, err := soil.ParseSoilType(soilType)
			if err != nil {
				return err
			}
			if ph <= 0 || ph > 14 {
				return fmt.Errorf("%w: pH %v", soil.ErrInvalidMeasurement, ph)
			}
			if target == 0 {
				target = set.Lime.Ceiling(st)
			}
			r := requirementOut{SoilType: st, PH: ph, TargetPH: target, Requirement: set.Lime.RequirementBetween(st, ph, target)}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), r)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s soil, pH %.2f -> %.1f: %.0f kg CaO/ha\n", st, ph, target, r.Requirement)
			return err
		},
	}
	cmd.Flags().StringVar(&soilType, "soil", "", "soil type")
	cmd.Flags().Float64Var(&ph, "ph", 0, "current pH")
	cmd.Flags().Float64Var(&target, "target", 0, "target pH (default: reference ceiling of the soil)")
	_ = cmd.MarkFlagRequired("soil")
	_ = cmd.MarkFlagRequired("ph")
	return cmd
}

// ------------------------------------------------------------------
// plan
// ------------------------------------------------------------------

func newPlanCmd(opts *rootOptions) *cobra.Command {
	var (
		soilType, landUse, season, catalog string
		ph, target, area                   float64
		year, horizon                      int
	)
	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Preview a generated liming schedule",
		Example: "  limeplan plan --soil medium --ph 4.1 --target 6.5 --area 3 --mg 4 --year 2026",
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := opts.tables()
			if err != nil {
				return err
			}
			st, err := soil.ParseSoilType(soilType)
			if err != nil {
				return err
			}
			lu, err := liming.ParseLandUse(landUse)
			if err != nil {
				return err
			}
			products, err := loadCatalog(catalog)
			if err != nil {
				return err
			}
			in := liming.GenerateInput{
				CurrentPH: ph, TargetPH: target, SoilType: st, LandUse: lu, Area: area,
				Products: products, StartYear: year, HorizonYears: horizon,
			}
			if in.StartYear == 0 {
				in.StartYear = time.Now().Year()
			}
			if season != "" {
				if in.StartSeason, err = liming.ParseSeason(season); err != nil {
					return err
				}
			}
			if mg := optional(cmd, "mg"); mg != nil {
				class, _, err := set.Classifier.ClassifyNutrient(soil.Magnesium, st, *mg)
				if err != nil {
					return err
				}
				in.Magnesium = class
			}
			res, err := set.Lime.Generate(in)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printSchedule(cmd.OutOrStdout(), res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&soilType, "soil", "", "soil type")
	f.StringVar(&landUse, "land-use", "arable", "arable or grassland")
	f.Float64Var(&ph, "ph", 0, "current pH")
	f.Float64Var(&target, "target", 0, "target pH (default: land use target)")
	f.Float64Var(&area, "area", 1, "parcel area in ha")
	f.Float64("mg", 0, "magnesium mg/100 g")
	f.IntVar(&year, "year", 0, "first year of the schedule (default: this year)")
	f.StringVar(&season, "season", "", "first season (default: spring)")
	f.IntVar(&horizon, "horizon", 0, "planning horizon in years")
	f.StringVar(&catalog, "catalog", "", "products YAML (default: embedded sample catalog)")
	_ = cmd.MarkFlagRequired("soil")
	_ = cmd.MarkFlagRequired("ph")
	return cmd
}

func loadCatalog(path string) ([]liming.Product, error) {
	if path == "" {
		return reftables.SampleProducts()
	}
	return reftables.LoadCatalog(path)
}

func printSchedule(w io.Writer, res liming.GenerateResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "target pH %.1f, requirement %.0f kg CaO/ha\n\n", res.TargetPH, res.Requirement)
	fmt.Fprintln(tw, "#\tyear\tseason\tproducts\tCaO/ha\tpH before\tpH after")
	for _, a := range res.Applications {
		names := make([]string, 0, len(a.Products))
		for _, p := range a.Products {
			names = append(names, fmt.Sprintf("%s %.0f kg/ha", p.Name, p.DosePerArea))
		}
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.0f\t%.2f\t%.2f\n",
			a.Seq, a.Year, a.Season, strings.Join(names, " + "), a.NeutralizingPerArea, a.PhBefore, a.PhAfter)
	}
	t := res.Totals
	fmt.Fprintf(tw, "\ntotal\t%.0f kg CaO/ha, %.0f kg MgO/ha, %.0f kg product, cost %s\n",
		t.NeutralizingPerArea, t.SecondaryPerArea, t.TotalMass, t.Cost.StringFixed(2))
	for _, warn := range res.Warnings {
		fmt.Fprintf(tw, "warning: %s\n", warn)
	}
	return tw.Flush()
}
