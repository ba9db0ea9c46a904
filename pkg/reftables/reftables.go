// Package reftables loads the versioned soil classification and lime
// requirement tables, with optional CSV or XLSX overrides of the lime curve.
package reftables

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"limeplan/data"
	"limeplan/pkg/liming"
	"limeplan/pkg/soil"
)

// Set is one loaded, validated version of the reference tables.
type Set struct {
	Version    string
	Classifier *soil.Classifier
	Lime       *liming.Tables
}

// Options points at files that replace or override the embedded tables.
// Empty paths are ignored.
type Options struct {
	TablesPath string // full YAML document replacing the embedded one
	LimeCSV    string // soil_type, ph, requirement rows
	LimeXLSX   string // same columns on the first sheet
}

type document struct {
	Version string `yaml:"version"`
	PHBands struct {
		Bounds []float64 `yaml:"bounds"`
	} `yaml:"ph_bands"`
	LimingNeed map[string][]float64            `yaml:"liming_need"`
	Nutrients  map[string]map[string][]float64 `yaml:"nutrients"`
	Lime       struct {
		MaxProductMass float64                 `yaml:"max_product_mass"`
		Soils          map[string]limeSoilYAML `yaml:"soils"`
	} `yaml:"lime"`
}

type limeSoilYAML struct {
	AcidificationRate float64        `yaml:"acidification_rate"`
	MaxSingleDose     float64        `yaml:"max_single_dose"`
	Points            []liming.Point `yaml:"points"`
}

// Load reads the tables, applies overrides and validates the result.
func Load(opts Options) (*Set, error) {
	raw := data.ReferenceTables
	if opts.TablesPath != "" {
		b, err := os.ReadFile(opts.TablesPath)
		if err != nil {
			return nil, fmt.Errorf("read reference tables: %w", err)
		}
		raw = b
	}
	doc, err := parse(raw)
	if err != nil {
		return nil, err
	}

	if opts.LimeCSV != "" {
		pts, err := loadLimeCSV(opts.LimeCSV)
		if err != nil {
			return nil, fmt.Errorf("lime table %s: %w", opts.LimeCSV, err)
		}
		doc.overridePoints(pts)
	}
	if opts.LimeXLSX != "" {
		pts, err := loadLimeXLSX(opts.LimeXLSX)
		if err != nil {
			return nil, fmt.Errorf("lime table %s: %w", opts.LimeXLSX, err)
		}
		doc.overridePoints(pts)
	}
	return doc.build()
}

// Parse builds a Set from a YAML document.
func Parse(b []byte) (*Set, error) {
	doc, err := parse(b)
	if err != nil {
		return nil, err
	}
	return doc.build()
}

func parse(b []byte) (*document, error) {
	var doc document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse reference tables: %w", err)
	}
	if doc.Version == "" {
		return nil, errors.New("reference tables carry no version")
	}
	return &doc, nil
}

func (d *document) overridePoints(pts map[soil.SoilType][]liming.Point) {
	if d.Lime.Soils == nil {
		d.Lime.Soils = map[string]limeSoilYAML{}
	}
	for st, p := range pts {
		s := d.Lime.Soils[string(st)]
		s.Points = p
		d.Lime.Soils[string(st)] = s
	}
}

func soilMap[T any](in map[string]T) (map[soil.SoilType]T, error) {
	out := make(map[soil.SoilType]T, len(in))
	for k, v := range in {
		st, err := soil.ParseSoilType(k)
		if err != nil {
			return nil, err
		}
		out[st] = v
	}
	return out, nil
}

func (d *document) build() (*Set, error) {
	need, err := soilMap(d.LimingNeed)
	if err != nil {
		return nil, fmt.Errorf("liming_need: %w", err)
	}
	nutrients := map[soil.Nutrient]map[soil.SoilType][]float64{}
	for name, bySoil := range d.Nutrients {
		m, err := soilMap(bySoil)
		if err != nil {
			return nil, fmt.Errorf("nutrients.%s: %w", name, err)
		}
		nutrients[soil.Nutrient(name)] = m
	}
	classifier, err := soil.NewClassifier(soil.ClassTables{
		PHBands:    d.PHBands.Bounds,
		LimingNeed: need,
		Nutrients:  nutrients,
	})
	if err != nil {
		return nil, fmt.Errorf("classification tables %s: %w", d.Version, err)
	}

	soils, err := soilMap(d.Lime.Soils)
	if err != nil {
		return nil, fmt.Errorf("lime.soils: %w", err)
	}
	params := make(map[soil.SoilType]liming.SoilParams, len(soils))
	for st, s := range soils {
		params[st] = liming.SoilParams{
			Points:            s.Points,
			AcidificationRate: s.AcidificationRate,
			MaxSingleDose:     s.MaxSingleDose,
		}
	}
	lime, err := liming.NewTables(d.Version, params, d.Lime.MaxProductMass)
	if err != nil {
		return nil, fmt.Errorf("lime tables %s: %w", d.Version, err)
	}
	return &Set{Version: d.Version, Classifier: classifier, Lime: lime}, nil
}
