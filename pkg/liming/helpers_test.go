package liming

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"limeplan/pkg/soil"
)

func testTables(t *testing.T) *Tables {
	t.Helper()
	tables, err := NewTables("test", map[soil.SoilType]SoilParams{
		soil.Light: {
			AcidificationRate: 0.3, MaxSingleDose: 2000,
			Points: []Point{{4.0, 7000}, {4.5, 5000}, {5.0, 3000}, {5.5, 1500}, {6.0, 0}},
		},
		soil.Medium: {
			AcidificationRate: 0.2, MaxSingleDose: 3000,
			Points: []Point{{4.0, 12000}, {4.5, 9000}, {5.0, 6000}, {5.5, 3000}, {6.0, 1500}, {6.5, 0}},
		},
		soil.Heavy: {
			AcidificationRate: 0.1, MaxSingleDose: 4500,
			Points: []Point{{4.0, 18000}, {4.5, 14000}, {5.0, 10000}, {5.5, 6000}, {6.0, 3000}, {6.5, 0}},
		},
	}, 6000)
	require.NoError(t, err)
	return tables
}

func sampleCatalog() []Product {
	return []Product{
		{ID: 1, Name: "Burnt lime 90", NeutralizingPct: 90, Form: FormOxide, PricePerTonne: decimal.RequireFromString("780")},
		{ID: 2, Name: "Magnesium oxide lime 65", NeutralizingPct: 65, SecondaryPct: 20, Form: FormOxide, PricePerTonne: decimal.RequireFromString("690")},
		{ID: 3, Name: "Ground limestone 50", NeutralizingPct: 50, Form: FormCarbonate, PricePerTonne: decimal.RequireFromString("210")},
		{ID: 4, Name: "Dolomite 30/18", NeutralizingPct: 30, SecondaryPct: 18, Form: FormCarbonate, PricePerTonne: decimal.RequireFromString("240")},
	}
}

// pureLime is a dose of a 100% CaO product, so DosePerArea is the CaO dose.
func pureLime(kg float64) []ProductDose {
	return []ProductDose{{ProductID: 99, Name: "pure", NeutralizingPct: 100, DosePerArea: kg}}
}

func app(seq, year int, s Season, caO float64) Application {
	return Application{Seq: seq, Year: year, Season: s, Status: StatusPlanned, Products: pureLime(caO)}
}
