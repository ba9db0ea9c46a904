package reftables

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"limeplan/pkg/liming"
	"limeplan/pkg/soil"
)

func TestLoadEmbeddedTables(t *testing.T) {
	set, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "2025.2", set.Version)
	assert.Equal(t, "2025.2", set.Lime.Version())
	assert.InDelta(t, 11400, set.Lime.Requirement(soil.Medium, 4.1), 1e-9)
	assert.Equal(t, 6000.0, set.Lime.MaxProductMass())
	assert.Equal(t, 6.0, set.Lime.Ceiling(soil.Light))

	band, _, err := set.Classifier.ClassifyPH(5.2)
	require.NoError(t, err)
	assert.Equal(t, soil.Acidic, band)

	class, _, err := set.Classifier.ClassifyNutrient(soil.Magnesium, soil.Medium, 4.0)
	require.NoError(t, err)
	assert.Equal(t, soil.ClassB, class)
}

func TestParseRejectsBrokenTables(t *testing.T) {
	_, err := Parse([]byte("ph_bands: {bounds: [1,2,3,4]}"))
	assert.Error(t, err)

	_, err = Parse([]byte("version: x\nph_bands: {bounds: [4.5, 5.5]}"))
	assert.Error(t, err)

	_, err = Parse([]byte(":\n - not yaml"))
	assert.Error(t, err)
}

func TestLoadTablesPathMissing(t *testing.T) {
	_, err := Load(Options{TablesPath: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLimeCSVOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lime.csv")
	body := "\uFEFFSoil Type,pH,requirement\n" +
		"średnia,4.0,10000\nmedium,6.5,0\nM,5.0,4000\n\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	set, err := Load(Options{LimeCSV: path})
	require.NoError(t, err)

	pts := set.Lime.Points(soil.Medium)
	require.Len(t, pts, 3)
	assert.Equal(t, liming.Point{PH: 4.0, Requirement: 10000}, pts[0])
	assert.InDelta(t, 7000, set.Lime.Requirement(soil.Medium, 4.5), 1e-9)
	// other soil types keep the embedded curve
	assert.InDelta(t, 18000, set.Lime.Requirement(soil.Heavy, 4.0), 1e-9)
}

func TestLimeCSVOverrideErrors(t *testing.T) {
	_, err := readLimeCSV(strings.NewReader("soil,value\nmedium,1\n"))
	assert.ErrorContains(t, err, "missing required columns")

	_, err = readLimeCSV(strings.NewReader("soil,ph,requirement\npeat,4,100\n"))
	assert.ErrorContains(t, err, "row 2")

	_, err = readLimeCSV(strings.NewReader("soil,ph,requirement\n"))
	assert.Error(t, err)

	// a curve that rises with pH fails table validation
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("soil,ph,requirement\nheavy,4,100\nheavy,6,500\n"), 0o644))
	_, err = Load(Options{LimeCSV: path})
	assert.Error(t, err)
}

func TestLimeXLSXOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lime.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Gleba", "pH KCl", "Zapotrzebowanie"},
		{"lekka", 4.0, 6000},
		{"lekka", 5.0, 2500},
		{"lekka", 6.0, 0},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	set, err := Load(Options{LimeXLSX: path})
	require.NoError(t, err)
	assert.InDelta(t, 4250, set.Lime.Requirement(soil.Light, 4.5), 1e-9)
}

func TestSampleProducts(t *testing.T) {
	products, err := SampleProducts()
	require.NoError(t, err)
	require.Len(t, products, 4)
	assert.Equal(t, uint(1), products[0].ID)
	assert.Equal(t, liming.FormOxide, products[0].Form)
	assert.True(t, products[0].PricePerTonne.Equal(decimal.NewFromInt(780)))
	assert.Equal(t, 18.0, products[3].SecondaryPct)

	_, err = CatalogEntry{Name: "x", Form: "pellet"}.Product(1)
	assert.Error(t, err)
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`products:
  - {name: "Chalk 40", neutralizing_pct: 40}
  - {name: "Dolomite 30/18", neutralizing_pct: 30, secondary_pct: 18, price_per_tonne: "240"}
`), 0o644))

	products, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, uint(2), products[1].ID)
	assert.Equal(t, liming.FormCarbonate, products[0].Form)
	assert.True(t, products[0].PricePerTonne.IsZero())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
