package liming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limeplan/pkg/soil"
)

func TestRequirementInterpolatesBetweenBrackets(t *testing.T) {
	tables := testTables(t)
	assert.InDelta(t, 11400, tables.Requirement(soil.Medium, 4.1), 1e-9)
	assert.InDelta(t, 6000, tables.Requirement(soil.Medium, 5.0), 1e-9)
	assert.InDelta(t, 2250, tables.Requirement(soil.Medium, 5.75), 1e-9)
}

func TestRequirementExtrapolatesBelowLowestPoint(t *testing.T) {
	tables := testTables(t)
	// first bracket slope is 3000 per 0.5 pH
	assert.InDelta(t, 15000, tables.Requirement(soil.Medium, 3.5), 1e-9)
}

func TestRequirementZeroAtCeiling(t *testing.T) {
	tables := testTables(t)
	for _, st := range soil.SoilTypes {
		c := tables.Ceiling(st)
		assert.Zero(t, tables.Requirement(st, c), st)
		assert.Zero(t, tables.Requirement(st, c+0.7), st)
	}
	assert.Equal(t, 6.0, tables.Ceiling(soil.Light))
	assert.Equal(t, 6.5, tables.Ceiling(soil.Heavy))
}

func TestRequirementNonIncreasingInPH(t *testing.T) {
	tables := testTables(t)
	for _, st := range soil.SoilTypes {
		prev := tables.Requirement(st, 3.0)
		for ph := 3.01; ph <= 8.0; ph += 0.01 {
			r := tables.Requirement(st, ph)
			require.LessOrEqual(t, r, prev+1e-9, "%s at pH %.2f", st, ph)
			prev = r
		}
	}
}

func TestPHIncrementInvertsTable(t *testing.T) {
	tables := testTables(t)
	// 6000 at pH 5.0 minus 4000 leaves 2000, between 5.5 (3000) and 6.0 (1500)
	inc := tables.PHIncrement(soil.Medium, 4000, 5.0)
	assert.InDelta(t, 5.0+0.5+0.5*1000/1500, 5.0+inc, 1e-9)

	// remaining requirement inside the same bracket
	inc = tables.PHIncrement(soil.Medium, 1500, 5.0)
	assert.InDelta(t, 0.25, inc, 1e-9)
}

func TestPHIncrementBounds(t *testing.T) {
	tables := testTables(t)
	for _, st := range soil.SoilTypes {
		for ph := 3.5; ph <= 8.0; ph += 0.1 {
			for _, dose := range []float64{0, 1, 500, 3000, 20000, 1e6} {
				inc := tables.PHIncrement(st, dose, ph)
				require.GreaterOrEqual(t, inc, 0.0)
				require.LessOrEqual(t, ph+inc, HardCeilingPH+1e-9)
			}
		}
	}
}

func TestPHIncrementOverApplicationClampsAtCeiling(t *testing.T) {
	tables := testTables(t)
	assert.InDelta(t, 6.5, 6.4+tables.PHIncrement(soil.Medium, 1e6, 6.4), 1e-9)
	assert.Zero(t, tables.PHIncrement(soil.Medium, 1e6, 7.0))
	assert.Zero(t, tables.PHIncrement(soil.Medium, -10, 5.0))
}

func TestRequirementBetween(t *testing.T) {
	tables := testTables(t)
	assert.InDelta(t, 11400, tables.RequirementBetween(soil.Medium, 4.1, 6.5), 1e-9)
	assert.Zero(t, tables.RequirementBetween(soil.Medium, 6.0, 5.0))
}

func TestNewTablesValidation(t *testing.T) {
	good := map[soil.SoilType]SoilParams{
		soil.Light:  {AcidificationRate: 0.3, MaxSingleDose: 1, Points: []Point{{4, 10}, {6, 0}}},
		soil.Medium: {AcidificationRate: 0.2, MaxSingleDose: 1, Points: []Point{{4, 10}, {6, 0}}},
		soil.Heavy:  {AcidificationRate: 0.1, MaxSingleDose: 1, Points: []Point{{4, 10}, {6, 0}}},
	}
	_, err := NewTables("v", good, 1000)
	require.NoError(t, err)

	bad := func(mutate func(m map[soil.SoilType]SoilParams)) error {
		m := map[soil.SoilType]SoilParams{}
		for k, v := range good {
			m[k] = v
		}
		mutate(m)
		_, err := NewTables("v", m, 1000)
		return err
	}
	assert.Error(t, bad(func(m map[soil.SoilType]SoilParams) { delete(m, soil.Heavy) }))
	assert.Error(t, bad(func(m map[soil.SoilType]SoilParams) {
		p := m[soil.Heavy]
		p.AcidificationRate = 0.25
		m[soil.Heavy] = p
	}))
	assert.Error(t, bad(func(m map[soil.SoilType]SoilParams) {
		p := m[soil.Medium]
		p.Points = []Point{{4, 10}, {6, 5}}
		m[soil.Medium] = p
	}))
	assert.Error(t, bad(func(m map[soil.SoilType]SoilParams) {
		p := m[soil.Medium]
		p.Points = []Point{{4, 10}, {5, 12}, {6, 0}}
		m[soil.Medium] = p
	}))
	_, err = NewTables("v", good, 0)
	assert.Error(t, err)
}
