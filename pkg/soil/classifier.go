package soil

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMeasurement is returned for negative, non-finite or out-of-domain readings.
var ErrInvalidMeasurement = errors.New("invalid measurement")

// classCount is the number of ordinal categories each table produces; a table
// therefore holds classCount-1 upper bounds.
const classCount = 5

// ClassTables holds the raw thresholds. Every slice lists inclusive upper bounds
// of the lower classes: a value equal to a bound belongs to the lower class.
type ClassTables struct {
	PHBands    []float64
	LimingNeed map[SoilType][]float64
	Nutrients  map[Nutrient]map[SoilType][]float64
}

// Classifier labels soil-test readings. It is immutable once built.
type Classifier struct {
	phBands    []float64
	limingNeed map[SoilType][]float64
	nutrients  map[Nutrient]map[SoilType][]float64
}

// Category is one classification outcome: its ordinal (1-based) and the bounds
// of the table it came from.
type Category struct {
	Ordinal int       `json:"ordinal"`
	Label   string    `json:"label"`
	Bounds  []float64 `json:"bounds"`
}

func NewClassifier(t ClassTables) (*Classifier, error) {
	if err := checkBounds("ph bands", t.PHBands); err != nil {
		return nil, err
	}
	c := &Classifier{
		phBands:    append([]float64(nil), t.PHBands...),
		limingNeed: map[SoilType][]float64{},
		nutrients:  map[Nutrient]map[SoilType][]float64{},
	}
	for _, st := range SoilTypes {
		b, ok := t.LimingNeed[st]
		if !ok {
			return nil, fmt.Errorf("liming need table missing soil type %s", st)
		}
		if err := checkBounds("liming need "+string(st), b); err != nil {
			return nil, err
		}
		c.limingNeed[st] = append([]float64(nil), b...)
	}
	for _, n := range Nutrients {
		bySoil, ok := t.Nutrients[n]
		if !ok {
			return nil, fmt.Errorf("nutrient table missing %s", n)
		}
		c.nutrients[n] = map[SoilType][]float64{}
		for _, st := range SoilTypes {
			b, ok := bySoil[st]
			if !ok {
				return nil, fmt.Errorf("nutrient table %s missing soil type %s", n, st)
			}
			if err := checkBounds(string(n)+" "+string(st), b); err != nil {
				return nil, err
			}
			c.nutrients[n][st] = append([]float64(nil), b...)
		}
	}
	return c, nil
}

func checkBounds(name string, b []float64) error {
	if len(b) != classCount-1 {
		return fmt.Errorf("%s: want %d bounds, got %d", name, classCount-1, len(b))
	}
	for i := 1; i < len(b); i++ {
		if !(b[i] > b[i-1]) {
			return fmt.Errorf("%s: bounds must be strictly increasing at index %d", name, i)
		}
	}
	return nil
}

// ordinal returns the 1-based class of v within bounds.
func ordinal(bounds []float64, v float64) int {
	for i, b := range bounds {
		if v <= b {
			return i + 1
		}
	}
	return len(bounds) + 1
}

func validPH(ph float64) error {
	if math.IsNaN(ph) || math.IsInf(ph, 0) || ph < 0 || ph > 14 {
		return fmt.Errorf("%w: pH %v outside 0-14", ErrInvalidMeasurement, ph)
	}
	return nil
}

func validConcentration(n Nutrient, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s concentration %v", ErrInvalidMeasurement, n, v)
	}
	return nil
}

// ClassifyPH returns the reaction band of a pH value.
func (c *Classifier) ClassifyPH(ph float64) (PHBand, Category, error) {
	if err := validPH(ph); err != nil {
		return 0, Category{}, err
	}
	o := ordinal(c.phBands, ph)
	b := PHBand(o)
	return b, Category{Ordinal: o, Label: b.String(), Bounds: append([]float64(nil), c.phBands...)}, nil
}

// LimingNeed grades the need for lime of a soil type at pH.
func (c *Classifier) LimingNeed(st SoilType, ph float64) (LimingNeed, Category, error) {
	if err := validPH(ph); err != nil {
		return 0, Category{}, err
	}
	bounds, ok := c.limingNeed[st]
	if !ok {
		return 0, Category{}, fmt.Errorf("unknown soil type %q", st)
	}
	o := ordinal(bounds, ph)
	n := LimingNeed(o)
	return n, Category{Ordinal: o, Label: n.String(), Bounds: append([]float64(nil), bounds...)}, nil
}

// ClassifyNutrient returns the sufficiency class of a concentration (mg/100 g).
func (c *Classifier) ClassifyNutrient(n Nutrient, st SoilType, v float64) (NutrientClass, Category, error) {
	bySoil, ok := c.nutrients[n]
	if !ok {
		return ClassUnknown, Category{}, fmt.Errorf("unknown nutrient %q", n)
	}
	bounds, ok := bySoil[st]
	if !ok {
		return ClassUnknown, Category{}, fmt.Errorf("unknown soil type %q", st)
	}
	if err := validConcentration(n, v); err != nil {
		return ClassUnknown, Category{}, err
	}
	o := ordinal(bounds, v)
	cl := NutrientClass(o)
	return cl, Category{Ordinal: o, Label: cl.String(), Bounds: append([]float64(nil), bounds...)}, nil
}
