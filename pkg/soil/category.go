package soil

// Nutrient identifies one of the measured soil nutrients.
type Nutrient string

const (
	Phosphorus Nutrient = "phosphorus"
	Potassium  Nutrient = "potassium"
	Magnesium  Nutrient = "magnesium"
	Calcium    Nutrient = "calcium"
	Sulfur     Nutrient = "sulfur"
)

var Nutrients = []Nutrient{Phosphorus, Potassium, Magnesium, Calcium, Sulfur}

// NutrientClass is the sufficiency class A (low) through E (very high).
// The zero value means the nutrient was not measured.
type NutrientClass int

const (
	ClassUnknown NutrientClass = iota
	ClassA
	ClassB
	ClassC
	ClassD
	ClassE
)

func (c NutrientClass) String() string {
	if c < ClassA || c > ClassE {
		return "-"
	}
	return string(rune('A' + int(c) - 1))
}

func (c NutrientClass) Description() string {
	switch c {
	case ClassA:
		return "low"
	case ClassB:
		return "below optimum"
	case ClassC:
		return "medium"
	case ClassD:
		return "high"
	case ClassE:
		return "very high"
	}
	return "not measured"
}

// PHBand is the soil reaction band of a pH value.
type PHBand int

const (
	VeryAcidic PHBand = iota + 1
	Acidic
	SlightlyAcidic
	Neutral
	Alkaline
)

func (b PHBand) String() string {
	switch b {
	case VeryAcidic:
		return "very acidic"
	case Acidic:
		return "acidic"
	case SlightlyAcidic:
		return "slightly acidic"
	case Neutral:
		return "neutral"
	case Alkaline:
		return "alkaline"
	}
	return "unknown"
}

// LimingNeed grades how urgently a soil of a given type needs lime at a pH.
type LimingNeed int

const (
	LimingNecessary LimingNeed = iota + 1
	LimingNeeded
	LimingAdvisable
	LimingLimited
	LimingUnnecessary
)

func (n LimingNeed) String() string {
	switch n {
	case LimingNecessary:
		return "necessary"
	case LimingNeeded:
		return "needed"
	case LimingAdvisable:
		return "advisable"
	case LimingLimited:
		return "limited"
	case LimingUnnecessary:
		return "unnecessary"
	}
	return "unknown"
}
