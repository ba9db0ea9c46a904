package soil

import (
	"fmt"
	"strings"
)

// SoilType is the agronomic soil heaviness group of a parcel. It drives every
// threshold lookup in the classification and liming tables.
type SoilType string

const (
	Light  SoilType = "light"
	Medium SoilType = "medium"
	Heavy  SoilType = "heavy"
)

// SoilTypes lists the closed set in order of increasing heaviness.
var SoilTypes = []SoilType{Light, Medium, Heavy}

// legacy spellings seen in imported spreadsheets and older records
var soilAliases = map[string]SoilType{
	"light": Light, "l": Light, "lekka": Light, "bardzo lekka": Light, "light soil": Light, "sand": Light,
	"medium": Medium, "m": Medium, "srednia": Medium, "średnia": Medium, "medium soil": Medium, "loam": Medium,
	"heavy": Heavy, "h": Heavy, "ciezka": Heavy, "ciężka": Heavy, "heavy soil": Heavy, "clay": Heavy,
}

// ParseSoilType maps any known spelling to the canonical soil type.
func ParseSoilType(s string) (SoilType, error) {
	k := strings.ToLower(strings.Join(strings.Fields(s), " "))
	if st, ok := soilAliases[k]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown soil type %q", s)
}

func (s SoilType) Valid() bool {
	return s == Light || s == Medium || s == Heavy
}

// Code is the single-letter code used by the legacy export format.
func (s SoilType) Code() string {
	switch s {
	case Light:
		return "L"
	case Medium:
		return "M"
	case Heavy:
		return "H"
	}
	return ""
}

// Rank orders soil types by heaviness, 1 for Light.
func (s SoilType) Rank() int {
	for i, st := range SoilTypes {
		if st == s {
			return i + 1
		}
	}
	return 0
}

func (s SoilType) String() string { return string(s) }
