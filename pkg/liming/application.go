package liming

import (
	"fmt"
	"strings"
)

// Season is the part of the year an application is spread in. Its numeric
// value is the sequencing rank.
type Season int

const (
	Spring Season = iota + 1
	Summer
	Autumn
)

func (s Season) String() string {
	switch s {
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	}
	return fmt.Sprintf("season(%d)", int(s))
}

func (s Season) Valid() bool { return s >= Spring && s <= Autumn }

func ParseSeason(v string) (Season, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "spring", "wiosna":
		return Spring, nil
	case "summer", "lato":
		return Summer, nil
	case "autumn", "fall", "jesien", "jesień":
		return Autumn, nil
	}
	return 0, fmt.Errorf("unknown season %q", v)
}

// Status is the lifecycle of one application.
type Status string

const (
	StatusPlanned Status = "planned"
	StatusOrdered Status = "ordered"
	StatusApplied Status = "applied"
)

func (s Status) Valid() bool {
	return s == StatusPlanned || s == StatusOrdered || s == StatusApplied
}

// Application is one liming event of a plan. pH fields, per-area doses and the
// magnesium carryover are outputs of Recalculate; Advice is set by Annotate.
type Application struct {
	ID       uint
	Seq      int
	Year     int
	Season   Season
	Status   Status
	Products []ProductDose

	PhBefore            float64
	PhAfter             float64
	NeutralizingPerArea float64 // kg CaO/ha
	SecondaryPerArea    float64 // kg MgO/ha
	SecondaryCarryover  float64 // kg MgO/ha spread so far in the plan, this event included
	Advice              []Advice
}

// Before reports whether a happens strictly earlier than b.
func (a Application) Before(b Application) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.Season < b.Season
}

// SameSlot reports whether a and b share a (year, season) position.
func (a Application) SameSlot(b Application) bool {
	return a.Year == b.Year && a.Season == b.Season
}

func (a Application) clone() Application {
	a.Products = append([]ProductDose(nil), a.Products...)
	a.Advice = append([]Advice(nil), a.Advice...)
	return a
}

func cloneAll(apps []Application) []Application {
	out := make([]Application, len(apps))
	for i, a := range apps {
		out[i] = a.clone()
	}
	return out
}
