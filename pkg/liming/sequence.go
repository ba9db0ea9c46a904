package liming

import (
	"fmt"
	"sort"
)

// Conflict describes sequence numbers that disagreed with the chronological
// order, found and repaired by Resequence.
type Conflict struct {
	Seq    int
	Year   int
	Season Season
	Count  int // applications that claimed Seq
}

func (c Conflict) Err() error {
	return fmt.Errorf("%w: sequence %d claimed by %d applications (%d %s)",
		ErrUnorderedApplicationConflict, c.Seq, c.Count, c.Year, c.Season)
}

// Resequence sorts apps by (year, season), keeping the input order of
// applications in the same slot, and renumbers them 1..N. Duplicate sequence
// numbers in the input are reported as conflicts; they are repaired, never
// fatal.
func Resequence(apps []Application) ([]Application, []Conflict) {
	out := cloneAll(apps)

	claims := map[int][]Application{}
	for _, a := range out {
		claims[a.Seq] = append(claims[a.Seq], a)
	}
	var conflicts []Conflict
	for seq, as := range claims {
		if len(as) > 1 {
			conflicts = append(conflicts, Conflict{Seq: seq, Year: as[0].Year, Season: as[0].Season, Count: len(as)})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Seq < conflicts[j].Seq })

	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	for i := range out {
		out[i].Seq = i + 1
	}
	return out, conflicts
}

// Insert places a into the dense, ordered apps directly after the last
// application strictly earlier than it. Later applications shift up by one.
// It returns the new list and the sequence number given to a.
func Insert(apps []Application, a Application) ([]Application, int) {
	prev := 0
	for _, x := range apps {
		if x.Before(a) && x.Seq > prev {
			prev = x.Seq
		}
	}
	seq := prev + 1
	out := make([]Application, 0, len(apps)+1)
	for _, x := range apps {
		x = x.clone()
		if x.Seq >= seq {
			x.Seq++
		}
		out = append(out, x)
	}
	a = a.clone()
	a.Seq = seq
	out = append(out, a)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, seq
}

// Delete removes the application with sequence number seq and closes the gap.
func Delete(apps []Application, seq int) ([]Application, error) {
	found := false
	out := make([]Application, 0, len(apps))
	for _, x := range apps {
		if x.Seq == seq && !found {
			found = true
			continue
		}
		x = x.clone()
		if x.Seq > seq {
			x.Seq--
		}
		out = append(out, x)
	}
	if !found {
		return nil, fmt.Errorf("%w: sequence %d", ErrApplicationNotFound, seq)
	}
	return out, nil
}

// Move re-slots the application with sequence number seq to (year, season)
// and returns the new list with the application's new sequence number.
func Move(apps []Application, seq, year int, season Season) ([]Application, int, error) {
	var moved *Application
	for i := range apps {
		if apps[i].Seq == seq {
			a := apps[i].clone()
			moved = &a
			break
		}
	}
	if moved == nil {
		return nil, 0, fmt.Errorf("%w: sequence %d", ErrApplicationNotFound, seq)
	}
	rest, err := Delete(apps, seq)
	if err != nil {
		return nil, 0, err
	}
	moved.Year, moved.Season = year, season
	out, newSeq := Insert(rest, *moved)
	return out, newSeq, nil
}
