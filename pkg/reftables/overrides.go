package reftables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"limeplan/pkg/liming"
	"limeplan/pkg/soil"
)

// normHeader folds spreadsheet headers so "Soil Type", "soil_type" and a
// BOM-prefixed "soiltype" all match.
func normHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

type limeColumns struct {
	soil, ph, req int
}

func findColumns(head []string) (limeColumns, error) {
	hmap := map[string]int{}
	for i, h := range head {
		hmap[normHeader(h)] = i
	}
	findAny := func(keys ...string) int {
		for _, k := range keys {
			if idx, ok := hmap[normHeader(k)]; ok {
				return idx
			}
		}
		return -1
	}
	c := limeColumns{
		soil: findAny("soil_type", "soil", "gleba", "kategoria", "category"),
		ph:   findAny("ph", "ph_kcl", "phkcl"),
		req:  findAny("requirement", "cao", "cao_kg_ha", "dose", "zapotrzebowanie"),
	}
	if c.soil == -1 || c.ph == -1 || c.req == -1 {
		return c, fmt.Errorf("missing required columns, found headers %v; need soil_type, ph, requirement", head)
	}
	return c, nil
}

// collectRows turns raw rows into per-soil points sorted by pH. Blank rows are
// skipped; anything else that does not parse is an error.
func collectRows(c limeColumns, rows [][]string) (map[soil.SoilType][]liming.Point, error) {
	out := map[soil.SoilType][]liming.Point{}
	for n, rec := range rows {
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}
		if get(c.soil) == "" && get(c.ph) == "" {
			continue
		}
		st, err := soil.ParseSoilType(get(c.soil))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		ph, err := strconv.ParseFloat(strings.ReplaceAll(get(c.ph), ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: ph: %w", n+2, err)
		}
		req, err := strconv.ParseFloat(strings.ReplaceAll(get(c.req), ",", "."), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: requirement: %w", n+2, err)
		}
		out[st] = append(out[st], liming.Point{PH: ph, Requirement: req})
	}
	if len(out) == 0 {
		return nil, errors.New("no lime table rows")
	}
	for _, pts := range out {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].PH < pts[j].PH })
	}
	return out, nil
}

func loadLimeCSV(path string) (map[soil.SoilType][]liming.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimeCSV(f)
}

func readLimeCSV(r io.Reader) (map[soil.SoilType][]liming.Point, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	head, err := cr.Read()
	if err != nil {
		return nil, err
	}
	c, err := findColumns(head)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		rows = append(rows, rec)
	}
	return collectRows(c, rows)
}

func loadLimeXLSX(path string) (map[soil.SoilType][]liming.Point, error) {
	x, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer x.Close()

	sheets := x.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := x.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty sheet " + sheets[0])
	}
	c, err := findColumns(rows[0])
	if err != nil {
		return nil, err
	}
	return collectRows(c, rows[1:])
}
