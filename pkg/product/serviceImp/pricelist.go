package serviceImp

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"limeplan/entities"
	"limeplan/pkg/product"
)

var priceListColumns = map[string][]string{
	"name":  {"name", "product", "nazwa", "produkt"},
	"cao":   {"cao", "cao %", "cao%", "neutralizing", "neutralizing_pct"},
	"mgo":   {"mgo", "mgo %", "mgo%", "secondary", "secondary_pct"},
	"price": {"price", "price per tonne", "price/t", "cena", "cena/t"},
	"form":  {"form", "type", "postac"},
}

type priceRow struct {
	name    string
	product entities.Product
	err     error
}

// parsePriceList reads the first table of an HTML page that has name and
// CaO columns. Rows that fail to parse are returned with err set.
func parsePriceList(r io.Reader) ([]priceRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: price list: %v", product.ErrInvalid, err)
	}
	var rows []priceRow
	found := false
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		trs := table.Find("tr")
		if trs.Length() == 0 {
			return true
		}
		cols := headerColumns(trs.First())
		if _, ok := cols["name"]; !ok {
			return true
		}
		if _, ok := cols["cao"]; !ok {
			return true
		}
		found = true
		trs.Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			tr.Find("td").Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(td.Text()))
			})
			if len(cells) == 0 {
				return
			}
			rows = append(rows, parseRow(cols, cells))
		})
		return false
	})
	if !found {
		return nil, fmt.Errorf("%w: price list has no table with name and CaO columns", product.ErrInvalid)
	}
	return rows, nil
}

func headerColumns(tr *goquery.Selection) map[string]int {
	cols := map[string]int{}
	tr.Find("th,td").Each(func(i int, cell *goquery.Selection) {
		h := strings.ToLower(strings.Join(strings.Fields(cell.Text()), " "))
		for key, aliases := range priceListColumns {
			for _, a := range aliases {
				if h == a {
					if _, dup := cols[key]; !dup {
						cols[key] = i
					}
				}
			}
		}
	})
	return cols
}

func cell(cells []string, cols map[string]int, key string) string {
	i, ok := cols[key]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// number accepts "52,5 %" as well as "52.5".
func number(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseRow(cols map[string]int, cells []string) priceRow {
	row := priceRow{name: cell(cells, cols, "name")}
	p := entities.Product{Name: row.name, Form: strings.ToLower(cell(cells, cols, "form"))}
	var err error
	if p.NeutralizingPct, err = number(cell(cells, cols, "cao")); err != nil {
		row.err = fmt.Errorf("CaO: %w", err)
		return row
	}
	if p.SecondaryPct, err = number(cell(cells, cols, "mgo")); err != nil {
		row.err = fmt.Errorf("MgO: %w", err)
		return row
	}
	if raw := cell(cells, cols, "price"); raw != "" {
		raw = strings.ReplaceAll(strings.Join(strings.Fields(raw), ""), ",", ".")
		if p.PricePerTonne, err = decimal.NewFromString(raw); err != nil {
			row.err = fmt.Errorf("price: %w", err)
			return row
		}
	}
	row.product = p
	return row
}
