package reftables

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"limeplan/data"
	"limeplan/pkg/liming"
)

// CatalogEntry is one product of a YAML catalog.
type CatalogEntry struct {
	Name            string  `yaml:"name"`
	NeutralizingPct float64 `yaml:"neutralizing_pct"`
	SecondaryPct    float64 `yaml:"secondary_pct"`
	Form            string  `yaml:"form"`
	PricePerTonne   string  `yaml:"price_per_tonne"`
}

// Product converts the entry for the generator. id is assigned by the caller.
func (e CatalogEntry) Product(id uint) (liming.Product, error) {
	price := decimal.Zero
	if e.PricePerTonne != "" {
		p, err := decimal.NewFromString(e.PricePerTonne)
		if err != nil {
			return liming.Product{}, fmt.Errorf("product %q price: %w", e.Name, err)
		}
		price = p
	}
	form := liming.ProductForm(e.Form)
	switch form {
	case liming.FormOxide, liming.FormCarbonate, liming.FormMixed:
	case "":
		form = liming.FormCarbonate
	default:
		return liming.Product{}, fmt.Errorf("product %q: unknown form %q", e.Name, e.Form)
	}
	return liming.Product{
		ID:              id,
		Name:            e.Name,
		NeutralizingPct: e.NeutralizingPct,
		SecondaryPct:    e.SecondaryPct,
		Form:            form,
		PricePerTonne:   price,
	}, nil
}

// ParseCatalog reads a products YAML document.
func ParseCatalog(b []byte) ([]CatalogEntry, error) {
	var doc struct {
		Products []CatalogEntry `yaml:"products"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return doc.Products, nil
}

// SampleProducts is the embedded sample catalog, numbered from 1.
func SampleProducts() ([]liming.Product, error) {
	return catalogProducts(data.SampleCatalog)
}

// LoadCatalog reads a products YAML file in the embedded catalog's format.
func LoadCatalog(path string) ([]liming.Product, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return catalogProducts(b)
}

func catalogProducts(b []byte) ([]liming.Product, error) {
	entries, err := ParseCatalog(b)
	if err != nil {
		return nil, err
	}
	out := make([]liming.Product, 0, len(entries))
	for i, e := range entries {
		p, err := e.Product(uint(i + 1))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
