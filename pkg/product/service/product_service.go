package service

import (
	"io"

	"limeplan/entities"
	"limeplan/pkg/liming"
)

// ImportResult reports what a price-list import changed, by product name.
type ImportResult struct {
	Created []string `json:"created"`
	Updated []string `json:"updated"`
	Skipped []string `json:"skipped"`
}

type ProductService interface {
	List(includeDiscontinued bool) ([]entities.Product, error)
	Create(p *entities.Product) (*entities.Product, error)
	Import(r io.Reader) (ImportResult, error)
	Seed(products []liming.Product) (int, error)

	// Active returns the catalog the plan generator may choose from.
	Active() ([]liming.Product, error)
	// Resolve returns catalog entries by id, discontinued ones included, so
	// existing applications can still be edited.
	Resolve(ids []uint) (map[uint]liming.Product, error)
}
