package repository

import "limeplan/entities"

type ProductRepository interface {
	Create(p *entities.Product) error
	Save(p *entities.Product) error
	List(includeDiscontinued bool) ([]entities.Product, error)
	FindByIDs(ids []uint) ([]entities.Product, error)
	FindByName(name string) (*entities.Product, error)
	Count() (int64, error)
}
