package repositoryImp

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"limeplan/entities"
	"limeplan/pkg/product"
	"limeplan/pkg/product/repository"
)

type productRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.ProductRepository { return &productRepo{db} }

func (r *productRepo) Create(p *entities.Product) error { return r.db.Create(p).Error }

func (r *productRepo) Save(p *entities.Product) error { return r.db.Save(p).Error }

// List orders by descending neutralizing content, the order the generator
// consumes products in.
func (r *productRepo) List(includeDiscontinued bool) ([]entities.Product, error) {
	q := r.db.Model(&entities.Product{})
	if !includeDiscontinued {
		q = q.Where("discontinued = ?", false)
	}
	var out []entities.Product
	if err := q.Order("neutralizing_pct DESC, product_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) FindByIDs(ids []uint) ([]entities.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []entities.Product
	if err := r.db.Where("product_id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) FindByName(name string) (*entities.Product, error) {
	var p entities.Product
	err := r.db.Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", product.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Count() (int64, error) {
	var n int64
	err := r.db.Model(&entities.Product{}).Count(&n).Error
	return n, err
}
