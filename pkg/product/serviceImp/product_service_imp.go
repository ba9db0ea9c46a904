package serviceImp

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"limeplan/entities"
	"limeplan/pkg/liming"
	"limeplan/pkg/product"
	repo "limeplan/pkg/product/repository"
	"limeplan/pkg/product/service"
)

type productSvc struct {
	r   repo.ProductRepository
	log *zap.Logger
}

func NewProductService(r repo.ProductRepository, log *zap.Logger) service.ProductService {
	return &productSvc{r: r, log: log.Named("product")}
}

// ToLiming converts a catalog row for the generator.
func ToLiming(p entities.Product) liming.Product {
	return liming.Product{
		ID:              p.ProductID,
		Name:            p.Name,
		NeutralizingPct: p.NeutralizingPct,
		SecondaryPct:    p.SecondaryPct,
		Form:            liming.ProductForm(p.Form),
		PricePerTonne:   p.PricePerTonne,
		MaxDosePerArea:  p.MaxDosePerArea,
	}
}

func validate(p *entities.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", product.ErrInvalid)
	}
	if !(p.NeutralizingPct > 0 && p.NeutralizingPct <= 100) {
		return fmt.Errorf("%w: %s: neutralizing content %.1f%% out of range", product.ErrInvalid, p.Name, p.NeutralizingPct)
	}
	if p.SecondaryPct < 0 || p.SecondaryPct > 100 {
		return fmt.Errorf("%w: %s: secondary content %.1f%% out of range", product.ErrInvalid, p.Name, p.SecondaryPct)
	}
	if p.PricePerTonne.IsNegative() {
		return fmt.Errorf("%w: %s: negative price", product.ErrInvalid, p.Name)
	}
	if p.MaxDosePerArea < 0 {
		return fmt.Errorf("%w: %s: negative max dose", product.ErrInvalid, p.Name)
	}
	switch liming.ProductForm(p.Form) {
	case liming.FormOxide, liming.FormCarbonate, liming.FormMixed:
	case "":
		p.Form = string(liming.FormCarbonate)
	default:
		return fmt.Errorf("%w: %s: unknown form %q", product.ErrInvalid, p.Name, p.Form)
	}
	return nil
}

func (s *productSvc) List(includeDiscontinued bool) ([]entities.Product, error) {
	return s.r.List(includeDiscontinued)
}

func (s *productSvc) Create(p *entities.Product) (*entities.Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if p.Source == "" {
		p.Source = "manual"
	}
	p.ProductID = 0
	if err := s.r.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// upsert stores p under its name. Applications keep their own copy of the
// content percentages, so updating a referenced product is safe.
func (s *productSvc) upsert(p *entities.Product) (created bool, err error) {
	cur, err := s.r.FindByName(p.Name)
	if errors.Is(err, product.ErrNotFound) {
		return true, s.r.Create(p)
	}
	if err != nil {
		return false, err
	}
	cur.NeutralizingPct = p.NeutralizingPct
	cur.SecondaryPct = p.SecondaryPct
	cur.PricePerTonne = p.PricePerTonne
	cur.Form = p.Form
	cur.Discontinued = false
	cur.Source = p.Source
	return false, s.r.Save(cur)
}

func (s *productSvc) Import(r io.Reader) (service.ImportResult, error) {
	rows, err := parsePriceList(r)
	if err != nil {
		return service.ImportResult{}, err
	}
	var res service.ImportResult
	for _, row := range rows {
		p := row.product
		if row.err != nil {
			res.Skipped = append(res.Skipped, row.name)
			s.log.Warn("price list row skipped", zap.String("name", row.name), zap.Error(row.err))
			continue
		}
		p.Source = "import"
		if err := validate(&p); err != nil {
			res.Skipped = append(res.Skipped, row.name)
			s.log.Warn("price list row skipped", zap.String("name", row.name), zap.Error(err))
			continue
		}
		created, err := s.upsert(&p)
		if err != nil {
			return res, err
		}
		if created {
			res.Created = append(res.Created, p.Name)
		} else {
			res.Updated = append(res.Updated, p.Name)
		}
	}
	s.log.Info("price list imported",
		zap.Int("created", len(res.Created)), zap.Int("updated", len(res.Updated)), zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

// Seed fills an empty catalog. It is a no-op once any product exists.
func (s *productSvc) Seed(products []liming.Product) (int, error) {
	n, err := s.r.Count()
	if err != nil || n > 0 {
		return 0, err
	}
	for _, lp := range products {
		p := &entities.Product{
			Name:            lp.Name,
			NeutralizingPct: lp.NeutralizingPct,
			SecondaryPct:    lp.SecondaryPct,
			Form:            string(lp.Form),
			PricePerTonne:   lp.PricePerTonne,
			MaxDosePerArea:  lp.MaxDosePerArea,
			Source:          "seed",
		}
		if err := validate(p); err != nil {
			return 0, err
		}
		if err := s.r.Create(p); err != nil {
			return 0, err
		}
	}
	s.log.Info("product catalog seeded", zap.Int("count", len(products)))
	return len(products), nil
}

func (s *productSvc) Active() ([]liming.Product, error) {
	rows, err := s.r.List(false)
	if err != nil {
		return nil, err
	}
	out := make([]liming.Product, 0, len(rows))
	for _, p := range rows {
		out = append(out, ToLiming(p))
	}
	return out, nil
}

func (s *productSvc) Resolve(ids []uint) (map[uint]liming.Product, error) {
	rows, err := s.r.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]liming.Product, len(rows))
	for _, p := range rows {
		out[p.ProductID] = ToLiming(p)
	}
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			return nil, fmt.Errorf("%w: %d", product.ErrNotFound, id)
		}
	}
	return out, nil
}
