package repositoryImp

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"limeplan/entities"
	"limeplan/pkg/plan"
	"limeplan/pkg/plan/repository"
)

type planRepo struct{ db *gorm.DB }

func New(db *gorm.DB) repository.PlanRepository { return &planRepo{db} }

var applicationColumns = []string{
	"seq", "year", "season", "status",
	"ph_before", "ph_after",
	"neutralizing_per_area", "secondary_per_area", "secondary_carryover",
	"mass_per_area", "total_mass", "cost",
	"recommendation", "advice_codes", "updated_at",
}

var planColumns = []string{
	"status", "version", "tables_version", "target_ph", "requirement",
	"total_neutralizing", "total_secondary", "total_mass", "total_cost", "final_ph",
	"warnings", "summary_md", "approved_at", "updated_at",
}

func deleteApplications(tx *gorm.DB, planIDs []uint) error {
	sub := tx.Model(&entities.Application{}).Select("application_id").Where("plan_id IN ?", planIDs)
	if err := tx.Where("application_id IN (?)", sub).Delete(&entities.ApplicationProduct{}).Error; err != nil {
		return err
	}
	return tx.Where("plan_id IN ?", planIDs).Delete(&entities.Application{}).Error
}

func (r *planRepo) CreateDraft(ctx context.Context, p *entities.Plan, entry *entities.PlanLog) ([]uint, error) {
	var discarded []uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Plan{}).
			Where("parcel_id = ? AND status = ?", p.ParcelID, entities.PlanDraft).
			Pluck("plan_id", &discarded).Error; err != nil {
			return err
		}
		if len(discarded) > 0 {
			if err := deleteApplications(tx, discarded); err != nil {
				return err
			}
			if err := tx.Where("plan_id IN ?", discarded).Delete(&entities.Plan{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		if entry != nil {
			entry.PlanID = p.PlanID
			return tx.Create(entry).Error
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create draft plan: %w", err)
	}
	return discarded, nil
}

func preloadApplications(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Applications", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC, application_id ASC") }).
		Preload("Applications.Products", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *planRepo) FindByID(ctx context.Context, id uint, uid string) (*entities.Plan, error) {
	var p entities.Plan
	err := preloadApplications(r.db.WithContext(ctx)).
		Where("plan_id = ? AND user_id = ?", id, uid).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", plan.ErrPlanNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepo) ListByParcel(ctx context.Context, parcelID uint, uid string) ([]entities.Plan, error) {
	var ps []entities.Plan
	err := preloadApplications(r.db.WithContext(ctx)).
		Where("parcel_id = ? AND user_id = ?", parcelID, uid).
		Order("created_at DESC, plan_id DESC").Find(&ps).Error
	if err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *planRepo) SaveTrajectory(ctx context.Context, p *entities.Plan, expectedVersion int, entry *entities.PlanLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur entities.Plan
		if err := tx.Select("plan_id", "version").Where("plan_id = ?", p.PlanID).First(&cur).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", plan.ErrPlanNotFound, p.PlanID)
			}
			return err
		}
		if cur.Version != expectedVersion {
			return fmt.Errorf("%w: plan %d is at version %d, not %d", plan.ErrVersionConflict, p.PlanID, cur.Version, expectedVersion)
		}

		p.Version = expectedVersion + 1
		res := tx.Model(&entities.Plan{}).
			Where("plan_id = ? AND version = ?", p.PlanID, expectedVersion).
			Select(planColumns).Omit("Applications").Updates(p)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			p.Version = expectedVersion
			return fmt.Errorf("%w: plan %d changed during save", plan.ErrVersionConflict, p.PlanID)
		}

		var existing []uint
		if err := tx.Model(&entities.Application{}).Where("plan_id = ?", p.PlanID).Pluck("application_id", &existing).Error; err != nil {
			return err
		}
		owned := map[uint]bool{}
		for _, id := range existing {
			owned[id] = true
		}
		keep := map[uint]bool{}
		for _, a := range p.Applications {
			if a.ApplicationID == 0 {
				continue
			}
			if !owned[a.ApplicationID] {
				return fmt.Errorf("application %d does not belong to plan %d", a.ApplicationID, p.PlanID)
			}
			keep[a.ApplicationID] = true
		}
		var removed []uint
		for _, id := range existing {
			if !keep[id] {
				removed = append(removed, id)
			}
		}
		if len(existing) > 0 {
			if err := tx.Where("application_id IN ?", existing).Delete(&entities.ApplicationProduct{}).Error; err != nil {
				return err
			}
		}
		if len(removed) > 0 {
			if err := tx.Where("application_id IN ?", removed).Delete(&entities.Application{}).Error; err != nil {
				return err
			}
		}

		for i := range p.Applications {
			a := &p.Applications[i]
			a.PlanID = p.PlanID
			for j := range a.Products {
				a.Products[j].ID = 0
				a.Products[j].ApplicationID = a.ApplicationID
			}
			if a.ApplicationID == 0 {
				if err := tx.Create(a).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&entities.Application{}).
				Where("application_id = ? AND plan_id = ?", a.ApplicationID, p.PlanID).
				Select(applicationColumns).Omit("Products").Updates(a).Error; err != nil {
				return err
			}
			if len(a.Products) > 0 {
				if err := tx.Create(&a.Products).Error; err != nil {
					return err
				}
			}
		}

		if entry != nil {
			entry.PlanID = p.PlanID
			entry.Version = p.Version
			return tx.Create(entry).Error
		}
		return nil
	})
}

func (r *planRepo) Logs(ctx context.Context, planID uint) ([]entities.PlanLog, error) {
	var out []entities.PlanLog
	if err := r.db.WithContext(ctx).Where("plan_id = ?", planID).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
