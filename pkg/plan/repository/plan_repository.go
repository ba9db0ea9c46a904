package repository

import (
	"context"

	"limeplan/entities"
)

type PlanRepository interface {
	// CreateDraft removes the parcel's existing draft plans and stores p with
	// its applications, in one transaction. It returns the discarded plan ids.
	CreateDraft(ctx context.Context, p *entities.Plan, entry *entities.PlanLog) ([]uint, error)
	FindByID(ctx context.Context, id uint, uid string) (*entities.Plan, error)
	ListByParcel(ctx context.Context, parcelID uint, uid string) ([]entities.Plan, error)
	// SaveTrajectory writes p and its full application set if the stored plan
	// is still at expectedVersion, and bumps the version.
	SaveTrajectory(ctx context.Context, p *entities.Plan, expectedVersion int, entry *entities.PlanLog) error
	Logs(ctx context.Context, planID uint) ([]entities.PlanLog, error)
}
