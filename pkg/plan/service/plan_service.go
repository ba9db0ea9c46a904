package service

import (
	"context"

	"limeplan/entities"
	"limeplan/pkg/plan/types"
)

// PlanService owns every change to a plan. Mutations take the version the
// caller last read and fail with plan.ErrVersionConflict when it is stale.
type PlanService interface {
	GeneratePlan(ctx context.Context, uid string, parcelID uint, opts types.GenerateOptions) (*entities.Plan, error)
	InsertApplication(ctx context.Context, uid string, planID uint, version int, in types.ApplicationInput) (*entities.Plan, error)
	UpdateApplication(ctx context.Context, uid string, planID, applicationID uint, version int, patch types.ApplicationPatch) (*entities.Plan, error)
	DeleteApplication(ctx context.Context, uid string, planID, applicationID uint, version int) (*entities.Plan, error)
	SetApplicationStatus(ctx context.Context, uid string, planID, applicationID uint, version int, status string) (*entities.Plan, error)
	Approve(ctx context.Context, uid string, planID uint, version int) (*entities.Plan, error)

	Get(ctx context.Context, uid string, planID uint) (*entities.Plan, error)
	ListByParcel(ctx context.Context, uid string, parcelID uint) ([]entities.Plan, error)
	Logs(ctx context.Context, uid string, planID uint) ([]entities.PlanLog, error)
}
