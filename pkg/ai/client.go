package ai

import (
	"context"

	"limeplan/entities"
)

// Client writes the Markdown summary stored on a plan. Implementations never
// fail: when the model is unreachable they return the deterministic summary.
type Client interface {
	SummarizePlan(ctx context.Context, parcel *entities.Parcel, p *entities.Plan) string
}
