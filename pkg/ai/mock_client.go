package ai

import (
	"context"

	"limeplan/entities"
)

type mockClient struct{}

// NewMock returns a client that never leaves the process.
func NewMock() Client { return &mockClient{} }

func (m *mockClient) SummarizePlan(_ context.Context, parcel *entities.Parcel, p *entities.Plan) string {
	return fallbackSummary(parcel, p)
}
