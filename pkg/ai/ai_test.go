package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"limeplan/entities"
)

func testPlan() (*entities.Parcel, *entities.Plan) {
	parcel := &entities.Parcel{ParcelID: 7, Name: "North"}
	p := &entities.Plan{
		PlanID: 3, SoilType: "medium", AreaHa: 2, AnchorPH: 4.1, TargetPH: 6.5,
		TotalNeutralizing: 11400, FinalPH: 6.5, TotalCost: decimal.RequireFromString("1234.5"),
		Warnings: []string{"check it"},
		Applications: []entities.Application{
			{Seq: 1, Year: 2026, Season: "spring"},
			{Seq: 2, Year: 2027, Season: "autumn"},
		},
	}
	return parcel, p
}

func TestMockSummaryIsDeterministic(t *testing.T) {
	parcel, p := testPlan()
	got := NewMock().SummarizePlan(context.Background(), parcel, p)

	assert.Contains(t, got, "North (#7)")
	assert.Contains(t, got, "2 applications, spring 2026 to autumn 2027")
	assert.Contains(t, got, "1234.50")
	assert.Contains(t, got, "Note: check it")
	assert.Equal(t, got, NewMock().SummarizePlan(context.Background(), parcel, p))
}

func TestMockSummaryWithoutApplications(t *testing.T) {
	_, p := testPlan()
	p.Applications = nil
	assert.Contains(t, NewMock().SummarizePlan(context.Background(), nil, p), "No liming is scheduled.")
}

func TestOpenAIUsesModelContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		var req chatReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "m", req.Model)
		assert.Contains(t, req.Messages[1]["content"], "MEASURED pH: 4.10")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  - spread lime  "}}]}`))
	}))
	defer srv.Close()

	parcel, p := testPlan()
	got := NewOpenAI(srv.URL+"/", "k", "m", zap.NewNop()).SummarizePlan(context.Background(), parcel, p)
	assert.Equal(t, "- spread lime", got)
}

func TestOpenAIFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	parcel, p := testPlan()
	got := NewOpenAI(srv.URL, "k", "m", zap.NewNop()).SummarizePlan(context.Background(), parcel, p)
	assert.Equal(t, fallbackSummary(parcel, p), got)
}
