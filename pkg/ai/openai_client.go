package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"limeplan/entities"
)

type openAI struct {
	endpoint string
	key      string
	model    string
	httpc    *http.Client
	log      *zap.Logger
}

// NewOpenAI talks to any OpenAI compatible chat completions endpoint.
func NewOpenAI(endpoint, key, model string, log *zap.Logger) Client {
	return &openAI{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		model:    model,
		httpc:    &http.Client{Timeout: 25 * time.Second},
		log:      log.Named("ai"),
	}
}

type chatReq struct {
	Model       string              `json:"model"`
	Messages    []map[string]string `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *openAI) SummarizePlan(ctx context.Context, parcel *entities.Parcel, p *entities.Plan) string {
	content, err := c.complete(ctx, renderSummaryPrompt(parcel, p))
	if err != nil {
		c.log.Warn("summary fell back to template", zap.Uint("plan_id", p.PlanID), zap.Error(err))
		return fallbackSummary(parcel, p)
	}
	return content
}

func (c *openAI) complete(ctx context.Context, prompt string) (string, error) {
	b, err := json.Marshal(chatReq{
		Model: c.model,
		Messages: []map[string]string{
			{"role": "system", "content": "You are an agronomist who writes concise, actionable summaries in Markdown."},
			{"role": "user", "content": prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("chat completions: status %d", resp.StatusCode)
	}

	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat completions: no choices")
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("chat completions: empty content")
	}
	return content, nil
}
