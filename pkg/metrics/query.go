// Package metrics provides services for querying and aggregating usage data.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// ModelUsage represents aggregated token and cost figures for one model.
type ModelUsage struct {
	Model            string  `json:"model"`
	Requests         int64   `json:"requests"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost_usd"`
}

// QueryService provides methods to query usage metrics from Prometheus.
type QueryService struct {
	client   api.Client
	queryAPI v1.API
}

// NewQueryService creates a new metrics query service.
func NewQueryService(prometheusURL string) (*QueryService, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &QueryService{
		client:   client,
		queryAPI: v1.NewAPI(client),
	}, nil
}

// GetUsageByModel retrieves token and cost totals broken down by model.
// Models that served no requests since the counters started do not appear.
func (q *QueryService) GetUsageByModel(ctx context.Context) (map[string]*ModelUsage, error) {
	result := make(map[string]*ModelUsage)

	modelsQuery := `group by (model) (llm_requests_total)`
	modelsResult, _, err := q.queryAPI.Query(ctx, modelsQuery, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}

	var models []string
	if vector, ok := modelsResult.(model.Vector); ok {
		for _, sample := range vector {
			if modelName, ok := sample.Metric["model"]; ok {
				models = append(models, string(modelName))
			}
		}
	}

	for _, modelName := range models {
		usage := &ModelUsage{
			Model: modelName,
		}

		requestsQuery := fmt.Sprintf(`sum(llm_requests_total{model=%q})`, modelName)
		requestsResult, _, err := q.queryAPI.Query(ctx, requestsQuery, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to query requests for model %s: %w", modelName, err)
		}
		if vector, ok := requestsResult.(model.Vector); ok && len(vector) > 0 {
			usage.Requests = int64(vector[0].Value)
		}

		promptQuery := fmt.Sprintf(`sum(llm_tokens_total{model=%q, type="prompt"})`, modelName)
		promptResult, _, err := q.queryAPI.Query(ctx, promptQuery, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to query prompt tokens for model %s: %w", modelName, err)
		}
		if vector, ok := promptResult.(model.Vector); ok && len(vector) > 0 {
			usage.PromptTokens = int64(vector[0].Value)
		}

		completionQuery := fmt.Sprintf(`sum(llm_tokens_total{model=%q, type="completion"})`, modelName)
		completionResult, _, err := q.queryAPI.Query(ctx, completionQuery, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to query completion tokens for model %s: %w", modelName, err)
		}
		if vector, ok := completionResult.(model.Vector); ok && len(vector) > 0 {
			usage.CompletionTokens = int64(vector[0].Value)
		}

		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

		costQuery := fmt.Sprintf(`sum(llm_costs_total{model=%q})`, modelName)
		costResult, _, err := q.queryAPI.Query(ctx, costQuery, time.Now())
		if err != nil {
			return nil, fmt.Errorf("failed to query cost for model %s: %w", modelName, err)
		}
		if vector, ok := costResult.(model.Vector); ok && len(vector) > 0 {
			usage.TotalCost = float64(vector[0].Value)
		}

		result[modelName] = usage
	}

	return result, nil
}
