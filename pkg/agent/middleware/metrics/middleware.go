package metrics

import (
	"context"
	"time"

	"codeassist/pkg/agent/llm"
	"codeassist/pkg/agent/llmerrors"
	"codeassist/pkg/config"
	"codeassist/pkg/logx"
	"codeassist/pkg/utils"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// UsageExtractor is a function that extracts token usage from a request and response.
type UsageExtractor func(req llm.CompletionRequest, resp llm.CompletionResponse) (promptTokens, completionTokens int)

// DefaultUsageExtractor provides a default implementation using TikToken for token counting.
func DefaultUsageExtractor(req llm.CompletionRequest, resp llm.CompletionResponse) (promptTokens, completionTokens int) {
	var promptText string
	for i := range req.Messages {
		promptText += req.Messages[i].Content + "\n"
	}
	promptTokens = utils.EstimateTokens(promptText)
	completionTokens = utils.EstimateTokens(resp.Content)

	return promptTokens, completionTokens
}

// EstimateCost converts token counts to an approximate USD cost using the
// model catalog's per-million-token rates. Unknown models cost zero.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	info, known := config.GetModelInfo(model)
	if !known {
		return 0
	}
	return float64(promptTokens)*info.InputCPM/1e6 + float64(completionTokens)*info.OutputCPM/1e6
}

// Middleware returns a middleware function that records metrics for LLM operations.
// It tracks request latency, token usage, success/failure rates, and error types.
func Middleware(recorder Recorder, usageExtractor UsageExtractor, logger *logx.Logger) llm.Middleware {
	if usageExtractor == nil {
		usageExtractor = DefaultUsageExtractor
	}

	return func(next llm.LLMClient) llm.LLMClient {
		return llm.WrapClient(
			func(ctx context.Context, req llm.CompletionRequest) (llm.CompletionResponse, error) {
				start := time.Now()

				model := next.GetModelName()
				provider, provErr := config.GetModelProvider(model)
				if provErr != nil {
					provider = "unknown"
				}

				resp, err := next.Complete(ctx, req)
				duration := time.Since(start)

				var promptTokens, completionTokens int
				if err == nil {
					promptTokens, completionTokens = usageExtractor(req, resp)
				}

				errorType := ""
				if err != nil {
					errorType = llmerrors.TypeOf(err).String()
				}

				recorder.ObserveRequest(
					model,
					provider,
					promptTokens,
					completionTokens,
					EstimateCost(model, promptTokens, completionTokens),
					err == nil,
					errorType,
					duration,
				)

				if logger != nil {
					status := statusSuccess
					if err != nil {
						status = statusError
					}
					totalTokens := promptTokens + completionTokens
					logger.Info("LLM request: model=%s provider=%s tokens=%d+%d=%d status=%s duration=%dms",
						model, provider, promptTokens, completionTokens, totalTokens, status, duration.Milliseconds())
				}

				return resp, err //nolint:wrapcheck // Middleware should pass through errors unchanged
			},
			func() string {
				return next.GetModelName()
			},
		)
	}
}
