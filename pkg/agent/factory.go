// Package agent provides the LLM client factory with middleware chain construction.
package agent

import (
	"fmt"
	"sync"

	"codeassist/pkg/agent/internal/llmimpl/anthropic"
	"codeassist/pkg/agent/internal/llmimpl/google"
	"codeassist/pkg/agent/internal/llmimpl/ollama"
	"codeassist/pkg/agent/internal/llmimpl/openaiofficial"
	"codeassist/pkg/agent/llm"
	"codeassist/pkg/agent/middleware/metrics"
	"codeassist/pkg/agent/middleware/resilience/retry"
	"codeassist/pkg/config"
	"codeassist/pkg/logx"
)

// ClientFactory creates LLM clients with properly configured middleware
// chains and caches them per model name. It satisfies assist.ClientProvider.
type ClientFactory struct {
	mu              sync.Mutex
	clients         map[string]llm.LLMClient
	retryPolicy     *retry.Policy
	metricsRecorder metrics.Recorder
	logger          *logx.Logger
}

// NewClientFactory creates a factory using the given retry configuration
// and metrics recorder. Passing a nil recorder disables metrics.
func NewClientFactory(retryCfg config.RetryConfig, recorder metrics.Recorder) *ClientFactory {
	if recorder == nil {
		recorder = metrics.Nop()
	}

	policy := retry.NewPolicy(retry.Config{
		MaxAttempts:   retryCfg.MaxAttempts,
		InitialDelay:  retryCfg.InitialDelay,
		MaxDelay:      retryCfg.MaxDelay,
		BackoffFactor: retryCfg.BackoffFactor,
		Jitter:        retryCfg.Jitter,
	}, nil) // default classifier

	return &ClientFactory{
		clients:         make(map[string]llm.LLMClient),
		retryPolicy:     policy,
		metricsRecorder: recorder,
		logger:          logx.NewLogger("factory"),
	}
}

// ClientFor returns a ready-to-use client for the model, building and
// caching it on first use. The API key is resolved from the secrets store
// or environment based on the model's provider.
func (f *ClientFactory) ClientFor(model string) (llm.LLMClient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.clients[model]; ok {
		return client, nil
	}

	client, err := f.buildClient(model)
	if err != nil {
		return nil, err
	}
	f.clients[model] = client
	return client, nil
}

// buildClient constructs the raw provider client and wraps it with the
// middleware chain: Metrics -> Retry -> RawClient.
func (f *ClientFactory) buildClient(model string) (llm.LLMClient, error) {
	provider, err := config.GetModelProvider(model)
	if err != nil {
		return nil, fmt.Errorf("failed to determine provider for model %s: %w", model, err)
	}

	apiKey, err := config.GetAPIKey(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to get API key for provider %s: %w", provider, err)
	}

	var rawClient llm.LLMClient
	switch provider {
	case config.ProviderAnthropic:
		rawClient = anthropic.NewClient(apiKey, model)
	case config.ProviderOpenAI:
		rawClient = openaiofficial.NewClient(apiKey, model)
	case config.ProviderGoogle:
		rawClient = google.NewClient(apiKey, model)
	case config.ProviderOllama:
		rawClient = ollama.NewClient(apiKey, model) // "key" is the host URL
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	f.logger.Debug("built client: model=%s provider=%s", model, provider)

	return llm.Chain(rawClient,
		metrics.Middleware(f.metricsRecorder, nil, f.logger),
		retry.Middleware(f.retryPolicy),
	), nil
}
