package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeassist/pkg/agent/llm"
	"codeassist/pkg/agent/llmerrors"
)

// scriptedClient returns the queued errors in order, then succeeds.
type scriptedClient struct {
	errs  []error
	calls int
}

func (s *scriptedClient) Complete(_ context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return llm.CompletionResponse{}, err
		}
	}
	return llm.CompletionResponse{Content: "ok", StopReason: "end_turn"}, nil
}

func (s *scriptedClient) GetModelName() string { return "test-model" }

func fastConfig(maxAttempts int) Config {
	return Config{
		MaxAttempts:   maxAttempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        false,
	}
}

func TestMiddleware_SuccessFirstAttempt(t *testing.T) {
	base := &scriptedClient{}
	client := llm.Chain(base, Middleware(NewPolicy(fastConfig(3), nil)))

	resp, err := client.Complete(context.Background(), llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Expected content %q, got %q", "ok", resp.Content)
	}
	if base.calls != 1 {
		t.Errorf("Expected 1 call, got %d", base.calls)
	}
}

func TestMiddleware_RetryableThenSuccess(t *testing.T) {
	base := &scriptedClient{errs: []error{
		llmerrors.NewError(llmerrors.ErrorTypeTransient, "server hiccup"),
	}}
	client := llm.Chain(base, Middleware(NewPolicy(fastConfig(3), nil)))

	resp, err := client.Complete(context.Background(), llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Expected content %q, got %q", "ok", resp.Content)
	}
	if base.calls != 2 {
		t.Errorf("Expected 2 calls (1 retry), got %d", base.calls)
	}
}

func TestMiddleware_PermanentErrorNoRetry(t *testing.T) {
	authErr := llmerrors.NewError(llmerrors.ErrorTypeAuth, "bad key")
	base := &scriptedClient{errs: []error{authErr, authErr, authErr}}
	client := llm.Chain(base, Middleware(NewPolicy(fastConfig(3), nil)))

	_, err := client.Complete(context.Background(), llm.CompletionRequest{})
	if !llmerrors.Is(err, llmerrors.ErrorTypeAuth) {
		t.Errorf("Expected auth error passed through, got: %v", err)
	}
	if base.calls != 1 {
		t.Errorf("Expected 1 call (no retries), got %d", base.calls)
	}
}

func TestMiddleware_ExhaustedBecomesServiceUnavailable(t *testing.T) {
	transient := llmerrors.NewError(llmerrors.ErrorTypeTransient, "still down")
	base := &scriptedClient{errs: []error{transient, transient, transient}}
	client := llm.Chain(base, Middleware(NewPolicy(fastConfig(3), nil)))

	_, err := client.Complete(context.Background(), llm.CompletionRequest{})
	if !llmerrors.IsServiceUnavailable(err) {
		t.Errorf("Expected ServiceUnavailable after exhausted retries, got: %v", err)
	}
	if base.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", base.calls)
	}

	// The original transient error stays reachable for diagnosis.
	var llmErr *llmerrors.Error
	if !errors.As(err, &llmErr) || llmErr.Err == nil {
		t.Error("Expected wrapped cause in ServiceUnavailable error")
	}
}

func TestMiddleware_CancellationStopsRetries(t *testing.T) {
	transient := llmerrors.NewError(llmerrors.ErrorTypeTransient, "down")
	base := &scriptedClient{errs: []error{transient, transient, transient}}

	policy := NewPolicy(Config{
		MaxAttempts:   3,
		InitialDelay:  time.Hour, // would hang without cancellation
		MaxDelay:      time.Hour,
		BackoffFactor: 2.0,
		Jitter:        false,
	}, nil)
	client := llm.Chain(base, Middleware(policy))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.Complete(ctx, llm.CompletionRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in error chain, got: %v", err)
	}
	if base.calls != 1 {
		t.Errorf("Expected 1 call before cancellation, got %d", base.calls)
	}
}

func TestMiddleware_DelegatesModelName(t *testing.T) {
	base := &scriptedClient{}
	client := llm.Chain(base, Middleware(NewPolicy(fastConfig(3), nil)))
	if client.GetModelName() != "test-model" {
		t.Errorf("Expected model name delegated, got %q", client.GetModelName())
	}
}
