// Package assist maps a (job, parameters, specifications) triple onto a
// prompt, sends it to the selected model, and hands back the model's answer
// verbatim.
package assist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"codeassist/pkg/agent/llm"
	"codeassist/pkg/agent/llmerrors"
	"codeassist/pkg/config"
	"codeassist/pkg/jobs"
	"codeassist/pkg/logx"
	"codeassist/pkg/specs"
	"codeassist/pkg/utils"
)

// ClientProvider resolves a model name to a ready-to-use LLM client. The
// returned client is expected to already carry its middleware chain.
type ClientProvider interface {
	ClientFor(model string) (llm.LLMClient, error)
}

// Request is one assistance request as it arrives from a presentation
// boundary (HTTP handler or CLI). All fields are plain values; validation
// happens inside Generate, in a fixed order, before any model call.
type Request struct {
	Model          string   // Model name, e.g. "gpt-3.5-turbo"
	Job            string   // Job name, e.g. "REFACTORING"
	Specifications []string // Specification names, e.g. ["COMMENT"]
	Code           string   // Source code the job operates on (may be empty)

	Temperature float32
	MaxTokens   int

	// Job-dependent free-text parameters.
	Requirements string
	CodeLang     string
	InputType    string
	OutputType   string

	// RequestID correlates logs and responses. Generated when empty.
	RequestID string
}

// Result carries the model's answer plus request metadata.
type Result struct {
	Answer     string `json:"answer"`
	RequestID  string `json:"request_id"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason,omitempty"`
}

// ModelCallError marks a failure that happened while talking to the model,
// as opposed to request validation. Presentation layers use this distinction
// to pick the status code.
type ModelCallError struct {
	Model string
	Err   error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("model call failed for %s: %v", e.Model, e.Err)
}

func (e *ModelCallError) Unwrap() error {
	return e.Err
}

// Service is the request orchestrator: validate, compose, call, return.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	provider ClientProvider
	cfg      *config.Config
	logger   *logx.Logger
}

// NewService creates a Service backed by the given client provider.
func NewService(provider ClientProvider, cfg *config.Config) *Service {
	return &Service{
		provider: provider,
		cfg:      cfg,
		logger:   logx.NewLogger("assist"),
	}
}

// DefaultModel returns the model used when a request names none.
func (s *Service) DefaultModel() string {
	return s.cfg.DefaultModel
}

// Generate runs one assistance request end to end. Validation happens
// before the model is touched: a request that fails any check performs
// zero model calls. The answer comes back exactly as the model produced
// it, with no post-processing.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}

	if err := config.ValidateGeneration(req.Temperature, req.MaxTokens); err != nil {
		return nil, err
	}

	// Specifications resolve before the job: an unknown specification is
	// reported even when the job name is also bad.
	selected, err := specs.ResolveAll(req.Specifications)
	if err != nil {
		return nil, err
	}

	job, err := jobs.Parse(req.Job)
	if err != nil {
		return nil, err
	}

	instruction, err := jobs.Compose(job, selected, jobs.Params{
		Requirements: req.Requirements,
		CodeLang:     req.CodeLang,
		InputType:    req.InputType,
		OutputType:   req.OutputType,
	})
	if err != nil {
		return nil, err
	}

	conversation, err := BuildConversation(job, instruction, req.Code, req.Temperature, req.MaxTokens)
	if err != nil {
		return nil, err
	}

	if err := s.checkTokenBudget(model, conversation); err != nil {
		return nil, err
	}

	client, err := s.provider.ClientFor(model)
	if err != nil {
		return nil, err
	}

	s.logger.Info("request %s: job=%s model=%s specs=%d", requestID, job, model, len(selected))

	start := time.Now()
	resp, err := client.Complete(ctx, conversation)
	if err != nil {
		s.logger.Error("request %s: model call failed after %dms: %v", requestID, time.Since(start).Milliseconds(), err)
		return nil, &ModelCallError{Model: model, Err: err}
	}

	s.logger.Info("request %s: completed in %dms stop=%s", requestID, time.Since(start).Milliseconds(), resp.StopReason)

	return &Result{
		Answer:     resp.Content,
		RequestID:  requestID,
		Model:      model,
		StopReason: resp.StopReason,
	}, nil
}

// checkTokenBudget fails fast when the prompt plus the requested output
// cannot fit the model's context window. The estimate is approximate, so
// it only rejects clear overflows; an estimation shortfall never blocks a
// request the model might still accept.
func (s *Service) checkTokenBudget(model string, conversation llm.CompletionRequest) error {
	info, known := config.GetModelInfo(model)
	if !known {
		return nil
	}

	promptTokens := 0
	for i := range conversation.Messages {
		promptTokens += utils.EstimateTokens(conversation.Messages[i].Content)
	}

	if promptTokens+conversation.MaxTokens > info.MaxContextTokens {
		return llmerrors.NewError(llmerrors.ErrorTypeBadPrompt,
			fmt.Sprintf("prompt too large for %s: ~%d prompt tokens + %d output tokens exceeds %d token context window",
				model, promptTokens, conversation.MaxTokens, info.MaxContextTokens))
	}
	return nil
}
