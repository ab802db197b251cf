// Package assist turns job parameters into a model conversation and runs it.
//
// The package is the outward-facing core of the system: BuildConversation
// wraps a composed instruction into the role-tagged payload, and Service
// drives the whole request (specification resolution, prompt composition,
// conversation building, model call). It depends only on the leaf catalogs
// and the llm contract; provider clients and front-ends live elsewhere.
package assist

import (
	"strings"

	"codeassist/pkg/agent/llm"
	"codeassist/pkg/jobs"
)

// SystemPrompt is the fixed system message carried by every conversation.
const SystemPrompt = "You are a helpful assistant."

// BuildConversation wraps the instruction text into the final completion
// request. When the job consumes existing source code, the code is appended
// to the user message verbatim inside a fenced block with no language tag;
// otherwise no fence is emitted at all. Temperature and maxTokens are
// pass-through generation parameters, range-checked at the presentation
// boundary rather than here.
//
// It returns *jobs.UnsupportedJobError for an unrecognized job.
func BuildConversation(job jobs.Job, instruction, code string, temperature float32, maxTokens int) (llm.CompletionRequest, error) {
	requiresCode, err := jobs.RequiresCode(job)
	if err != nil {
		return llm.CompletionRequest{}, err
	}

	user := instruction
	if requiresCode {
		var b strings.Builder
		b.WriteString(instruction)
		b.WriteString("\n```\n")
		b.WriteString(code)
		b.WriteString("\n```")
		user = b.String()
	}

	return llm.CompletionRequest{
		Messages: []llm.CompletionMessage{
			llm.NewSystemMessage(SystemPrompt),
			llm.NewUserMessage(user),
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}
