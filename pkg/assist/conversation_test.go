package assist

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeassist/pkg/agent/llm"
	"codeassist/pkg/jobs"
)

func TestBuildConversationShape(t *testing.T) {
	conv, err := BuildConversation(jobs.Refactoring, "Refactor the following code.", "x = 1", 0.1, 500)
	require.NoError(t, err)

	require.Len(t, conv.Messages, 2)
	assert.Equal(t, llm.RoleSystem, conv.Messages[0].Role)
	assert.Equal(t, SystemPrompt, conv.Messages[0].Content)
	assert.Equal(t, llm.RoleUser, conv.Messages[1].Role)
	assert.Equal(t, float32(0.1), conv.Temperature)
	assert.Equal(t, 500, conv.MaxTokens)
}

func TestBuildConversationAppendsCodeFence(t *testing.T) {
	conv, err := BuildConversation(jobs.Refactoring, "Refactor the following code.", "x = 1", 0.1, 500)
	require.NoError(t, err)

	user := conv.Messages[1].Content
	assert.True(t, strings.HasSuffix(user, "\n```\nx = 1\n```"), "code must be fenced at the end: %q", user)
	// The fence carries no language tag.
	assert.NotContains(t, user, "```python")
}

func TestBuildConversationImplementingOmitsCode(t *testing.T) {
	conv, err := BuildConversation(jobs.Implementing, "Implement a function.", "ignored", 0.1, 500)
	require.NoError(t, err)

	user := conv.Messages[1].Content
	assert.Equal(t, "Implement a function.", user)
	assert.NotContains(t, user, "```")
	assert.NotContains(t, user, "ignored")
}

func TestBuildConversationCodeBearingJobs(t *testing.T) {
	for _, job := range []jobs.Job{
		jobs.Refactoring,
		jobs.Explaining,
		jobs.Checking,
		jobs.Adding,
		jobs.Transpiling,
	} {
		conv, err := BuildConversation(job, "instruction", "code body", 0.1, 500)
		require.NoError(t, err, "job %s", job)
		assert.Contains(t, conv.Messages[1].Content, "```\ncode body\n```", "job %s", job)
	}
}

func TestBuildConversationUnknownJob(t *testing.T) {
	_, err := BuildConversation(jobs.Job("NOPE"), "instruction", "", 0.1, 500)
	require.Error(t, err)

	var unsupported *jobs.UnsupportedJobError
	assert.True(t, errors.As(err, &unsupported))
}
