package ollama

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeassist/pkg/agent/llm"
	"codeassist/pkg/agent/llmerrors"
)

func TestGetModelName(t *testing.T) {
	client := NewClient("http://localhost:11434", "llama3.1")
	assert.Equal(t, "llama3.1", client.GetModelName())
}

func TestNewClientBadURLFallsBack(t *testing.T) {
	client := NewClient("://not-a-url", "llama3.1")
	assert.Equal(t, "llama3.1", client.GetModelName())
}

func TestConvertMessages(t *testing.T) {
	messages, err := convertMessages([]llm.CompletionMessage{
		llm.NewSystemMessage("sys"),
		llm.NewUserMessage("usr"),
	})
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "usr", messages[1].Content)
}

func TestConvertMessagesRejectsInvalid(t *testing.T) {
	_, err := convertMessages(nil)
	assert.Error(t, err)

	_, err = convertMessages([]llm.CompletionMessage{{Role: "tool", Content: "x"}})
	assert.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want llmerrors.ErrorType
	}{
		{"server down", errors.New("dial tcp 127.0.0.1:11434: connection refused"), llmerrors.ErrorTypeTransient},
		{"model missing", errors.New(`model "nope" not found`), llmerrors.ErrorTypeBadPrompt},
		{"canceled", errors.New("context canceled"), llmerrors.ErrorTypeTransient},
		{"unclassified", errors.New("mystery failure"), llmerrors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llmerrors.TypeOf(classifyError(tt.err)))
		})
	}
}
