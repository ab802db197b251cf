package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeassist/pkg/agent/llm"
	"codeassist/pkg/agent/llmerrors"
	"codeassist/pkg/assist"
	"codeassist/pkg/config"
)

type fixedClient struct {
	resp llm.CompletionResponse
	err  error
}

func (f *fixedClient) Complete(_ context.Context, _ llm.CompletionRequest) (llm.CompletionResponse, error) {
	if f.err != nil {
		return llm.CompletionResponse{}, f.err
	}
	return f.resp, nil
}

func (f *fixedClient) GetModelName() string { return "gpt-3.5-turbo" }

type fixedProvider struct {
	client llm.LLMClient
}

func (p *fixedProvider) ClientFor(_ string) (llm.LLMClient, error) {
	return p.client, nil
}

func newTestServer(t *testing.T, client llm.LLMClient) (*Server, *http.ServeMux) {
	t.Helper()
	cfg := config.DefaultConfig()
	service := assist.NewService(&fixedProvider{client: client}, cfg)
	server := NewServer(service, cfg, nil)

	mux := http.NewServeMux()
	server.RegisterRoutes(mux)
	return server, mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGenerateEndpoint(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{
		resp: llm.CompletionResponse{Content: "refactored code", StopReason: "end_turn"},
	})

	rec := postJSON(t, mux, "/api/generate",
		`{"job": "REFACTORING", "code": "x = 1", "specifications": ["COMMENT"]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result assist.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "refactored code", result.Answer)
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, "gpt-3.5-turbo", result.Model)
}

func TestGenerateValidationErrors(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{resp: llm.CompletionResponse{Content: "unused"}})

	tests := []struct {
		name     string
		body     string
		wantText string
	}{
		{"unknown job", `{"job": "DEBUGGING", "code": "x"}`, "DEBUGGING"},
		{"unknown specification", `{"job": "REFACTORING", "code": "x", "specifications": ["FOO"]}`, "FOO"},
		{"missing code_lang", `{"job": "TRANSPILING", "code": "x"}`, "code_lang"},
		{"temperature out of range", `{"job": "REFACTORING", "code": "x", "temperature": 2.0}`, "temperature"},
		{"malformed JSON", `{"job": `, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, mux, "/api/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body.Error, tt.wantText)
		})
	}
}

func TestGenerateModelFailureIs502(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{
		err: llmerrors.NewError(llmerrors.ErrorTypeServiceUnavailable, "gave up"),
	})

	rec := postJSON(t, mux, "/api/generate", `{"job": "REFACTORING", "code": "x = 1"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "model call failed")
}

func TestGenerateRejectsGet(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{})
	rec := get(t, mux, "/api/generate")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCatalogEndpoint(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{})

	rec := get(t, mux, "/api/catalog")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs []struct {
			Name         string `json:"name"`
			Description  string `json:"description"`
			RequiresCode bool   `json:"requires_code"`
		} `json:"jobs"`
		Specifications []struct {
			Name   string `json:"name"`
			Clause string `json:"clause"`
		} `json:"specifications"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Jobs, 6)
	require.Len(t, body.Specifications, 5)

	byName := make(map[string]bool)
	for _, job := range body.Jobs {
		byName[job.Name] = job.RequiresCode
		assert.NotEmpty(t, job.Description)
	}
	assert.True(t, byName["REFACTORING"])
	assert.False(t, byName["IMPLEMENTING"])
}

func TestModelsEndpoint(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{})

	rec := get(t, mux, "/api/models")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Models       []string `json:"models"`
		DefaultModel string   `json:"default_model"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Models, "gpt-3.5-turbo")
	assert.Equal(t, "gpt-3.5-turbo", body.DefaultModel)
}

func TestHealthEndpoint(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{})

	rec := get(t, mux, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestLogsEndpoint(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{})

	rec := get(t, mux, "/api/logs")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, mux, "/api/logs?since=not-a-time")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUsageWithoutPrometheus(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{})

	rec := get(t, mux, "/api/usage")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDashboardRenders(t *testing.T) {
	_, mux := newTestServer(t, &fixedClient{})

	rec := get(t, mux, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "REFACTORING")
	assert.Contains(t, rec.Body.String(), "gpt-3.5-turbo")
}

func TestBasicAuth(t *testing.T) {
	t.Setenv("CODEASSIST_PASSWORD", "hunter2")

	cfg := config.DefaultConfig()
	cfg.WebUI.Auth = true
	service := assist.NewService(&fixedProvider{client: &fixedClient{}}, cfg)
	server := NewServer(service, cfg, nil)
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	// No credentials.
	rec := get(t, mux, "/api/models")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong password.
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	req.SetBasicAuth("codeassist", "wrong")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct credentials.
	req = httptest.NewRequest(http.MethodGet, "/api/models", nil)
	req.SetBasicAuth("codeassist", "hunter2")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open.
	rec = get(t, mux, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}
