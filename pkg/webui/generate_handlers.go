package webui

import (
	"encoding/json"
	"errors"
	"net/http"

	"codeassist/pkg/assist"
	"codeassist/pkg/config"
)

// generateRequest is the JSON body of POST /api/generate. Temperature and
// max_tokens are pointers so an absent field falls back to the configured
// defaults instead of zero.
type generateRequest struct {
	Model          string   `json:"model"`
	Job            string   `json:"job"`
	Specifications []string `json:"specifications"`
	Code           string   `json:"code"`

	Temperature *float32 `json:"temperature"`
	MaxTokens   *int     `json:"max_tokens"`

	Requirements string `json:"requirements"`
	CodeLang     string `json:"code_lang"`
	InputType    string `json:"input_type"`
	OutputType   string `json:"output_type"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleGenerate implements POST /api/generate. Validation failures come
// back as 400 with the error text; model-side failures as 502.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body generateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	req := assist.Request{
		Model:          body.Model,
		Job:            body.Job,
		Specifications: body.Specifications,
		Code:           body.Code,
		Temperature:    s.cfg.Generation.DefaultTemperature,
		MaxTokens:      s.cfg.Generation.DefaultMaxTokens,
		Requirements:   body.Requirements,
		CodeLang:       body.CodeLang,
		InputType:      body.InputType,
		OutputType:     body.OutputType,
	}
	if body.Temperature != nil {
		req.Temperature = *body.Temperature
	}
	if body.MaxTokens != nil {
		req.MaxTokens = *body.MaxTokens
	}

	result, err := s.service.Generate(r.Context(), req)
	if err != nil {
		var callErr *assist.ModelCallError
		if errors.As(err, &callErr) {
			s.logger.Error("Generate failed at the model: %v", err)
			s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
			return
		}
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleCatalog implements GET /api/catalog: the job and specification
// catalogs the UI builds its form from.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"jobs":           catalogJobs(),
		"specifications": catalogSpecs(),
	})
}

// handleModels implements GET /api/models.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"models":        config.ModelNames(),
		"default_model": s.cfg.DefaultModel,
	})
}
