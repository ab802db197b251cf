// Package webui provides the HTTP front-end for submitting assistance
// requests and inspecting the service.
package webui

import (
	"crypto/subtle"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeassist/pkg/assist"
	"codeassist/pkg/config"
	"codeassist/pkg/jobs"
	"codeassist/pkg/logx"
	"codeassist/pkg/metrics"
	"codeassist/pkg/specs"
	"codeassist/pkg/version"
)

//go:embed web/templates/*.html
var templateFS embed.FS

//go:embed web/static
var staticFS embed.FS

// Server represents the web UI HTTP server.
type Server struct {
	service   *assist.Service
	cfg       *config.Config
	usage     *metrics.QueryService // nil when no Prometheus is configured
	logger    *logx.Logger
	templates *template.Template
}

// NewServer creates a new web UI server. usage may be nil; the usage
// endpoint then reports that no metrics backend is configured.
func NewServer(service *assist.Service, cfg *config.Config, usage *metrics.QueryService) *Server {
	templates, err := template.ParseFS(templateFS, "web/templates/*.html")
	if err != nil {
		// This should never happen since templates are embedded at compile time
		panic(fmt.Sprintf("Failed to parse embedded templates: %v", err))
	}

	return &Server{
		service:   service,
		cfg:       cfg,
		usage:     usage,
		logger:    logx.NewLogger("webui"),
		templates: templates,
	}
}

// requireAuth wraps an HTTP handler with Basic Authentication when enabled.
// Username is always "codeassist", password comes from the secrets store or
// the CODEASSIST_PASSWORD env var.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if !s.cfg.WebUI.Auth {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		expectedPassword := config.GetWebUIPassword()
		if expectedPassword == "" {
			s.logger.Error("WebUI auth enabled but no password set - denying access")
			w.Header().Set("WWW-Authenticate", `Basic realm="codeassist"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="codeassist"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte("codeassist")) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(expectedPassword)) == 1
		if !userOK || !passOK {
			s.logger.Warn("Failed authentication attempt from %s (username: %s)", r.RemoteAddr, username)
			w.Header().Set("WWW-Authenticate", `Basic realm="codeassist"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// RegisterRoutes sets up HTTP routes. /healthz and /metrics stay outside
// basic auth so probes and scrapers keep working.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", s.requireAuth(s.handleDashboard))

	staticSubFS, err := fs.Sub(staticFS, "web/static")
	if err != nil {
		panic(fmt.Sprintf("Failed to access embedded static files: %v", err))
	}
	mux.Handle("/static/", s.requireAuth(http.StripPrefix("/static/", http.FileServer(http.FS(staticSubFS))).ServeHTTP))

	mux.HandleFunc("/api/generate", s.requireAuth(s.handleGenerate))
	mux.HandleFunc("/api/catalog", s.requireAuth(s.handleCatalog))
	mux.HandleFunc("/api/models", s.requireAuth(s.handleModels))
	mux.HandleFunc("/api/logs", s.requireAuth(s.handleLogs))
	mux.HandleFunc("/api/usage", s.requireAuth(s.handleUsage))

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
}

// handleDashboard renders the single-page UI.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := map[string]any{
		"Models":       config.ModelNames(),
		"DefaultModel": s.cfg.DefaultModel,
		"Jobs":         catalogJobs(),
		"Specs":        catalogSpecs(),
		"Version":      version.Version,
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("Failed to render dashboard: %v", err)
	}
}

// handleHealth implements GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// handleLogs implements GET /api/logs with optional component and since
// (RFC3339) filters over the in-memory ring.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	component := query.Get("component")
	sinceStr := query.Get("since")

	var since time.Time
	if sinceStr != "" {
		parsed, err := time.Parse(time.RFC3339, sinceStr)
		if err != nil {
			http.Error(w, "Invalid since parameter (use RFC3339)", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	entries := logx.GetRecentLogEntries(component, since)
	s.writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// handleUsage implements GET /api/usage, backed by Prometheus.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.usage == nil {
		http.Error(w, "No Prometheus backend configured", http.StatusServiceUnavailable)
		return
	}

	byModel, err := s.usage.GetUsageByModel(r.Context())
	if err != nil {
		s.logger.Error("Usage query failed: %v", err)
		http.Error(w, "Usage query failed", http.StatusBadGateway)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"usage": byModel})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response: %v", err)
	}
}

// catalogJobs lists the job catalog for the UI and /api/catalog.
func catalogJobs() []map[string]any {
	all := jobs.All()
	out := make([]map[string]any, 0, len(all))
	for _, job := range all {
		requiresCode, _ := jobs.RequiresCode(job)
		out = append(out, map[string]any{
			"name":          job.String(),
			"description":   job.Description(),
			"requires_code": requiresCode,
		})
	}
	return out
}

// catalogSpecs lists the specification catalog for the UI and /api/catalog.
func catalogSpecs() []map[string]any {
	all := specs.All()
	out := make([]map[string]any, 0, len(all))
	for _, spec := range all {
		out = append(out, map[string]any{
			"name":   spec.String(),
			"clause": spec.Clause(),
		})
	}
	return out
}
