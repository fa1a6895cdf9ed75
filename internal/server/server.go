// internal/server/server.go

// Package server exposes the onboarding orchestrator over a JSON HTTP
// API, together with health, readiness, and Prometheus endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marvetti-onboarding/internal/catalog"
	"marvetti-onboarding/internal/common/config"
	commonerrors "marvetti-onboarding/internal/common/errors"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/models"
	"marvetti-onboarding/internal/orchestrator"
	"marvetti-onboarding/internal/whatsapp"
)

// ReadinessCheck reports whether a backing dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	orch   *orchestrator.Orchestrator
	cfg    config.ServerConfig
	logger logger.Logger
	ready  []ReadinessCheck
	http   *http.Server
}

func New(orch *orchestrator.Orchestrator, cfg config.ServerConfig, log logger.Logger, checks ...ReadinessCheck) *Server {
	s := &Server{
		orch:   orch,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "http"}),
		ready:  checks,
	}
	s.http = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.Routes(),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Millisecond,
	}
	return s
}

// Routes builds the full handler tree. Exposed for tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}", s.handleResetSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/complete", s.handleCompleteStage)
	mux.HandleFunc("POST /api/v1/sessions/{id}/navigate", s.handleNavigate)
	mux.HandleFunc("POST /api/v1/sessions/{id}/admin", s.handleToggleAdmin)
	mux.HandleFunc("POST /api/v1/sessions/{id}/theme", s.handleToggleTheme)
	mux.HandleFunc("GET /api/v1/sessions/{id}/logo", s.handleLogoRemaining)
	mux.HandleFunc("POST /api/v1/sessions/{id}/logo/generate", s.handleGenerateLogo)
	mux.HandleFunc("POST /api/v1/sessions/{id}/logo/accept", s.handleAcceptLogo)
	mux.HandleFunc("POST /api/v1/sessions/{id}/logo/human", s.handleHumanLogo)
	mux.HandleFunc("GET /api/v1/sessions/{id}/whatsapp", s.handleWhatsAppLink)

	mux.HandleFunc("GET /api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("GET /api/v1/compliance", s.handleCompliance)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.logRequests(mux)
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server starting", map[string]interface{}{"address": s.cfg.Address})
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("Request handled", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}

// ==========================
// SESSION HANDLERS
// ==========================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.orch.Create(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.orch.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.Reset(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCompleteStage(w http.ResponseWriter, r *http.Request) {
	var envelope models.PayloadEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		s.writeError(w, commonerrors.NewPayloadInvalidError(err.Error()))
		return
	}
	state, err := s.orch.CompleteStage(r.Context(), r.PathValue("id"), envelope)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

type navigateRequest struct {
	Stage int `json:"stage"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, commonerrors.NewPayloadInvalidError(err.Error()))
		return
	}
	state, err := s.orch.Navigate(r.Context(), r.PathValue("id"), models.StageID(req.Stage))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleToggleAdmin(w http.ResponseWriter, r *http.Request) {
	state, err := s.orch.ToggleAdmin(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	state, err := s.orch.ToggleTheme(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// ==========================
// LOGO HANDLERS
// ==========================

type logoGenerateRequest struct {
	Style        string `json:"style"`
	Instructions string `json:"instructions"`
}

type logoPreviewResponse struct {
	Image     string `json:"image,omitempty"`
	Remaining int    `json:"remaining"`
}

func (s *Server) handleGenerateLogo(w http.ResponseWriter, r *http.Request) {
	var req logoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, commonerrors.NewPayloadInvalidError(err.Error()))
		return
	}
	preview, err := s.orch.GenerateLogo(r.Context(), r.PathValue("id"), req.Style, req.Instructions)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := logoPreviewResponse{Remaining: preview.Remaining}
	if preview.Image != nil {
		resp.Image = preview.Image.DataURI()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type logoRemainingResponse struct {
	Remaining int `json:"remaining"`
}

func (s *Server) handleLogoRemaining(w http.ResponseWriter, r *http.Request) {
	remaining, err := s.orch.LogoRemaining(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, logoRemainingResponse{Remaining: remaining})
}

type logoAcceptRequest struct {
	ImageRef string `json:"imageRef"`
}

func (s *Server) handleAcceptLogo(w http.ResponseWriter, r *http.Request) {
	var req logoAcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, commonerrors.NewPayloadInvalidError(err.Error()))
		return
	}
	state, err := s.orch.AcceptLogo(r.Context(), r.PathValue("id"), req.ImageRef)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleHumanLogo(w http.ResponseWriter, r *http.Request) {
	state, err := s.orch.ChooseHumanLogo(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// ==========================
// WHATSAPP HANDLER
// ==========================

type whatsappResponse struct {
	Draft string `json:"draft"`
	Link  string `json:"link"`
}

func (s *Server) handleWhatsAppLink(w http.ResponseWriter, r *http.Request) {
	state, err := s.orch.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := whatsappResponse{Draft: state.WhatsappDraft}
	// No draft, no link: the panel stays inactive until the first
	// completion produces one.
	if state.WhatsappDraft != "" {
		number := ""
		if state.Client != nil {
			number = state.Client.Cell
		}
		resp.Link = whatsapp.BuildLink(number, state.WhatsappDraft)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ==========================
// CATALOG HANDLERS
// ==========================

type catalogResponse struct {
	Stages     map[models.StageID]models.StageInfo `json:"stages"`
	Niches     []string                            `json:"niches"`
	Provinces  []string                            `json:"provinces"`
	LogoStyles []catalog.LogoStyle                 `json:"logoStyles"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, catalogResponse{
		Stages:     catalog.DefaultStages(),
		Niches:     catalog.Niches,
		Provinces:  catalog.Provinces,
		LogoStyles: catalog.LogoStyles(),
	})
}

type complianceResponse struct {
	Niche     string   `json:"niche"`
	Checklist []string `json:"checklist"`
}

func (s *Server) handleCompliance(w http.ResponseWriter, r *http.Request) {
	niche := r.URL.Query().Get("niche")
	s.writeJSON(w, http.StatusOK, complianceResponse{
		Niche:     niche,
		Checklist: catalog.ComplianceChecklist(niche),
	})
}

// ==========================
// HEALTH HANDLERS
// ==========================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	for _, check := range s.ready {
		if err := check(r.Context()); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{"error": err.Error()})
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ==========================
// RESPONSE HELPERS
// ==========================

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var stdErr *commonerrors.StandardError
	if !errors.As(err, &stdErr) {
		stdErr = commonerrors.NewInternalError(err.Error())
	}
	s.writeJSON(w, httpStatus(stdErr.Code), stdErr)
}

func httpStatus(code commonerrors.ErrorCode) int {
	switch code {
	case commonerrors.ErrCodeSessionNotFound, commonerrors.ErrCodeStageUnknown:
		return http.StatusNotFound
	case commonerrors.ErrCodeStageLocked, commonerrors.ErrCodePayloadStageMismatch:
		return http.StatusConflict
	case commonerrors.ErrCodePayloadInvalid:
		return http.StatusUnprocessableEntity
	case commonerrors.ErrCodeLogoAttemptsExhausted:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
