package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bureau-service/internal/export"
	"github.com/Dan9191/bureau-service/internal/middleware"
	"github.com/Dan9191/bureau-service/internal/repository"
	"github.com/Dan9191/bureau-service/internal/service"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Tables *repository.Stats `json:"tables,omitempty"`
}

// writeJSON encodes v before writing headers so an encoding failure becomes a 500.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

// crnParam reads the customer reference number from the path. It writes a
// 400 and returns false when the value is not a positive integer.
func crnParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	crn, err := strconv.ParseInt(mux.Vars(r)["crn"], 10, 64)
	if err != nil || crn <= 0 {
		http.Error(w, "Invalid customer reference number", http.StatusBadRequest)
		return 0, false
	}
	return crn, true
}

// Health reports whether the source tables are loaded
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "loading"})
		return
	}
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Tables: &stats})
}

// Token exchanges API client credentials for a JWT
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := h.svc.IssueToken(req.ClientID, req.ClientSecret)
	if errors.Is(err, service.ErrInvalidCredentials) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.log.Errorf("Token issue failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(service.TokenTTL.Seconds()),
	})
}

// Features returns the per-loan-type feature vectors
func (h *Handler) Features(w http.ResponseWriter, r *http.Request) {
	crn, ok := crnParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.BureauFeatures(crn))
}

// Summary returns the portfolio-level summary inputs
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	crn, ok := crnParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.Summary(crn))
}

// TradelineFeatures returns the behavioural features, null when absent
func (h *Handler) TradelineFeatures(w http.ResponseWriter, r *http.Request) {
	crn, ok := crnParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.TradelineFeatures(crn))
}

// Findings returns the ordered key findings
func (h *Handler) Findings(w http.ResponseWriter, r *http.Request) {
	crn, ok := crnParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, h.svc.KeyFindings(crn))
}

// Exposure returns the trailing monthly exposure series
func (h *Handler) Exposure(w http.ResponseWriter, r *http.Request) {
	crn, ok := crnParam(w, r)
	if !ok {
		return
	}

	months := 0
	if v := r.URL.Query().Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 120 {
			http.Error(w, "Invalid months", http.StatusBadRequest)
			return
		}
		months = n
	}
	h.writeJSON(w, http.StatusOK, h.svc.MonthlyExposure(crn, months))
}

// Report returns the assembled bureau report as JSON
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	crn, ok := crnParam(w, r)
	if !ok {
		return
	}
	report, err := h.svc.BuildReport(r.Context(), crn, r.URL.Query().Get("period"))
	if err != nil {
		h.reportError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// ReportXML returns the assembled bureau report as XML
func (h *Handler) ReportXML(w http.ResponseWriter, r *http.Request) {
	crn, ok := crnParam(w, r)
	if !ok {
		return
	}
	report, err := h.svc.BuildReport(r.Context(), crn, r.URL.Query().Get("period"))
	if err != nil {
		h.reportError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	if err := export.WriteReport(w, report); err != nil {
		h.log.Errorf("Failed to write XML report: %v", err)
	}
}

// Reload force-reloads the source tables
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	client, _ := middleware.ClientID(r.Context())
	h.log.WithField("client_id", client).Info("Manual reload requested")

	if err := h.svc.Reload(r.Context()); err != nil {
		h.log.Errorf("Manual reload failed: %v", err)
		http.Error(w, "Reload failed", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (h *Handler) reportError(w http.ResponseWriter, err error) {
	if errors.Is(err, repository.ErrNotLoaded) {
		http.Error(w, "Source tables not loaded", http.StatusServiceUnavailable)
		return
	}
	h.log.Errorf("Failed to build report: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
