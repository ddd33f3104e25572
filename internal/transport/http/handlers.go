package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"shiritori/internal/app"
	"shiritori/internal/domain"
)

// Handlers holds the HTTP handler dependencies
type Handlers struct {
	hub    *app.MatchHub
	logger *zap.Logger
}

// NewHandlers creates the HTTP handlers
func NewHandlers(hub *app.MatchHub, logger *zap.Logger) *Handlers {
	return &Handlers{
		hub:    hub,
		logger: logger,
	}
}

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

func sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{
		Success: false,
		Error:   &apiError{Code: code, Message: message},
	})
}

// HandleCreateMatch handles POST /api/matches
func (h *Handlers) HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req app.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	session, err := h.hub.CreateMatch(req)
	if err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_MATCH", err.Error())
		return
	}

	sendSuccess(w, http.StatusCreated, map[string]interface{}{
		"matchCode": session.GetCode(),
		"state":     session.GetState(),
	})
}

// HandleGetMatch handles GET /api/matches/{code}
func (h *Handlers) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	session, ok := h.hub.GetSession(code)
	if !ok {
		sendError(w, http.StatusNotFound, "MATCH_NOT_FOUND", "match not found")
		return
	}

	sendSuccess(w, http.StatusOK, map[string]interface{}{
		"matchCode": session.GetCode(),
		"state":     session.GetState(),
	})
}

// HandleGetSnapshot handles GET /api/matches/{code}/snapshot
func (h *Handlers) HandleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	session, ok := h.hub.GetSession(code)
	if !ok {
		sendError(w, http.StatusNotFound, "MATCH_NOT_FOUND", "match not found")
		return
	}

	sendSuccess(w, http.StatusOK, session.Snapshot())
}

// HandleRestoreMatch handles POST /api/matches/restore
func (h *Handlers) HandleRestoreMatch(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		sendError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body")
		return
	}

	session, err := h.hub.RestoreMatch(snap)
	if err != nil {
		h.logger.Warn("snapshot restore refused", zap.Error(err))
		sendError(w, http.StatusUnprocessableEntity, "RESTORE_FAILED", err.Error())
		return
	}

	sendSuccess(w, http.StatusCreated, map[string]interface{}{
		"matchCode": session.GetCode(),
		"state":     session.GetState(),
	})
}

// HandleHealth handles GET /api/health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleStats handles GET /api/stats
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, http.StatusOK, map[string]interface{}{
		"activeMatches": h.hub.GetSessionCount(),
	})
}
