// Package api exposes HTTP handlers for the presence service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"example.com/presence/internal/auth"
	"example.com/presence/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/users/", h.userSubtree)
	mux.HandleFunc("/v1/presence", h.recordPresence)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) userSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/users/")
	if rest == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing user id")
		return
	}

	userID, tail, _ := strings.Cut(rest, "/")
	switch {
	case tail == "" && r.Method == http.MethodGet:
		h.getUser(w, r, userID)
	case tail == "sessions" && r.Method == http.MethodGet:
		h.userSessions(w, r, userID)
	case tail == "" || tail == "sessions":
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, userID string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeSessionsRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope sessions:read required")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	writeJSON(w, http.StatusOK, UserView{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Role:        user.Role,
	})
}

func (h *Handler) userSessions(w http.ResponseWriter, r *http.Request, userID string) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeSessionsRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope sessions:read required")
		return
	}

	sessions, err := h.service.HistoryForUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserRequired) {
			writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, toSessionView(session))
	}
	writeJSON(w, http.StatusOK, SessionListResponse{UserID: userID, Items: items})
}

func (h *Handler) recordPresence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopePresenceWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope presence:write required")
		return
	}

	var req RecordPresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	err := h.service.RecordChange(r.Context(), domain.Change{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Activity:    req.Activity,
		ObservedAt:  req.ObservedAt,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// RecordPresenceRequest is the payload for POST /v1/presence.
type RecordPresenceRequest struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Activity    string    `json:"activity"`
	ObservedAt  time.Time `json:"observed_at"`
}

// Validate ensures request correctness.
func (r RecordPresenceRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	return nil
}

// UserView exposes a stored user row.
type UserView struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
}

// SessionView is one reconciled timeline entry. Open or malformed sessions
// carry no duration.
type SessionView struct {
	Activity        string     `json:"activity"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Open            bool       `json:"open"`
	DurationSeconds *int64     `json:"duration_seconds,omitempty"`
}

// SessionListResponse packages a user's reconciled history.
type SessionListResponse struct {
	UserID string        `json:"user_id"`
	Items  []SessionView `json:"items"`
}

func toSessionView(session domain.Session) SessionView {
	view := SessionView{
		Activity: session.Activity,
		Open:     session.Open(),
	}
	if !session.Start.IsZero() {
		start := session.Start
		view.StartedAt = &start
	}
	if !session.End.IsZero() {
		end := session.End
		view.EndedAt = &end
	}
	if d, ok := session.Duration(); ok {
		seconds := int64(d / time.Second)
		view.DurationSeconds = &seconds
	}
	return view
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
