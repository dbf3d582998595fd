package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/janken/internal/store"
)

// SessionHandler serves round history from the store.
type SessionHandler struct {
	store   *store.Store
	current func() string
}

// NewSessionHandler creates a handler. current reports the session being
// played, which is flagged in listings; it may be nil.
func NewSessionHandler(s *store.Store, current func() string) *SessionHandler {
	return &SessionHandler{store: s, current: current}
}

type sessionResponse struct {
	ID            string `json:"id"`
	StartedAt     string `json:"started_at"`
	PlayerScore   int    `json:"player_score"`
	ComputerScore int    `json:"computer_score"`
	Current       bool   `json:"current"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type roundResponse struct {
	ID        int64  `json:"id"`
	Player    string `json:"player"`
	Computer  string `json:"computer"`
	Outcome   string `json:"outcome"`
	CreatedAt string `json:"created_at"`
}

type listRoundsResponse struct {
	SessionID string          `json:"session_id"`
	Rounds    []roundResponse `json:"rounds"`
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and
// /api/sessions/{id}/rounds.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		h.list(w, r)
		return
	}

	parts := strings.Split(path, "/")
	switch {
	case len(parts) == 1:
		h.get(w, parts[0])
	case len(parts) == 2 && parts[1] == "rounds":
		h.rounds(w, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *SessionHandler) currentID() string {
	if h.current == nil {
		return ""
	}
	return h.current()
}

func (h *SessionHandler) toResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:            s.ID,
		StartedAt:     s.StartedAt.Format(timeLayout),
		PlayerScore:   s.PlayerScore,
		ComputerScore: s.ComputerScore,
		Current:       s.ID == h.currentID(),
	}
}

// list handles GET /api/sessions?limit=n.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, h.toResponse(s))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *SessionHandler) get(w http.ResponseWriter, id string) {
	s, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, h.toResponse(s))
}

func (h *SessionHandler) rounds(w http.ResponseWriter, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	rounds, err := h.store.Rounds().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rounds")
		return
	}

	response := listRoundsResponse{SessionID: id, Rounds: make([]roundResponse, 0, len(rounds))}
	for _, rd := range rounds {
		response.Rounds = append(response.Rounds, roundResponse{
			ID:        rd.ID,
			Player:    string(rd.Player),
			Computer:  string(rd.Computer),
			Outcome:   string(rd.Outcome),
			CreatedAt: rd.CreatedAt.Format(timeLayout),
		})
	}
	writeJSON(w, http.StatusOK, response)
}
