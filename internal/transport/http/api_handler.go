package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/domain"
	"quiz-assessment-service/internal/ranking"
)

// maxBodyBytes caps submission bodies.
const maxBodyBytes = 1 << 20

// APIHandler serves the submission, analytics and leaderboard endpoints.
type APIHandler struct {
	submissions *app.SubmissionService
	analytics   *app.AnalyticsService
	leaderboard *app.LeaderboardService
	logger      *slog.Logger
}

func NewAPIHandler(submissions *app.SubmissionService, analytics *app.AnalyticsService, leaderboard *app.LeaderboardService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{
		submissions: submissions,
		analytics:   analytics,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// Register mounts the API routes on mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/attempts", h.submitAttempt)
	mux.HandleFunc("GET /api/analytics/overview", h.overview)
	mux.HandleFunc("GET /api/analytics/users/{id}", h.userReport)
	mux.HandleFunc("GET /api/leaderboard", h.topStandings)
	mux.HandleFunc("GET /api/users/{id}/rank", h.userRank)
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (h *APIHandler) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var req app.SubmitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	result, err := h.submissions.Submit(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *APIHandler) overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analytics.Overview(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *APIHandler) userReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.analytics.UserReport(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// topStandings serves the leading standings, or the slice around a list
// position when ?position= is given.
func (h *APIHandler) topStandings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, ok := queryInt(w, query.Get("limit"), "limit", 0)
	if !ok {
		return
	}
	window, ok := queryInt(w, query.Get("window"), "window", 0)
	if !ok {
		return
	}

	var (
		standings []ranking.Standing
		err       error
	)
	if raw := query.Get("position"); raw != "" {
		position, ok := queryInt(w, raw, "position", 1)
		if !ok {
			return
		}
		standings, err = h.leaderboard.Neighbors(r.Context(), position, window)
		if standings == nil {
			standings = []ranking.Standing{}
		}
	} else {
		standings, err = h.leaderboard.Top(r.Context(), limit)
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"standings": standings})
}

// queryInt parses an optional integer parameter no smaller than floor and writes
// a 400 when it is malformed.
func queryInt(w http.ResponseWriter, raw, field string, floor int) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < floor {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("%s must be an integer >= %d", field, floor), Field: field})
		return 0, false
	}
	return n, true
}

func (h *APIHandler) userRank(w http.ResponseWriter, r *http.Request) {
	rank, err := h.leaderboard.RankOf(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rank)
}

// writeError maps the domain error taxonomy onto status codes. Internal
// failures are logged and answered with an opaque message.
func (h *APIHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validation.Error(), Field: validation.Field})
	case domain.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	default:
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
