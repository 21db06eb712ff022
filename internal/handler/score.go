package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/game-club-server/internal/apperror"
	"github.com/sakif/game-club-server/internal/model"
)

// ScoreService is what the handler needs from the business layer.
//
// ACCEPT INTERFACES, RETURN STRUCTS:
// The handler declares the interface it consumes rather than importing the
// concrete *service.ScoreService — tests inject a mock, and the handler can
// never reach past the service into the repository.
type ScoreService interface {
	RecordScore(ctx context.Context, externalID string, points int64, gameType string) (*model.Score, error)
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	UserStats(ctx context.Context, externalID string) (*model.UserStats, error)
}

// ScoreHandler serves the score-and-leaderboard HTTP surface.
type ScoreHandler struct {
	service ScoreService
	logger  *slog.Logger
}

// NewScoreHandler creates a new ScoreHandler.
func NewScoreHandler(service ScoreService, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{
		service: service,
		logger:  logger,
	}
}

// recordScoreRequest is the POST /score body sent by the game client.
//
// WHY *int64 FOR Points?
// With a plain int64 we couldn't tell `"points": 0` from a missing field —
// both decode to 0. A pointer is nil only when the field was absent, which
// lets us report "points is required" instead of the misleading "points must
// be positive". A fractional number (e.g. 30.5) fails JSON decoding outright,
// which is the behaviour we want for a whole-number contract.
type recordScoreRequest struct {
	UID      string `json:"uid"`
	Points   *int64 `json:"points"`
	GameType string `json:"gameType"`
}

// scoreResponse mirrors the original server's success envelope.
type scoreResponse struct {
	Success bool         `json:"success"`
	Score   *model.Score `json:"score"`
	Message string       `json:"message"`
}

type leaderboardResponse struct {
	Success     bool                     `json:"success"`
	Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	Total       int                      `json:"total"`
}

type statsResponse struct {
	Success bool             `json:"success"`
	Stats   *model.UserStats `json:"stats"`
}

// HandleRecordScore records one score event.
//
// HTTP: POST /score
// BODY: {"uid": "firebase-uid", "points": 30, "gameType": "slots"}
func (h *ScoreHandler) HandleRecordScore(w http.ResponseWriter, r *http.Request) {
	var req recordScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid score request body", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	if req.Points == nil {
		writeError(w, apperror.ValidationFailed("points", "points is required"))
		return
	}

	// All remaining validation (empty uid, non-positive points, gameType
	// defaulting) lives in the service so it applies to every caller, not
	// just HTTP.
	score, err := h.service.RecordScore(r.Context(), req.UID, *req.Points, req.GameType)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{
		Success: true,
		Score:   score,
		Message: "Score saved successfully",
	})
}

// HandleLeaderboard returns the ranked top players.
//
// HTTP: GET /leaderboard?limit=N
//
// A missing or unparseable limit falls back to the service default rather
// than erroring — the leaderboard is a read the client should always be able
// to render.
func (h *ScoreHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	entries, err := h.service.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		Success:     true,
		Leaderboard: entries,
		Total:       len(entries),
	})
}

// HandleUserStats returns aggregate statistics for one player.
//
// HTTP: GET /user/{uid}/stats
//
// A player with zero recorded scores still gets a 200 (with null average and
// best); only an unknown uid is a 404.
func (h *ScoreHandler) HandleUserStats(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")

	stats, err := h.service.UserStats(r.Context(), uid)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Success: true,
		Stats:   stats,
	})
}
