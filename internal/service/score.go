// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// The service accepts primitives and returns domain models and domain errors.
// It knows nothing about HTTP (the handler's job) or SQL (the repository's
// job), which is what lets every rule here be tested with plain function
// calls against an in-memory mock.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/game-club-server/internal/apperror"
	"github.com/sakif/game-club-server/internal/model"
	"github.com/sakif/game-club-server/internal/repository"
)

const (
	// DefaultLeaderboardLimit is used when the caller doesn't ask for a
	// specific number of entries (or asks for a non-positive number).
	DefaultLeaderboardLimit = 10

	// MaxLeaderboardLimit caps a single leaderboard read so one request
	// can't fetch the entire users table.
	MaxLeaderboardLimit = 100
)

// ScoreService handles score recording and leaderboard/stats queries.
type ScoreService struct {
	repo   repository.ScoreRepository
	logger *slog.Logger
}

// NewScoreService creates a new ScoreService. The caller decides which
// repository implementation to inject — SQLite in production, a mock in
// tests.
func NewScoreService(repo repository.ScoreRepository, logger *slog.Logger) *ScoreService {
	return &ScoreService{
		repo:   repo,
		logger: logger,
	}
}

// RecordScore validates and durably records one score event.
//
// VALIDATION BEFORE STORAGE:
// Every check here runs before the repository is touched, so a rejected
// submission provably has no side effects — no user row, no score row.
//
// NOT IDEMPOTENT, ON PURPOSE:
// Two identical calls record two distinct score events and both count
// toward the total. Each call represents one game actually played; it's the
// client's job not to double-submit.
func (s *ScoreService) RecordScore(ctx context.Context, externalID string, points int64, gameType string) (*model.Score, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("uid", "uid is required")
	}
	if points <= 0 {
		return nil, apperror.ValidationFailed("points", "points must be a positive integer")
	}

	// Absent or blank gameType falls back to the sentinel label.
	gameType = strings.TrimSpace(gameType)
	if gameType == "" {
		gameType = model.DefaultGameType
	}

	score, err := s.repo.RecordScore(ctx, externalID, points, gameType)
	if err != nil {
		s.logger.Error("failed to record score",
			slog.String("uid", externalID),
			slog.Int64("points", points),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("recording score: %w", err)
	}

	s.logger.Info("score recorded",
		slog.Int64("scoreId", score.ID),
		slog.String("uid", externalID),
		slog.Int64("points", score.Points),
		slog.String("gameType", score.GameType),
	)

	return score, nil
}

// Leaderboard returns the top players, at most limit entries.
// A non-positive limit means "use the default"; oversized limits are clamped.
func (s *ScoreService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	entries, err := s.repo.Leaderboard(ctx, repository.LeaderboardOptions{Limit: limit})
	if err != nil {
		s.logger.Error("failed to fetch leaderboard", slog.String("error", err.Error()))
		return nil, fmt.Errorf("fetching leaderboard: %w", err)
	}

	return entries, nil
}

// UserStats returns aggregate statistics for one player.
// Returns apperror.ErrNotFound when no player exists with externalID — which
// is distinct from a player who exists but has never played (they succeed,
// with zero games and null average/best).
func (s *ScoreService) UserStats(ctx context.Context, externalID string) (*model.UserStats, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperror.ValidationFailed("uid", "uid is required")
	}

	stats, err := s.repo.UserStats(ctx, externalID)
	if err != nil {
		// NotFound is a normal outcome, not a failure worth an error log.
		// Either way the error propagates as-is — it's already a proper
		// apperror and the handler knows how to map it.
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to fetch user stats",
				slog.String("uid", externalID),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	return stats, nil
}
