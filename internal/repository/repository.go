package repository

import (
	"context"

	"github.com/sakif/game-club-server/internal/model"
)

type LeaderboardOptions struct {
	Limit int
}

// ScoreRepository is the storage boundary for the score service.
//
// RecordScore is deliberately one method rather than three (find-or-create
// user, insert score, update total): the whole sequence must be one atomic
// unit of work, and the transaction that makes it atomic belongs to the
// storage layer. Exposing the intermediate steps would invite callers to
// compose them non-atomically.
type ScoreRepository interface {
	// RecordScore durably records one score event for the player identified
	// by externalID, creating the player row on first sighting and
	// recomputing their total. The caller has already validated inputs.
	RecordScore(ctx context.Context, externalID string, points int64, gameType string) (*model.Score, error)

	// Leaderboard returns players ranked by total points (descending),
	// earlier-registered player first on a tie. Includes players with no
	// scores. Result length is bounded by opts.Limit.
	Leaderboard(ctx context.Context, opts LeaderboardOptions) ([]model.LeaderboardEntry, error)

	// UserStats aggregates one player's score history. Returns
	// apperror.ErrNotFound when no player exists with externalID.
	UserStats(ctx context.Context, externalID string) (*model.UserStats, error)
}
