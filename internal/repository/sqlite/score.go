package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/game-club-server/internal/apperror"
	"github.com/sakif/game-club-server/internal/model"
	"github.com/sakif/game-club-server/internal/repository"
)

// COMPILE-TIME INTERFACE CHECK:
// `var _ X = (*Y)(nil)` assigns a nil *Y to a variable of interface type X.
// If *Y doesn't implement X, the compiler errors here instead of at some
// distant call site.
var _ repository.ScoreRepository = (*DB)(nil)

// RecordScore records one score event as a single transaction:
//
//  1. find-or-create the user row for externalID
//  2. insert the score row
//  3. recompute the user's total_points from the full score history
//
// Either all three happen or none do — a rollback can never leave a score
// without its user or a stale total behind.
//
// THE FIND-OR-CREATE RACE:
// A naive SELECT-then-INSERT has a window where two concurrent first-time
// submissions both see "no user" and both insert. Instead we INSERT with
// ON CONFLICT(firebase_uid) DO NOTHING and then read the canonical row back:
// whichever request loses the race simply folds into the winner's row. The
// UNIQUE index does the arbitration, not application code.
//
// WHY RECOMPUTE INSTEAD OF total_points + points?
// A delta update trusts the stored total. The full SUM costs one indexed
// scan of the player's own scores and restores the invariant even if a prior
// write somehow left the total wrong.
func (db *DB) RecordScore(ctx context.Context, externalID string, points int64, gameType string) (*model.Score, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperror.Storage("beginning score transaction", err)
	}
	// Rollback after Commit is a harmless no-op, so defer covers every
	// early-return path below.
	defer tx.Rollback()

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, firebase_uid, total_points, created_at)
		 VALUES (?, ?, 0, ?)
		 ON CONFLICT(firebase_uid) DO NOTHING`,
		xid.New().String(), externalID, now,
	); err != nil {
		return nil, apperror.Storage("creating user", err)
	}

	// Read the canonical row back — ours if the insert won, the existing one
	// otherwise.
	var userID string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE firebase_uid = ?`, externalID,
	).Scan(&userID); err != nil {
		return nil, apperror.Storage("looking up user", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO scores (user_id, points, game_type, created_at)
		 VALUES (?, ?, ?, ?)`,
		userID, points, gameType, now,
	)
	if err != nil {
		return nil, apperror.Storage("inserting score", err)
	}

	// LastInsertId is the AUTOINCREMENT id SQLite assigned to the new row.
	scoreID, err := res.LastInsertId()
	if err != nil {
		return nil, apperror.Storage("reading inserted score id", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET total_points = (
		     SELECT COALESCE(SUM(points), 0) FROM scores WHERE user_id = ?
		 )
		 WHERE id = ?`,
		userID, userID,
	); err != nil {
		return nil, apperror.Storage("recomputing total points", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperror.Storage("committing score transaction", err)
	}

	return &model.Score{
		ID:        scoreID,
		UserID:    userID,
		Points:    points,
		GameType:  gameType,
		CreatedAt: now,
	}, nil
}

// Leaderboard returns players ranked by total points.
//
// The LEFT JOIN keeps players with zero scores in the result (COUNT over no
// rows is 0). The ORDER BY gives a deterministic total order: higher totals
// first, and on a tie the earlier-registered player wins.
func (db *DB) Leaderboard(ctx context.Context, opts repository.LeaderboardOptions) ([]model.LeaderboardEntry, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.firebase_uid, u.total_points, u.created_at, COUNT(s.id)
		 FROM users u
		 LEFT JOIN scores s ON s.user_id = u.id
		 GROUP BY u.id
		 ORDER BY u.total_points DESC, u.created_at ASC
		 LIMIT ?`,
		opts.Limit,
	)
	if err != nil {
		return nil, apperror.Storage("querying leaderboard", err)
	}
	// rows holds a pool connection until closed — leak enough of these and
	// every query hangs forever.
	defer rows.Close()

	entries := make([]model.LeaderboardEntry, 0, opts.Limit)
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.FirebaseUID, &e.TotalPoints, &e.UserCreatedAt, &e.GamesPlayed); err != nil {
			return nil, apperror.Storage("scanning leaderboard row", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("iterating leaderboard rows", err)
	}

	return entries, nil
}

// UserStats aggregates one player's history. A player who exists but has
// never recorded a score is NOT a not-found condition: they come back with
// games_played=0 and NULL average/best (AVG and MAX over zero rows).
func (db *DB) UserStats(ctx context.Context, externalID string) (*model.UserStats, error) {
	var (
		stats model.UserStats
		avg   sql.NullFloat64
		best  sql.NullInt64
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT u.firebase_uid, u.total_points, u.created_at,
		        COUNT(s.id), AVG(s.points), MAX(s.points)
		 FROM users u
		 LEFT JOIN scores s ON s.user_id = u.id
		 WHERE u.firebase_uid = ?
		 GROUP BY u.id`,
		externalID,
	).Scan(&stats.FirebaseUID, &stats.TotalPoints, &stats.UserCreatedAt,
		&stats.GamesPlayed, &avg, &best)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", externalID)
		}
		return nil, apperror.Storage("querying user stats", err)
	}

	// NULL aggregates → nil pointers → JSON null.
	if avg.Valid {
		stats.AverageScore = &avg.Float64
	}
	if best.Valid {
		stats.BestScore = &best.Int64
	}

	return &stats, nil
}
