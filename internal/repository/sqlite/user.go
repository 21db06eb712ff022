package sqlite

import (
	"context"
	"database/sql"

	"github.com/sakif/game-club-server/internal/apperror"
	"github.com/sakif/game-club-server/internal/model"
)

// GetUserByExternalID retrieves a user row by Firebase UID.
// Returns apperror.ErrNotFound if no user exists with that UID.
//
// User rows are created as a side effect of RecordScore (lazily, on a
// player's first submission) — there is deliberately no standalone
// CreateUser: a user with no score history has no reason to exist except
// through that path, and keeping creation inside the score transaction is
// what makes the find-or-create atomic.
func (db *DB) GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, firebase_uid, total_points, created_at
		 FROM users WHERE firebase_uid = ?`,
		externalID,
	).Scan(
		&u.ID,
		&u.FirebaseUID,
		&u.TotalPoints,
		&u.CreatedAt,
	)
	if err != nil {
		// sql.ErrNoRows just means "no matching row" — translate it to the
		// domain's not-found error so callers don't import database/sql.
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", externalID)
		}
		return nil, apperror.Storage("getting user by firebase uid", err)
	}

	return &u, nil
}

// CountUsers returns the number of user rows. Used to verify the uniqueness
// invariant in tests and by the stats logging on startup.
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users`,
	).Scan(&n); err != nil {
		return 0, apperror.Storage("counting users", err)
	}
	return n, nil
}
