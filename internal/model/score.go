// Package model defines the data structures used throughout the application.
package model

import "time"

// DefaultGameType is recorded when the client doesn't say which mini-game
// produced the score.
const DefaultGameType = "unknown"

// Score is one submitted score event. Score rows are append-only: once
// recorded they are never updated or deleted, so the scores table is a full
// history of every game played. The per-user aggregate on User.TotalPoints is
// always derivable from these rows.
//
// WHY ID int64 (NOT xid)?
// Score IDs are assigned by SQLite (INTEGER PRIMARY KEY AUTOINCREMENT), so
// they are monotonically increasing — insertion order is recoverable from the
// ID alone, which a random or time-prefixed string ID wouldn't guarantee.
type Score struct {
	ID        int64     `json:"id"         db:"id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	Points    int64     `json:"points"     db:"points"`
	GameType  string    `json:"game_type"  db:"game_type"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
