// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered player.
//
// Players sign in through Firebase on the game client, so the primary
// external identifier is the Firebase UID (an opaque string). We still
// generate our own internal string ID (xid) for the primary key, to avoid
// tying our keys to a third-party's identifier scheme. The UNIQUE constraint
// on firebase_uid in the DB ensures one Firebase account maps to exactly one
// player row — the constraint, not application code, is what prevents two
// concurrent first-time submissions from creating duplicate rows.
//
// WHY TotalPoints ON THE USER ROW?
// TotalPoints is a materialized aggregate: it must always equal the sum of
// points over the player's score rows. We store it (rather than summing on
// every read) so the leaderboard query doesn't have to aggregate the entire
// scores table, and we RECOMPUTE it from scratch on every score write so a
// transient inconsistency heals itself on the next write.
//
// JSON TAGS:
// The wire format is the compatibility contract with the game client, which
// expects snake_case keys (they were originally raw database column names).
// Don't "fix" these to camelCase — it would break every deployed client.
type User struct {
	ID          string    `json:"id"            db:"id"`
	FirebaseUID string    `json:"firebase_uid"  db:"firebase_uid"`
	TotalPoints int64     `json:"total_points"  db:"total_points"`
	CreatedAt   time.Time `json:"created_at"    db:"created_at"`
}
