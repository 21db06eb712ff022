package model

import "time"

// LeaderboardEntry is a ranked projection of a player's aggregate and play
// count. It is computed by a join at query time, not stored — rank is implied
// by position in the returned slice.
type LeaderboardEntry struct {
	FirebaseUID   string    `json:"firebase_uid"`
	TotalPoints   int64     `json:"total_points"`
	UserCreatedAt time.Time `json:"user_created_at"`
	GamesPlayed   int64     `json:"games_played"`
}

// UserStats summarises one player's score history.
//
// WHY POINTER FIELDS?
// AverageScore and BestScore are undefined for a player who has never played
// a game (AVG and MAX over zero rows are NULL in SQL). A *float64/*int64
// carries that three-state meaning into JSON: the fields serialize as null
// rather than a misleading 0. GamesPlayed and TotalPoints are genuinely zero
// in that case, so they stay plain integers.
type UserStats struct {
	FirebaseUID   string    `json:"firebase_uid"`
	TotalPoints   int64     `json:"total_points"`
	UserCreatedAt time.Time `json:"user_created_at"`
	GamesPlayed   int64     `json:"games_played"`
	AverageScore  *float64  `json:"average_score"`
	BestScore     *int64    `json:"best_score"`
}
