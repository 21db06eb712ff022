package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sakif/game-club-server/internal/apperror"
	"github.com/sakif/game-club-server/internal/model"
	"github.com/sakif/game-club-server/internal/repository"
)

// TESTING WITH IN-MEMORY SQLITE:
// ":memory:" creates a database that exists only for the test — fast,
// isolated, destroyed on close. The pool is capped at one connection (see
// New), so every query in a test sees the same in-memory database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// recordTestScore records a score and fails the test on error.
func recordTestScore(t *testing.T, db *DB, uid string, points int64, gameType string) *model.Score {
	t.Helper()
	score, err := db.RecordScore(context.Background(), uid, points, gameType)
	if err != nil {
		t.Fatalf("failed to record test score: %v", err)
	}
	return score
}

// insertTestUser inserts a user row directly, bypassing RecordScore — the
// only way to get a player with zero scores, which is a state the read paths
// must handle.
func insertTestUser(t *testing.T, db *DB, uid string, createdAt time.Time) {
	t.Helper()
	_, err := db.conn.Exec(
		`INSERT INTO users (id, firebase_uid, total_points, created_at) VALUES (?, ?, 0, ?)`,
		"test-"+uid, uid, createdAt,
	)
	if err != nil {
		t.Fatalf("failed to insert test user: %v", err)
	}
}

// =========================================================================
// RECORD SCORE TESTS
// =========================================================================

func TestRecordScore_FirstSighting(t *testing.T) {
	db := newTestDB(t)

	score := recordTestScore(t, db, "u1", 30, "slots")

	if score.ID == 0 {
		t.Error("RecordScore() did not assign a score ID")
	}
	if score.Points != 30 {
		t.Errorf("Points = %d, want 30", score.Points)
	}
	if score.GameType != "slots" {
		t.Errorf("GameType = %q, want %q", score.GameType, "slots")
	}
	if score.CreatedAt.IsZero() {
		t.Error("RecordScore() did not set CreatedAt")
	}

	// The user row was created lazily with the recomputed total.
	user, err := db.GetUserByExternalID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserByExternalID() error = %v", err)
	}
	if user.TotalPoints != 30 {
		t.Errorf("TotalPoints = %d, want 30", user.TotalPoints)
	}
	if score.UserID != user.ID {
		t.Errorf("score.UserID = %q, want %q", score.UserID, user.ID)
	}
}

func TestRecordScore_AggregateAlwaysMatchesSum(t *testing.T) {
	db := newTestDB(t)

	// After every write, total_points must equal the sum of all points
	// recorded so far — the recompute keeps the aggregate exact at each step.
	points := []int64{30, 20, 7, 100, 1}
	var sum int64
	for _, p := range points {
		recordTestScore(t, db, "u1", p, "slots")
		sum += p

		user, err := db.GetUserByExternalID(context.Background(), "u1")
		if err != nil {
			t.Fatalf("GetUserByExternalID() error = %v", err)
		}
		if user.TotalPoints != sum {
			t.Errorf("after recording %d: TotalPoints = %d, want %d", p, user.TotalPoints, sum)
		}
	}
}

func TestRecordScore_SelfHealsCorruptedTotal(t *testing.T) {
	db := newTestDB(t)

	recordTestScore(t, db, "u1", 30, "slots")

	// Corrupt the aggregate behind the repository's back.
	if _, err := db.conn.Exec(`UPDATE users SET total_points = 9999 WHERE firebase_uid = 'u1'`); err != nil {
		t.Fatalf("failed to corrupt total: %v", err)
	}

	// The next write recomputes from the score history, not from the stored
	// total, so the corruption disappears.
	recordTestScore(t, db, "u1", 20, "slots")

	user, err := db.GetUserByExternalID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserByExternalID() error = %v", err)
	}
	if user.TotalPoints != 50 {
		t.Errorf("TotalPoints = %d, want 50 (recomputed)", user.TotalPoints)
	}
}

func TestRecordScore_NotIdempotent(t *testing.T) {
	db := newTestDB(t)

	// Two identical submissions are two distinct game-played events.
	first := recordTestScore(t, db, "u1", 30, "slots")
	second := recordTestScore(t, db, "u1", 30, "slots")

	if first.ID == second.ID {
		t.Error("identical submissions should produce distinct score rows")
	}
	if second.ID <= first.ID {
		t.Errorf("score IDs should be monotonic: first=%d second=%d", first.ID, second.ID)
	}

	user, _ := db.GetUserByExternalID(context.Background(), "u1")
	if user.TotalPoints != 60 {
		t.Errorf("TotalPoints = %d, want 60", user.TotalPoints)
	}
}

func TestRecordScore_ConcurrentFirstSighting(t *testing.T) {
	db := newTestDB(t)

	// The classic race: many first-time submissions for the same unseen uid
	// arriving at once. The UNIQUE constraint plus the transactional upsert
	// must collapse them onto one user row with every score attributed to it.
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.RecordScore(context.Background(), "racer", 10, "slots"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent RecordScore() error = %v", err)
	}

	users, err := db.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("CountUsers() error = %v", err)
	}
	if users != 1 {
		t.Errorf("user rows = %d, want exactly 1", users)
	}

	stats, err := db.UserStats(context.Background(), "racer")
	if err != nil {
		t.Fatalf("UserStats() error = %v", err)
	}
	if stats.GamesPlayed != writers {
		t.Errorf("GamesPlayed = %d, want %d", stats.GamesPlayed, writers)
	}
	if stats.TotalPoints != writers*10 {
		t.Errorf("TotalPoints = %d, want %d", stats.TotalPoints, writers*10)
	}
}

// =========================================================================
// LEADERBOARD TESTS
// =========================================================================

func TestLeaderboard_OrderAndTieBreak(t *testing.T) {
	db := newTestDB(t)

	// u2 registers before u1; both end on 50 points; u3 trails on 40.
	recordTestScore(t, db, "u2", 50, "slots")
	time.Sleep(5 * time.Millisecond) // distinct created_at for the tie-break
	recordTestScore(t, db, "u1", 30, "slots")
	recordTestScore(t, db, "u1", 20, "slots")
	recordTestScore(t, db, "u3", 40, "pinball")

	entries, err := db.Leaderboard(context.Background(), repository.LeaderboardOptions{Limit: 10})
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}

	want := []struct {
		uid    string
		points int64
		games  int64
	}{
		{"u2", 50, 1}, // earlier registration wins the tie
		{"u1", 50, 2},
		{"u3", 40, 1},
	}
	if len(entries) != len(want) {
		t.Fatalf("Leaderboard() returned %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].FirebaseUID != w.uid {
			t.Errorf("entry %d uid = %q, want %q", i, entries[i].FirebaseUID, w.uid)
		}
		if entries[i].TotalPoints != w.points {
			t.Errorf("entry %d total = %d, want %d", i, entries[i].TotalPoints, w.points)
		}
		if entries[i].GamesPlayed != w.games {
			t.Errorf("entry %d games = %d, want %d", i, entries[i].GamesPlayed, w.games)
		}
	}
}

func TestLeaderboard_LimitBoundsResult(t *testing.T) {
	db := newTestDB(t)

	recordTestScore(t, db, "u2", 50, "slots")
	time.Sleep(5 * time.Millisecond)
	recordTestScore(t, db, "u1", 50, "slots")

	entries, err := db.Leaderboard(context.Background(), repository.LeaderboardOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Leaderboard(limit=1) returned %d entries, want 1", len(entries))
	}
	if entries[0].FirebaseUID != "u2" {
		t.Errorf("top entry = %q, want %q (earlier createdAt wins the tie)", entries[0].FirebaseUID, "u2")
	}
}

func TestLeaderboard_IncludesZeroScoreUsers(t *testing.T) {
	db := newTestDB(t)

	recordTestScore(t, db, "player", 10, "slots")
	insertTestUser(t, db, "lurker", time.Now().UTC())

	entries, err := db.Leaderboard(context.Background(), repository.LeaderboardOptions{Limit: 10})
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Leaderboard() returned %d entries, want 2", len(entries))
	}
	if entries[1].FirebaseUID != "lurker" {
		t.Fatalf("last entry = %q, want %q", entries[1].FirebaseUID, "lurker")
	}
	if entries[1].TotalPoints != 0 || entries[1].GamesPlayed != 0 {
		t.Errorf("zero-score user: total=%d games=%d, want 0/0",
			entries[1].TotalPoints, entries[1].GamesPlayed)
	}
}

func TestLeaderboard_Empty(t *testing.T) {
	db := newTestDB(t)

	entries, err := db.Leaderboard(context.Background(), repository.LeaderboardOptions{Limit: 10})
	if err != nil {
		t.Fatalf("Leaderboard() on empty db error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Leaderboard() returned %d entries, want 0", len(entries))
	}
}

// =========================================================================
// USER STATS TESTS
// =========================================================================

func TestUserStats_Computes(t *testing.T) {
	db := newTestDB(t)

	recordTestScore(t, db, "u1", 30, "slots")
	recordTestScore(t, db, "u1", 10, "pinball")
	recordTestScore(t, db, "u1", 20, "slots")

	stats, err := db.UserStats(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserStats() error = %v", err)
	}

	if stats.TotalPoints != 60 {
		t.Errorf("TotalPoints = %d, want 60", stats.TotalPoints)
	}
	if stats.GamesPlayed != 3 {
		t.Errorf("GamesPlayed = %d, want 3", stats.GamesPlayed)
	}
	if stats.BestScore == nil || *stats.BestScore != 30 {
		t.Errorf("BestScore = %v, want 30", stats.BestScore)
	}
	if stats.AverageScore == nil || *stats.AverageScore != 20.0 {
		t.Errorf("AverageScore = %v, want 20.0", stats.AverageScore)
	}
}

func TestUserStats_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.UserStats(context.Background(), "unknown-uid")
	if err == nil {
		t.Fatal("UserStats() should error for an unknown uid")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestUserStats_ZeroScoresIsNotNotFound(t *testing.T) {
	db := newTestDB(t)

	insertTestUser(t, db, "lurker", time.Now().UTC())

	stats, err := db.UserStats(context.Background(), "lurker")
	if err != nil {
		t.Fatalf("UserStats() for a zero-score user error = %v, want success", err)
	}

	if stats.GamesPlayed != 0 {
		t.Errorf("GamesPlayed = %d, want 0", stats.GamesPlayed)
	}
	if stats.TotalPoints != 0 {
		t.Errorf("TotalPoints = %d, want 0", stats.TotalPoints)
	}
	// AVG and MAX over zero rows are undefined, not zero.
	if stats.AverageScore != nil {
		t.Errorf("AverageScore = %v, want nil", *stats.AverageScore)
	}
	if stats.BestScore != nil {
		t.Errorf("BestScore = %v, want nil", *stats.BestScore)
	}
}
