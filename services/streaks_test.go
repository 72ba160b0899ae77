package services

import (
	"errors"
	"testing"
	"time"

	"ranking-service/models"

	"gorm.io/gorm"
)

func newTestStreakService(t *testing.T, db *gorm.DB, now time.Time) *StreakService {
	t.Helper()
	svc := NewStreakService(db)
	svc.Now = func() time.Time { return now }
	return svc
}

func getStreak(t *testing.T, db *gorm.DB, userID string) models.UserStreak {
	t.Helper()
	var streak models.UserStreak
	if err := db.Where("user_id = ?", userID).First(&streak).Error; err != nil {
		t.Fatalf("failed to read streak for %s: %v", userID, err)
	}
	return streak
}

func TestPerformanceScore_Weights(t *testing.T) {
	if got := PerformanceScore(80, 70, true); !almostEqual(got, 79) {
		t.Fatalf("PerformanceScore(80, 70, true) = %v, want 79", got)
	}
	if got := PerformanceScore(80, 70, false); !almostEqual(got, 69) {
		t.Fatalf("PerformanceScore(80, 70, false) = %v, want 69", got)
	}
}

func TestLogSession_CreatesScoreAndStreak(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestStreakService(t, db, day)

	score, err := svc.LogSession("u1", 80, 70, true)
	if err != nil {
		t.Fatalf("LogSession failed: %v", err)
	}
	if !almostEqual(score.PerformanceScore, 79) {
		t.Fatalf("performance score = %v, want 79", score.PerformanceScore)
	}

	streak := getStreak(t, db, "u1")
	if streak.StreakCount != 1 || streak.LongestStreak != 1 || streak.LastActiveDate != "2026-09-01" {
		t.Fatalf("unexpected streak: %+v", streak)
	}

	var sessions []models.SessionLog
	if err := db.Where("user_id = ?", "u1").Find(&sessions).Error; err != nil {
		t.Fatalf("failed to read session logs: %v", err)
	}
	if len(sessions) != 1 || sessions[0].SessionDate != "2026-09-01" {
		t.Fatalf("unexpected session logs: %+v", sessions)
	}
}

func TestLogSession_SameDayTwiceBumpsCountersNotStreak(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestStreakService(t, db, day)

	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("first session failed: %v", err)
	}
	if _, err := svc.LogSession("u1", 90, 80, true); err != nil {
		t.Fatalf("second session failed: %v", err)
	}

	streak := getStreak(t, db, "u1")
	if streak.StreakCount != 1 {
		t.Fatalf("streak = %d, want 1 (same day)", streak.StreakCount)
	}
	if streak.TotalSessions != 2 {
		t.Fatalf("streak total sessions = %d, want 2", streak.TotalSessions)
	}

	var sessionLog models.SessionLog
	if err := db.Where("user_id = ? AND session_date = ?", "u1", "2026-09-01").
		First(&sessionLog).Error; err != nil {
		t.Fatalf("failed to read session log: %v", err)
	}
	if sessionLog.SessionCount != 2 {
		t.Fatalf("session_count = %d, want 2", sessionLog.SessionCount)
	}
	if !almostEqual(sessionLog.AIAccuracyScore, 90) {
		t.Fatalf("session log not refreshed: ai=%v", sessionLog.AIAccuracyScore)
	}

	var score models.UserScore
	if err := db.Where("user_id = ?", "u1").First(&score).Error; err != nil {
		t.Fatalf("failed to read score: %v", err)
	}
	if score.TotalSessions != 2 {
		t.Fatalf("score total sessions = %d, want 2", score.TotalSessions)
	}
}

func TestLogSession_ConsecutiveDaysExtendStreak(t *testing.T) {
	db := newTestDB(t)
	day1 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestStreakService(t, db, day1)

	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("day 1 failed: %v", err)
	}
	svc.Now = func() time.Time { return day1.AddDate(0, 0, 1) }
	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("day 2 failed: %v", err)
	}

	streak := getStreak(t, db, "u1")
	if streak.StreakCount != 2 || streak.LongestStreak != 2 {
		t.Fatalf("streak = %d/%d, want 2/2", streak.StreakCount, streak.LongestStreak)
	}
}

func TestLogSession_GapResetsStreak(t *testing.T) {
	db := newTestDB(t)
	day1 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestStreakService(t, db, day1)

	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("day 1 failed: %v", err)
	}
	svc.Now = func() time.Time { return day1.AddDate(0, 0, 1) }
	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("day 2 failed: %v", err)
	}
	// skip day 3 entirely
	svc.Now = func() time.Time { return day1.AddDate(0, 0, 3) }
	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("day 4 failed: %v", err)
	}

	streak := getStreak(t, db, "u1")
	if streak.StreakCount != 1 {
		t.Fatalf("streak = %d, want 1 after gap", streak.StreakCount)
	}
	if streak.LongestStreak != 2 {
		t.Fatalf("longest = %d, want 2 preserved", streak.LongestStreak)
	}
}

func TestLogSession_FrozenStreakSurvivesOneGap(t *testing.T) {
	db := newTestDB(t)
	day1 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestStreakService(t, db, day1)

	for i := 0; i < 3; i++ {
		svc.Now = func() time.Time { return day1.AddDate(0, 0, i) }
		if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
			t.Fatalf("day %d failed: %v", i+1, err)
		}
	}
	if err := svc.FreezeStreak("u1"); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}

	// miss day 4, come back day 5 — the freeze bridges the single missed day
	// and the new session still extends the run
	svc.Now = func() time.Time { return day1.AddDate(0, 0, 4) }
	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("day 5 failed: %v", err)
	}

	streak := getStreak(t, db, "u1")
	if streak.StreakCount != 4 {
		t.Fatalf("streak = %d, want 4 (3 bridged by freeze + day 5)", streak.StreakCount)
	}
	if streak.StreakFrozen {
		t.Fatal("freeze should be consumed")
	}
}

func TestLogSession_FreezeDoesNotBridgeLongGap(t *testing.T) {
	db := newTestDB(t)
	day1 := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestStreakService(t, db, day1)

	for i := 0; i < 3; i++ {
		svc.Now = func() time.Time { return day1.AddDate(0, 0, i) }
		if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
			t.Fatalf("day %d failed: %v", i+1, err)
		}
	}
	if err := svc.FreezeStreak("u1"); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}

	// a freeze covers one missed day, not a ten-day absence
	svc.Now = func() time.Time { return day1.AddDate(0, 0, 13) }
	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("return after gap failed: %v", err)
	}

	streak := getStreak(t, db, "u1")
	if streak.StreakCount != 1 {
		t.Fatalf("streak = %d, want 1 after a multi-day gap", streak.StreakCount)
	}
	if streak.StreakFrozen {
		t.Fatal("freeze should be cleared after the gap it could not cover")
	}
}

func TestFreezeStreak_OncePerMonth(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestStreakService(t, db, day)

	if _, err := svc.LogSession("u1", 80, 70, true); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if err := svc.FreezeStreak("u1"); err != nil {
		t.Fatalf("first freeze failed: %v", err)
	}
	if err := svc.FreezeStreak("u1"); !errors.Is(err, ErrFreezeAlreadyUsed) {
		t.Fatalf("expected ErrFreezeAlreadyUsed, got %v", err)
	}

	// a freeze from more than 30 days ago is spendable again
	svc.Now = func() time.Time { return day.AddDate(0, 0, 31) }
	if err := svc.FreezeStreak("u1"); err != nil {
		t.Fatalf("freeze after 31 days failed: %v", err)
	}
}

func TestStreakStatus_Classification(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestStreakService(t, db, now)

	cases := []struct {
		lastActive string
		want       string
	}{
		{"2026-09-01", "active"},
		{"2026-08-31", "at_risk"},
		{"2026-08-29", "broken"},
		{"", "inactive"},
	}
	for _, tc := range cases {
		streak := &models.UserStreak{LastActiveDate: tc.lastActive}
		if got := svc.StreakStatus(streak); got != tc.want {
			t.Fatalf("StreakStatus(last_active=%q) = %q, want %q", tc.lastActive, got, tc.want)
		}
	}
	if got := svc.StreakStatus(nil); got != "inactive" {
		t.Fatalf("StreakStatus(nil) = %q, want inactive", got)
	}
}

func TestNextMilestone(t *testing.T) {
	cases := []struct {
		streak int
		want   int
	}{
		{0, 3},
		{3, 7},
		{14, 30},
		{99, 100},
		{100, 0},
		{250, 0},
	}
	for _, tc := range cases {
		if got := NextMilestone(tc.streak); got != tc.want {
			t.Fatalf("NextMilestone(%d) = %d, want %d", tc.streak, got, tc.want)
		}
	}
}
