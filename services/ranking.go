package services

import (
	"sort"

	"ranking-service/models"
)

// Streak bonus: +5% per consecutive day, capped at +50% (10 days).
const (
	streakBonusPerDay = 0.05
	streakBonusCap    = 0.5
)

// StreakBonus returns the fractional score multiplier earned by a streak.
func StreakBonus(streakCount int) float64 {
	bonus := float64(streakCount) * streakBonusPerDay
	if bonus > streakBonusCap {
		bonus = streakBonusCap
	}
	return bonus
}

// AdjustedScore applies the streak bonus to the raw performance score.
func AdjustedScore(performanceScore float64, streakCount int) float64 {
	return performanceScore * (1 + StreakBonus(streakCount))
}

// RankUsers joins scores with streak counts, computes adjusted scores and
// assigns dense global ranks 1..N. Order: adjusted score descending, then most
// recent activity, then user ID ascending so fully equal rows still rank the
// same way on every run.
func RankUsers(scores []models.UserScore, streaks map[string]int) []models.RankedUser {
	ranked := make([]models.RankedUser, 0, len(scores))
	for _, sc := range scores {
		count := streaks[sc.UserID]
		ranked = append(ranked, models.RankedUser{
			UserScore:     sc,
			StreakCount:   count,
			StreakBonus:   StreakBonus(count),
			AdjustedScore: AdjustedScore(sc.PerformanceScore, count),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.AdjustedScore != b.AdjustedScore {
			return a.AdjustedScore > b.AdjustedScore
		}
		if !a.LastActivityTimestamp.Equal(b.LastActivityTimestamp) {
			return a.LastActivityTimestamp.After(b.LastActivityTimestamp)
		}
		return a.UserID < b.UserID
	})

	for i := range ranked {
		ranked[i].GlobalRank = i + 1
	}
	return ranked
}
