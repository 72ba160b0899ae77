package services

import (
	"errors"
	"log"
	"time"

	"ranking-service/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Performance score weights: AI accuracy dominates, completion is a nudge.
const (
	aiAccuracyWeight    = 0.6
	communicationWeight = 0.3
	completionWeight    = 0.1
)

var streakMilestones = []int{3, 7, 14, 30, 60, 100}

var ErrFreezeAlreadyUsed = errors.New("streak freeze already used this month")

// PerformanceScore combines the per-session sub-scores into the single number
// the ranking engine consumes.
func PerformanceScore(aiAccuracy, communication float64, completed bool) float64 {
	completion := 0.0
	if completed {
		completion = 100
	}
	return aiAccuracyWeight*aiAccuracy + communicationWeight*communication + completionWeight*completion
}

type StreakService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewStreakService(db *gorm.DB) *StreakService {
	return &StreakService{DB: db, Now: time.Now}
}

// LogSession records today's practice session for a user: upserts the session
// log, refreshes the aggregate score row and advances (or resets) the streak.
// All three writes ride one transaction.
func (s *StreakService) LogSession(userID string, aiAccuracy, communication float64, completed bool) (*models.UserScore, error) {
	now := s.Now().UTC()
	today := now.Format(dateLayout)

	var score models.UserScore
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		sessionLog := models.SessionLog{
			ID:                 uuid.NewString(),
			UserID:             userID,
			SessionDate:        today,
			AIAccuracyScore:    aiAccuracy,
			CommunicationScore: communication,
			Completed:          completed,
			SessionCount:       1,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "session_date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"ai_accuracy_score":   aiAccuracy,
				"communication_score": communication,
				"completed":           completed,
				"session_count":       gorm.Expr("session_logs.session_count + 1"),
			}),
		}).Create(&sessionLog).Error; err != nil {
			return err
		}

		completionRate := 0.0
		if completed {
			completionRate = 100
		}
		score = models.UserScore{
			UserID:                userID,
			AIAccuracyScore:       aiAccuracy,
			CommunicationScore:    communication,
			CompletionRate:        completionRate,
			PerformanceScore:      PerformanceScore(aiAccuracy, communication, completed),
			TotalSessions:         1,
			LastActivityTimestamp: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"ai_accuracy_score":       aiAccuracy,
				"communication_score":     communication,
				"completion_rate":         completionRate,
				"performance_score":       score.PerformanceScore,
				"last_activity_timestamp": now,
				"total_sessions":          gorm.Expr("user_scores.total_sessions + 1"),
			}),
		}).Create(&score).Error; err != nil {
			return err
		}

		return s.advanceStreak(tx, userID, now)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("📋 Session logged: user=%s performance=%.2f completed=%t", userID, score.PerformanceScore, completed)
	return &score, nil
}

// advanceStreak moves the streak forward for a session on `now`'s day.
// Consecutive days extend it; a frozen day bridges exactly one missed day (the
// freeze is consumed and the new session day still extends the run); any
// longer gap resets to 1, freeze or not.
func (s *StreakService) advanceStreak(tx *gorm.DB, userID string, now time.Time) error {
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)
	dayBeforeYesterday := now.AddDate(0, 0, -2).Format(dateLayout)

	var streak models.UserStreak
	err := tx.Where("user_id = ?", userID).First(&streak).Error
	if err == gorm.ErrRecordNotFound {
		streak = models.UserStreak{
			UserID:         userID,
			StreakCount:    1,
			LongestStreak:  1,
			TotalSessions:  1,
			LastActiveDate: today,
		}
		return tx.Create(&streak).Error
	}
	if err != nil {
		return err
	}

	switch {
	case streak.LastActiveDate == today:
		// already counted today
	case streak.LastActiveDate == yesterday:
		streak.StreakCount++
	case streak.StreakFrozen && streak.LastActiveDate == dayBeforeYesterday:
		streak.StreakCount++
		streak.StreakFrozen = false
	default:
		streak.StreakCount = 1
		streak.StreakFrozen = false
	}

	if streak.StreakCount > streak.LongestStreak {
		streak.LongestStreak = streak.StreakCount
	}
	streak.LastActiveDate = today
	streak.TotalSessions++
	return tx.Save(&streak).Error
}

// StreakStatus classifies how a streak is doing relative to today.
func (s *StreakService) StreakStatus(streak *models.UserStreak) string {
	if streak == nil || streak.LastActiveDate == "" {
		return "inactive"
	}
	now := s.Now().UTC()
	switch streak.LastActiveDate {
	case now.Format(dateLayout):
		return "active"
	case now.AddDate(0, 0, -1).Format(dateLayout):
		return "at_risk"
	default:
		return "broken"
	}
}

// NextMilestone returns the first milestone above the current streak, or 0
// when every milestone is already passed.
func NextMilestone(streakCount int) int {
	for _, m := range streakMilestones {
		if m > streakCount {
			return m
		}
	}
	return 0
}

// FreezeStreak marks the streak frozen so one missed day won't break it.
// One freeze per rolling 30 days.
func (s *StreakService) FreezeStreak(userID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var streak models.UserStreak
		if err := tx.Where("user_id = ?", userID).First(&streak).Error; err != nil {
			return err
		}
		now := s.Now().UTC()
		if streak.FreezeUsedDate != nil && streak.FreezeUsedDate.After(now.AddDate(0, 0, -30)) {
			return ErrFreezeAlreadyUsed
		}
		streak.StreakFrozen = true
		streak.FreezeUsedDate = &now
		return tx.Save(&streak).Error
	})
}

// GetStreaks handles GET /user/streaks.
func (s *StreakService) GetStreaks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var streak models.UserStreak
	err := s.DB.Where("user_id = ?", userID).First(&streak).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch streak data",
			"cause": err.Error(),
		})
	}
	if err == gorm.ErrRecordNotFound {
		streak = models.UserStreak{UserID: userID}
	}

	thirtyDaysAgo := s.Now().UTC().AddDate(0, 0, -30).Format(dateLayout)
	var sessions []models.SessionLog
	if err := s.DB.Where("user_id = ? AND session_date >= ?", userID, thirtyDaysAgo).
		Order("session_date DESC").
		Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch session logs",
			"cause": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"streak": fiber.Map{
			"current":          streak.StreakCount,
			"longest":          streak.LongestStreak,
			"total_sessions":   streak.TotalSessions,
			"last_active_date": streak.LastActiveDate,
			"status":           s.StreakStatus(&streak),
			"frozen":           streak.StreakFrozen,
			"freeze_used_date": streak.FreezeUsedDate,
		},
		"sessions":       sessions,
		"next_milestone": NextMilestone(streak.StreakCount),
		"streak_bonus":   StreakBonus(streak.StreakCount),
	})
}

// PostStreaks handles POST /user/streaks with an action field:
// log_session records today's practice, freeze spends the monthly freeze.
func (s *StreakService) PostStreaks(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	type Req struct {
		Action             string  `json:"action"`
		AIAccuracyScore    float64 `json:"ai_accuracy_score"`
		CommunicationScore float64 `json:"communication_score"`
		Completed          bool    `json:"completed"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON",
			"cause": err.Error(),
		})
	}

	switch req.Action {
	case "log_session":
		score, err := s.LogSession(userID, req.AIAccuracyScore, req.CommunicationScore, req.Completed)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to log session",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message":           "Session logged successfully",
			"performance_score": score.PerformanceScore,
		})
	case "freeze":
		if err := s.FreezeStreak(userID); err != nil {
			if errors.Is(err, ErrFreezeAlreadyUsed) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to freeze streak",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"message": "Streak frozen successfully",
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid action",
		})
	}
}
