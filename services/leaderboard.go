package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"ranking-service/models"
	"ranking-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

type LeaderboardService struct {
	DB          *gorm.DB
	ReadTimeout time.Duration
	Now         func() time.Time // injectable clock, tests pin it
	Cache       *TTLStore
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{
		DB:          db,
		ReadTimeout: 30 * time.Second,
		Now:         time.Now,
		Cache:       NewTTLStore(60*time.Second, time.Now),
	}
}

// UpdateLeaderboard recomputes today's snapshot from scratch: read everything,
// rank in memory, then replace today's cache rows and upsert history inside one
// transaction. Re-running with unchanged inputs reproduces the same snapshot,
// so a failed run is recovered by simply running again.
func (s *LeaderboardService) UpdateLeaderboard(ctx context.Context) (int, error) {
	now := s.Now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	readCtx, cancel := context.WithTimeout(ctx, s.ReadTimeout)
	defer cancel()

	var (
		scores   []models.UserScore
		streaks  []models.UserStreak
		prevRows []models.LeaderboardCacheEntry
		profiles []models.Profile
	)

	// The reads are independent of each other, but every one of them must land
	// before ranking starts. Any failure aborts the run before any write.
	g, gCtx := errgroup.WithContext(readCtx)
	g.Go(func() error {
		// Only users with at least one completed session are ranked.
		return s.DB.WithContext(gCtx).
			Where("total_sessions > 0").
			Order("performance_score DESC").
			Find(&scores).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gCtx).Find(&streaks).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gCtx).
			Select("user_id", "global_rank").
			Where("cache_date = ?", yesterday).
			Find(&prevRows).Error
	})
	g.Go(func() error {
		return s.DB.WithContext(gCtx).Find(&profiles).Error
	})
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("leaderboard read phase failed: %w", err)
	}

	streakMap := make(map[string]int, len(streaks))
	for _, st := range streaks {
		streakMap[st.UserID] = st.StreakCount
	}
	prevRankMap := make(map[string]int, len(prevRows))
	for _, row := range prevRows {
		prevRankMap[row.UserID] = row.GlobalRank
	}
	profileMap := make(map[string]models.Profile, len(profiles))
	for _, p := range profiles {
		profileMap[p.ExternalUserID] = p
	}

	ranked := RankUsers(scores, streakMap)

	entries := make([]models.LeaderboardCacheEntry, 0, len(ranked))
	history := make([]models.LeaderboardHistoryEntry, 0, len(ranked))
	for _, u := range ranked {
		username := "User"
		countryCode := u.CountryCode
		if p, ok := profileMap[u.UserID]; ok {
			if p.Username != "" {
				username = p.Username
			}
			// the profile mirror is the source of truth for country
			if p.CountryCode != "" {
				countryCode = p.CountryCode
			}
		}
		// New entrants carry their own rank as previous_rank — reported as
		// "no movement" rather than a null sentinel.
		previousRank := u.GlobalRank
		if prev, ok := prevRankMap[u.UserID]; ok {
			previousRank = prev
		}
		entries = append(entries, models.LeaderboardCacheEntry{
			ID:                    uuid.NewString(),
			UserID:                u.UserID,
			Username:              username,
			ProfileSlug:           slug.Make(username),
			GlobalRank:            u.GlobalRank,
			PreviousRank:          previousRank,
			PerformanceScore:      u.PerformanceScore,
			AdjustedScore:         u.AdjustedScore,
			StreakBonus:           u.StreakBonus,
			StreakCount:           u.StreakCount,
			CountryCode:           countryCode,
			BadgeLevel:            BadgeLevel(u.PerformanceScore),
			LastActivityTimestamp: u.LastActivityTimestamp,
			CacheDate:             today,
		})
		history = append(history, models.LeaderboardHistoryEntry{
			ID:               uuid.NewString(),
			UserID:           u.UserID,
			RankDate:         today,
			GlobalRank:       u.GlobalRank,
			PerformanceScore: u.PerformanceScore,
			AdjustedScore:    u.AdjustedScore,
			StreakCount:      u.StreakCount,
		})
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cache_date = ?", today).
			Delete(&models.LeaderboardCacheEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear today's cache: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.Create(&entries).Error; err != nil {
			return fmt.Errorf("failed to insert cache entries: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "rank_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"global_rank", "performance_score", "adjusted_score", "streak_count",
			}),
		}).Create(&history).Error; err != nil {
			return fmt.Errorf("failed to upsert history: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Snapshot changed — cached read responses are stale now.
	s.Cache.Purge()

	if utils.R2Enabled() {
		key := fmt.Sprintf("leaderboards/%s.json", today)
		if err := utils.UploadJSON(ctx, key, entries); err != nil {
			log.Printf("⚠️ Failed to archive leaderboard snapshot %s: %v", key, err)
		}
	}

	return len(entries), nil
}

// TriggerUpdate handles POST /leaderboard/update — called by the scheduler or
// admin tooling, no request body.
func (s *LeaderboardService) TriggerUpdate(c *fiber.Ctx) error {
	count, err := s.UpdateLeaderboard(c.Context())
	if err != nil {
		log.Printf("❌ Leaderboard update failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	log.Printf("✅ Leaderboard updated with %d users", count)
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   fmt.Sprintf("Leaderboard updated with %d users", count),
		"timestamp": s.Now().UTC().Format(time.RFC3339),
	})
}

// GetLeaderboard serves today's snapshot with pagination and optional country
// and timeframe filters. Page payloads are cached in the TTL store; the
// caller's own position is always looked up fresh.
func (s *LeaderboardService) GetLeaderboard(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	country := c.Query("country")
	timeframe := c.Query("timeframe", "all")
	today := s.Now().UTC().Format(dateLayout)

	filtered := func() *gorm.DB {
		q := s.DB.Model(&models.LeaderboardCacheEntry{}).Where("cache_date = ?", today)
		if country != "" && country != "all" {
			q = q.Where("country_code = ?", country)
		}
		switch timeframe {
		case "weekly":
			q = q.Where("last_activity_timestamp >= ?", s.Now().UTC().AddDate(0, 0, -7))
		case "monthly":
			q = q.Where("last_activity_timestamp >= ?", s.Now().UTC().AddDate(0, -1, 0))
		}
		return q
	}

	cacheKey := fmt.Sprintf("page:%s|%d|%d|%s|%s", today, page, limit, country, timeframe)
	payload, ok := s.Cache.Get(cacheKey)
	if !ok {
		var total int64
		if err := filtered().Count(&total).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to count leaderboard entries",
				"cause": err.Error(),
			})
		}

		var rows []models.LeaderboardCacheEntry
		if err := filtered().
			Order("global_rank ASC").
			Limit(limit).Offset((page - 1) * limit).
			Find(&rows).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch leaderboard",
				"cause": err.Error(),
			})
		}

		payload = fiber.Map{
			"leaderboard": rows,
			"pagination": fiber.Map{
				"page":        page,
				"limit":       limit,
				"total":       total,
				"total_pages": (total + int64(limit) - 1) / int64(limit),
			},
		}
		s.Cache.Set(cacheKey, payload)
	}

	var userPosition fiber.Map
	if userID, _ := c.Locals("user_id").(string); userID != "" {
		var row models.LeaderboardCacheEntry
		err := s.DB.Where("user_id = ? AND cache_date = ?", userID, today).
			First(&row).Error
		if err == nil {
			userPosition = fiber.Map{
				"rank":        row.GlobalRank,
				"score":       row.AdjustedScore,
				"streak":      row.StreakCount,
				"badge":       row.BadgeLevel,
				"rank_change": row.PreviousRank - row.GlobalRank,
			}
		} else if err != gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch user position",
				"cause": err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"leaderboard":   payload.(fiber.Map)["leaderboard"],
		"pagination":    payload.(fiber.Map)["pagination"],
		"user_position": userPosition,
		"last_updated":  s.Now().UTC().Format(time.RFC3339),
	})
}

// GetMyPosition returns the caller's own cache row for today.
func (s *LeaderboardService) GetMyPosition(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	today := s.Now().UTC().Format(dateLayout)

	var row models.LeaderboardCacheEntry
	if err := s.DB.Where("user_id = ? AND cache_date = ?", userID, today).
		First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "not ranked today",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch position",
			"cause": err.Error(),
		})
	}
	return c.JSON(row)
}
