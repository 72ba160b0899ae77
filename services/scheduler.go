// services/scheduler.go
package services

import (
	"context"
	"log"

	"github.com/go-co-op/gocron/v2"
)

// StartDailyScheduler runs the leaderboard update on a cron schedule (daily in
// production; overridable so staging can run more often). Concurrent runs are
// not safe, so the job is limited to one instance at a time.
func (s *LeaderboardService) StartDailyScheduler(ctx context.Context, cronSpec string) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.CronJob(cronSpec, false),
		gocron.NewTask(func() {
			count, err := s.UpdateLeaderboard(ctx)
			if err != nil {
				log.Printf("[Scheduler] ❌ Leaderboard update failed: %v", err)
				return
			}
			log.Printf("[Scheduler] ✅ Leaderboard updated with %d users", count)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
