// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartMatchScheduler runs the queue matcher once a minute. Ticks are
// serialized: a tick still running when the next one is due makes the
// new one wait rather than overlap.
func (s *MatcherService) StartMatchScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.RunMatchTick()
		}),
		gocron.WithSingletonMode(gocron.LimitModeWait),
	)

	log.Println("[Matcher] scheduler started (every 1m)")
}
