package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/service"
)

type Scheduler struct {
	scans *service.ScanService
	spec  string
}

func NewScheduler(scans *service.ScanService, spec string) *Scheduler {
	return &Scheduler{scans: scans, spec: spec}
}

// Start schedules the nightly posture sweep over all verified accounts.
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.spec, func() {
		start := time.Now()
		log.Println("[info] operation=scheduled_scan message=sweep started")

		if err := s.scans.RunAllVerified(context.Background()); err != nil {
			log.Printf("[error] operation=scheduled_scan error=%v", err)
			return
		}

		log.Printf("[info] operation=scheduled_scan message=sweep finished in %s", time.Since(start))
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Printf("Cron scheduler started (spec %q)", s.spec)
	c.Start()
}
