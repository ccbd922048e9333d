package main

import (
	"context"
	"log"

	"github.com/cloudguard-dev/cloudguard-backend/config"
	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	cronjob "github.com/cloudguard-dev/cloudguard-backend/internal/audit/cron"
	auditrepo "github.com/cloudguard-dev/cloudguard-backend/internal/audit/repository"
	auditsvc "github.com/cloudguard-dev/cloudguard-backend/internal/audit/service"
	"github.com/cloudguard-dev/cloudguard-backend/internal/bootstrap"
	"github.com/cloudguard-dev/cloudguard-backend/internal/storage/postgres"
)

// The worker runs scheduled posture sweeps over all verified accounts and
// records history snapshots for the dashboard.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("database/sql: %v", err)
	}
	defer sqlDB.Close()

	scanSvc := auditsvc.NewScanService(
		accounts.NewRepo(pool),
		auditrepo.NewRepo(pool),
		auditrepo.NewHistoryRepository(sqlDB),
	)

	cronjob.NewScheduler(scanSvc, cfg.Scan.CronSpec).Start()

	select {}
}
