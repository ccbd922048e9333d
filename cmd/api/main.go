package main

import (
	"context"
	"log"

	"github.com/cloudguard-dev/cloudguard-backend/config"
	"github.com/cloudguard-dev/cloudguard-backend/internal/auth"
	"github.com/cloudguard-dev/cloudguard-backend/internal/bootstrap"
	"github.com/cloudguard-dev/cloudguard-backend/internal/storage/postgres"
)

const serviceName = "cloudguard-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

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

	redisClient, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	deps := bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		DB:          pool,
		SQLDB:       sqlDB,
		Redis:       redisClient,
		Alerts:      cfg.Alerts,
	}

	if cfg.Firebase.CredentialsPath != "" {
		authClient, err := auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
		deps.AuthClient = authClient
	} else {
		log.Println("[warn] operation=startup message=firebase disabled, using header identity fallback")
	}

	r := bootstrap.BuildRouter(deps)

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
