package bootstrap

import (
	"database/sql"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/cloudguard-dev/cloudguard-backend/config"
	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	accountshttp "github.com/cloudguard-dev/cloudguard-backend/internal/accounts/http"
	"github.com/cloudguard-dev/cloudguard-backend/internal/alerts"
	alertshttp "github.com/cloudguard-dev/cloudguard-backend/internal/alerts/http"
	httpapi "github.com/cloudguard-dev/cloudguard-backend/internal/api/http"
	"github.com/cloudguard-dev/cloudguard-backend/internal/api/http/middleware"
	audithttp "github.com/cloudguard-dev/cloudguard-backend/internal/audit/http"
	auditrepo "github.com/cloudguard-dev/cloudguard-backend/internal/audit/repository"
	auditsvc "github.com/cloudguard-dev/cloudguard-backend/internal/audit/service"
	"github.com/cloudguard-dev/cloudguard-backend/internal/auth"
	authmw "github.com/cloudguard-dev/cloudguard-backend/internal/auth/middleware"
	"github.com/cloudguard-dev/cloudguard-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	SQLDB       *sql.DB
	Redis       *redis.Client
	AuthClient  *fbauth.Client
	Alerts      config.AlertsConfig
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestIDMiddleware())

	userRepo := users.NewRepo(dep.DB)
	accountRepo := accounts.NewRepo(dep.DB)
	auditRepo := auditrepo.NewRepo(dep.DB)
	settingsRepo := alerts.NewSettingsRepo(dep.DB)

	var historyRepo *auditrepo.HistoryRepository
	if dep.SQLDB != nil {
		historyRepo = auditrepo.NewHistoryRepository(dep.SQLDB)
	}

	if dep.AuthClient != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.AuthClient))
	}
	api.Use(auth.WithUser(userRepo))

	dispatcher := alerts.NewDispatcher(time.Duration(dep.Alerts.TimeoutMs) * time.Millisecond)
	pacer := alerts.NewPacer(time.Duration(dep.Alerts.PacingMs) * time.Millisecond)
	dedupe := alerts.NewDedupeCache(dep.Redis, time.Duration(dep.Alerts.DedupeTTLMin)*time.Minute)
	alertSvc := alerts.NewService(settingsRepo, auditRepo, dispatcher, pacer, dedupe)

	scanSvc := auditsvc.NewScanService(accountRepo, auditRepo, historyRepo)

	accountsGroup := api.Group("/accounts")
	accountshttp.New(accountRepo).Register(accountsGroup)

	audithttp.New(auditRepo, historyRepo, scanSvc).Register(api)
	alertshttp.New(settingsRepo, alertSvc).Register(api)

	return r
}
