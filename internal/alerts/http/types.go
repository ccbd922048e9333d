package http

import (
	"context"

	"github.com/cloudguard-dev/cloudguard-backend/internal/alerts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

// SettingsPort is the persistence surface the settings endpoints need.
type SettingsPort interface {
	Get(ctx context.Context, userDBID string) (*alerts.Settings, error)
	Upsert(ctx context.Context, userDBID string, s alerts.Settings) (*alerts.Settings, error)
}

// DispatchPort is the alerting surface the dispatch endpoints need.
type DispatchPort interface {
	SendTest(ctx context.Context, url string) bool
	DispatchAudit(ctx context.Context, userDBID string, provider domain.Provider, auditID string, includeFindings bool) (*alerts.DispatchResult, error)
}

// Handler bundles the dependencies for alert HTTP endpoints.
type Handler struct {
	settings SettingsPort
	svc      DispatchPort
}

func New(settings SettingsPort, svc DispatchPort) *Handler {
	return &Handler{settings: settings, svc: svc}
}
