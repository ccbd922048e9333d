package http

import (
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/repository"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/service"
)

// Handler bundles the dependencies for audit HTTP endpoints. The history
// repository is optional; without it the history route reports 503.
type Handler struct {
	repo    *repository.Repo
	history *repository.HistoryRepository
	scan    *service.ScanService
}

func New(repo *repository.Repo, history *repository.HistoryRepository, scan *service.ScanService) *Handler {
	return &Handler{repo: repo, history: history, scan: scan}
}
