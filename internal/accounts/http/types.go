package http

import "github.com/cloudguard-dev/cloudguard-backend/internal/accounts"

// Handler bundles the dependencies for account HTTP endpoints.
type Handler struct {
	repo *accounts.Repo
}

func New(repo *accounts.Repo) *Handler {
	return &Handler{repo: repo}
}
