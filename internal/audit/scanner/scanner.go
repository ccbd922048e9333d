package scanner

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

// Scanner runs the posture checks for one provider and returns the
// findings. Scanners are best-effort: a provider API error aborts the scan
// and surfaces as a failed audit, never as a panic.
type Scanner interface {
	Scan(ctx context.Context, account accounts.Account) ([]domain.Finding, error)
}

// ForProvider returns the scanner for one provider.
func ForProvider(p domain.Provider) (Scanner, error) {
	switch p {
	case domain.ProviderAWS:
		return &awsScanner{limiter: newLimiter()}, nil
	case domain.ProviderGCP:
		return &gcpScanner{limiter: newLimiter()}, nil
	case domain.ProviderAzure:
		return &azureScanner{limiter: newLimiter()}, nil
	default:
		return nil, domain.ErrUnknownProvider
	}
}

// Provider control-plane APIs throttle hard; scans pace their per-resource
// calls instead of hammering them.
func newLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(8), 16)
}
