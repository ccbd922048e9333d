package verify

import (
	"context"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

// Verifier checks that a stored account credential is usable against its
// provider's identity endpoint. It returns a short identity description for
// the UI (caller ARN, project id, tenant).
type Verifier interface {
	Verify(ctx context.Context, a accounts.Account) (string, error)
}

// ForProvider returns the verifier for one provider.
func ForProvider(p domain.Provider) (Verifier, error) {
	switch p {
	case domain.ProviderAWS:
		return awsVerifier{}, nil
	case domain.ProviderGCP:
		return gcpVerifier{}, nil
	case domain.ProviderAzure:
		return azureVerifier{}, nil
	default:
		return nil, domain.ErrUnknownProvider
	}
}
