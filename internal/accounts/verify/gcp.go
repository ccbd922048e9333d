package verify

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
)

const gcpScope = "https://www.googleapis.com/auth/cloud-platform"

type gcpVerifier struct{}

// Verify exchanges the stored service-account JSON for an access token.
func (gcpVerifier) Verify(ctx context.Context, a accounts.Account) (string, error) {
	if a.GCPCredentialsJSON == "" {
		return "", fmt.Errorf("gcp credentials missing")
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(a.GCPCredentialsJSON), gcpScope)
	if err != nil {
		return "", fmt.Errorf("parse gcp credentials: %w", err)
	}

	if _, err := creds.TokenSource.Token(); err != nil {
		return "", fmt.Errorf("gcp token exchange: %w", err)
	}

	project := creds.ProjectID
	if project == "" {
		project = a.GCPProjectID
	}
	return project, nil
}
