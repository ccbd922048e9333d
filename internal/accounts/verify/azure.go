package verify

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
)

const azureScope = "https://management.azure.com/.default"

type azureVerifier struct{}

// Verify acquires an AAD token with the stored client-credential triple.
func (azureVerifier) Verify(ctx context.Context, a accounts.Account) (string, error) {
	if a.AzureTenantID == "" || a.AzureClientID == "" || a.AzureClientSecret == "" {
		return "", fmt.Errorf("azure credentials missing")
	}

	cred, err := azidentity.NewClientSecretCredential(a.AzureTenantID, a.AzureClientID, a.AzureClientSecret, nil)
	if err != nil {
		return "", fmt.Errorf("azure credential: %w", err)
	}

	if _, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{azureScope}}); err != nil {
		return "", fmt.Errorf("azure token acquisition: %w", err)
	}

	return a.AzureTenantID, nil
}
