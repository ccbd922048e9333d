package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"golang.org/x/time/rate"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

const (
	armStorageAccountsURL = "https://management.azure.com/subscriptions/%s/providers/Microsoft.Storage/storageAccounts?api-version=2023-01-01"
	azureScope            = "https://management.azure.com/.default"
)

var azureHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

type azureScanner struct {
	limiter *rate.Limiter
}

type armStorageAccount struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	Properties struct {
		AllowBlobPublicAccess *bool  `json:"allowBlobPublicAccess"`
		SupportsHTTPSTraffic  *bool  `json:"supportsHttpsTrafficOnly"`
		MinimumTLSVersion     string `json:"minimumTlsVersion"`
	} `json:"properties"`
}

type armStorageAccountList struct {
	Value []armStorageAccount `json:"value"`
}

func (s *azureScanner) Scan(ctx context.Context, account accounts.Account) ([]domain.Finding, error) {
	if account.AzureSubscriptionID == "" {
		return nil, fmt.Errorf("azure subscription id missing")
	}

	cred, err := azidentity.NewClientSecretCredential(
		account.AzureTenantID, account.AzureClientID, account.AzureClientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{azureScope}})
	if err != nil {
		return nil, fmt.Errorf("azure token acquisition: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf(armStorageAccountsURL, account.AzureSubscriptionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.Token)

	resp, err := azureHTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list storage accounts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("azure management api returned status %d: %s", resp.StatusCode, string(body))
	}

	var list armStorageAccountList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode storage account list: %w", err)
	}

	var findings []domain.Finding
	for _, sa := range list.Value {
		findings = append(findings, checkStorageAccount(sa)...)
	}

	log.Printf("[info] operation=azure_scan message=scanned %d storage accounts, %d findings account=%s",
		len(list.Value), len(findings), account.Name)
	return findings, nil
}

func checkStorageAccount(sa armStorageAccount) []domain.Finding {
	var findings []domain.Finding

	// Absent flag defaults to allowed on older accounts.
	if sa.Properties.AllowBlobPublicAccess == nil || *sa.Properties.AllowBlobPublicAccess {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Title:          fmt.Sprintf("Storage account %s allows public blob access", sa.Name),
			Description:    "Containers in the account can be configured for anonymous read access.",
			Resource:       sa.Name,
			ResourceType:   "storage_account",
			Region:         sa.Location,
			Recommendation: "Set allowBlobPublicAccess to false on the storage account.",
		})
	}

	if sa.Properties.SupportsHTTPSTraffic != nil && !*sa.Properties.SupportsHTTPSTraffic {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Title:          fmt.Sprintf("Storage account %s accepts plain HTTP traffic", sa.Name),
			Resource:       sa.Name,
			ResourceType:   "storage_account",
			Region:         sa.Location,
			Recommendation: "Require secure transfer (HTTPS only) on the storage account.",
		})
	}

	if sa.Properties.MinimumTLSVersion != "" && sa.Properties.MinimumTLSVersion != "TLS1_2" && sa.Properties.MinimumTLSVersion != "TLS1_3" {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Title:          fmt.Sprintf("Storage account %s allows TLS below 1.2", sa.Name),
			Resource:       sa.Name,
			ResourceType:   "storage_account",
			Region:         sa.Location,
			Recommendation: "Raise minimumTlsVersion to TLS1_2.",
		})
	}

	return findings
}
