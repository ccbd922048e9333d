package domain

import (
	"strings"
	"time"
)

// Provider identifies which cloud a finding or audit belongs to. Each
// provider has its own audit/finding tables in the schema.
type Provider string

const (
	ProviderAWS   Provider = "aws"
	ProviderGCP   Provider = "gcp"
	ProviderAzure Provider = "azure"
)

func ParseProvider(s string) (Provider, bool) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderAWS:
		return ProviderAWS, true
	case ProviderGCP:
		return ProviderGCP, true
	case ProviderAzure:
		return ProviderAzure, true
	}
	return "", false
}

// Severity buckets for audit findings.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
)

// NormalizeSeverity upper-cases a severity label. Unknown labels pass
// through unchanged; downstream policy treats them as non-alertable.
func NormalizeSeverity(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Finding is a single security issue produced by an audit run. Immutable
// once written.
type Finding struct {
	ID             string    `json:"id"`
	AuditID        string    `json:"audit_id"`
	Severity       string    `json:"severity"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Resource       string    `json:"resource"`
	ResourceType   string    `json:"resource_type,omitempty"`
	Region         string    `json:"region,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Audit is one posture scan of a connected cloud account.
type Audit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	AccountID   string    `json:"account_id"`
	AccountName string    `json:"account_name"`
	Provider    Provider  `json:"provider"`
	Status      string    `json:"status"` // "running" | "completed" | "failed"
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}

// Summary is the severity breakdown of one audit run.
type Summary struct {
	AuditID  string `json:"audit_id"`
	Critical int    `json:"critical"`
	High     int    `json:"high"`
	Medium   int    `json:"medium"`
	Low      int    `json:"low"`
	Total    int    `json:"total"`
}
