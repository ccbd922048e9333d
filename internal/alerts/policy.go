package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

// Source identifies this service in outbound alert payloads.
const Source = "CloudGuard Security Dashboard"

// Alert statuses understood by the incident webhook.
const (
	StatusCritical = "CRITICAL"
	StatusWarning  = "WARNING"
	StatusInfo     = "INFO"
)

// Alert priorities understood by the incident webhook.
const (
	PriorityP1  = "P1"
	PriorityP2  = "P2"
	PriorityP3  = "P3"
	PriorityP4  = "P4"
	PriorityLow = "LOW"
)

// Payload is the normalized JSON body POSTed to a user-configured webhook.
type Payload struct {
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Priority  string            `json:"priority"`
	Source    string            `json:"source"`
	Timestamp string            `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Context carries the account identity stamped onto every alert.
type Context struct {
	Provider    domain.Provider
	AccountName string
}

// ShouldAlert reports whether a finding of the given severity should be
// dispatched under the user's settings. MEDIUM and LOW findings are never
// alertable, independent of settings.
func ShouldAlert(s *Settings, severity string) bool {
	if s == nil || !s.Enabled || s.WebhookURL == "" {
		return false
	}

	switch domain.NormalizeSeverity(severity) {
	case domain.SeverityCritical:
		return s.AlertOnCritical
	case domain.SeverityHigh:
		return s.AlertOnHigh
	default:
		return false
	}
}

// PriorityFor maps a severity label to a webhook priority. Unknown labels
// fall back to P3 rather than failing.
func PriorityFor(severity string) string {
	switch domain.NormalizeSeverity(severity) {
	case domain.SeverityCritical:
		return PriorityP1
	case domain.SeverityHigh:
		return PriorityP2
	case domain.SeverityMedium:
		return PriorityP3
	case domain.SeverityLow:
		return PriorityP4
	default:
		return PriorityP3
	}
}

// StatusFor maps a severity label to a webhook status.
func StatusFor(severity string) string {
	if domain.NormalizeSeverity(severity) == domain.SeverityCritical {
		return StatusCritical
	}
	return StatusWarning
}

// BuildFindingAlert constructs the payload for a single finding.
func BuildFindingAlert(f domain.Finding, ctx Context) Payload {
	severity := domain.NormalizeSeverity(f.Severity)
	title := fmt.Sprintf("[%s] %s: %s", strings.ToUpper(string(ctx.Provider)), severity, f.Title)

	message := f.Description
	if message == "" {
		message = title
	}

	metadata := map[string]string{
		"type":     "finding",
		"severity": severity,
		"provider": string(ctx.Provider),
		"account":  ctx.AccountName,
		"resource": f.Resource,
	}
	if f.ResourceType != "" {
		metadata["resource_type"] = f.ResourceType
	}
	if f.Region != "" {
		metadata["region"] = f.Region
	}
	if f.Recommendation != "" {
		metadata["recommendation"] = f.Recommendation
	}

	return Payload{
		Title:     title,
		Message:   message,
		Status:    StatusFor(severity),
		Priority:  PriorityFor(severity),
		Source:    Source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata:  metadata,
	}
}

// BuildSummaryAlert constructs the payload for an audit summary. Returns nil
// when the audit produced neither critical nor high findings, in which case
// no alert is sent.
func BuildSummaryAlert(sum domain.Summary, ctx Context) *Payload {
	if sum.Critical == 0 && sum.High == 0 {
		return nil
	}

	status := StatusWarning
	priority := PriorityP2
	if sum.Critical > 0 {
		status = StatusCritical
		priority = PriorityP1
	}

	title := fmt.Sprintf("[%s] Security audit: %d critical, %d high findings",
		strings.ToUpper(string(ctx.Provider)), sum.Critical, sum.High)
	message := fmt.Sprintf(
		"Audit of %s completed with %d findings: %d critical, %d high, %d medium, %d low.",
		ctx.AccountName, sum.Total, sum.Critical, sum.High, sum.Medium, sum.Low)

	return &Payload{
		Title:     title,
		Message:   message,
		Status:    status,
		Priority:  priority,
		Source:    Source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata: map[string]string{
			"type":     "audit_summary",
			"provider": string(ctx.Provider),
			"account":  ctx.AccountName,
			"critical": fmt.Sprintf("%d", sum.Critical),
			"high":     fmt.Sprintf("%d", sum.High),
			"medium":   fmt.Sprintf("%d", sum.Medium),
			"low":      fmt.Sprintf("%d", sum.Low),
			"total":    fmt.Sprintf("%d", sum.Total),
		},
	}
}

// BuildTestAlert constructs the fixed payload used to validate a webhook URL
// before the integration is enabled.
func BuildTestAlert() Payload {
	return Payload{
		Title:     "CloudGuard test alert",
		Message:   "This is a test alert from CloudGuard. Your webhook integration is working.",
		Status:    StatusInfo,
		Priority:  PriorityLow,
		Source:    Source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata:  map[string]string{"type": "test"},
	}
}
