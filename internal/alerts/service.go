package alerts

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

// Sender abstracts the webhook call so tests can count sends without a
// network.
type Sender interface {
	Send(ctx context.Context, url string, payload Payload) bool
}

// AuditStore is the slice of the audit repository the dispatch path reads.
type AuditStore interface {
	GetAudit(ctx context.Context, userDBID string, provider domain.Provider, auditID string) (*domain.Audit, error)
	GetSummary(ctx context.Context, userDBID string, provider domain.Provider, auditID string) (*domain.Summary, error)
	ListFindings(ctx context.Context, userDBID string, provider domain.Provider, auditID string) ([]domain.Finding, error)
}

// SettingsStore is the slice of the settings repository the dispatch path
// reads. Settings are never mutated here.
type SettingsStore interface {
	Get(ctx context.Context, userDBID string) (*Settings, error)
}

// Service wires policy, pacing, dedupe and dispatch together. All
// dependencies are injected so tests can substitute fakes.
type Service struct {
	settings   SettingsStore
	audits     AuditStore
	dispatcher Sender
	pacer      Pacer
	dedupe     *DedupeCache
}

func NewService(settings SettingsStore, audits AuditStore, dispatcher Sender, pacer Pacer, dedupe *DedupeCache) *Service {
	if pacer == nil {
		pacer = NopPacer{}
	}
	return &Service{
		settings:   settings,
		audits:     audits,
		dispatcher: dispatcher,
		pacer:      pacer,
		dedupe:     dedupe,
	}
}

// SendTest fires the fixed test payload at a user-supplied URL so the UI
// can validate it before the integration is enabled.
func (s *Service) SendTest(ctx context.Context, url string) bool {
	return s.dispatcher.Send(ctx, url, BuildTestAlert())
}

// BatchResult reports the outcome of a per-finding dispatch pass.
type BatchResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}

// DispatchFindings sends one alert per CRITICAL/HIGH finding, serialized
// through the pacer. MEDIUM/LOW findings never reach the dispatcher and are
// not counted. A failed or suppressed send increments Skipped and the batch
// continues.
func (s *Service) DispatchFindings(ctx context.Context, userDBID string, settings *Settings, findings []domain.Finding, actx Context) BatchResult {
	var res BatchResult
	for _, f := range findings {
		severity := domain.NormalizeSeverity(f.Severity)
		if severity != domain.SeverityCritical && severity != domain.SeverityHigh {
			continue
		}

		if !ShouldAlert(settings, severity) {
			res.Skipped++
			continue
		}
		if !s.dedupe.MarkIfNew(ctx, userDBID, f.Resource, f.Title) {
			res.Skipped++
			continue
		}

		if err := s.pacer.Wait(ctx); err != nil {
			log.Printf("[warn] operation=batch_dispatch message=pacer interrupted error=%v", err)
			res.Skipped++
			continue
		}

		if s.dispatcher.Send(ctx, settings.WebhookURL, BuildFindingAlert(f, actx)) {
			res.Sent++
		} else {
			res.Skipped++
		}
	}
	return res
}

// DispatchResult is what the audit-alert endpoint returns to the caller.
type DispatchResult struct {
	Skipped         bool   `json:"skipped"`
	Reason          string `json:"reason,omitempty"`
	SummarySent     bool   `json:"summary_sent"`
	FindingsSent    int    `json:"findings_sent"`
	FindingsSkipped int    `json:"findings_skipped"`
}

// DispatchAudit sends the summary alert for an audit and, when
// includeFindings is set, individual alerts for its CRITICAL/HIGH findings.
// A disabled or URL-less integration is a no-op reported as skipped, not an
// error.
func (s *Service) DispatchAudit(ctx context.Context, userDBID string, provider domain.Provider, auditID string, includeFindings bool) (*DispatchResult, error) {
	settings, err := s.settings.Get(ctx, userDBID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings == nil || !settings.Enabled || settings.WebhookURL == "" {
		return &DispatchResult{Skipped: true, Reason: "webhook integration not configured"}, nil
	}

	audit, err := s.audits.GetAudit(ctx, userDBID, provider, auditID)
	if err != nil {
		return nil, err
	}
	actx := Context{Provider: audit.Provider, AccountName: audit.AccountName}

	summary, err := s.audits.GetSummary(ctx, userDBID, provider, auditID)
	if err != nil {
		return nil, err
	}

	res := &DispatchResult{}
	if payload := BuildSummaryAlert(*summary, actx); payload != nil {
		res.SummarySent = s.dispatcher.Send(ctx, settings.WebhookURL, *payload)
	}

	if includeFindings {
		findings, err := s.audits.ListFindings(ctx, userDBID, provider, auditID)
		if err != nil {
			return nil, err
		}
		batch := s.DispatchFindings(ctx, userDBID, settings, findings, actx)
		res.FindingsSent = batch.Sent
		res.FindingsSkipped = batch.Skipped
	}

	return res, nil
}
