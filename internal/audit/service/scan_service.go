package service

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudguard-dev/cloudguard-backend/internal/accounts"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/repository"
	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/scanner"
)

// ScanService runs posture scans over connected accounts and persists the
// resulting audit and findings.
type ScanService struct {
	accounts *accounts.Repo
	audits   *repository.Repo
	history  *repository.HistoryRepository // optional; nil disables snapshots
}

func NewScanService(accountsRepo *accounts.Repo, auditRepo *repository.Repo, history *repository.HistoryRepository) *ScanService {
	return &ScanService{accounts: accountsRepo, audits: auditRepo, history: history}
}

// RunScan scans one account and returns the completed audit with its
// summary. Provider API failures mark the audit failed rather than erroring
// the request.
func (s *ScanService) RunScan(ctx context.Context, userDBID, accountID string) (*domain.Audit, *domain.Summary, error) {
	account, err := s.accounts.Get(ctx, userDBID, accountID)
	if err != nil {
		return nil, nil, err
	}

	sc, err := scanner.ForProvider(account.Provider)
	if err != nil {
		return nil, nil, err
	}

	audit := &domain.Audit{
		UserID:      userDBID,
		AccountID:   account.ID,
		AccountName: account.Name,
		Provider:    account.Provider,
	}
	if err := s.audits.CreateAudit(ctx, audit); err != nil {
		return nil, nil, err
	}

	findings, scanErr := sc.Scan(ctx, *account)
	if scanErr != nil {
		log.Printf("[warn] operation=scan message=provider scan failed provider=%s account=%s error=%v",
			account.Provider, account.Name, scanErr)
		if err := s.audits.CompleteAudit(ctx, account.Provider, audit.ID, "failed"); err != nil {
			return nil, nil, err
		}
		audit.Status = "failed"
		return audit, &domain.Summary{AuditID: audit.ID}, nil
	}

	if err := s.audits.InsertFindings(ctx, account.Provider, audit.ID, findings); err != nil {
		return nil, nil, err
	}
	if err := s.audits.CompleteAudit(ctx, account.Provider, audit.ID, "completed"); err != nil {
		return nil, nil, err
	}
	audit.Status = "completed"

	summary, err := s.audits.GetSummary(ctx, userDBID, account.Provider, audit.ID)
	if err != nil {
		return nil, nil, err
	}

	if s.history != nil {
		snap := &repository.HistorySnapshot{
			AuditID:  audit.ID,
			UserID:   userDBID,
			Provider: account.Provider,
			Critical: summary.Critical,
			High:     summary.High,
			Medium:   summary.Medium,
			Low:      summary.Low,
			Total:    summary.Total,
		}
		if err := s.history.CreateOrUpdate(snap); err != nil {
			log.Printf("[warn] operation=scan message=history snapshot failed error=%v", err)
		}
	}

	return audit, summary, nil
}

// RunAllVerified scans every verified account. Used by the scheduled
// worker; per-account failures are logged and the sweep continues.
func (s *ScanService) RunAllVerified(ctx context.Context) error {
	verified, err := s.accounts.ListVerified(ctx)
	if err != nil {
		return fmt.Errorf("list verified accounts: %w", err)
	}

	for _, a := range verified {
		if _, _, err := s.RunScan(ctx, a.UserID, a.ID); err != nil {
			log.Printf("[error] operation=scheduled_scan account=%s error=%v", a.Name, err)
		}
	}

	log.Printf("[info] operation=scheduled_scan message=swept %d accounts", len(verified))
	return nil
}
