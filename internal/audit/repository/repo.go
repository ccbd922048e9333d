package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

// Each provider has its own audit/finding tables; findings join their audit
// through a provider-specific foreign key. The map is the only source of
// table names interpolated into queries.
type providerSchema struct {
	auditTable   string
	findingTable string
	auditFK      string
}

var providerSchemas = map[domain.Provider]providerSchema{
	domain.ProviderAWS:   {"aws_audits", "aws_findings", "aws_audit_id"},
	domain.ProviderGCP:   {"gcp_audits", "gcp_findings", "gcp_audit_id"},
	domain.ProviderAzure: {"azure_audits", "azure_findings", "azure_audit_id"},
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func schemaFor(p domain.Provider) (providerSchema, error) {
	s, ok := providerSchemas[p]
	if !ok {
		return providerSchema{}, domain.ErrUnknownProvider
	}
	return s, nil
}

// CreateAudit inserts a new audit row in "running" state and fills in its id.
func (r *Repo) CreateAudit(ctx context.Context, a *domain.Audit) error {
	s, err := schemaFor(a.Provider)
	if err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	q := fmt.Sprintf(`
insert into %s (id, user_id, account_id, account_name, status, started_at)
values ($1::uuid, $2::uuid, $3::uuid, $4, 'running', now())
returning started_at;
`, s.auditTable)

	if err := r.db.QueryRow(ctx, q, a.ID, a.UserID, a.AccountID, a.AccountName).Scan(&a.StartedAt); err != nil {
		return fmt.Errorf("create %s audit: %w", a.Provider, err)
	}
	a.Status = "running"
	return nil
}

// CompleteAudit marks the audit finished with the given terminal status.
func (r *Repo) CompleteAudit(ctx context.Context, provider domain.Provider, auditID, status string) error {
	s, err := schemaFor(provider)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`update %s set status = $2, completed_at = now() where id = $1::uuid;`, s.auditTable)
	tag, err := r.db.Exec(ctx, q, auditID, status)
	if err != nil {
		return fmt.Errorf("complete %s audit: %w", provider, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuditNotFound
	}
	return nil
}

// InsertFindings persists a batch of findings for an audit. Findings are
// immutable once written.
func (r *Repo) InsertFindings(ctx context.Context, provider domain.Provider, auditID string, findings []domain.Finding) error {
	s, err := schemaFor(provider)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`
insert into %s (id, %s, severity, title, description, resource, resource_type, region, recommendation, created_at)
values ($1::uuid, $2::uuid, $3, $4, nullif($5,''), $6, nullif($7,''), nullif($8,''), nullif($9,''), now());
`, s.findingTable, s.auditFK)

	for _, f := range findings {
		id := f.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := r.db.Exec(ctx, q, id, auditID,
			domain.NormalizeSeverity(f.Severity), f.Title, f.Description,
			f.Resource, f.ResourceType, f.Region, f.Recommendation); err != nil {
			return fmt.Errorf("insert %s finding: %w", provider, err)
		}
	}
	return nil
}

// ListAudits returns the user's audits for one provider, newest first.
func (r *Repo) ListAudits(ctx context.Context, userDBID string, provider domain.Provider) ([]domain.Audit, error) {
	s, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
select id::text, account_id::text, account_name, status, started_at, completed_at
from %s
where user_id = $1::uuid
order by started_at desc;
`, s.auditTable)

	rows, err := r.db.Query(ctx, q, userDBID)
	if err != nil {
		return nil, fmt.Errorf("list %s audits: %w", provider, err)
	}
	defer rows.Close()

	out := make([]domain.Audit, 0, 16)
	for rows.Next() {
		a := domain.Audit{UserID: userDBID, Provider: provider}
		var completedAt *time.Time
		if err := rows.Scan(&a.ID, &a.AccountID, &a.AccountName, &a.Status, &a.StartedAt, &completedAt); err != nil {
			return nil, err
		}
		if completedAt != nil {
			a.CompletedAt = *completedAt
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAudit returns one audit scoped to the user, or ErrAuditNotFound.
func (r *Repo) GetAudit(ctx context.Context, userDBID string, provider domain.Provider, auditID string) (*domain.Audit, error) {
	s, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
select id::text, account_id::text, account_name, status, started_at, completed_at
from %s
where user_id = $1::uuid and id = $2::uuid;
`, s.auditTable)

	a := domain.Audit{UserID: userDBID, Provider: provider}
	var completedAt *time.Time
	err = r.db.QueryRow(ctx, q, userDBID, auditID).
		Scan(&a.ID, &a.AccountID, &a.AccountName, &a.Status, &a.StartedAt, &completedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAuditNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s audit: %w", provider, err)
	}
	if completedAt != nil {
		a.CompletedAt = *completedAt
	}
	return &a, nil
}

// ListFindings returns all findings of an audit, most severe first.
func (r *Repo) ListFindings(ctx context.Context, userDBID string, provider domain.Provider, auditID string) ([]domain.Finding, error) {
	s, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}
	if _, err := r.GetAudit(ctx, userDBID, provider, auditID); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
select f.id::text, f.severity, f.title, coalesce(f.description,''), f.resource,
       coalesce(f.resource_type,''), coalesce(f.region,''), coalesce(f.recommendation,''), f.created_at
from %s f
where f.%s = $1::uuid
order by case f.severity
  when 'CRITICAL' then 0
  when 'HIGH' then 1
  when 'MEDIUM' then 2
  when 'LOW' then 3
  else 4
end, f.created_at;
`, s.findingTable, s.auditFK)

	rows, err := r.db.Query(ctx, q, auditID)
	if err != nil {
		return nil, fmt.Errorf("list %s findings: %w", provider, err)
	}
	defer rows.Close()

	out := make([]domain.Finding, 0, 32)
	for rows.Next() {
		f := domain.Finding{AuditID: auditID}
		if err := rows.Scan(&f.ID, &f.Severity, &f.Title, &f.Description, &f.Resource,
			&f.ResourceType, &f.Region, &f.Recommendation, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// GetSummary returns the severity breakdown of an audit.
func (r *Repo) GetSummary(ctx context.Context, userDBID string, provider domain.Provider, auditID string) (*domain.Summary, error) {
	s, err := schemaFor(provider)
	if err != nil {
		return nil, err
	}
	if _, err := r.GetAudit(ctx, userDBID, provider, auditID); err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
select
  count(*) filter (where severity = 'CRITICAL'),
  count(*) filter (where severity = 'HIGH'),
  count(*) filter (where severity = 'MEDIUM'),
  count(*) filter (where severity = 'LOW'),
  count(*)
from %s
where %s = $1::uuid;
`, s.findingTable, s.auditFK)

	sum := domain.Summary{AuditID: auditID}
	if err := r.db.QueryRow(ctx, q, auditID).
		Scan(&sum.Critical, &sum.High, &sum.Medium, &sum.Low, &sum.Total); err != nil {
		return nil, fmt.Errorf("summarize %s audit: %w", provider, err)
	}
	return &sum, nil
}
