package accounts

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

// Account is a connected cloud account. Credential fields are provider
// specific; unused ones stay empty. Secrets are returned to handlers but
// redacted at the JSON boundary.
type Account struct {
	ID       string          `json:"id"`
	UserID   string          `json:"-"`
	Provider domain.Provider `json:"provider"`
	Name     string          `json:"name"`

	AWSAccessKeyID string `json:"-"`
	AWSSecretKey   string `json:"-"`
	AWSRegion      string `json:"aws_region,omitempty"`

	GCPProjectID       string `json:"gcp_project_id,omitempty"`
	GCPCredentialsJSON string `json:"-"`

	AzureTenantID       string `json:"azure_tenant_id,omitempty"`
	AzureClientID       string `json:"azure_client_id,omitempty"`
	AzureClientSecret   string `json:"-"`
	AzureSubscriptionID string `json:"azure_subscription_id,omitempty"`

	Verified   bool      `json:"verified"`
	VerifiedAt time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, a *Account) error {
	if a.Name == "" {
		return fmt.Errorf("name required")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	const q = `
insert into cloud_accounts (
  id, user_id, provider, name,
  aws_access_key_id, aws_secret_key, aws_region,
  gcp_project_id, gcp_credentials_json,
  azure_tenant_id, azure_client_id, azure_client_secret, azure_subscription_id
)
values ($1::uuid, $2::uuid, $3, $4,
        nullif($5,''), nullif($6,''), nullif($7,''),
        nullif($8,''), nullif($9,''),
        nullif($10,''), nullif($11,''), nullif($12,''), nullif($13,''))
returning created_at;
`
	err := r.db.QueryRow(ctx, q,
		a.ID, a.UserID, string(a.Provider), a.Name,
		a.AWSAccessKeyID, a.AWSSecretKey, a.AWSRegion,
		a.GCPProjectID, a.GCPCredentialsJSON,
		a.AzureTenantID, a.AzureClientID, a.AzureClientSecret, a.AzureSubscriptionID,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

const accountColumns = `
id::text, user_id::text, provider, name,
coalesce(aws_access_key_id,''), coalesce(aws_secret_key,''), coalesce(aws_region,''),
coalesce(gcp_project_id,''), coalesce(gcp_credentials_json,''),
coalesce(azure_tenant_id,''), coalesce(azure_client_id,''), coalesce(azure_client_secret,''), coalesce(azure_subscription_id,''),
verified, coalesce(verified_at, 'epoch'::timestamptz), created_at`

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	var provider string
	err := row.Scan(
		&a.ID, &a.UserID, &provider, &a.Name,
		&a.AWSAccessKeyID, &a.AWSSecretKey, &a.AWSRegion,
		&a.GCPProjectID, &a.GCPCredentialsJSON,
		&a.AzureTenantID, &a.AzureClientID, &a.AzureClientSecret, &a.AzureSubscriptionID,
		&a.Verified, &a.VerifiedAt, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Provider = domain.Provider(provider)
	return &a, nil
}

func (r *Repo) List(ctx context.Context, userDBID string) ([]Account, error) {
	q := fmt.Sprintf(`select %s from cloud_accounts where user_id = $1::uuid order by created_at desc;`, accountColumns)

	rows, err := r.db.Query(ctx, q, userDBID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	out := make([]Account, 0, 8)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, userDBID, accountID string) (*Account, error) {
	q := fmt.Sprintf(`select %s from cloud_accounts where user_id = $1::uuid and id = $2::uuid;`, accountColumns)

	a, err := scanAccount(r.db.QueryRow(ctx, q, userDBID, accountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

// ListVerified returns every verified account across all users. Used by the
// scheduled scan worker.
func (r *Repo) ListVerified(ctx context.Context) ([]Account, error) {
	q := fmt.Sprintf(`select %s from cloud_accounts where verified order by created_at;`, accountColumns)

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list verified accounts: %w", err)
	}
	defer rows.Close()

	out := make([]Account, 0, 16)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *Repo) Delete(ctx context.Context, userDBID, accountID string) (bool, error) {
	const q = `delete from cloud_accounts where user_id = $1::uuid and id = $2::uuid;`
	tag, err := r.db.Exec(ctx, q, userDBID, accountID)
	if err != nil {
		return false, fmt.Errorf("delete account: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repo) MarkVerified(ctx context.Context, userDBID, accountID string) error {
	const q = `
update cloud_accounts
set verified = true, verified_at = now()
where user_id = $1::uuid and id = $2::uuid;
`
	tag, err := r.db.Exec(ctx, q, userDBID, accountID)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
