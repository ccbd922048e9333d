package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings is the per-user alert configuration. One row per user, upserted,
// never deleted inline. The email and Slack channels are stored alongside
// the incident webhook but the dispatch path only consults the webhook
// fields.
type Settings struct {
	WebhookURL      string    `json:"webhook_url"`
	Enabled         bool      `json:"enabled"`
	AlertOnCritical bool      `json:"alert_on_critical"`
	AlertOnHigh     bool      `json:"alert_on_high"`
	EmailAddress    string    `json:"email_address"`
	EmailEnabled    bool      `json:"email_enabled"`
	SlackWebhookURL string    `json:"slack_webhook_url"`
	SlackEnabled    bool      `json:"slack_enabled"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type SettingsRepo struct {
	db *pgxpool.Pool
}

func NewSettingsRepo(db *pgxpool.Pool) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the user's settings, or nil if none have been saved yet.
func (r *SettingsRepo) Get(ctx context.Context, userDBID string) (*Settings, error) {
	const q = `
select webhook_url, enabled, alert_on_critical, alert_on_high,
       email_address, email_enabled, slack_webhook_url, slack_enabled, updated_at
from alert_settings
where user_id = $1::uuid;
`
	var s Settings
	err := r.db.QueryRow(ctx, q, userDBID).Scan(
		&s.WebhookURL, &s.Enabled, &s.AlertOnCritical, &s.AlertOnHigh,
		&s.EmailAddress, &s.EmailEnabled, &s.SlackWebhookURL, &s.SlackEnabled, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get alert settings: %w", err)
	}
	return &s, nil
}

// Upsert overwrites the user's settings row. Calling it twice with the same
// body yields the same persisted state.
func (r *SettingsRepo) Upsert(ctx context.Context, userDBID string, s Settings) (*Settings, error) {
	const q = `
insert into alert_settings (
  user_id, webhook_url, enabled, alert_on_critical, alert_on_high,
  email_address, email_enabled, slack_webhook_url, slack_enabled, updated_at
)
values ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, now())
on conflict (user_id) do update
set
  webhook_url = excluded.webhook_url,
  enabled = excluded.enabled,
  alert_on_critical = excluded.alert_on_critical,
  alert_on_high = excluded.alert_on_high,
  email_address = excluded.email_address,
  email_enabled = excluded.email_enabled,
  slack_webhook_url = excluded.slack_webhook_url,
  slack_enabled = excluded.slack_enabled,
  updated_at = now()
returning webhook_url, enabled, alert_on_critical, alert_on_high,
          email_address, email_enabled, slack_webhook_url, slack_enabled, updated_at;
`
	var out Settings
	err := r.db.QueryRow(ctx, q,
		userDBID, s.WebhookURL, s.Enabled, s.AlertOnCritical, s.AlertOnHigh,
		s.EmailAddress, s.EmailEnabled, s.SlackWebhookURL, s.SlackEnabled,
	).Scan(
		&out.WebhookURL, &out.Enabled, &out.AlertOnCritical, &out.AlertOnHigh,
		&out.EmailAddress, &out.EmailEnabled, &out.SlackWebhookURL, &out.SlackEnabled, &out.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert alert settings: %w", err)
	}
	return &out, nil
}
