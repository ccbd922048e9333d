package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

// HistorySnapshot is one dashboard row: the severity breakdown of a
// completed audit, denormalized across all three provider schemas so trend
// queries do not need a three-way union.
type HistorySnapshot struct {
	ID        string
	AuditID   string
	UserID    string
	Provider  domain.Provider
	Critical  int
	High      int
	Medium    int
	Low       int
	Total     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HistoryRepository handles PostgreSQL operations for audit history
// snapshots. It runs on database/sql so the worker can share the lib/pq
// connection.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// CreateOrUpdate upserts a snapshot keyed by audit_id.
func (r *HistoryRepository) CreateOrUpdate(snap *HistorySnapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}

	query := `
		INSERT INTO audit_history (
			id, audit_id, user_id, provider, critical, high, medium, low, total
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (audit_id) DO UPDATE SET
			critical = EXCLUDED.critical,
			high = EXCLUDED.high,
			medium = EXCLUDED.medium,
			low = EXCLUDED.low,
			total = EXCLUDED.total,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		snap.ID,
		snap.AuditID,
		snap.UserID,
		string(snap.Provider),
		snap.Critical,
		snap.High,
		snap.Medium,
		snap.Low,
		snap.Total,
	).Scan(&snap.CreatedAt, &snap.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create or update audit history: %w", err)
	}

	return nil
}

// GetByAuditID retrieves a snapshot by audit ID.
func (r *HistoryRepository) GetByAuditID(auditID string) (*HistorySnapshot, error) {
	query := `
		SELECT id, audit_id, user_id, provider, critical, high, medium, low, total,
		       created_at, updated_at
		FROM audit_history
		WHERE audit_id = $1
	`

	var snap HistorySnapshot
	var provider string

	err := r.db.QueryRow(query, auditID).Scan(
		&snap.ID,
		&snap.AuditID,
		&snap.UserID,
		&provider,
		&snap.Critical,
		&snap.High,
		&snap.Medium,
		&snap.Low,
		&snap.Total,
		&snap.CreatedAt,
		&snap.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrAuditNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}

	snap.Provider = domain.Provider(provider)
	return &snap, nil
}

// ListRecent returns the user's newest snapshots across all providers.
func (r *HistoryRepository) ListRecent(userID string, limit int) ([]HistorySnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, audit_id, user_id, provider, critical, high, medium, low, total,
		       created_at, updated_at
		FROM audit_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit history: %w", err)
	}
	defer rows.Close()

	var out []HistorySnapshot
	for rows.Next() {
		var snap HistorySnapshot
		var provider string
		if err := rows.Scan(
			&snap.ID, &snap.AuditID, &snap.UserID, &provider,
			&snap.Critical, &snap.High, &snap.Medium, &snap.Low, &snap.Total,
			&snap.CreatedAt, &snap.UpdatedAt,
		); err != nil {
			return nil, err
		}
		snap.Provider = domain.Provider(provider)
		out = append(out, snap)
	}
	return out, rows.Err()
}
