package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudguard-dev/cloudguard-backend/internal/audit/domain"
)

func newHistoryRepoWithMock(t *testing.T) (*HistoryRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHistoryRepository(db), mock
}

func TestHistoryRepositoryCreateOrUpdate(t *testing.T) {
	t.Run("insert assigns an id and scans timestamps", func(t *testing.T) {
		repo, mock := newHistoryRepoWithMock(t)

		now := time.Now()
		mock.ExpectQuery("INSERT INTO audit_history").
			WithArgs(sqlmock.AnyArg(), "audit-1", "user-1", "aws", 1, 2, 3, 4, 10).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		snap := &HistorySnapshot{
			AuditID:  "audit-1",
			UserID:   "user-1",
			Provider: domain.ProviderAWS,
			Critical: 1,
			High:     2,
			Medium:   3,
			Low:      4,
			Total:    10,
		}

		require.NoError(t, repo.CreateOrUpdate(snap))
		assert.NotEmpty(t, snap.ID)
		assert.Equal(t, now, snap.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database errors are wrapped", func(t *testing.T) {
		repo, mock := newHistoryRepoWithMock(t)

		mock.ExpectQuery("INSERT INTO audit_history").
			WillReturnError(assert.AnError)

		err := repo.CreateOrUpdate(&HistorySnapshot{AuditID: "audit-1", UserID: "user-1", Provider: domain.ProviderGCP})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create or update audit history")
	})
}

func TestHistoryRepositoryGetByAuditID(t *testing.T) {
	columns := []string{
		"id", "audit_id", "user_id", "provider",
		"critical", "high", "medium", "low", "total",
		"created_at", "updated_at",
	}

	t.Run("found", func(t *testing.T) {
		repo, mock := newHistoryRepoWithMock(t)

		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM audit_history").
			WithArgs("audit-1").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("snap-1", "audit-1", "user-1", "azure", 0, 1, 2, 0, 3, now, now))

		snap, err := repo.GetByAuditID("audit-1")
		require.NoError(t, err)
		assert.Equal(t, "snap-1", snap.ID)
		assert.Equal(t, domain.ProviderAzure, snap.Provider)
		assert.Equal(t, 3, snap.Total)
	})

	t.Run("missing maps to ErrAuditNotFound", func(t *testing.T) {
		repo, mock := newHistoryRepoWithMock(t)

		mock.ExpectQuery("SELECT (.+) FROM audit_history").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.GetByAuditID("nope")
		assert.ErrorIs(t, err, domain.ErrAuditNotFound)
	})
}

func TestHistoryRepositoryListRecent(t *testing.T) {
	columns := []string{
		"id", "audit_id", "user_id", "provider",
		"critical", "high", "medium", "low", "total",
		"created_at", "updated_at",
	}

	t.Run("returns rows newest first", func(t *testing.T) {
		repo, mock := newHistoryRepoWithMock(t)

		now := time.Now()
		mock.ExpectQuery("SELECT (.+) FROM audit_history").
			WithArgs("user-1", 5).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("s2", "a2", "user-1", "aws", 1, 0, 0, 0, 1, now, now).
				AddRow("s1", "a1", "user-1", "gcp", 0, 0, 1, 0, 1, now.Add(-time.Hour), now.Add(-time.Hour)))

		snaps, err := repo.ListRecent("user-1", 5)
		require.NoError(t, err)
		require.Len(t, snaps, 2)
		assert.Equal(t, "a2", snaps[0].AuditID)
		assert.Equal(t, domain.ProviderGCP, snaps[1].Provider)
	})

	t.Run("non-positive limit defaults to 20", func(t *testing.T) {
		repo, mock := newHistoryRepoWithMock(t)

		mock.ExpectQuery("SELECT (.+) FROM audit_history").
			WithArgs("user-1", 20).
			WillReturnRows(sqlmock.NewRows(columns))

		snaps, err := repo.ListRecent("user-1", 0)
		require.NoError(t, err)
		assert.Empty(t, snaps)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
