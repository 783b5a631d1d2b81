package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edgechat/edgechat/pkg/storage"
)

// UsageStore implements storage.UsageStore over PostgreSQL. Rows are
// append-only; nothing here mutates or deletes them.
type UsageStore struct {
	db *sql.DB
}

// NewUsageStore creates a PostgreSQL-backed usage store
func NewUsageStore(db *sql.DB) *UsageStore {
	return &UsageStore{db: db}
}

func (s *UsageStore) Append(ctx context.Context, record storage.UsageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_usage (user_id, path, method, created_at)
		 VALUES ($1, $2, $3, $4)`,
		record.SubjectID, record.Path, record.Method, record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting usage record: %w", err)
	}
	return nil
}

func (s *UsageStore) Stats(ctx context.Context, subjectID int64, now time.Time) (storage.UsageStats, error) {
	var stats storage.UsageStats

	err := s.db.QueryRowContext(ctx,
		`SELECT
			count(*),
			count(*) FILTER (WHERE created_at >= $2),
			count(*) FILTER (WHERE created_at >= $3)
		 FROM api_usage WHERE user_id = $1`,
		subjectID, now.Add(-24*time.Hour), now.Add(-7*24*time.Hour),
	).Scan(&stats.TotalRequests, &stats.RequestsLast24h, &stats.RequestsLast7d)
	if err != nil {
		return storage.UsageStats{}, fmt.Errorf("querying usage stats: %w", err)
	}

	return stats, nil
}
