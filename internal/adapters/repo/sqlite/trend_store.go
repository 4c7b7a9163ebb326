package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trendpress/internal/domain"
	"trendpress/internal/ports"
)

type TrendStore struct {
	db *sql.DB
}

var _ ports.TrendRepository = (*TrendStore)(nil)

func (s *TrendStore) Insert(ctx context.Context, trend domain.Trend) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO trends (title, source, score, url, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		trend.Title, trend.Source, trend.Score, trend.URL, boolToInt(trend.Used), formatTime(trend.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("insert trend: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *TrendStore) GetByID(ctx context.Context, id int64) (domain.Trend, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, source, score, url, used, created_at
		FROM trends WHERE id = ?`, id)

	trend, err := scanTrend(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Trend{}, domain.ErrTrendNotFound
		}
		return domain.Trend{}, fmt.Errorf("get trend: %w", err)
	}
	return trend, nil
}

func (s *TrendStore) List(ctx context.Context, offset, limit int) ([]domain.Trend, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, source, score, url, used, created_at
		FROM trends
		ORDER BY created_at DESC, score DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list trends: %w", err)
	}
	defer func() { _ = rows.Close() }()

	trends := make([]domain.Trend, 0, limit)
	for rows.Next() {
		trend, err := scanTrend(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trend: %w", err)
		}
		trends = append(trends, trend)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trends: %w", err)
	}
	return trends, nil
}

func (s *TrendStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trends`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count trends: %w", err)
	}
	return count, nil
}

func (s *TrendStore) MarkUsed(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE trends SET used = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark trend used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrTrendNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrend(row rowScanner) (domain.Trend, error) {
	var (
		trend     domain.Trend
		used      int
		createdAt string
	)
	if err := row.Scan(&trend.ID, &trend.Title, &trend.Source, &trend.Score, &trend.URL, &used, &createdAt); err != nil {
		return domain.Trend{}, err
	}
	trend.Used = used != 0
	trend.CreatedAt = parseTime(createdAt)
	return trend, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
