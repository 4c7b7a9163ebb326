package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"trendpress/internal/domain"
	"trendpress/internal/ports"
)

type PublishLogStore struct {
	db *sql.DB
}

var _ ports.PublishLogRepository = (*PublishLogStore)(nil)

func (s *PublishLogStore) Append(ctx context.Context, record domain.PublishRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO publish_log (session_id, platform, status, remote_ref, error_detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(record.SessionID), string(record.Platform), string(record.Status),
		record.RemoteRef, record.ErrorDetail, formatTime(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append publish record: %w", err)
	}
	return nil
}

func (s *PublishLogStore) List(ctx context.Context) ([]domain.PublishRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, platform, status, remote_ref, error_detail, created_at
		FROM publish_log
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list publish log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []domain.PublishRecord
	for rows.Next() {
		record, err := scanPublishRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publish record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publish log: %w", err)
	}
	return records, nil
}

func scanPublishRecord(row rowScanner) (domain.PublishRecord, error) {
	var (
		record                      domain.PublishRecord
		sessionID, platform, status string
		createdAt                   string
	)
	if err := row.Scan(&record.ID, &sessionID, &platform, &status, &record.RemoteRef, &record.ErrorDetail, &createdAt); err != nil {
		return domain.PublishRecord{}, err
	}
	record.SessionID = domain.SessionID(sessionID)
	record.Platform = domain.Platform(platform)
	record.Status = domain.OutcomeStatus(status)
	record.CreatedAt = parseTime(createdAt)
	return record, nil
}
