package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trendpress/internal/domain"
	"trendpress/internal/ports"
)

type DraftStore struct {
	db *sql.DB
}

var _ ports.DraftRepository = (*DraftStore)(nil)

func (s *DraftStore) Insert(ctx context.Context, draft domain.Draft) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (trend_id, title, body, tags, platform, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.TrendID, draft.Title, draft.Body, joinTags(draft.Tags),
		string(draft.Platform), string(draft.Status),
		formatTime(draft.CreatedAt), formatTime(draft.UpdatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert draft: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read insert id: %w", err)
	}
	return id, nil
}

func (s *DraftStore) GetByID(ctx context.Context, id int64) (domain.Draft, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, trend_id, title, body, tags, platform, status, created_at, updated_at
		FROM drafts WHERE id = ?`, id)

	draft, err := scanDraft(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Draft{}, domain.ErrDraftNotFound
		}
		return domain.Draft{}, fmt.Errorf("get draft: %w", err)
	}
	return draft, nil
}

func (s *DraftStore) List(ctx context.Context) ([]domain.Draft, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trend_id, title, body, tags, platform, status, created_at, updated_at
		FROM drafts
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var drafts []domain.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, draft)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return drafts, nil
}

func (s *DraftStore) Update(ctx context.Context, draft domain.Draft) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts
		SET title = ?, body = ?, tags = ?, platform = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		draft.Title, draft.Body, joinTags(draft.Tags),
		string(draft.Platform), string(draft.Status),
		formatTime(draft.UpdatedAt), draft.ID,
	)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

func scanDraft(row rowScanner) (domain.Draft, error) {
	var (
		draft                domain.Draft
		tags                 string
		platform, status     string
		createdAt, updatedAt string
	)
	if err := row.Scan(&draft.ID, &draft.TrendID, &draft.Title, &draft.Body, &tags, &platform, &status, &createdAt, &updatedAt); err != nil {
		return domain.Draft{}, err
	}
	draft.Tags = splitTags(tags)
	draft.Platform = domain.Platform(platform)
	draft.Status = domain.DraftStatus(status)
	draft.CreatedAt = parseTime(createdAt)
	draft.UpdatedAt = parseTime(updatedAt)
	return draft, nil
}

// Tags are hashtag tokens without spaces, so a space join round-trips.
func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}

func splitTags(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
