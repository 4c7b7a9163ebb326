package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"trendpress/internal/domain"
	"trendpress/internal/ports"
)

// ContentService is the pipeline glue: harvest trends, generate drafts,
// hand drafts to the publish engine and persist the audit trail.
type ContentService struct {
	trends    ports.TrendRepository
	drafts    ports.DraftRepository
	sessions  ports.SessionRepository
	log       ports.PublishLogRepository
	sources   []ports.TrendSource
	generator ports.Generator
	publisher Publisher
	clock     ports.Clock
	logger    *slog.Logger
}

func NewContentService(
	trends ports.TrendRepository,
	drafts ports.DraftRepository,
	sessions ports.SessionRepository,
	log ports.PublishLogRepository,
	sources []ports.TrendSource,
	generator ports.Generator,
	publisher Publisher,
	clock ports.Clock,
	logger *slog.Logger,
) *ContentService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ContentService{
		trends:    trends,
		drafts:    drafts,
		sessions:  sessions,
		log:       log,
		sources:   sources,
		generator: generator,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With("component", "content"),
	}
}

// ScrapeTrends fetches every source concurrently and stores the results,
// returning the number of newly inserted trends. A failing source logs and
// contributes nothing; the others still land.
func (s *ContentService) ScrapeTrends(ctx context.Context) (int, error) {
	var (
		mu        sync.Mutex
		harvested []domain.Trend
	)

	group, groupCtx := errgroup.WithContext(ctx)
	for _, source := range s.sources {
		group.Go(func() error {
			trends, err := source.Fetch(groupCtx)
			if err != nil {
				s.logger.Warn("trend source failed", "source", source.Name(), "error", err)
				return nil
			}
			mu.Lock()
			harvested = append(harvested, trends...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, fmt.Errorf("fetch trend sources: %w", err)
	}

	inserted := 0
	now := s.clock.Now()
	for _, trend := range harvested {
		trend.CreatedAt = now
		isNew, err := s.trends.Insert(ctx, trend)
		if err != nil {
			return inserted, fmt.Errorf("insert trend: %w", err)
		}
		if isNew {
			inserted++
		}
	}

	s.logger.Info("trend scrape finished", "harvested", len(harvested), "inserted", inserted)
	return inserted, nil
}

type TrendPage struct {
	Items      []domain.Trend
	Total      int
	Page       int
	Size       int
	TotalPages int
}

func (s *ContentService) ListTrends(ctx context.Context, page, size int) (TrendPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}

	trends, err := s.trends.List(ctx, (page-1)*size, size)
	if err != nil {
		return TrendPage{}, fmt.Errorf("list trends: %w", err)
	}
	total, err := s.trends.Count(ctx)
	if err != nil {
		return TrendPage{}, fmt.Errorf("count trends: %w", err)
	}

	return TrendPage{
		Items:      trends,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: (total + size - 1) / size,
	}, nil
}

// GenerateDraft produces a draft for the trend and marks the trend used.
func (s *ContentService) GenerateDraft(ctx context.Context, trendID int64) (domain.Draft, error) {
	trend, err := s.trends.GetByID(ctx, trendID)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("get trend by id: %w", err)
	}

	post, err := s.generator.Generate(ctx, trend)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("generate post: %w", err)
	}

	now := s.clock.Now()
	draft := domain.Draft{
		TrendID:   trend.ID,
		Title:     post.Title,
		Body:      post.Body,
		Tags:      post.Tags,
		Platform:  domain.PlatformXiaohongshu,
		Status:    domain.DraftStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	id, err := s.drafts.Insert(ctx, draft)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("insert draft: %w", err)
	}
	draft.ID = id

	if err := s.trends.MarkUsed(ctx, trend.ID); err != nil {
		return domain.Draft{}, fmt.Errorf("mark trend used: %w", err)
	}

	return draft, nil
}

func (s *ContentService) ListDrafts(ctx context.Context) ([]domain.Draft, error) {
	drafts, err := s.drafts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

func (s *ContentService) UpdateDraft(ctx context.Context, id int64, title, body string) (domain.Draft, error) {
	draft, err := s.drafts.GetByID(ctx, id)
	if err != nil {
		return domain.Draft{}, fmt.Errorf("get draft by id: %w", err)
	}

	draft.Title = title
	draft.Body = body
	draft.UpdatedAt = s.clock.Now()

	if err := s.drafts.Update(ctx, draft); err != nil {
		return domain.Draft{}, fmt.Errorf("update draft: %w", err)
	}
	return draft, nil
}

// PublishDraft runs one publish attempt for the draft against the session
// and persists exactly one audit record for it. The draft status only moves
// to published on a confirmed Success; Failed and Indeterminate leave it in
// place for the operator to decide.
func (s *ContentService) PublishDraft(ctx context.Context, draftID int64, sessionID domain.SessionID) (domain.PublishOutcome, error) {
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("get draft by id: %w", err)
	}
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("get session by id: %w", err)
	}

	req := domain.PublishRequest{
		SessionID: session.ID,
		Content: domain.Content{
			Title: draft.Title,
			Body:  draft.Body,
			Tags:  draft.Tags,
		},
	}

	outcome, err := s.publisher.Publish(ctx, req)
	if err != nil {
		return domain.PublishOutcome{}, fmt.Errorf("publish draft %d: %w", draftID, err)
	}

	record := domain.PublishRecord{
		SessionID:   session.ID,
		Platform:    session.Platform,
		Status:      outcome.Status,
		RemoteRef:   outcome.RemoteRef,
		ErrorDetail: outcome.ErrorDetail,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.log.Append(ctx, record); err != nil {
		s.logger.Warn("append publish record failed", "draft", draftID, "error", err)
	}

	if outcome.Status == domain.OutcomeSuccess {
		draft.Status = domain.DraftStatusPublished
		draft.UpdatedAt = s.clock.Now()
		if err := s.drafts.Update(ctx, draft); err != nil {
			s.logger.Warn("update draft status failed", "draft", draftID, "error", err)
		}
	}

	return outcome, nil
}

func (s *ContentService) PublishLog(ctx context.Context) ([]domain.PublishRecord, error) {
	records, err := s.log.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list publish log: %w", err)
	}
	return records, nil
}
