package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/internal/event"
	"github.com/entremotivator/Syncup/internal/repository"
	apperrors "github.com/entremotivator/Syncup/pkg/errors"
)

// historyPageSize is how many entries UsageHistory returns.
const historyPageSize = 50

// UsageService keeps the per-identity query ledger: a monotonically
// increasing counter against a fixed limit, plus a query history trail.
type UsageService struct {
	usageRepo   repository.UsageRepository
	historyRepo repository.HistoryRepository
	producer    *event.Producer
	limit       int
	logger      *slog.Logger
}

// NewUsageService creates a new usage service. limit is the per-identity
// query ceiling.
func NewUsageService(
	usageRepo repository.UsageRepository,
	historyRepo repository.HistoryRepository,
	producer *event.Producer,
	limit int,
	logger *slog.Logger,
) *UsageService {
	if limit <= 0 {
		limit = domain.DefaultQueryLimit
	}
	return &UsageService{
		usageRepo:   usageRepo,
		historyRepo: historyRepo,
		producer:    producer,
		limit:       limit,
		logger:      logger,
	}
}

// Limit returns the configured query ceiling.
func (s *UsageService) Limit() int {
	return s.limit
}

// GetUsage returns the identity's usage record, creating a zero record on
// first read.
func (s *UsageService) GetUsage(ctx context.Context, identityKey, email string) (*domain.UsageRecord, error) {
	return s.usageRepo.GetOrCreate(ctx, identityKey, email)
}

// IncrementUsage counts one query against the identity's quota. At the
// ceiling it refuses with a quota error and publishes quota.exceeded.
//
// The read-then-write is not atomic. One interactive session per identity
// is assumed; a lost increment under-counts, which errs in the user's favor.
func (s *UsageService) IncrementUsage(ctx context.Context, identityKey, email string) (*domain.UsageRecord, error) {
	record, err := s.usageRepo.GetOrCreate(ctx, identityKey, email)
	if err != nil {
		return nil, err
	}

	if record.Queries >= s.limit {
		_ = s.producer.PublishQuotaExceeded(ctx, identityKey, email, record.Queries, s.limit)
		s.logger.InfoContext(ctx, "query quota exhausted",
			slog.String("identity_key", identityKey),
			slog.Int("used", record.Queries),
			slog.Int("limit", s.limit),
		)
		return record, apperrors.QuotaExceeded(record.Queries, s.limit)
	}

	now := time.Now().UTC()
	record.Queries++
	record.LastQuery = &now
	if err := s.usageRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// CheckLimit reports whether the identity has quota left.
func (s *UsageService) CheckLimit(ctx context.Context, identityKey, email string) (bool, *domain.UsageRecord, error) {
	record, err := s.usageRepo.GetOrCreate(ctx, identityKey, email)
	if err != nil {
		return false, nil, err
	}
	return record.Queries < s.limit, record, nil
}

// LogQuery appends one entry to the identity's query history.
func (s *UsageService) LogQuery(ctx context.Context, identityKey, email, queryType string, queryData map[string]any) error {
	record := &domain.QueryRecord{
		IdentityKey: identityKey,
		Email:       email,
		QueryType:   queryType,
		QueryData:   queryData,
	}
	if err := s.historyRepo.Insert(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "query history write failed",
			slog.String("identity_key", identityKey),
			slog.String("query_type", queryType),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// UsageHistory returns the identity's most recent queries, newest first.
func (s *UsageService) UsageHistory(ctx context.Context, identityKey string) ([]domain.QueryRecord, error) {
	return s.historyRepo.ListRecent(ctx, identityKey, historyPageSize)
}
