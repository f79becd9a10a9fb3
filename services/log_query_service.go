package services

import (
	"context"
	"time"

	"emperror.dev/errors"
	"golang.org/x/sync/errgroup"

	"github.com/bdc/weather-api/models"
	"github.com/bdc/weather-api/repositories"
)

// LogQueryService executes resolved log queries against the record store
type LogQueryService interface {
	Query(ctx context.Context, plan models.QueryPlan) (*models.LogPage, error)
}

type logQueryService struct {
	repo    repositories.RequestLogRepository
	timeout time.Duration
}

// NewLogQueryService creates a new log query service. timeout <= 0 disables the query deadline.
func NewLogQueryService(repo repositories.RequestLogRepository, timeout time.Duration) LogQueryService {
	return &logQueryService{repo: repo, timeout: timeout}
}

// Query counts the matching entries and fetches the requested page concurrently.
// The two reads are not isolated from each other; a write landing between them
// can make total and items disagree slightly.
func (s *logQueryService) Query(ctx context.Context, plan models.QueryPlan) (*models.LogPage, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		total int64
		items []models.RequestLog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, plan.Filter)
		return errors.WithDetails(err, "op", "count")
	})
	g.Go(func() error {
		var err error
		items, err = s.repo.Find(gctx, plan)
		return errors.WithDetails(err, "op", "find", "page", plan.Page, "limit", plan.Limit)
	})

	if err := g.Wait(); err != nil {
		return nil, errors.WrapIf(err, "log query failed")
	}

	return models.NewLogPage(plan, items, total), nil
}
