package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/webyarden/webyarden-backend/pkg/cache"
	"github.com/webyarden/webyarden-backend/pkg/logger"
)

// DiscountWindowJobParams configure the active-discount cache refresh.
type DiscountWindowJobParams struct {
	Logger    *logger.Logger
	Discounts discountWindowCounter
	Cache     cacheInvalidator
}

type discountWindowCounter interface {
	CountWindowEdges(ctx context.Context, since, now time.Time) (int64, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, names ...string)
}

// NewDiscountWindowJob builds the job that drops the cached public discount list
// whenever a code's validity window opened or closed since the previous run.
// It never writes to discounts; expiry is enforced at evaluation time.
func NewDiscountWindowJob(params DiscountWindowJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	return &discountWindowJob{
		logg:      params.Logger,
		discounts: params.Discounts,
		cache:     params.Cache,
		now:       time.Now,
	}, nil
}

type discountWindowJob struct {
	logg      *logger.Logger
	discounts discountWindowCounter
	cache     cacheInvalidator
	now       func() time.Time
	lastRun   time.Time
}

func (j *discountWindowJob) Name() string { return "discount-window" }

func (j *discountWindowJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	count, err := j.discounts.CountWindowEdges(ctx, j.lastRun, now)
	if err != nil {
		return fmt.Errorf("count discount window edges: %w", err)
	}
	if count > 0 {
		j.cache.Invalidate(ctx, cache.KeyDiscountsActive)
	}
	j.lastRun = now
	j.logg.Info(j.logg.WithField(ctx, "count", count), "discount window refresh complete")
	return nil
}
