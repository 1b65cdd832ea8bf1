package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/trustflow/trustflow-backend/pkg/logger"
)

const (
	PurgeJobName     = "testimonial-purge"
	defaultRetention = 30 * 24 * time.Hour
)

type testimonialPurger interface {
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PurgeJobParams struct {
	Logger     *logger.Logger
	Repository testimonialPurger
	Retention  time.Duration
}

// NewPurgeJob hard-deletes testimonials soft-deleted longer ago than the
// retention window.
func NewPurgeJob(params PurgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("testimonial repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = defaultRetention
	}
	return &purgeJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type purgeJob struct {
	logg      *logger.Logger
	repo      testimonialPurger
	retention time.Duration
	now       func() time.Time
}

func (j *purgeJob) Name() string { return PurgeJobName }

func (j *purgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	purged, err := j.repo.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge testimonials: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": purged,
	})
	j.logg.Info(logCtx, "cron.testimonial_purge_complete")
	return nil
}
