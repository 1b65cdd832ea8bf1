package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/trustflow/trustflow-backend/pkg/db/models"
	"github.com/trustflow/trustflow-backend/pkg/logger"
)

const CacheWarmJobName = "public-data-cache-warm"

type spaceLister interface {
	ListAll(ctx context.Context) ([]models.Space, error)
}

type publicDataWarmer interface {
	Warm(ctx context.Context, spaceID uuid.UUID) error
}

type CacheWarmJobParams struct {
	Logger *logger.Logger
	Spaces spaceLister
	Warmer publicDataWarmer
}

// NewCacheWarmJob refreshes the cached public payload of every space that
// has popups enabled, so embeds polling it rarely miss.
func NewCacheWarmJob(params CacheWarmJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Spaces == nil {
		return nil, fmt.Errorf("space lister required")
	}
	if params.Warmer == nil {
		return nil, fmt.Errorf("public data warmer required")
	}
	return &cacheWarmJob{logg: params.Logger, spaces: params.Spaces, warmer: params.Warmer}, nil
}

type cacheWarmJob struct {
	logg   *logger.Logger
	spaces spaceLister
	warmer publicDataWarmer
}

func (j *cacheWarmJob) Name() string { return CacheWarmJobName }

func (j *cacheWarmJob) Run(ctx context.Context) error {
	spaces, err := j.spaces.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list spaces: %w", err)
	}

	var errs error
	warmed := 0
	for i := range spaces {
		space := &spaces[i]
		if !space.WidgetSettings.PopupsEnabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		if err := j.warmer.Warm(ctx, space.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("space %s: %w", space.ID, err))
			continue
		}
		warmed++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"spaces_total":  len(spaces),
		"spaces_warmed": warmed,
		"failures":      len(multierr.Errors(errs)),
	})
	j.logg.Info(logCtx, "cron.cache_warm_complete")
	return errs
}
