// Package publicdata assembles the unauthenticated payload read by the embed
// loader and the popup engine, behind a Redis read-through cache.
package publicdata

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trustflow/trustflow-backend/internal/popup"
	"github.com/trustflow/trustflow-backend/internal/testimonials"
	"github.com/trustflow/trustflow-backend/pkg/db"
	"github.com/trustflow/trustflow-backend/pkg/db/models"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
	"github.com/trustflow/trustflow-backend/pkg/logger"
	"github.com/trustflow/trustflow-backend/pkg/redis"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

// Payload is the body of GET /api/spaces/{spaceId}/public-data.
type Payload struct {
	WidgetSettings types.WidgetSettings               `json:"widget_settings"`
	Testimonials   []testimonials.PublicTestimonialDTO `json:"testimonials"`
}

type spaceReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Space, error)
}

type likedLister interface {
	ListLiked(ctx context.Context, spaceID uuid.UUID, limit int) ([]models.Testimonial, error)
}

type Service struct {
	spaces       spaceReader
	testimonials likedLister
	cache        redis.Cache
	ttl          time.Duration
	logg         *logger.Logger
}

// NewService wires the payload service. cache may be nil, in which case
// every call reads the database.
func NewService(spaces spaceReader, lister likedLister, cache redis.Cache, ttl time.Duration, logg *logger.Logger) (*Service, error) {
	if spaces == nil || lister == nil {
		return nil, fmt.Errorf("publicdata: repositories required")
	}
	if logg == nil {
		return nil, fmt.Errorf("publicdata: logger required")
	}
	return &Service{spaces: spaces, testimonials: lister, cache: cache, ttl: ttl, logg: logg}, nil
}

// JSON returns the encoded payload, serving from cache when possible.
func (s *Service) JSON(ctx context.Context, spaceID uuid.UUID) ([]byte, error) {
	if s.cache != nil {
		raw, ok, err := s.cache.GetValue(ctx, s.cache.PublicDataKey(spaceID.String()))
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "publicdata.cache_read_failed")
		} else if ok {
			return []byte(raw), nil
		}
	}
	return s.refresh(ctx, spaceID)
}

// Build assembles the payload from the database: liked, live testimonials,
// newest first, capped at testimonials.PublicLimit.
func (s *Service) Build(ctx context.Context, spaceID uuid.UUID) (*Payload, error) {
	space, err := s.spaces.FindByID(ctx, spaceID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load space")
	}
	rows, err := s.testimonials.ListLiked(ctx, spaceID, testimonials.PublicLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list testimonials")
	}
	return &Payload{
		WidgetSettings: space.WidgetSettings,
		Testimonials:   testimonials.PublicList(rows),
	}, nil
}

// Warm rebuilds the cached payload.
func (s *Service) Warm(ctx context.Context, spaceID uuid.UUID) error {
	_, err := s.refresh(ctx, spaceID)
	return err
}

// Invalidate drops the cached payload.
func (s *Service) Invalidate(ctx context.Context, spaceID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Del(ctx, s.cache.PublicDataKey(spaceID.String())); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "publicdata.cache_invalidate_failed")
		return err
	}
	return nil
}

// PublicData lets an in-process popup controller read the payload without
// an HTTP round trip.
func (s *Service) PublicData(ctx context.Context, spaceID string) (*popup.PublicData, error) {
	id, err := uuid.Parse(spaceID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid space id")
	}
	raw, err := s.JSON(ctx, id)
	if err != nil {
		return nil, err
	}
	var out popup.PublicData
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode public data: %w", err)
	}
	return &out, nil
}

func (s *Service) refresh(ctx context.Context, spaceID uuid.UUID) ([]byte, error) {
	payload, err := s.Build(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode public data")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, s.cache.PublicDataKey(spaceID.String()), string(raw), s.ttl); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "publicdata.cache_write_failed")
		}
	}
	return raw, nil
}
