package spaces

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/trustflow/trustflow-backend/pkg/db"
	"github.com/trustflow/trustflow-backend/pkg/db/models"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

const (
	MinSlugLength = 3
	MaxSlugLength = 64

	slugConstraint = "spaces_slug_key"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type spaceRepository interface {
	Create(ctx context.Context, dto CreateSpaceDTO) (*models.Space, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Space, error)
	FindBySlug(ctx context.Context, slug string) (*models.Space, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Space, error)
	SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error)
	Update(ctx context.Context, space *models.Space) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CacheInvalidator drops cached public payloads after a space changes.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, spaceID uuid.UUID) error
}

// Service exposes space operations. Every owner-scoped call answers
// NOT_FOUND for spaces the caller does not own.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateSpaceInput) (*SpaceDTO, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]SpaceDTO, error)
	Get(ctx context.Context, ownerID, spaceID uuid.UUID) (*SpaceDTO, error)
	Update(ctx context.Context, ownerID, spaceID uuid.UUID, input UpdateSpaceInput) (*SpaceDTO, error)
	UpdateWidgetSettings(ctx context.Context, ownerID, spaceID uuid.UUID, settings types.WidgetSettings) (*SpaceDTO, error)
	Delete(ctx context.Context, ownerID, spaceID uuid.UUID) error
	SlugAvailability(ctx context.Context, slug string, exclude uuid.UUID) (*SlugAvailability, error)
	PublicForm(ctx context.Context, slug string) (*PublicFormDTO, error)
}

type service struct {
	repo  spaceRepository
	cache CacheInvalidator
}

// NewService builds a space service. cache may be nil.
func NewService(repo spaceRepository, cache CacheInvalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("space repository required")
	}
	return &service{repo: repo, cache: cache}, nil
}

// CreateSpaceInput captures the fields accepted when creating a space.
type CreateSpaceInput struct {
	SpaceName         string
	Slug              string
	HeaderTitle       string
	CustomMessage     *string
	CollectStarRating *bool
}

// UpdateSpaceInput captures the mutable space fields. Nil means unchanged.
type UpdateSpaceInput struct {
	SpaceName         *string
	Slug              *string
	HeaderTitle       *string
	CustomMessage     *string
	LogoURL           *string
	CollectStarRating *bool
}

// ValidateSlug checks the public slug format.
func ValidateSlug(slug string) error {
	if len(slug) < MinSlugLength {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "slug must be at least %d characters", MinSlugLength)
	}
	if len(slug) > MaxSlugLength {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "slug must be at most %d characters", MaxSlugLength)
	}
	if !slugPattern.MatchString(slug) {
		return pkgerrors.New(pkgerrors.CodeValidation, "only lowercase letters, numbers, and dashes allowed")
	}
	return nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateSpaceInput) (*SpaceDTO, error) {
	name := strings.TrimSpace(input.SpaceName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "space name is required")
	}
	slug := strings.TrimSpace(input.Slug)
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	space, err := s.repo.Create(ctx, CreateSpaceDTO{
		OwnerID:           ownerID,
		Slug:              slug,
		SpaceName:         name,
		HeaderTitle:       strings.TrimSpace(input.HeaderTitle),
		CustomMessage:     input.CustomMessage,
		CollectStarRating: input.CollectStarRating,
	})
	if err != nil {
		if db.IsUniqueViolation(err, slugConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug not available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create space")
	}
	return FromModel(space), nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID) ([]SpaceDTO, error) {
	rows, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list spaces")
	}
	out := make([]SpaceDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, ownerID, spaceID uuid.UUID) (*SpaceDTO, error) {
	space, err := s.loadOwned(ctx, ownerID, spaceID)
	if err != nil {
		return nil, err
	}
	return FromModel(space), nil
}

func (s *service) Update(ctx context.Context, ownerID, spaceID uuid.UUID, input UpdateSpaceInput) (*SpaceDTO, error) {
	space, err := s.loadOwned(ctx, ownerID, spaceID)
	if err != nil {
		return nil, err
	}

	if input.SpaceName != nil {
		name := strings.TrimSpace(*input.SpaceName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "space name is required")
		}
		space.SpaceName = name
	}
	if input.Slug != nil && *input.Slug != space.Slug {
		slug := strings.TrimSpace(*input.Slug)
		if err := ValidateSlug(slug); err != nil {
			return nil, err
		}
		space.Slug = slug
	}
	if input.HeaderTitle != nil {
		space.HeaderTitle = strings.TrimSpace(*input.HeaderTitle)
		if space.HeaderTitle == "" {
			space.HeaderTitle = models.DefaultHeaderTitle
		}
	}
	if input.CustomMessage != nil {
		space.CustomMessage = cloneStringPtr(input.CustomMessage)
	}
	if input.LogoURL != nil {
		space.LogoURL = cloneStringPtr(input.LogoURL)
	}
	if input.CollectStarRating != nil {
		space.CollectStarRating = *input.CollectStarRating
	}

	if err := s.repo.Update(ctx, space); err != nil {
		if db.IsUniqueViolation(err, slugConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "slug not available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update space")
	}
	return FromModel(space), nil
}

func (s *service) UpdateWidgetSettings(ctx context.Context, ownerID, spaceID uuid.UUID, settings types.WidgetSettings) (*SpaceDTO, error) {
	space, err := s.loadOwned(ctx, ownerID, spaceID)
	if err != nil {
		return nil, err
	}
	space.WidgetSettings = settings
	if err := s.repo.Update(ctx, space); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update widget settings")
	}
	s.invalidate(ctx, space.ID)
	return FromModel(space), nil
}

func (s *service) Delete(ctx context.Context, ownerID, spaceID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, spaceID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, spaceID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete space")
	}
	s.invalidate(ctx, spaceID)
	return nil
}

func (s *service) SlugAvailability(ctx context.Context, slug string, exclude uuid.UUID) (*SlugAvailability, error) {
	slug = strings.TrimSpace(slug)
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}
	taken, err := s.repo.SlugTaken(ctx, slug, exclude)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	return &SlugAvailability{Slug: slug, Available: !taken}, nil
}

func (s *service) PublicForm(ctx context.Context, slug string) (*PublicFormDTO, error) {
	space, err := s.repo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load space")
	}
	return PublicFormFromModel(space), nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, spaceID uuid.UUID) (*models.Space, error) {
	space, err := s.repo.FindByID(ctx, spaceID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load space")
	}
	if space.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
	}
	return space, nil
}

// invalidate is best effort; the cache entry expires on its own.
func (s *service) invalidate(ctx context.Context, spaceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, spaceID)
}
