package testimonials

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/trustflow/trustflow-backend/pkg/db"
	"github.com/trustflow/trustflow-backend/pkg/db/models"
	"github.com/trustflow/trustflow-backend/pkg/enums"
	pkgerrors "github.com/trustflow/trustflow-backend/pkg/errors"
	"github.com/trustflow/trustflow-backend/pkg/pagination"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

// PublicLimit caps every public testimonial listing.
const PublicLimit = 100

type testimonialRepository interface {
	Create(ctx context.Context, t *models.Testimonial) error
	FindInSpace(ctx context.Context, spaceID, id uuid.UUID) (*models.Testimonial, error)
	List(ctx context.Context, spaceID uuid.UUID, filter ListFilter) ([]models.Testimonial, error)
	ListLiked(ctx context.Context, spaceID uuid.UUID, limit int) ([]models.Testimonial, error)
	SetLiked(ctx context.Context, spaceID, id uuid.UUID, liked bool) (bool, error)
	SoftDelete(ctx context.Context, spaceID, id uuid.UUID) (bool, error)
}

type spaceReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Space, error)
}

// CacheInvalidator drops the cached public payload of a space.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, spaceID uuid.UUID) error
}

// Service exposes testimonial operations.
type Service interface {
	Submit(ctx context.Context, spaceID uuid.UUID, input SubmitInput) (*TestimonialDTO, error)
	List(ctx context.Context, ownerID, spaceID uuid.UUID, params ListParams) (*types.PageEnvelope[TestimonialDTO], error)
	SetLiked(ctx context.Context, ownerID, spaceID, id uuid.UUID, liked bool) (*TestimonialDTO, error)
	Delete(ctx context.Context, ownerID, spaceID, id uuid.UUID) error
	Wall(ctx context.Context, spaceID uuid.UUID) ([]PublicTestimonialDTO, error)
	Export(ctx context.Context, ownerID, spaceID uuid.UUID, w io.Writer) error
}

type service struct {
	repo   testimonialRepository
	spaces spaceReader
	cache  CacheInvalidator
}

// NewService wires the testimonial service. cache may be nil.
func NewService(repo testimonialRepository, spaces spaceReader, cache CacheInvalidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("testimonial repository required")
	}
	if spaces == nil {
		return nil, fmt.Errorf("space repository required")
	}
	return &service{repo: repo, spaces: spaces, cache: cache}, nil
}

// SubmitInput is a respondent's public submission.
type SubmitInput struct {
	Type               enums.TestimonialType
	Content            string
	VideoURL           string
	Rating             *int
	RespondentName     string
	RespondentEmail    string
	RespondentPhotoURL string
}

// ListParams drives the owner listing.
type ListParams struct {
	pagination.Params
	Liked *bool
}

func (s *service) Submit(ctx context.Context, spaceID uuid.UUID, input SubmitInput) (*TestimonialDTO, error) {
	space, err := s.loadSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	t, err := buildSubmission(space, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create testimonial")
	}
	return FromModel(t), nil
}

func buildSubmission(space *models.Space, input SubmitInput) (*models.Testimonial, error) {
	name := strings.TrimSpace(input.RespondentName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "respondent name is required")
	}

	kind := input.Type
	if kind == "" {
		kind = enums.TestimonialTypeText
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid testimonial type")
	}

	t := &models.Testimonial{
		SpaceID:            space.ID,
		Type:               kind,
		RespondentName:     name,
		RespondentEmail:    optional(input.RespondentEmail),
		RespondentPhotoURL: optional(input.RespondentPhotoURL),
	}

	switch kind {
	case enums.TestimonialTypeText:
		t.Content = optional(input.Content)
		if t.Content == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "content is required")
		}
	case enums.TestimonialTypeVideo:
		t.VideoURL = optional(input.VideoURL)
		if t.VideoURL == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "video_url is required")
		}
		t.Content = optional(input.Content)
	}

	if input.Rating != nil && space.CollectStarRating {
		if *input.Rating < 1 || *input.Rating > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
		}
		rating := *input.Rating
		t.Rating = &rating
	}
	return t, nil
}

func (s *service) List(ctx context.Context, ownerID, spaceID uuid.UUID, params ListParams) (*types.PageEnvelope[TestimonialDTO], error) {
	if _, err := s.loadOwned(ctx, ownerID, spaceID); err != nil {
		return nil, err
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, spaceID, ListFilter{
		Liked:  params.Liked,
		Cursor: cursor,
		Limit:  pagination.LimitWithBuffer(limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list testimonials")
	}

	rows, next := pagination.Trim(rows, limit, func(t models.Testimonial) pagination.Cursor {
		return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID}
	})
	page := &types.PageEnvelope[TestimonialDTO]{Items: make([]TestimonialDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		page.Items = append(page.Items, *FromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) SetLiked(ctx context.Context, ownerID, spaceID, id uuid.UUID, liked bool) (*TestimonialDTO, error) {
	if _, err := s.loadOwned(ctx, ownerID, spaceID); err != nil {
		return nil, err
	}
	ok, err := s.repo.SetLiked(ctx, spaceID, id, liked)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update testimonial")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "testimonial not found")
	}
	s.invalidate(ctx, spaceID)

	t, err := s.repo.FindInSpace(ctx, spaceID, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load testimonial")
	}
	return FromModel(t), nil
}

func (s *service) Delete(ctx context.Context, ownerID, spaceID, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, ownerID, spaceID); err != nil {
		return err
	}
	ok, err := s.repo.SoftDelete(ctx, spaceID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete testimonial")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "testimonial not found")
	}
	s.invalidate(ctx, spaceID)
	return nil
}

func (s *service) Wall(ctx context.Context, spaceID uuid.UUID) ([]PublicTestimonialDTO, error) {
	if _, err := s.loadSpace(ctx, spaceID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListLiked(ctx, spaceID, PublicLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wall")
	}
	return PublicList(rows), nil
}

// ExportHeader is the first CSV record written by Export.
var ExportHeader = []string{"Date", "Name", "Email", "Rating", "Message", "Type"}

// Export writes every live testimonial of the space as CSV, newest first.
func (s *service) Export(ctx context.Context, ownerID, spaceID uuid.UUID, w io.Writer) error {
	if _, err := s.loadOwned(ctx, ownerID, spaceID); err != nil {
		return err
	}
	rows, err := s.repo.List(ctx, spaceID, ListFilter{})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list testimonials")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv")
	}
	for i := range rows {
		if err := cw.Write(exportRecord(&rows[i])); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write csv")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "flush csv")
	}
	return nil
}

func exportRecord(t *models.Testimonial) []string {
	name := t.RespondentName
	if strings.TrimSpace(name) == "" {
		name = "Anonymous"
	}
	rating := "-"
	if t.Rating != nil && *t.Rating > 0 {
		rating = strconv.Itoa(*t.Rating)
	}
	return []string{
		t.CreatedAt.UTC().Format("2006-01-02"),
		name,
		valueOrDash(t.RespondentEmail),
		rating,
		valueOrDash(t.Content),
		string(t.Type),
	}
}

func (s *service) loadSpace(ctx context.Context, spaceID uuid.UUID) (*models.Space, error) {
	space, err := s.spaces.FindByID(ctx, spaceID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load space")
	}
	return space, nil
}

func (s *service) loadOwned(ctx context.Context, ownerID, spaceID uuid.UUID) (*models.Space, error) {
	space, err := s.loadSpace(ctx, spaceID)
	if err != nil {
		return nil, err
	}
	if space.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "space not found")
	}
	return space, nil
}

func (s *service) invalidate(ctx context.Context, spaceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, spaceID)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func valueOrDash(value *string) string {
	if value == nil || *value == "" {
		return "-"
	}
	return *value
}
