package spaces

import (
	"time"

	"github.com/google/uuid"

	"github.com/trustflow/trustflow-backend/pkg/db/models"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

// SpaceDTO is the owner-facing view of a space.
type SpaceDTO struct {
	ID                uuid.UUID            `json:"id"`
	OwnerID           uuid.UUID            `json:"owner_id"`
	Slug              string               `json:"slug"`
	SpaceName         string               `json:"space_name"`
	LogoURL           *string              `json:"logo_url,omitempty"`
	HeaderTitle       string               `json:"header_title"`
	CustomMessage     *string              `json:"custom_message,omitempty"`
	CollectStarRating bool                 `json:"collect_star_rating"`
	WidgetSettings    types.WidgetSettings `json:"widget_settings"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// PublicFormDTO is what the public collection form needs to render.
type PublicFormDTO struct {
	ID                uuid.UUID `json:"id"`
	Slug              string    `json:"slug"`
	SpaceName         string    `json:"space_name"`
	LogoURL           *string   `json:"logo_url,omitempty"`
	HeaderTitle       string    `json:"header_title"`
	CustomMessage     *string   `json:"custom_message,omitempty"`
	CollectStarRating bool      `json:"collect_star_rating"`
}

// SlugAvailability reports whether a slug can be claimed.
type SlugAvailability struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

// CreateSpaceDTO holds creation-time data for a new space.
type CreateSpaceDTO struct {
	OwnerID           uuid.UUID
	Slug              string
	SpaceName         string
	HeaderTitle       string
	CustomMessage     *string
	CollectStarRating *bool
}

func FromModel(m *models.Space) *SpaceDTO {
	if m == nil {
		return nil
	}
	return &SpaceDTO{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		Slug:              m.Slug,
		SpaceName:         m.SpaceName,
		LogoURL:           cloneStringPtr(m.LogoURL),
		HeaderTitle:       m.HeaderTitle,
		CustomMessage:     cloneStringPtr(m.CustomMessage),
		CollectStarRating: m.CollectStarRating,
		WidgetSettings:    m.WidgetSettings,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func PublicFormFromModel(m *models.Space) *PublicFormDTO {
	if m == nil {
		return nil
	}
	return &PublicFormDTO{
		ID:                m.ID,
		Slug:              m.Slug,
		SpaceName:         m.SpaceName,
		LogoURL:           cloneStringPtr(m.LogoURL),
		HeaderTitle:       m.HeaderTitle,
		CustomMessage:     cloneStringPtr(m.CustomMessage),
		CollectStarRating: m.CollectStarRating,
	}
}

// ToModel prepares the GORM model. Star ratings are collected unless the
// caller opts out.
func (c CreateSpaceDTO) ToModel() *models.Space {
	model := &models.Space{
		OwnerID:           c.OwnerID,
		Slug:              c.Slug,
		SpaceName:         c.SpaceName,
		HeaderTitle:       c.HeaderTitle,
		CustomMessage:     cloneStringPtr(c.CustomMessage),
		CollectStarRating: true,
		WidgetSettings:    types.DefaultWidgetSettings(),
	}
	if c.CollectStarRating != nil {
		model.CollectStarRating = *c.CollectStarRating
	}
	return model
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
