package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trustflow/trustflow-backend/pkg/types"
)

// Space is an owner's testimonial collection with its public form and
// widget configuration.
type Space struct {
	ID                uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OwnerID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	Slug              string               `gorm:"type:text;not null;uniqueIndex"`
	SpaceName         string               `gorm:"type:text;not null"`
	LogoURL           *string              `gorm:"type:text"`
	HeaderTitle       string               `gorm:"type:text;not null"`
	CustomMessage     *string              `gorm:"type:text"`
	CollectStarRating bool                 `gorm:"not null"`
	WidgetSettings    types.WidgetSettings `gorm:"type:jsonb;not null"`
	CreatedAt         time.Time            `gorm:"type:timestamptz"`
	UpdatedAt         time.Time            `gorm:"type:timestamptz"`
}

// DefaultHeaderTitle is shown on the collection form when none is set.
const DefaultHeaderTitle = "Share your experience"

func (s *Space) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.HeaderTitle == "" {
		s.HeaderTitle = DefaultHeaderTitle
	}
	return nil
}
