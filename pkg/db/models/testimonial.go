package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trustflow/trustflow-backend/pkg/enums"
)

// Testimonial is a single respondent submission. IsLiked marks it approved
// for public display (widget, wall of love, popups).
type Testimonial struct {
	ID                 uuid.UUID             `gorm:"type:uuid;primaryKey"`
	SpaceID            uuid.UUID             `gorm:"type:uuid;not null;index"`
	Type               enums.TestimonialType `gorm:"type:text;not null"`
	Content            *string               `gorm:"type:text"`
	VideoURL           *string               `gorm:"type:text"`
	Rating             *int                  `gorm:"type:smallint"`
	RespondentName     string                `gorm:"type:text;not null"`
	RespondentEmail    *string               `gorm:"type:text"`
	RespondentPhotoURL *string               `gorm:"type:text"`
	IsLiked            bool                  `gorm:"not null"`
	CreatedAt          time.Time             `gorm:"type:timestamptz"`
	DeletedAt          gorm.DeletedAt        `gorm:"type:timestamptz;index"`
}

func (t *Testimonial) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Type == "" {
		t.Type = enums.TestimonialTypeText
	}
	return nil
}
