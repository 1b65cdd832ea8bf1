package testimonials

import (
	"time"

	"github.com/google/uuid"

	"github.com/trustflow/trustflow-backend/pkg/db/models"
	"github.com/trustflow/trustflow-backend/pkg/enums"
)

// TestimonialDTO is the owner-facing view, respondent email included.
type TestimonialDTO struct {
	ID                 uuid.UUID             `json:"id"`
	SpaceID            uuid.UUID             `json:"space_id"`
	Type               enums.TestimonialType `json:"type"`
	Content            *string               `json:"content,omitempty"`
	VideoURL           *string               `json:"video_url,omitempty"`
	Rating             *int                  `json:"rating,omitempty"`
	RespondentName     string                `json:"respondent_name"`
	RespondentEmail    *string               `json:"respondent_email,omitempty"`
	RespondentPhotoURL *string               `json:"respondent_photo_url,omitempty"`
	IsLiked            bool                  `json:"is_liked"`
	CreatedAt          time.Time             `json:"created_at"`
}

// PublicTestimonialDTO is served on unauthenticated endpoints. It never
// carries the respondent email.
type PublicTestimonialDTO struct {
	ID                 uuid.UUID             `json:"id"`
	Type               enums.TestimonialType `json:"type"`
	Content            *string               `json:"content,omitempty"`
	VideoURL           *string               `json:"video_url,omitempty"`
	Rating             *int                  `json:"rating,omitempty"`
	RespondentName     string                `json:"respondent_name"`
	RespondentPhotoURL *string               `json:"respondent_photo_url,omitempty"`
	IsLiked            bool                  `json:"is_liked"`
	CreatedAt          time.Time             `json:"created_at"`
}

func FromModel(m *models.Testimonial) *TestimonialDTO {
	if m == nil {
		return nil
	}
	return &TestimonialDTO{
		ID:                 m.ID,
		SpaceID:            m.SpaceID,
		Type:               m.Type,
		Content:            m.Content,
		VideoURL:           m.VideoURL,
		Rating:             m.Rating,
		RespondentName:     m.RespondentName,
		RespondentEmail:    m.RespondentEmail,
		RespondentPhotoURL: m.RespondentPhotoURL,
		IsLiked:            m.IsLiked,
		CreatedAt:          m.CreatedAt,
	}
}

func PublicFromModel(m *models.Testimonial) PublicTestimonialDTO {
	return PublicTestimonialDTO{
		ID:                 m.ID,
		Type:               m.Type,
		Content:            m.Content,
		VideoURL:           m.VideoURL,
		Rating:             m.Rating,
		RespondentName:     m.RespondentName,
		RespondentPhotoURL: m.RespondentPhotoURL,
		IsLiked:            m.IsLiked,
		CreatedAt:          m.CreatedAt,
	}
}

// PublicList maps rows for public responses.
func PublicList(rows []models.Testimonial) []PublicTestimonialDTO {
	out := make([]PublicTestimonialDTO, 0, len(rows))
	for i := range rows {
		out = append(out, PublicFromModel(&rows[i]))
	}
	return out
}
