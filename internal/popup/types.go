// Package popup runs the testimonial toast engine: it polls a space's public
// data, keeps a queue of approved testimonials with a single priority slot
// for newly arrived ones, and drives a timed show/hide rotation into a Sink.
package popup

import (
	"time"

	"github.com/trustflow/trustflow-backend/pkg/types"
)

// Testimonial is the read-only snapshot of a testimonial as served by the
// public data endpoint.
type Testimonial struct {
	ID                 string    `json:"id"`
	IsLiked            bool      `json:"is_liked"`
	CreatedAt          time.Time `json:"created_at"`
	RespondentName     string    `json:"respondent_name"`
	RespondentPhotoURL string    `json:"respondent_photo_url,omitempty"`
	Rating             int       `json:"rating,omitempty"`
	Content            string    `json:"content,omitempty"`
}

// PublicData is the payload of GET /api/spaces/{spaceId}/public-data.
// A nil WidgetSettings means popups are not configured.
type PublicData struct {
	WidgetSettings *types.WidgetSettings `json:"widget_settings"`
	Testimonials   []Testimonial         `json:"testimonials"`
}

// PopupsEnabled reports whether the payload asks for popups.
func (p *PublicData) PopupsEnabled() bool {
	return p != nil && p.WidgetSettings != nil && p.WidgetSettings.PopupsEnabled
}

// State is the engine's shared queue state. Index is the rotation cursor;
// it is only wrapped into range when an item is selected.
type State struct {
	Queue        []Testimonial
	LastNewestID string
	Priority     *Testimonial
	Index        int
}

func (s State) clone() State {
	out := s
	out.Queue = append([]Testimonial(nil), s.Queue...)
	if s.Priority != nil {
		p := *s.Priority
		out.Priority = &p
	}
	return out
}
