package popup

import (
	"net/url"
	"strings"

	"github.com/trustflow/trustflow-backend/pkg/enums"
	"github.com/trustflow/trustflow-backend/pkg/types"
)

const (
	DefaultAvatarBaseURL = "https://ui-avatars.com/api/"
	DefaultPopupMessage  = "Verified Customer"

	// FallbackAvatarURL is the inline silhouette shown when the avatar image
	// fails to load. It needs no network access.
	FallbackAvatarURL = "data:image/svg+xml;charset=utf-8,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 24 24' fill='%23cbd5e1'%3E%3Cpath d='M24 20.993V24H0v-2.996A14.977 14.977 0 0112.004 15c4.904 0 9.26 2.354 11.996 5.993zM16.002 8.999a4 4 0 11-8 0 4 4 0 018 0z' /%3E%3C/svg%3E"

	maxStars = 5
)

// Card is a render-ready popup. Content is raw text; renderers escape it.
type Card struct {
	TestimonialID     string `json:"testimonial_id"`
	Name              string `json:"name"`
	AvatarURL         string `json:"avatar_url"`
	FallbackAvatarURL string `json:"fallback_avatar_url"`
	Stars             int    `json:"stars"`
	Content           string `json:"content"`
	Message           string `json:"message"`
	Theme             string `json:"theme"`
	Position          string `json:"position"`
	Priority          bool   `json:"priority"`
}

type CardOptions struct {
	// AvatarBaseURL serves generated initials avatars; empty uses
	// DefaultAvatarBaseURL.
	AvatarBaseURL string
}

func BuildCard(t Testimonial, s types.WidgetSettings, opts CardOptions, priority bool) Card {
	theme := string(enums.CardThemeLight)
	if s.CardTheme == string(enums.CardThemeDark) {
		theme = string(enums.CardThemeDark)
	}

	position := string(enums.PopupPositionBottomLeft)
	if enums.PopupPosition(s.PopupPosition).IsValid() {
		position = s.PopupPosition
	}

	message := s.PopupMessage
	if message == "" {
		message = DefaultPopupMessage
	}

	return Card{
		TestimonialID:     t.ID,
		Name:              t.RespondentName,
		AvatarURL:         AvatarURL(t, opts.AvatarBaseURL),
		FallbackAvatarURL: FallbackAvatarURL,
		Stars:             Stars(t.Rating),
		Content:           t.Content,
		Message:           message,
		Theme:             theme,
		Position:          position,
		Priority:          priority,
	}
}

// AvatarURL returns the respondent photo, or a generated initials avatar
// keyed by the respondent's name.
func AvatarURL(t Testimonial, base string) string {
	if strings.TrimSpace(t.RespondentPhotoURL) != "" {
		return t.RespondentPhotoURL
	}
	if base == "" {
		base = DefaultAvatarBaseURL
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "background=random&color=fff&name=" + encodeComponent(t.RespondentName)
}

// Stars maps a rating to the number of stars shown; unrated counts as five.
func Stars(rating int) int {
	if rating <= 0 {
		return maxStars
	}
	if rating > maxStars {
		return maxStars
	}
	return rating
}

// encodeComponent percent-encodes like a browser's encodeURIComponent
// for the characters names contain in practice.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
