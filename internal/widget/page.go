package widget

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"

	"github.com/trustflow/trustflow-backend/internal/popup"
	"github.com/trustflow/trustflow-backend/internal/testimonials"
)

//go:embed assets/embed.js assets/widget.html.tmpl
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/widget.html.tmpl"))

const baseURLPlaceholder = "__TRUSTFLOW_BASE_URL__"

// EmbedJS returns the loader script served at /embed.js, with fallbackBase
// used when the script src cannot be parsed.
func EmbedJS(fallbackBase string) []byte {
	raw, err := assets.ReadFile("assets/embed.js")
	if err != nil {
		panic(err)
	}
	quoted := strings.ReplaceAll(strings.TrimRight(fallbackBase, "/"), "'", "%27")
	return bytes.ReplaceAll(raw, []byte(baseURLPlaceholder), []byte(quoted))
}

// Page is the iframe document for /widget/{spaceId}.
type Page struct {
	SpaceID      string
	Attributes   Attributes
	Testimonials []PageItem
}

type PageItem struct {
	Name              string
	AvatarURL         string
	FallbackAvatarURL string
	Stars             string
	Content           string
	VideoURL          string
}

// NewPage maps public testimonials to page items. Avatars fall back the
// same way popup cards do.
func NewPage(spaceID string, attrs Attributes, items []testimonials.PublicTestimonialDTO, avatarBase string) Page {
	page := Page{SpaceID: spaceID, Attributes: attrs, Testimonials: make([]PageItem, 0, len(items))}
	for _, it := range items {
		t := popup.Testimonial{RespondentName: it.RespondentName}
		if it.RespondentPhotoURL != nil {
			t.RespondentPhotoURL = *it.RespondentPhotoURL
		}
		rating := 0
		if it.Rating != nil {
			rating = *it.Rating
		}
		item := PageItem{
			Name:              it.RespondentName,
			AvatarURL:         popup.AvatarURL(t, avatarBase),
			FallbackAvatarURL: popup.FallbackAvatarURL,
			Stars:             strings.Repeat("★", popup.Stars(rating)),
		}
		if it.Content != nil {
			item.Content = *it.Content
		}
		if it.VideoURL != nil {
			item.VideoURL = *it.VideoURL
		}
		page.Testimonials = append(page.Testimonials, item)
	}
	return page
}

// Render writes the HTML document. All testimonial text is escaped by the
// template.
func (p Page) Render(w io.Writer) error {
	return pageTemplate.Execute(w, p)
}
