// Package widget implements the host-page embed contract: the iframe URL a
// loader script builds from its data attributes, the resize message the
// iframe posts back, and the served loader and widget page.
package widget

import (
	"net/url"
	"strings"
)

const (
	DefaultTheme  = "light"
	DefaultLayout = "grid"

	PlacementSection = "section"
	PlacementBody    = "body"

	// ResizeMessageType tags the postMessage payload the widget page sends
	// to its parent.
	ResizeMessageType = "trustflow-resize"

	embedScriptSuffix = "/embed.js"
)

// Attributes are the display options a script tag carries. Each maps to a
// data-* attribute on the tag and to a query parameter on the widget URL.
type Attributes struct {
	Theme            string
	Layout           string
	CardTheme        string
	Corners          string
	Shadow           string
	Border           string
	HoverEffect      string
	NameSize         string
	TestimonialStyle string
	Animation        string
	AnimationSpeed   string
}

// ResizeMessage is posted by the widget iframe whenever its content height
// changes.
type ResizeMessage struct {
	Type   string `json:"type"`
	Height int    `json:"height"`
}

func NewResizeMessage(height int) ResizeMessage {
	return ResizeMessage{Type: ResizeMessageType, Height: height}
}

// params lists query parameters in the order loaders emit them. theme and
// layout are always present.
func (a Attributes) params() [][2]string {
	theme := a.Theme
	if theme == "" {
		theme = DefaultTheme
	}
	layout := a.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	out := [][2]string{{"theme", theme}, {"layout", layout}}
	optional := [][2]string{
		{"card-theme", a.CardTheme},
		{"corners", a.Corners},
		{"shadow", a.Shadow},
		{"border", a.Border},
		{"hover-effect", a.HoverEffect},
		{"name-size", a.NameSize},
		{"testimonial-style", a.TestimonialStyle},
		{"animation", a.Animation},
		{"speed", a.AnimationSpeed},
	}
	for _, kv := range optional {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	return out
}

// Encode renders the ordered query string.
func (a Attributes) Encode() string {
	var b strings.Builder
	for i, kv := range a.params() {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv[1]))
	}
	return b.String()
}

// AttributesFromQuery reads the widget page query back into Attributes.
func AttributesFromQuery(q url.Values) Attributes {
	a := Attributes{
		Theme:            q.Get("theme"),
		Layout:           q.Get("layout"),
		CardTheme:        q.Get("card-theme"),
		Corners:          q.Get("corners"),
		Shadow:           q.Get("shadow"),
		Border:           q.Get("border"),
		HoverEffect:      q.Get("hover-effect"),
		NameSize:         q.Get("name-size"),
		TestimonialStyle: q.Get("testimonial-style"),
		Animation:        q.Get("animation"),
		AnimationSpeed:   q.Get("speed"),
	}
	if a.Theme == "" {
		a.Theme = DefaultTheme
	}
	if a.Layout == "" {
		a.Layout = DefaultLayout
	}
	return a
}

// URL builds {baseURL}/widget/{spaceID}?{params}. Identical inputs always
// produce identical URLs.
func URL(baseURL, spaceID string, a Attributes) string {
	return strings.TrimRight(baseURL, "/") + "/widget/" + url.PathEscape(spaceID) + "?" + a.Encode()
}

// BaseURLFromScriptSrc derives the deployment origin from the loader's own
// src, falling back when the src does not point at embed.js.
func BaseURLFromScriptSrc(src, fallback string) string {
	idx := strings.Index(src, embedScriptSuffix)
	if idx < 0 {
		return strings.TrimRight(fallback, "/")
	}
	return src[:idx]
}
