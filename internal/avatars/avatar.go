// Package avatars renders initials avatars, the generated fallback used
// when a respondent has no photo.
package avatars

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultSize = 128
	MinSize     = 16
	MaxSize     = 512
)

// palette backs background=random. Picked for contrast with white text.
var palette = []color.RGBA{
	{0xE5, 0x39, 0x35, 0xFF},
	{0xD8, 0x1B, 0x60, 0xFF},
	{0x8E, 0x24, 0xAA, 0xFF},
	{0x5E, 0x35, 0xB1, 0xFF},
	{0x39, 0x49, 0xAB, 0xFF},
	{0x1E, 0x88, 0xE5, 0xFF},
	{0x00, 0x89, 0x7B, 0xFF},
	{0x43, 0xA0, 0x47, 0xFF},
	{0xF4, 0x51, 0x1E, 0xFF},
	{0x6D, 0x4C, 0x41, 0xFF},
	{0x54, 0x6E, 0x7A, 0xFF},
}

var (
	fontOnce  sync.Once
	boldFont  *opentype.Font
	fontError error
)

// Options mirror the query parameters of the avatar endpoint.
type Options struct {
	Name       string
	Size       int
	Background string
	Color      string
}

// Initials returns up to two uppercase initials, or "?" for blank names.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// Background resolves the fill colour. "random" and unparsable values map
// deterministically from the name.
func Background(name, value string) color.RGBA {
	if c, ok := parseHex(value); ok {
		return c
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return palette[h.Sum32()%uint32(len(palette))]
}

// ClampSize bounds the requested edge length.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	default:
		return size
	}
}

// RenderPNG draws a square avatar with centred initials.
func RenderPNG(opts Options) ([]byte, error) {
	size := ClampSize(opts.Size)
	fg, ok := parseHex(opts.Color)
	if !ok {
		fg = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: Background(opts.Name, opts.Background)}, image.Point{}, draw.Src)

	face, err := newFontFace(float64(size) * 0.42)
	if err != nil {
		return nil, err
	}
	defer func() { _ = face.Close() }()

	text := Initials(opts.Name)
	width := font.MeasureString(face, text).Ceil()
	metrics := face.Metrics()
	textHeight := (metrics.Ascent - metrics.Descent).Ceil()
	x := (size - width) / 2
	y := (size+textHeight)/2 - metrics.Descent.Ceil()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func newFontFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		boldFont, fontError = opentype.Parse(gobold.TTF)
	})
	if fontError != nil {
		return nil, fmt.Errorf("parse font: %w", fontError)
	}
	face, err := opentype.NewFace(boldFont, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	return face, nil
}

// parseHex accepts rgb or rrggbb with an optional leading #.
func parseHex(value string) (color.RGBA, bool) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(value) == 3 {
		value = string([]byte{value[0], value[0], value[1], value[1], value[2], value[2]})
	}
	if len(value) != 6 {
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xFF}, true
}
