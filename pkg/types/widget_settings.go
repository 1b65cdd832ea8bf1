package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// WidgetSettings is the per-space display configuration persisted as JSONB on
// spaces.widget_settings and served verbatim in the public payload. Keys stay
// camelCase because the embed loader reads them directly.
type WidgetSettings struct {
	PopupsEnabled bool    `json:"popupsEnabled"`
	PopupPosition string  `json:"popupPosition,omitempty" validate:"omitempty,oneof=bottom-left bottom-right"`
	PopupDuration float64 `json:"popupDuration,omitempty" validate:"gte=0,lte=600"`
	PopupGap      float64 `json:"popupGap,omitempty" validate:"gte=0,lte=3600"`
	PopupDelay    float64 `json:"popupDelay,omitempty" validate:"gte=0,lte=600"`
	PopupMessage  string  `json:"popupMessage,omitempty" validate:"max=80"`
	CardTheme     string  `json:"cardTheme,omitempty" validate:"omitempty,oneof=light dark"`

	Theme            string `json:"theme,omitempty" validate:"omitempty,oneof=light dark"`
	Layout           string `json:"layout,omitempty" validate:"omitempty,oneof=grid masonry carousel list"`
	Corners          string `json:"corners,omitempty" validate:"max=32"`
	Shadow           string `json:"shadow,omitempty" validate:"max=32"`
	Border           string `json:"border,omitempty" validate:"max=32"`
	HoverEffect      string `json:"hoverEffect,omitempty" validate:"max=32"`
	NameSize         string `json:"nameSize,omitempty" validate:"max=32"`
	TestimonialStyle string `json:"testimonialStyle,omitempty" validate:"max=32"`
	Animation        string `json:"animation,omitempty" validate:"max=32"`
	AnimationSpeed   string `json:"animationSpeed,omitempty" validate:"max=32"`
}

// Value marshals the settings into JSON text for Postgres.
func (w WidgetSettings) Value() (driver.Value, error) {
	buf, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSONB into the settings. NULL yields the zero value, which
// keeps popups disabled.
func (w *WidgetSettings) Scan(value interface{}) error {
	if value == nil {
		*w = WidgetSettings{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("widget settings: unsupported scan type %T", value)
	}

	var result WidgetSettings
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return fmt.Errorf("widget settings: %w", err)
		}
	}
	*w = result
	return nil
}

// DefaultWidgetSettings is stored on new spaces. Popups start disabled.
func DefaultWidgetSettings() WidgetSettings {
	return WidgetSettings{
		PopupPosition: "bottom-left",
		CardTheme:     "light",
		Theme:         "light",
		Layout:        "grid",
	}
}
