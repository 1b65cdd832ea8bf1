package enums

// PopupPosition is the screen corner popup cards are anchored to.
type PopupPosition string

const (
	PopupPositionBottomLeft  PopupPosition = "bottom-left"
	PopupPositionBottomRight PopupPosition = "bottom-right"
)

func (p PopupPosition) IsValid() bool {
	return p == PopupPositionBottomLeft || p == PopupPositionBottomRight
}

// CardTheme selects the popup card palette.
type CardTheme string

const (
	CardThemeLight CardTheme = "light"
	CardThemeDark  CardTheme = "dark"
)

func (c CardTheme) IsValid() bool {
	return c == CardThemeLight || c == CardThemeDark
}
