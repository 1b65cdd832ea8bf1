package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidgetSettingsScanSources(t *testing.T) {
	var fromString WidgetSettings
	require.NoError(t, fromString.Scan(`{"popupsEnabled":true,"popupGap":4,"cardTheme":"dark","unknown":1}`))
	assert.True(t, fromString.PopupsEnabled)
	assert.Equal(t, 4.0, fromString.PopupGap)
	assert.Equal(t, "dark", fromString.CardTheme)

	var fromBytes WidgetSettings
	require.NoError(t, fromBytes.Scan([]byte(`{"popupPosition":"bottom-right"}`)))
	assert.Equal(t, "bottom-right", fromBytes.PopupPosition)
	assert.False(t, fromBytes.PopupsEnabled)

	fromNull := WidgetSettings{PopupsEnabled: true}
	require.NoError(t, fromNull.Scan(nil))
	assert.Equal(t, WidgetSettings{}, fromNull)

	var bad WidgetSettings
	assert.Error(t, bad.Scan(42))
	assert.Error(t, bad.Scan(`{"popupsEnabled":`))
}

func TestWidgetSettingsValueIsJSONText(t *testing.T) {
	v, err := WidgetSettings{PopupsEnabled: true, PopupMessage: "Loved by founders"}.Value()
	require.NoError(t, err)
	text, ok := v.(string)
	require.True(t, ok, "expected string driver value, got %T", v)
	assert.JSONEq(t, `{"popupsEnabled":true,"popupMessage":"Loved by founders"}`, text)
}

func TestDefaultWidgetSettingsKeepPopupsOff(t *testing.T) {
	def := DefaultWidgetSettings()
	assert.False(t, def.PopupsEnabled)
	assert.Equal(t, "grid", def.Layout)
	assert.Equal(t, "bottom-left", def.PopupPosition)
}
