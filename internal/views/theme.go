package views

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"kali-launcher/internal/models"
)

// variantTheme pins the default theme to one variant regardless of the
// system preference.
type variantTheme struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

func (t *variantTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, t.variant)
}

// ThemeFor returns the fyne theme for a document theme value.
func ThemeFor(name string) fyne.Theme {
	switch name {
	case models.ThemeDark:
		return &variantTheme{Theme: theme.DefaultTheme(), variant: theme.VariantDark}
	case models.ThemeLight:
		return &variantTheme{Theme: theme.DefaultTheme(), variant: theme.VariantLight}
	default:
		return theme.DefaultTheme()
	}
}

// ThemeNames lists the values offered by the theme selector.
var ThemeNames = []string{models.ThemeAuto, models.ThemeLight, models.ThemeDark}
