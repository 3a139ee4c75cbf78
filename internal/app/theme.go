package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// RangeFinderTheme keeps the default look but with a neutral background
// so colors in the camera views are not tinted by the chrome.
type RangeFinderTheme struct{}

var _ fyne.Theme = (*RangeFinderTheme)(nil)

func (t *RangeFinderTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0xE6, G: 0x5C, B: 0x00, A: 0xFF} // Orange accent for sliders
	case theme.ColorNameBackground:
		if variant == theme.VariantDark {
			return color.NRGBA{R: 0x2A, G: 0x2A, B: 0x2A, A: 0xFF}
		}
		return color.NRGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	case theme.ColorNameDisabled:
		return color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *RangeFinderTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *RangeFinderTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *RangeFinderTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3 // Dense layout leaves room for the two camera views
	default:
		return theme.DefaultTheme().Size(name)
	}
}
