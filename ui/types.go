// Package ui draws the in-window panels and the pre-launch settings window.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds panel and overlay styling.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	BarFillHigh   rl.Color // Bars past their max

	// Field overlays
	VelocityArrow rl.Color
	BrushOutline  rl.Color

	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme is a dark translucent theme that stays readable over a
// bright density field.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 12, G: 18, B: 28, A: 230},
		PanelBorder:   rl.Color{R: 50, G: 80, B: 110, A: 255},
		SectionHeader: rl.Color{R: 120, G: 200, B: 255, A: 255},
		LabelColor:    rl.LightGray,
		ValueColor:    rl.RayWhite,
		BarBg:         rl.Color{R: 35, G: 40, B: 50, A: 255},
		BarFill:       rl.Color{R: 70, G: 160, B: 220, A: 255},
		BarFillHigh:   rl.Color{R: 230, G: 90, B: 80, A: 255},

		VelocityArrow: rl.Color{R: 100, G: 180, B: 255, A: 180},
		BrushOutline:  rl.Color{R: 200, G: 200, B: 200, A: 160},

		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
