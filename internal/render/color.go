package render

import (
	"fmt"
	"image/color"
	"strings"
)

// Palette used across the simulation.
var (
	Background          = color.NRGBA{64, 64, 96, 255}
	LevelFill           = color.NRGBA{32, 32, 48, 255}
	CameraStroke        = color.NRGBA{0, 0, 255, 255}
	MatterExplosion     = color.NRGBA{64, 64, 255, 255}
	AntimatterExplosion = color.NRGBA{255, 64, 64, 255}
	Star                = color.NRGBA{220, 220, 255, 160}
	DebugShape          = color.NRGBA{230, 180, 60, 255}
	DebugSensor         = color.NRGBA{80, 200, 120, 255}
	Touch               = color.NRGBA{255, 255, 255, 48}
)

// ParseHexColor parses "#rrggbb" or "#rrggbbaa".
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if len(hex) == 0 || hex[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q: missing '#'", hex)
	}

	c := color.NRGBA{A: 255}
	var err error
	switch len(hex) {
	case 7:
		_, err = fmt.Sscanf(hex[1:], "%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(hex[1:], "%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		return color.NRGBA{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", hex)
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", hex, err)
	}
	return c, nil
}

// WithAlpha returns c with its alpha scaled by a in [0,1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}
	c.A = uint8(float64(c.A) * a)
	return c
}
