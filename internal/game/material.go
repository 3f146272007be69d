package game

import (
	"image/color"
	"strings"

	"antimatter/internal/render"
)

// Material is a bit set describing what an entity is made of. Two materials
// collide harmlessly when they share a bit.
type Material uint16

const (
	Matter     Material = 1 << 0
	Antimatter Material = 1 << 1
	Bimatter            = Matter | Antimatter
)

// Compatible reports whether a and b share at least one bit.
func Compatible(a, b Material) bool {
	return a&b != 0
}

// ExplosionColor returns the explosion palette for m. Matter wins over
// antimatter; a material with neither bit has no explosion.
func (m Material) ExplosionColor() (color.NRGBA, bool) {
	switch {
	case m&Matter != 0:
		return render.MatterExplosion, true
	case m&Antimatter != 0:
		return render.AntimatterExplosion, true
	}
	return color.NRGBA{}, false
}

func (m Material) String() string {
	switch m {
	case 0:
		return "none"
	case Matter:
		return "matter"
	case Antimatter:
		return "antimatter"
	case Bimatter:
		return "bimatter"
	}
	return "unknown"
}

// ParseMaterial parses a material name as written in level files.
func ParseMaterial(name string) (Material, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return 0, true
	case "matter":
		return Matter, true
	case "antimatter":
		return Antimatter, true
	case "bimatter":
		return Bimatter, true
	}
	return 0, false
}
