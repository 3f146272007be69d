package game

import (
	"image/color"

	"antimatter/internal/render"
)

// Level is a prepared set of entities ready to be loaded into a loop.
type Level struct {
	Name     string
	Fill     color.NRGBA
	Entities []Entity
	Player   Entity
}

// NewLevel creates an empty level with the default fill.
func NewLevel(name string) *Level {
	return &Level{Name: name, Fill: render.LevelFill}
}
