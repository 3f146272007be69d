package game

import (
	"image/color"
	"math"

	"antimatter/internal/render"
)

type star struct {
	x, y   float64 // Normalized position in the tile
	radius float64 // World units
	alpha  float64
}

// Background is a solid fill with a tiled, parallax star field around the camera.
type Background struct {
	Fill     color.NRGBA
	Parallax float64 // 0 keeps stars fixed to the camera, 1 fixes them in the world
	Count    int

	camera *Camera
	stars  []star
}

// NewBackground creates a background drawn around camera.
func NewBackground(camera *Camera) *Background {
	return &Background{
		Fill:     render.Background,
		Parallax: 0.5,
		Count:    40,
		camera:   camera,
	}
}

// Prerender generates the star field. Positions are deterministic.
func (b *Background) Prerender() {
	b.stars = make([]star, b.Count)
	for i := range b.stars {
		s := star{
			x:      float64((i*67+i*i*3)%997) / 997,
			y:      float64((i*47+i*i*2)%991) / 991,
			radius: 0.1,
			alpha:  0.5,
		}
		// Vary star sizes for depth
		if i%3 == 0 {
			s.radius, s.alpha = 0.2, 0.8
		} else if i%5 == 0 {
			s.radius, s.alpha = 0.15, 0.65
		}
		b.stars[i] = s
	}
}

// Draw fills the camera view and draws the stars. Expects the camera
// transform to be applied.
func (b *Background) Draw(s render.Surface) {
	c := b.camera
	if c == nil {
		return
	}
	if b.stars == nil {
		b.Prerender()
	}

	// The tile covers the view at any rotation.
	size := math.Hypot(c.Width, c.Height)

	s.SetColor(b.Fill)
	s.DrawRectangle(c.X-size/2, c.Y-size/2, size, size)
	s.Fill()

	offX := c.X * (1 - b.Parallax)
	offY := c.Y * (1 - b.Parallax)
	for _, st := range b.stars {
		x := wrap(st.x*size-offX, size) + c.X - size/2
		y := wrap(st.y*size-offY, size) + c.Y - size/2
		s.SetColor(render.WithAlpha(render.Star, st.alpha))
		s.DrawCircle(x, y, st.radius)
		s.Fill()
	}
}

// wrap returns v modulo n in [0, n).
func wrap(v, n float64) float64 {
	v = math.Mod(v, n)
	if v < 0 {
		v += n
	}
	return v
}
