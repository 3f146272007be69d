package game

import (
	"image/color"

	"antimatter/internal/input"
	"antimatter/internal/render"
)

// Default camera view, in world units.
const (
	CameraWidth     = 64.0
	CameraHeight    = 48.0
	CameraMinWidth  = 32.0
	CameraMinHeight = 24.0
)

// Camera maps a Width x Height world rectangle centered on X, Y onto the surface.
type Camera struct {
	X, Y          float64
	Angle         float64
	Width, Height float64

	// Target is followed each update when set.
	Target Entity

	Margin    float64
	LineWidth float64
	Stroke    color.NRGBA

	surfaceWidth, surfaceHeight float64
}

// NewCamera creates a camera at x, y for a surface of the given size.
func NewCamera(x, y float64, surfaceWidth, surfaceHeight int) *Camera {
	return &Camera{
		X:             x,
		Y:             y,
		Width:         CameraWidth,
		Height:        CameraHeight,
		Stroke:        render.CameraStroke,
		surfaceWidth:  float64(surfaceWidth),
		surfaceHeight: float64(surfaceHeight),
	}
}

func (c *Camera) Update(dt float64) {
	if c.Target == nil {
		return
	}
	o := c.Target.Base()
	c.X, c.Y = o.X, o.Y
}

// HandleDebugKeys applies the zoom/rotate/reset keys.
func (c *Camera) HandleDebugKeys(in *input.Input, dt float64) {
	// W. Zoom in.
	if in.Key(input.KeyW) {
		c.Width = max(c.Width-2, CameraMinWidth)
		c.Height = max(c.Height-1.5, CameraMinHeight)
	}
	// S. Zoom out.
	if in.Key(input.KeyS) {
		c.Width += 2
		c.Height += 1.5
	}
	// A. Rotate left.
	if in.Key(input.KeyA) {
		c.Angle += dt
	}
	// D. Rotate right.
	if in.Key(input.KeyD) {
		c.Angle -= dt
	}
	// Q. Reset.
	if in.Key(input.KeyQ) {
		c.Width = CameraWidth
		c.Height = CameraHeight
		c.Angle = 0
	}
}

// ApplyTransform maps world coordinates to surface coordinates.
func (c *Camera) ApplyTransform(s render.Surface) {
	s.Translate(c.surfaceWidth/2, c.surfaceHeight/2)
	s.Scale(c.surfaceWidth/c.Width, c.surfaceHeight/c.Height)
	s.Rotate(-c.Angle)
	s.Translate(-c.X, -c.Y)
}

// Draw outlines the view rectangle inset by Margin.
func (c *Camera) Draw(s render.Surface) {
	if c.LineWidth <= 0 || c.Stroke.A == 0 {
		return
	}
	w := c.Width - 2*c.Margin
	h := c.Height - 2*c.Margin
	if w <= 0 || h <= 0 {
		return
	}

	s.Push()
	s.Translate(c.X, c.Y)
	s.Rotate(c.Angle)
	s.SetColor(c.Stroke)
	s.SetLineWidth(c.LineWidth)
	s.DrawRectangle(-w/2, -h/2, w, h)
	s.Stroke()
	s.Pop()
}
