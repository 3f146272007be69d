// Package render provides the drawing surface the simulation renders into.
package render

import "image/color"

// Surface is a 2D drawing surface with a transform stack.
// *gg.Context satisfies it, so does Canvas.
type Surface interface {
	Width() int
	Height() int

	Push()
	Pop()
	Translate(x, y float64)
	Rotate(angle float64)
	Scale(x, y float64)

	SetColor(c color.Color)
	SetLineWidth(lineWidth float64)
	Clear()

	DrawRectangle(x, y, w, h float64)
	DrawCircle(x, y, r float64)
	DrawLine(x1, y1, x2, y2 float64)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	ClearPath()
	Fill()
	FillPreserve()
	Stroke()
}

// Presenter is implemented by surfaces that publish a finished frame.
type Presenter interface {
	Present()
}

// FillRect fills the whole surface with c.
func FillRect(s Surface, c color.Color) {
	s.SetColor(c)
	s.DrawRectangle(0, 0, float64(s.Width()), float64(s.Height()))
	s.Fill()
}

// ClearRect clears the surface to transparent.
func ClearRect(s Surface) {
	s.SetColor(color.Transparent)
	s.Clear()
}

// Polygon traces a closed path through flat x,y pairs.
func Polygon(s Surface, vertices []float64) {
	if len(vertices) < 4 {
		return
	}
	s.MoveTo(vertices[0], vertices[1])
	for i := 2; i+1 < len(vertices); i += 2 {
		s.LineTo(vertices[i], vertices[i+1])
	}
	s.ClosePath()
}
