package physics

import (
	"image/color"

	"github.com/bytearena/box2d"

	"antimatter/internal/render"
)

// DebugDraw outlines every fixture at scale 1, shapes filled at 30% opacity.
// Sensors use a separate color.
func (w *World) DebugDraw(s render.Surface) {
	s.SetLineWidth(1)
	for b := w.b2.GetBodyList(); b != nil; b = b.GetNext() {
		p := b.GetPosition()
		s.Push()
		s.Translate(p.X, p.Y)
		s.Rotate(b.GetAngle())
		for f := b.GetFixtureList(); f != nil; f = f.GetNext() {
			c := render.DebugShape
			if f.IsSensor() {
				c = render.DebugSensor
			}
			drawFixture(s, f.GetShape(), c)
		}
		s.Pop()
	}
}

func drawFixture(s render.Surface, shape box2d.B2ShapeInterface, c color.NRGBA) {
	switch sh := shape.(type) {
	case *box2d.B2CircleShape:
		s.DrawCircle(sh.M_p.X, sh.M_p.Y, sh.M_radius)
	case *box2d.B2PolygonShape:
		for i := 0; i < sh.M_count; i++ {
			v := sh.M_vertices[i]
			if i == 0 {
				s.MoveTo(v.X, v.Y)
			} else {
				s.LineTo(v.X, v.Y)
			}
		}
		s.ClosePath()
	case *box2d.B2EdgeShape:
		s.DrawLine(sh.M_vertex1.X, sh.M_vertex1.Y, sh.M_vertex2.X, sh.M_vertex2.Y)
		s.SetColor(c)
		s.Stroke()
		return
	default:
		return
	}

	s.SetColor(render.WithAlpha(c, 0.3))
	s.FillPreserve()
	s.SetColor(c)
	s.Stroke()
}
