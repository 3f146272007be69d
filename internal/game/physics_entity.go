package game

import (
	"image/color"

	"antimatter/internal/render"
)

// PhysicsEntity is a generic entity backed by a body. It draws its own
// fixture shapes.
type PhysicsEntity struct {
	Object

	Shapes    []ShapeDef
	Fill      color.NRGBA
	Stroke    color.NRGBA
	LineWidth float64

	// LifeTime in seconds. Zero lives until removed.
	LifeTime float64
	Age      float64
}

// NewPhysicsEntity creates an entity of the given material with no body yet.
func NewPhysicsEntity(material Material) *PhysicsEntity {
	e := &PhysicsEntity{
		Stroke:    color.NRGBA{255, 255, 255, 255},
		LineWidth: 0.2,
	}
	e.Material = material
	return e
}

// Attach creates the body described by def in world and binds it to e.
// Must not be called from inside a physics step.
func (e *PhysicsEntity) Attach(world PhysicsWorld, def BodyDef) error {
	def.Owner = e
	if len(def.Shapes) == 0 {
		def.Shapes = e.Shapes
	}
	b, err := world.CreateBody(def)
	if err != nil {
		return err
	}
	if len(e.Shapes) == 0 {
		e.Shapes = def.Shapes
	}
	e.Bodies = append(e.Bodies, b)
	e.X, e.Y, e.Angle = def.X, def.Y, def.Angle
	return nil
}

func (e *PhysicsEntity) Update(dt float64) {
	e.SyncFromBody()

	if e.LifeTime <= 0 {
		return
	}
	e.Age += dt
	if e.Age >= e.LifeTime {
		if g := e.Game(); g != nil {
			g.Discard(e)
		}
	}
}

func (e *PhysicsEntity) Draw(s render.Surface) {
	s.Push()
	s.Translate(e.X, e.Y)
	s.Rotate(e.Angle)
	for _, shape := range e.Shapes {
		drawShape(s, shape, e.Fill, e.Stroke, e.LineWidth)
	}
	s.Pop()
}

// drawShape draws one fixture shape in body space.
func drawShape(s render.Surface, shape ShapeDef, fill, stroke color.NRGBA, lineWidth float64) {
	switch shape.Kind {
	case ShapeCircle:
		s.DrawCircle(shape.OffsetX, shape.OffsetY, shape.Radius)
	case ShapePolygon:
		render.Polygon(s, shape.Vertices)
	case ShapeEdge:
		if len(shape.Vertices) < 4 {
			return
		}
		v := shape.Vertices
		s.DrawLine(v[0], v[1], v[2], v[3])
		s.SetColor(stroke)
		s.SetLineWidth(lineWidth)
		s.Stroke()
		return
	default:
		return
	}

	if fill.A > 0 {
		s.SetColor(fill)
		if stroke.A > 0 && lineWidth > 0 {
			s.FillPreserve()
		} else {
			s.Fill()
			return
		}
	}
	if stroke.A > 0 && lineWidth > 0 {
		s.SetColor(stroke)
		s.SetLineWidth(lineWidth)
		s.Stroke()
		return
	}
	// Nothing visible: drop the path.
	s.ClearPath()
}
