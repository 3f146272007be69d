package level

import (
	"fmt"
	"image/color"

	"antimatter/internal/game"
	"antimatter/internal/render"
)

// Build creates the level's entities and bodies in world. On error every
// body created so far is destroyed again.
func Build(desc *Descriptor, world game.PhysicsWorld) (*game.Level, error) {
	b := &builder{world: world}
	lvl, err := b.build(desc)
	if err != nil {
		b.rollback()
		return nil, err
	}
	return lvl, nil
}

type builder struct {
	world   game.PhysicsWorld
	created []game.Body
}

func (b *builder) rollback() {
	for _, body := range b.created {
		b.world.DestroyBody(body)
	}
	b.created = nil
}

func (b *builder) build(desc *Descriptor) (*game.Level, error) {
	if err := validate(desc); err != nil {
		return nil, err
	}

	lvl := game.NewLevel(desc.Name)
	if desc.Fill != "" {
		fill, err := render.ParseHexColor(desc.Fill)
		if err != nil {
			return nil, fmt.Errorf("level fill: %w", err)
		}
		lvl.Fill = fill
	}

	var player *game.Player
	if desc.Player != nil {
		p, err := b.player(desc.Player)
		if err != nil {
			return nil, fmt.Errorf("player: %w", err)
		}
		player = p
		lvl.Player = p
	}

	for i, e := range desc.Entities {
		var (
			ent game.Entity
			err error
		)
		switch e.Kind {
		case "", "physics":
			ent, err = b.physics(e)
		case "emitter":
			ent, err = b.emitter(e)
		case "trigger":
			ent, err = b.trigger(e)
		case "trail":
			if player == nil {
				err = ErrNoPlayer
				break
			}
			stroke, perr := colorOr(e.Stroke, color.NRGBA{255, 255, 255, 51})
			if perr != nil {
				err = perr
				break
			}
			ent = game.NewTrail(player, stroke)
		default:
			err = fmt.Errorf("kind %q: %w", e.Kind, ErrUnknownShape)
		}
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		lvl.Entities = append(lvl.Entities, ent)
	}

	return lvl, nil
}

func (b *builder) player(d *PlayerDescriptor) (*game.Player, error) {
	p := game.NewPlayer(d.X, d.Y)
	if d.Material != "" {
		m, ok := game.ParseMaterial(d.Material)
		if !ok {
			return nil, fmt.Errorf("unknown material %q", d.Material)
		}
		p.Material = m
	}
	body, err := b.world.CreateBody(p.BodyDef())
	if err != nil {
		return nil, err
	}
	b.created = append(b.created, body)
	p.Bodies = append(p.Bodies, body)
	return p, nil
}

func (b *builder) physics(e EntityDescriptor) (*game.PhysicsEntity, error) {
	material, err := materialOf(e.Fixture.Filter)
	if err != nil {
		return nil, err
	}
	shape, err := shapeOf(e, material)
	if err != nil {
		return nil, err
	}
	def, err := bodyOf(e.Body)
	if err != nil {
		return nil, err
	}
	def.Shapes = []game.ShapeDef{shape}

	p := game.NewPhysicsEntity(material)
	if err := style(e, &p.Fill, &p.Stroke, &p.LineWidth); err != nil {
		return nil, err
	}
	p.LifeTime = e.LifeTime / 1000

	if err := p.Attach(b.world, def); err != nil {
		return nil, err
	}
	b.created = append(b.created, p.Bodies...)
	return p, nil
}

func (b *builder) emitter(e EntityDescriptor) (*game.Emitter, error) {
	d := e.Emitter
	material, err := materialOf(e.Fixture.Filter)
	if err != nil {
		return nil, err
	}

	em := game.NewEmitter(e.Body.Position.X, e.Body.Position.Y)
	em.Angle = e.Body.Angle
	em.AngularVelocity = e.Body.AngularVelocity
	em.LinearDamping = e.Body.LinearDamping
	if d.Rate > 0 {
		em.Rate = d.Rate
	}
	if d.LifeTime > 0 {
		em.LifeTime = d.LifeTime / 1000
	}
	if d.Speed != 0 {
		em.Speed = d.Speed
	}
	if d.SpawnArea != [4]float64{} {
		em.SpawnArea = d.SpawnArea
	}

	em.Particle = game.ShapeDef{
		Kind:        game.ShapeCircle,
		Radius:      e.Radius,
		Density:     e.Fixture.Density,
		Friction:    e.Fixture.Friction,
		Restitution: e.Fixture.Restitution,
		Category:    material,
	}
	if em.Particle.Radius <= 0 {
		em.Particle.Radius = 0.5
	}

	stroke, err := colorOr(e.Stroke, em.Stroke)
	if err != nil {
		return nil, err
	}
	em.Stroke = stroke
	em.ParticleStroke = stroke
	if e.LineWidth > 0 {
		em.LineWidth = e.LineWidth
	}

	if !d.Stopped {
		em.Start(d.Delay / 1000)
	}
	return em, nil
}

func (b *builder) trigger(e EntityDescriptor) (*game.Trigger, error) {
	d := e.Trigger
	mask, ok := game.ParseMaterial(d.Mask)
	if !ok {
		return nil, fmt.Errorf("unknown trigger mask %q", d.Mask)
	}

	t := game.NewTrigger(e.Body.Position.X, e.Body.Position.Y, d.Width, d.Height, mask)
	t.Angle = e.Body.Angle
	stroke, err := colorOr(e.Stroke, t.Stroke)
	if err != nil {
		return nil, err
	}
	t.Stroke = stroke

	hw, hh := d.Width/2, d.Height/2
	body, err := b.world.CreateBody(game.BodyDef{
		Owner: t,
		Kind:  game.BodyStatic,
		X:     t.X,
		Y:     t.Y,
		Angle: t.Angle,
		Shapes: []game.ShapeDef{{
			Kind:     game.ShapePolygon,
			Vertices: []float64{-hw, -hh, hw, -hh, hw, hh, -hw, hh},
			Category: mask,
			Sensor:   true,
		}},
	})
	if err != nil {
		return nil, err
	}
	b.created = append(b.created, body)
	t.Bodies = append(t.Bodies, body)
	return t, nil
}

func materialOf(f FilterDescriptor) (game.Material, error) {
	if f.Material != "" {
		m, ok := game.ParseMaterial(f.Material)
		if !ok {
			return 0, fmt.Errorf("unknown material %q", f.Material)
		}
		return m, nil
	}
	return game.Material(f.CategoryBits), nil
}

func shapeOf(e EntityDescriptor, material game.Material) (game.ShapeDef, error) {
	if err := validateShape(e); err != nil {
		return game.ShapeDef{}, err
	}
	s := game.ShapeDef{
		Density:     e.Fixture.Density,
		Friction:    e.Fixture.Friction,
		Restitution: e.Fixture.Restitution,
		Category:    material,
		Sensor:      e.Fixture.IsSensor,
	}
	switch e.Shape {
	case "circle":
		s.Kind = game.ShapeCircle
		s.Radius = e.Radius
	case "polygon":
		s.Kind = game.ShapePolygon
		if e.Type == "edge" {
			s.Kind = game.ShapeEdge
		}
		s.Vertices = append([]float64(nil), e.Data...)
	}
	return s, nil
}

func bodyOf(d BodyDescriptor) (game.BodyDef, error) {
	kind, ok := game.ParseBodyKind(d.Type)
	if !ok {
		return game.BodyDef{}, fmt.Errorf("unknown body type %q", d.Type)
	}
	return game.BodyDef{
		Kind:            kind,
		X:               d.Position.X,
		Y:               d.Position.Y,
		Angle:           d.Angle,
		VX:              d.LinearVelocity.X,
		VY:              d.LinearVelocity.Y,
		AngularVelocity: d.AngularVelocity,
		LinearDamping:   d.LinearDamping,
	}, nil
}

func style(e EntityDescriptor, fill, stroke *color.NRGBA, lineWidth *float64) error {
	var err error
	if *fill, err = colorOr(e.Fill, *fill); err != nil {
		return err
	}
	if *stroke, err = colorOr(e.Stroke, *stroke); err != nil {
		return err
	}
	if e.LineWidth > 0 {
		*lineWidth = e.LineWidth
	}
	return nil
}

func colorOr(hex string, fallback color.NRGBA) (color.NRGBA, error) {
	if hex == "" {
		return fallback, nil
	}
	return render.ParseHexColor(hex)
}
