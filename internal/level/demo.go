package level

import "math"

// Demo returns the built-in scene: bimatter walls and a static triangle,
// an antimatter and a matter emitter firing upwards, a matter trigger, and
// the player with a trail.
func Demo() *Descriptor {
	desc := &Descriptor{
		Name:   "demo",
		Fill:   "#202030",
		Player: &PlayerDescriptor{X: 20, Y: 20},
	}

	walls := [][4]float64{
		{3, 0, 3, 10},
		{3, 10, 30, 15},
		{30, 15, 50, 5},
		{50, 5, 60, 5},

		// Rectangle.
		{10, 0, 10, -5},
		{10, -5, 20, -5},
		{20, -5, 20, 0},
		{20, 0, 10, 0},
	}
	for _, w := range walls {
		desc.Entities = append(desc.Entities, EntityDescriptor{
			Shape:     "polygon",
			Type:      "edge",
			Data:      w[:],
			Fixture:   solid(3),
			Stroke:    "#ff0000",
			LineWidth: 0.2,
		})
	}

	desc.Entities = append(desc.Entities, EntityDescriptor{
		Shape:   "polygon",
		Type:    "vector",
		Data:    []float64{5, -5, 5, 5, -5, 0},
		Fixture: solid(3),
		Body:    BodyDescriptor{Type: "static", Position: Vec2{X: 50, Y: 45}},
		Fill:    "#000000",
	})

	desc.Entities = append(desc.Entities,
		emitter(25, 20, 2, "#ff0000"),
		emitter(45, 20, 1, "#4040ff"),
		EntityDescriptor{
			Kind:    "trigger",
			Body:    BodyDescriptor{Position: Vec2{X: 35, Y: 30}},
			Trigger: &TriggerDescriptor{Width: 6, Height: 4, Mask: "matter"},
			Stroke:  "#4040ff",
		},
		EntityDescriptor{Kind: "trail", Stroke: "#ffffff33"},
	)

	return desc
}

func solid(category uint16) FixtureDescriptor {
	return FixtureDescriptor{
		Density:     1,
		Friction:    0.5,
		Restitution: 0.2,
		Filter:      FilterDescriptor{CategoryBits: category},
	}
}

func emitter(x, y float64, category uint16, stroke string) EntityDescriptor {
	return EntityDescriptor{
		Kind:   "emitter",
		Radius: 0.5,
		Fixture: FixtureDescriptor{
			Density:     4,
			Friction:    0.5,
			Restitution: 0.2,
			Filter:      FilterDescriptor{CategoryBits: category},
		},
		Body: BodyDescriptor{
			Type:            "dynamic",
			Position:        Vec2{X: x, Y: y},
			Angle:           -0.5 * math.Pi,
			AngularVelocity: 3 * math.Pi,
			LinearDamping:   0.2,
		},
		Stroke:    stroke,
		LineWidth: 0.2,
		Emitter: &EmitterDescriptor{
			Rate:      0.4,
			LifeTime:  2000,
			Speed:     10,
			SpawnArea: [4]float64{0, -2, 0, 2},
			Delay:     500,
		},
	}
}
