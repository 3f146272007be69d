// Package level parses level descriptors and builds them into entities and
// bodies for the frame loop.
package level

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"antimatter/internal/game"
	"antimatter/internal/render"
)

var (
	// ErrUnknownShape is returned for a shape, polygon type or entity kind
	// the builder does not know.
	ErrUnknownShape = errors.New("level: unknown shape")
	// ErrNoPlayer is returned when an entity needs a player the level lacks.
	ErrNoPlayer = errors.New("level: no player")
)

// Descriptor is a complete level. YAML and JSON share the same keys.
type Descriptor struct {
	Name     string             `yaml:"name"`
	Fill     string             `yaml:"fill"` // #rrggbb or #rrggbbaa; empty uses the default
	Player   *PlayerDescriptor  `yaml:"player"`
	Entities []EntityDescriptor `yaml:"entities"`
}

// PlayerDescriptor places the player.
type PlayerDescriptor struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Material string  `yaml:"material"` // Defaults to matter
}

// EntityDescriptor describes one entity. Kind selects how the rest is read.
type EntityDescriptor struct {
	Kind string `yaml:"kind"` // physics (default), emitter, trigger, trail

	// Shape of a physics entity: circle or polygon. Polygons are "vector"
	// (closed, flat x,y pairs in data) or "edge" (x1,y1,x2,y2 in data).
	Shape  string    `yaml:"shape"`
	Type   string    `yaml:"type"`
	Data   []float64 `yaml:"data"`
	Radius float64   `yaml:"radius"`

	Fixture FixtureDescriptor `yaml:"fixture"`
	Body    BodyDescriptor    `yaml:"body"`

	Fill      string  `yaml:"fill"`
	Stroke    string  `yaml:"stroke"`
	LineWidth float64 `yaml:"lineWidth"`
	LifeTime  float64 `yaml:"lifeTime"` // Milliseconds; zero lives forever

	Emitter *EmitterDescriptor `yaml:"emitter"`
	Trigger *TriggerDescriptor `yaml:"trigger"`
}

// FixtureDescriptor holds the material properties of every fixture.
type FixtureDescriptor struct {
	Density     float64          `yaml:"density"`
	Friction    float64          `yaml:"friction"`
	Restitution float64          `yaml:"restitution"`
	IsSensor    bool             `yaml:"isSensor"`
	Filter      FilterDescriptor `yaml:"filter"`
}

// FilterDescriptor selects the material, by bits or by name.
type FilterDescriptor struct {
	CategoryBits uint16 `yaml:"categoryBits"`
	Material     string `yaml:"material"`
}

// BodyDescriptor describes the rigid body.
type BodyDescriptor struct {
	Type            string  `yaml:"type"` // static (default), kinematic, dynamic
	Position        Vec2    `yaml:"position"`
	Angle           float64 `yaml:"angle"`
	LinearVelocity  Vec2    `yaml:"linearVelocity"`
	AngularVelocity float64 `yaml:"angularVelocity"`
	LinearDamping   float64 `yaml:"linearDamping"`
}

// Vec2 is a point or vector.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// EmitterDescriptor configures an emitter. The particle reuses the entity's
// radius, fixture, body and stroke.
type EmitterDescriptor struct {
	Rate      float64    `yaml:"rate"`     // Seconds between particles
	LifeTime  float64    `yaml:"lifeTime"` // Particle lifetime, milliseconds
	Speed     float64    `yaml:"speed"`
	SpawnArea [4]float64 `yaml:"spawnArea"`
	Delay     float64    `yaml:"delay"` // Milliseconds before the first particle
	Stopped   bool       `yaml:"stopped"`
}

// TriggerDescriptor configures a rectangular sensor.
type TriggerDescriptor struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Mask   string  `yaml:"mask"`
}

// Parse reads a descriptor from YAML or JSON. A bare array of entity
// descriptors, the level-data format, is accepted as an unnamed level.
func Parse(data []byte) (*Descriptor, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("level: empty descriptor")
	}

	var desc Descriptor
	if trimmed[0] == '[' {
		if err := yaml.Unmarshal(trimmed, &desc.Entities); err != nil {
			return nil, fmt.Errorf("failed to parse entity list: %w", err)
		}
	} else if err := yaml.Unmarshal(trimmed, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse level descriptor: %w", err)
	}

	if err := validate(&desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

// LoadFile reads and parses a descriptor file.
func LoadFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file %s: %w", path, err)
	}
	desc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid level in %s: %w", path, err)
	}
	if desc.Name == "" {
		desc.Name = path
	}
	return desc, nil
}

// validate resolves everything Build can reject short of a world error, so a
// replacing load can check a descriptor before clearing the running level.
func validate(desc *Descriptor) error {
	if err := checkColor(desc.Fill); err != nil {
		return fmt.Errorf("level fill: %w", err)
	}
	if desc.Player != nil {
		if _, ok := game.ParseMaterial(desc.Player.Material); !ok {
			return fmt.Errorf("player: unknown material %q", desc.Player.Material)
		}
	}
	for i, e := range desc.Entities {
		if err := validateEntity(desc, e); err != nil {
			return fmt.Errorf("entity %d: %w", i, err)
		}
	}
	return nil
}

func validateEntity(desc *Descriptor, e EntityDescriptor) error {
	switch e.Kind {
	case "", "physics":
		if err := validateShape(e); err != nil {
			return err
		}
		if _, ok := game.ParseBodyKind(e.Body.Type); !ok {
			return fmt.Errorf("unknown body type %q", e.Body.Type)
		}
		if _, err := materialOf(e.Fixture.Filter); err != nil {
			return err
		}
		return checkColors(e.Fill, e.Stroke)
	case "emitter":
		if e.Emitter == nil {
			return errors.New("emitter settings are required")
		}
		if e.Emitter.Rate < 0 {
			return errors.New("emitter rate cannot be negative")
		}
		if _, err := materialOf(e.Fixture.Filter); err != nil {
			return err
		}
		return checkColor(e.Stroke)
	case "trigger":
		if e.Trigger == nil || e.Trigger.Width <= 0 || e.Trigger.Height <= 0 {
			return errors.New("trigger needs a positive width and height")
		}
		if _, ok := game.ParseMaterial(e.Trigger.Mask); !ok {
			return fmt.Errorf("unknown trigger mask %q", e.Trigger.Mask)
		}
		return checkColor(e.Stroke)
	case "trail":
		if desc.Player == nil {
			return fmt.Errorf("trail: %w", ErrNoPlayer)
		}
		return checkColor(e.Stroke)
	}
	return fmt.Errorf("kind %q: %w", e.Kind, ErrUnknownShape)
}

func validateShape(e EntityDescriptor) error {
	switch e.Shape {
	case "circle":
		if e.Radius <= 0 {
			return fmt.Errorf("circle radius must be positive, got %v", e.Radius)
		}
	case "polygon":
		switch e.Type {
		case "", "vector":
			if len(e.Data) < 6 || len(e.Data)%2 != 0 {
				return fmt.Errorf("polygon needs at least 3 x,y pairs, got %d values", len(e.Data))
			}
			if len(e.Data)/2 > game.MaxPolygonVertices {
				return fmt.Errorf("polygon has %d vertices, at most %d allowed", len(e.Data)/2, game.MaxPolygonVertices)
			}
		case "edge":
			if len(e.Data) != 4 {
				return fmt.Errorf("edge needs 4 values, got %d", len(e.Data))
			}
		default:
			return fmt.Errorf("polygon type %q: %w", e.Type, ErrUnknownShape)
		}
	default:
		return fmt.Errorf("shape %q: %w", e.Shape, ErrUnknownShape)
	}
	return nil
}

func checkColors(hexes ...string) error {
	for _, h := range hexes {
		if err := checkColor(h); err != nil {
			return err
		}
	}
	return nil
}

func checkColor(hex string) error {
	if hex == "" {
		return nil
	}
	_, err := render.ParseHexColor(hex)
	return err
}
