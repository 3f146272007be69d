package game

import (
	"image/color"

	"antimatter/internal/render"
)

// =============================================================================
// SHAKE
// =============================================================================

// Shake offsets the camera by a decaying pseudo-random amount.
type Shake struct {
	Magnitude float64 // Offset at the start of the shake, in world units
	Duration  float64 // Seconds
	Elapsed   float64
	OffsetX   float64 // Current X offset (computed each frame)
	OffsetY   float64 // Current Y offset (computed each frame)

	seed int64
}

// Shake starts a new shake, replacing any running one.
func (s *Shake) Shake(magnitude, duration float64) {
	s.Magnitude = magnitude
	s.Duration = duration
	s.Elapsed = 0
}

// Active reports whether the shake is still running.
func (s *Shake) Active() bool {
	return s.Elapsed < s.Duration
}

// Update advances the shake and recomputes the offsets.
// Returns whether the shake is still running.
func (s *Shake) Update(dt float64) bool {
	if !s.Active() {
		s.OffsetX, s.OffsetY = 0, 0
		return false
	}

	s.Elapsed += dt
	intensity := s.Magnitude * (1 - s.Elapsed/s.Duration)
	if intensity < 0 {
		intensity = 0
	}

	// LCG keeps the offsets reproducible for a given sequence of updates.
	s.seed = s.seed*1103515245 + 12345
	x := float64((s.seed>>16)&0xff) / 256.0
	y := float64((s.seed>>24)&0xff) / 256.0

	s.OffsetX = (x - 0.5) * 2 * intensity
	s.OffsetY = (y - 0.5) * 2 * intensity

	return s.Active()
}

// ApplyTransform translates s by the current offset.
func (s *Shake) ApplyTransform(surface render.Surface) {
	if s.OffsetX == 0 && s.OffsetY == 0 {
		return
	}
	surface.Translate(s.OffsetX, s.OffsetY)
}

// =============================================================================
// EXPLOSION
// =============================================================================

const (
	ExplosionMaxRadius = 4.0
	ExplosionDuration  = 0.4
)

// Explosion is an expanding, fading circle that discards itself when done.
type Explosion struct {
	Object

	Fill      color.NRGBA
	Radius    float64
	MaxRadius float64
	Elapsed   float64
	Duration  float64
}

// NewExplosion creates an explosion at x, y.
func NewExplosion(x, y float64, fill color.NRGBA) *Explosion {
	e := &Explosion{
		Fill:      fill,
		MaxRadius: ExplosionMaxRadius,
		Duration:  ExplosionDuration,
	}
	e.X, e.Y = x, y
	return e
}

// Update expands the explosion and discards it once finished.
func (e *Explosion) Update(dt float64) {
	e.Elapsed += dt

	// Expand rapidly then slow down
	progress := e.Elapsed / e.Duration
	if progress > 1 {
		progress = 1
	}
	e.Radius = e.MaxRadius * (1.0 - (1.0-progress)*(1.0-progress))

	if progress >= 1 {
		if g := e.Game(); g != nil {
			g.Discard(e)
		}
	}
}

// Alpha returns the current opacity.
func (e *Explosion) Alpha() float64 {
	return 1 - e.Elapsed/e.Duration
}

func (e *Explosion) Draw(s render.Surface) {
	if e.Radius <= 0 {
		return
	}
	s.SetColor(render.WithAlpha(e.Fill, e.Alpha()))
	s.DrawCircle(e.X, e.Y, e.Radius)
	s.Fill()
}

// =============================================================================
// TRAIL
// =============================================================================

// TrailPoint is a single point in a trail.
type TrailPoint struct {
	X, Y  float64
	Alpha float64
}

// Trail follows a target and leaves a fading line behind it.
// Uses a fixed-size ring buffer to avoid allocations.
type Trail struct {
	Object

	Target    Entity
	Fill      color.NRGBA
	LineWidth float64

	Points     [16]TrailPoint
	WriteIndex int
	PointCount int
}

// NewTrail creates a trail behind target.
func NewTrail(target Entity, fill color.NRGBA) *Trail {
	return &Trail{Target: target, Fill: fill, LineWidth: 0.5}
}

// AddPoint adds a new point to the trail.
func (t *Trail) AddPoint(x, y float64) {
	t.Points[t.WriteIndex] = TrailPoint{X: x, Y: y, Alpha: 1.0}
	t.WriteIndex = (t.WriteIndex + 1) % len(t.Points)
	if t.PointCount < len(t.Points) {
		t.PointCount++
	}
}

// Update fades the existing points and samples the target.
func (t *Trail) Update(dt float64) {
	for i := range t.Points {
		t.Points[i].Alpha *= 0.85
	}
	if t.Target == nil {
		return
	}
	o := t.Target.Base()
	t.AddPoint(o.X, o.Y)
}

// GetPoints returns all valid points in order (oldest first).
func (t *Trail) GetPoints() []TrailPoint {
	if t.PointCount == 0 {
		return nil
	}

	result := make([]TrailPoint, t.PointCount)
	startIdx := t.WriteIndex - t.PointCount
	if startIdx < 0 {
		startIdx += len(t.Points)
	}

	for i := 0; i < t.PointCount; i++ {
		idx := (startIdx + i) % len(t.Points)
		result[i] = t.Points[idx]
	}
	return result
}

func (t *Trail) Draw(s render.Surface) {
	points := t.GetPoints()
	s.SetLineWidth(t.LineWidth)
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		s.SetColor(render.WithAlpha(t.Fill, b.Alpha))
		s.DrawLine(a.X, a.Y, b.X, b.Y)
		s.Stroke()
	}
}
