package render

import (
	"image"
	"image/draw"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
)

// Canvas is a gg-backed Surface. The frame goroutine draws into the back
// context; Present copies it into a front image that readers encode.
type Canvas struct {
	*gg.Context

	mu     sync.RWMutex
	front  *image.RGBA
	frames uint64
}

// NewCanvas creates a canvas of the given size.
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		Context: gg.NewContext(width, height),
		front:   image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// SetLineWidth sets the stroke width in user space, so widths scale with the
// current transform like the rest of the path.
func (c *Canvas) SetLineWidth(lineWidth float64) {
	x0, y0 := c.TransformPoint(0, 0)
	x1, y1 := c.TransformPoint(1, 0)
	c.Context.SetLineWidth(lineWidth * math.Hypot(x1-x0, y1-y0))
}

// Present publishes the current back buffer.
func (c *Canvas) Present() {
	back := c.Context.Image()

	c.mu.Lock()
	draw.Draw(c.front, c.front.Bounds(), back, back.Bounds().Min, draw.Src)
	c.frames++
	c.mu.Unlock()
}

// Frames returns how many frames have been presented.
func (c *Canvas) Frames() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frames
}

// WritePNG encodes the last presented frame.
func (c *Canvas) WritePNG(w io.Writer) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return gg.NewContextForRGBA(c.front).EncodePNG(w)
}
