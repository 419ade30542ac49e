package primitives

import (
	"image/color"
	"math"
	"sync"

	scene "github.com/nimsforest/nimsforestscene"
	"golang.org/x/image/math/f64"
)

// Shape selects how markers are drawn.
type Shape int

const (
	Square Shape = iota
	Disc
)

func (s Shape) String() string {
	switch s {
	case Square:
		return "square"
	case Disc:
		return "disc"
	default:
		return "unknown"
	}
}

const discSegments = 24

// Markers draws a fixed-size symbol at each point.
type Markers struct {
	*scene.Base

	mu     sync.RWMutex
	points []f64.Vec2
	color  color.Color
	size   float64
	shape  Shape
}

// NewMarkers creates markers of size pixels at points.
func NewMarkers(points []f64.Vec2, c color.Color, size float64, shape Shape, opts ...scene.Option) *Markers {
	m := &Markers{
		points: append([]f64.Vec2(nil), points...),
		color:  c,
		size:   size,
		shape:  shape,
	}
	m.Base = new(scene.Base).Init(m, opts...)
	return m
}

// Data returns a copy of the marker positions.
func (m *Markers) Data() []f64.Vec2 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]f64.Vec2(nil), m.points...)
}

// SetData replaces the marker positions.
func (m *Markers) SetData(points []f64.Vec2) {
	m.mu.Lock()
	m.points = append([]f64.Vec2(nil), points...)
	m.mu.Unlock()
	m.BoundsChanged()
	m.Update()
}

// SetStyle changes color, size and shape together.
func (m *Markers) SetStyle(c color.Color, size float64, shape Shape) {
	m.mu.Lock()
	m.color, m.size, m.shape = c, size, shape
	m.mu.Unlock()
	m.Update()
}

// Bounds implements scene.Visual.
func (m *Markers) Bounds(mode scene.BoundsMode, axis int) (scene.Range, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pointsRange(m.points, axis)
}

// PixelExtent implements scene.PixelExtent with half the marker size.
func (m *Markers) PixelExtent() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size / 2
}

// Draw implements scene.Visual.
func (m *Markers) Draw(ts scene.TransformSystem) {
	m.mu.RLock()
	pts := mapPoints(ts.VisualToFramebuffer(), m.points)
	c, size, shape := m.color, m.size, m.shape
	m.mu.RUnlock()

	if len(pts) == 0 || size <= 0 {
		return
	}
	f := newPolygonFiller(ts.Framebuffer())
	r := size / 2
	for _, p := range pts {
		switch shape {
		case Disc:
			poly := make([]f64.Vec2, discSegments)
			for i := range poly {
				a := 2 * math.Pi * float64(i) / discSegments
				poly[i] = f64.Vec2{p[0] + r*math.Cos(a), p[1] + r*math.Sin(a)}
			}
			f.add(poly...)
		default:
			f.add(
				f64.Vec2{p[0] - r, p[1] - r},
				f64.Vec2{p[0] + r, p[1] - r},
				f64.Vec2{p[0] + r, p[1] + r},
				f64.Vec2{p[0] - r, p[1] + r},
			)
		}
	}
	f.fill(c)
}

var (
	_ scene.Visual      = (*Markers)(nil)
	_ scene.PixelExtent = (*Markers)(nil)
)
