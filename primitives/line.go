package primitives

import (
	"image/color"
	"sync"

	scene "github.com/nimsforest/nimsforestscene"
	"golang.org/x/image/math/f64"
)

// Line is a polyline stroked with a fixed pixel width.
type Line struct {
	*scene.Base

	mu     sync.RWMutex
	points []f64.Vec2
	color  color.Color
	width  float64
}

// NewLine creates a line through points.
func NewLine(points []f64.Vec2, c color.Color, width float64, opts ...scene.Option) *Line {
	l := &Line{
		points: append([]f64.Vec2(nil), points...),
		color:  c,
		width:  width,
	}
	l.Base = new(scene.Base).Init(l, opts...)
	return l
}

// Data returns a copy of the vertices.
func (l *Line) Data() []f64.Vec2 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]f64.Vec2(nil), l.points...)
}

// SetData replaces the vertices.
func (l *Line) SetData(points []f64.Vec2) {
	l.mu.Lock()
	l.points = append([]f64.Vec2(nil), points...)
	l.mu.Unlock()
	l.BoundsChanged()
	l.Update()
}

// SetColor changes the stroke color.
func (l *Line) SetColor(c color.Color) {
	l.mu.Lock()
	l.color = c
	l.mu.Unlock()
	l.Update()
}

// SetWidth changes the stroke width in pixels.
func (l *Line) SetWidth(width float64) {
	l.mu.Lock()
	l.width = width
	l.mu.Unlock()
	l.Update()
}

// Bounds implements scene.Visual. Lines are 2D, so the z axis is unbounded.
func (l *Line) Bounds(mode scene.BoundsMode, axis int) (scene.Range, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return pointsRange(l.points, axis)
}

// PixelExtent implements scene.PixelExtent with half the stroke width.
func (l *Line) PixelExtent() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.width / 2
}

// Draw implements scene.Visual.
func (l *Line) Draw(ts scene.TransformSystem) {
	l.mu.RLock()
	pts := mapPoints(ts.VisualToFramebuffer(), l.points)
	c, width := l.color, l.width
	l.mu.RUnlock()

	if len(pts) < 2 || width <= 0 {
		return
	}
	f := newPolygonFiller(ts.Framebuffer())
	for i := 1; i < len(pts); i++ {
		if q, ok := segmentQuad(pts[i-1], pts[i], width); ok {
			f.add(q[:]...)
		}
	}
	f.fill(c)
}

var (
	_ scene.Visual      = (*Line)(nil)
	_ scene.PixelExtent = (*Line)(nil)
)
