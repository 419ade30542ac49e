// Package primitives provides concrete visuals that rasterize on the CPU.
package primitives

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	scene "github.com/nimsforest/nimsforestscene"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// polygonFiller accumulates closed polygons and fills them in one pass.
type polygonFiller struct {
	dst  draw.Image
	z    *vector.Rasterizer
	off  f64.Vec2
	used bool
}

func newPolygonFiller(dst draw.Image) *polygonFiller {
	b := dst.Bounds()
	return &polygonFiller{
		dst: dst,
		z:   vector.NewRasterizer(b.Dx(), b.Dy()),
		off: f64.Vec2{float64(b.Min.X), float64(b.Min.Y)},
	}
}

func (f *polygonFiller) add(pts ...f64.Vec2) {
	if len(pts) < 3 {
		return
	}
	f.z.MoveTo(float32(pts[0][0]-f.off[0]), float32(pts[0][1]-f.off[1]))
	for _, p := range pts[1:] {
		f.z.LineTo(float32(p[0]-f.off[0]), float32(p[1]-f.off[1]))
	}
	f.z.ClosePath()
	f.used = true
}

func (f *polygonFiller) fill(c color.Color) {
	if !f.used {
		return
	}
	f.z.Draw(f.dst, f.dst.Bounds(), image.NewUniform(c), image.Point{})
}

// segmentQuad returns the rectangle of the given width around a-b.
func segmentQuad(a, b f64.Vec2, width float64) ([4]f64.Vec2, bool) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	length := math.Hypot(dx, dy)
	if length == 0 {
		return [4]f64.Vec2{}, false
	}
	nx, ny := -dy/length*width/2, dx/length*width/2
	return [4]f64.Vec2{
		{a[0] + nx, a[1] + ny},
		{b[0] + nx, b[1] + ny},
		{b[0] - nx, b[1] - ny},
		{a[0] - nx, a[1] - ny},
	}, true
}

// pointsRange returns the extent of pts along axis 0 or 1.
func pointsRange(pts []f64.Vec2, axis int) (scene.Range, bool) {
	if axis != scene.AxisX && axis != scene.AxisY {
		return scene.Range{}, false
	}
	vals := make([]float64, len(pts))
	for i, p := range pts {
		vals[i] = p[axis]
	}
	return scene.RangeOf(vals...)
}

func mapPoints(t scene.Transform, pts []f64.Vec2) []f64.Vec2 {
	out := make([]f64.Vec2, len(pts))
	for i, p := range pts {
		out[i] = t.Map(p)
	}
	return out
}
