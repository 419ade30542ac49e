package nimsforestscene

import (
	"image/draw"

	"golang.org/x/image/math/f64"
)

// Transform maps points between two 2D coordinate systems.
type Transform interface {
	Map(p f64.Vec2) f64.Vec2
	Imap(p f64.Vec2) f64.Vec2
}

// TransformSystem gives a visual its relationship to the document coordinate
// system (physical measurements) and the framebuffer (pixels) during Draw.
type TransformSystem interface {
	VisualToDocument() Transform
	DocumentToFramebuffer() Transform
	VisualToFramebuffer() Transform

	// Framebuffer is the image being drawn into.
	Framebuffer() draw.Image

	// DPI is the framebuffer resolution in pixels per inch.
	DPI() float64
}

// Affine is a 2D affine transform. The matrix layout follows f64.Aff3:
// x' = m[0]*x + m[1]*y + m[2], y' = m[3]*x + m[4]*y + m[5].
type Affine struct {
	m f64.Aff3
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{m: f64.Aff3{1, 0, 0, 0, 1, 0}}
}

// Translate returns a translation by (dx, dy).
func Translate(dx, dy float64) Affine {
	return Affine{m: f64.Aff3{1, 0, dx, 0, 1, dy}}
}

// Scale returns a scaling by (sx, sy) about the origin.
func Scale(sx, sy float64) Affine {
	return Affine{m: f64.Aff3{sx, 0, 0, 0, sy, 0}}
}

// NewAffine wraps a raw matrix.
func NewAffine(m f64.Aff3) Affine {
	return Affine{m: m}
}

// Matrix returns the underlying matrix.
func (a Affine) Matrix() f64.Aff3 {
	return a.m
}

// Then returns the transform that applies a first and then b.
func (a Affine) Then(b Affine) Affine {
	x, y := b.m, a.m
	return Affine{m: f64.Aff3{
		x[0]*y[0] + x[1]*y[3],
		x[0]*y[1] + x[1]*y[4],
		x[0]*y[2] + x[1]*y[5] + x[2],
		x[3]*y[0] + x[4]*y[3],
		x[3]*y[1] + x[4]*y[4],
		x[3]*y[2] + x[4]*y[5] + x[5],
	}}
}

// Inverse returns the inverse transform. A singular matrix yields the
// identity and false.
func (a Affine) Inverse() (Affine, bool) {
	m := a.m
	det := m[0]*m[4] - m[1]*m[3]
	if det == 0 {
		return Identity(), false
	}
	ia := m[4] / det
	ib := -m[1] / det
	id := -m[3] / det
	ie := m[0] / det
	return Affine{m: f64.Aff3{
		ia, ib, -(ia*m[2] + ib*m[5]),
		id, ie, -(id*m[2] + ie*m[5]),
	}}, true
}

// Map implements Transform.
func (a Affine) Map(p f64.Vec2) f64.Vec2 {
	m := a.m
	return f64.Vec2{
		m[0]*p[0] + m[1]*p[1] + m[2],
		m[3]*p[0] + m[4]*p[1] + m[5],
	}
}

// Imap implements Transform.
func (a Affine) Imap(p f64.Vec2) f64.Vec2 {
	inv, _ := a.Inverse()
	return inv.Map(p)
}

// Transforms is the TransformSystem used by the canvas's CPU render pass.
type Transforms struct {
	Visual     Affine
	Document   Affine
	Target     draw.Image
	Resolution float64
}

// VisualToDocument implements TransformSystem.
func (t *Transforms) VisualToDocument() Transform {
	return t.Visual
}

// DocumentToFramebuffer implements TransformSystem.
func (t *Transforms) DocumentToFramebuffer() Transform {
	return t.Document
}

// VisualToFramebuffer implements TransformSystem.
func (t *Transforms) VisualToFramebuffer() Transform {
	return t.Visual.Then(t.Document)
}

// Framebuffer implements TransformSystem.
func (t *Transforms) Framebuffer() draw.Image {
	return t.Target
}

// DPI implements TransformSystem.
func (t *Transforms) DPI() float64 {
	return t.Resolution
}

// ViewTransform maps the document rectangle spanned by x and y onto a
// width x height framebuffer with y pointing up.
func ViewTransform(x, y Range, width, height int) Affine {
	sx, sy := 1.0, 1.0
	if x.Span() != 0 {
		sx = float64(width) / x.Span()
	}
	if y.Span() != 0 {
		sy = float64(height) / y.Span()
	}
	return Translate(-x.Min, -y.Max).Then(Scale(sx, -sy))
}

var _ TransformSystem = (*Transforms)(nil)
