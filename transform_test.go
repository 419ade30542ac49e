package nimsforestscene

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"
)

func assertVec(t *testing.T, want, got f64.Vec2) {
	t.Helper()
	assert.InDelta(t, want[0], got[0], 1e-9, "x")
	assert.InDelta(t, want[1], got[1], 1e-9, "y")
}

func TestAffine_ThenAppliesInOrder(t *testing.T) {
	// scale first, then translate
	a := Scale(2, 3).Then(Translate(10, 20))
	assertVec(t, f64.Vec2{12, 23}, a.Map(f64.Vec2{1, 1}))

	// translate first, then scale
	b := Translate(10, 20).Then(Scale(2, 3))
	assertVec(t, f64.Vec2{22, 63}, b.Map(f64.Vec2{1, 1}))
}

func TestAffine_Inverse(t *testing.T) {
	a := Scale(2, -4).Then(Translate(3, 5))
	inv, ok := a.Inverse()
	require.True(t, ok)

	p := f64.Vec2{7, -2}
	assertVec(t, p, inv.Map(a.Map(p)))
	assertVec(t, p, a.Imap(a.Map(p)))
}

func TestAffine_SingularInverse(t *testing.T) {
	inv, ok := Scale(0, 1).Inverse()
	assert.False(t, ok)
	assert.Equal(t, Identity().Matrix(), inv.Matrix())
}

func TestViewTransform_MapsCornersWithYUp(t *testing.T) {
	m := ViewTransform(Range{Min: -1, Max: 1}, Range{Min: 0, Max: 10}, 200, 100)

	assertVec(t, f64.Vec2{0, 0}, m.Map(f64.Vec2{-1, 10}))
	assertVec(t, f64.Vec2{200, 100}, m.Map(f64.Vec2{1, 0}))
	assertVec(t, f64.Vec2{100, 50}, m.Map(f64.Vec2{0, 5}))
}

func TestViewTransform_DegenerateRange(t *testing.T) {
	m := ViewTransform(Range{Min: 2, Max: 2}, Range{Min: 0, Max: 1}, 10, 10)
	assertVec(t, f64.Vec2{0, 10}, m.Map(f64.Vec2{2, 0}))
}

func TestTransforms_Composition(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	ts := &Transforms{
		Visual:     Translate(1, 0),
		Document:   Scale(10, 10),
		Target:     img,
		Resolution: 72,
	}

	assertVec(t, f64.Vec2{20, 10}, ts.VisualToFramebuffer().Map(f64.Vec2{1, 1}))
	assertVec(t, f64.Vec2{2, 1}, ts.VisualToDocument().Map(f64.Vec2{1, 1}))
	assertVec(t, f64.Vec2{10, 10}, ts.DocumentToFramebuffer().Map(f64.Vec2{1, 1}))
	assert.Equal(t, 72.0, ts.DPI())
	assert.Same(t, img, ts.Framebuffer())
}
