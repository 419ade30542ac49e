package primitives

import (
	"image"
	"image/color"
	"testing"

	scene "github.com/nimsforest/nimsforestscene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/f64"
)

var red = color.RGBA{255, 0, 0, 255}

func pixelTransforms(w, h int) (*scene.Transforms, *image.RGBA) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &scene.Transforms{
		Visual:     scene.Identity(),
		Document:   scene.Identity(),
		Target:     img,
		Resolution: 96,
	}, img
}

func TestLine_Bounds(t *testing.T) {
	l := NewLine([]f64.Vec2{{1, 5}, {-2, 3}, {4, 4}}, red, 1)

	x, ok := l.Bounds(scene.BoundsData, scene.AxisX)
	require.True(t, ok)
	assert.Equal(t, scene.Range{Min: -2, Max: 4}, x)

	y, ok := l.Bounds(scene.BoundsVisual, scene.AxisY)
	require.True(t, ok)
	assert.Equal(t, scene.Range{Min: 3, Max: 5}, y)

	_, ok = l.Bounds(scene.BoundsData, scene.AxisZ)
	assert.False(t, ok)

	empty := NewLine(nil, red, 1)
	for _, mode := range scene.BoundsModes {
		_, ok := empty.Bounds(mode, scene.AxisX)
		assert.False(t, ok)
	}
}

func TestLine_SetDataNotifies(t *testing.T) {
	l := NewLine(nil, red, 1, scene.WithName("trace"))
	var got []scene.EventType
	var sources []any
	for _, kind := range l.Events().Kinds() {
		_, err := l.Events().Connect(kind, func(e scene.Event) {
			got = append(got, e.Type)
			sources = append(sources, e.Source)
		})
		require.NoError(t, err)
	}

	l.SetData([]f64.Vec2{{0, 0}, {1, 1}})

	assert.Equal(t, []scene.EventType{scene.EventBoundsChange, scene.EventUpdate}, got)
	for _, src := range sources {
		assert.Same(t, l, src)
	}
	assert.Equal(t, "trace", l.Name())
	assert.Len(t, l.Data(), 2)
}

func TestLine_StyleChangesOnlyRequestRedraw(t *testing.T) {
	l := NewLine([]f64.Vec2{{0, 0}, {1, 1}}, red, 1)
	var updates, changes int
	l.Events().Update().Connect(func(scene.Event) { updates++ })
	l.Events().BoundsChange().Connect(func(scene.Event) { changes++ })

	l.SetColor(color.White)
	l.SetWidth(3)

	assert.Equal(t, 2, updates)
	assert.Zero(t, changes)
}

func TestLine_Draw(t *testing.T) {
	ts, img := pixelTransforms(20, 20)
	l := NewLine([]f64.Vec2{{2, 10}, {18, 10}}, red, 4)

	l.Draw(ts)

	assert.Equal(t, red, img.RGBAAt(10, 10))
	assert.Equal(t, red, img.RGBAAt(10, 9))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(10, 2))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 10))
}

func TestLine_DrawDegenerate(t *testing.T) {
	ts, img := pixelTransforms(4, 4)
	NewLine([]f64.Vec2{{1, 1}}, red, 2).Draw(ts)
	NewLine([]f64.Vec2{{1, 1}, {1, 1}}, red, 2).Draw(ts)
	NewLine([]f64.Vec2{{0, 0}, {4, 4}}, red, 0).Draw(ts)

	for _, b := range img.Pix {
		require.Zero(t, b)
	}
}

func TestLine_DrawUsesTransform(t *testing.T) {
	ts, img := pixelTransforms(20, 20)
	ts.Document = scene.Scale(10, 10)
	l := NewLine([]f64.Vec2{{0, 1}, {2, 1}}, red, 2)

	l.Draw(ts)

	assert.Equal(t, red, img.RGBAAt(15, 10))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(15, 3))
}

func TestMarkers_Draw(t *testing.T) {
	for _, shape := range []Shape{Square, Disc} {
		t.Run(shape.String(), func(t *testing.T) {
			ts, img := pixelTransforms(30, 30)
			m := NewMarkers([]f64.Vec2{{5, 5}, {25, 25}}, red, 6, shape)

			m.Draw(ts)

			assert.Equal(t, red, img.RGBAAt(5, 5))
			assert.Equal(t, red, img.RGBAAt(24, 24))
			assert.Equal(t, color.RGBA{}, img.RGBAAt(15, 15))
		})
	}
}

func TestMarkers_DiscLeavesCornersEmpty(t *testing.T) {
	ts, img := pixelTransforms(20, 20)
	NewMarkers([]f64.Vec2{{10, 10}}, red, 16, Disc).Draw(ts)

	assert.Equal(t, red, img.RGBAAt(10, 10))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(3, 3))
}

func TestMarkers_BoundsAndNotifications(t *testing.T) {
	m := NewMarkers([]f64.Vec2{{1, 2}}, red, 4, Square)
	r, ok := m.Bounds(scene.BoundsMouse, scene.AxisY)
	require.True(t, ok)
	assert.Equal(t, scene.Range{Min: 2, Max: 2}, r)

	var updates, changes int
	m.Events().Update().Connect(func(scene.Event) { updates++ })
	m.Events().BoundsChange().Connect(func(scene.Event) { changes++ })

	m.SetData([]f64.Vec2{{3, 4}, {5, 6}})
	m.SetStyle(color.White, 8, Disc)

	assert.Equal(t, 2, updates)
	assert.Equal(t, 1, changes)
	assert.Equal(t, "unknown", Shape(9).String())
}

func TestPrimitives_OnCanvas(t *testing.T) {
	c := scene.NewCanvas(scene.WithSize(40, 40))
	l := NewLine([]f64.Vec2{{0, 0}, {10, 10}}, red, 2)
	m := NewMarkers([]f64.Vec2{{5, 5}}, red, 4, Square)
	require.NoError(t, c.AddVisual(l))
	require.NoError(t, c.AddVisual(m))
	require.True(t, c.AutoFit(scene.BoundsData))

	frame, err := c.Render(t.Context())
	require.NoError(t, err)
	assert.Zero(t, frame.Culled)
	// (5, 5) is the middle of the view
	assert.Equal(t, red, frame.Image.RGBAAt(20, 20))

	m.SetData([]f64.Vec2{{6, 6}})
	assert.True(t, c.Dirty())
}

func TestPrimitives_PixelExtent(t *testing.T) {
	assert.Equal(t, 3.0, NewLine(nil, red, 6).PixelExtent())
	assert.Equal(t, 10.0, NewMarkers(nil, red, 20, Disc).PixelExtent())
}

func TestCanvas_KeepsPrimitivesStraddlingViewEdge(t *testing.T) {
	c := scene.NewCanvas(
		scene.WithSize(100, 100),
		scene.WithView(scene.Range{Min: 0, Max: 100}, scene.Range{Min: 0, Max: 100}),
	)
	// Centers lie outside the view but the drawn shapes reach into it.
	edgeMarker := NewMarkers([]f64.Vec2{{-2, 50}}, red, 20, Square)
	edgeLine := NewLine([]f64.Vec2{{10, -1}, {90, -1}}, red, 6)
	farMarker := NewMarkers([]f64.Vec2{{-50, 50}}, red, 20, Square)
	for _, v := range []scene.Visual{edgeMarker, edgeLine, farMarker} {
		require.NoError(t, c.AddVisual(v))
	}

	frame, err := c.Render(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, frame.Culled)
	assert.Equal(t, red, frame.Image.RGBAAt(3, 50))
	assert.Equal(t, red, frame.Image.RGBAAt(50, 99))

	for _, info := range frame.Visuals {
		assert.Equal(t, info.ID == farMarker.ID(), info.Culled, info.ID)
	}
}
