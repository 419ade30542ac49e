package nimsforestscene

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransforms(w, h int) (*Transforms, *image.RGBA) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &Transforms{
		Visual:     Identity(),
		Document:   Identity(),
		Target:     img,
		Resolution: 96,
	}, img
}

func TestBase_DrawIsNoop(t *testing.T) {
	ts, img := newTestTransforms(4, 4)
	for i := range img.Pix {
		img.Pix[i] = 0x7f
	}
	before := append([]byte(nil), img.Pix...)

	NewBase().Draw(ts)

	assert.Equal(t, before, img.Pix)
}

func TestBase_NoBounds(t *testing.T) {
	b := NewBase()
	for _, mode := range BoundsModes {
		for axis := AxisX; axis <= AxisZ; axis++ {
			_, ok := b.Bounds(mode, axis)
			assert.False(t, ok, "mode=%s axis=%d", mode, axis)
		}
	}
}

func TestBase_UpdateNotifiesEachHandlerOnce(t *testing.T) {
	b := NewBase()
	var first, second, removed int
	b.Events().Update().Connect(func(Event) { first++ })
	b.Events().Update().Connect(func(Event) { second++ })
	conn := b.Events().Update().Connect(func(Event) { removed++ })
	require.True(t, conn.Disconnect())

	b.Update()

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 0, removed)
}

func TestBase_UpdateEventCarriesSource(t *testing.T) {
	b := NewBase()
	var got Event
	b.Events().Update().Connect(func(e Event) { got = e })

	b.Update()

	assert.Equal(t, EventUpdate, got.Type)
	assert.Same(t, b, got.Source)
}

func TestBase_InstancesHaveIndependentChannels(t *testing.T) {
	a, b := NewBase(), NewBase()
	require.NotSame(t, a.Events(), b.Events())

	var aCount, bCount int
	a.Events().Update().Connect(func(Event) { aCount++ })
	b.Events().Update().Connect(func(Event) { bCount++ })

	a.Update()

	assert.Equal(t, 1, aCount)
	assert.Equal(t, 0, bCount)
}

func TestBase_SubscribeThenUnsubscribe(t *testing.T) {
	b := NewBase()
	calls := 0
	conn, err := b.Events().Connect(EventUpdate, func(Event) { calls++ })
	require.NoError(t, err)
	b.Events().Update().Disconnect(conn)

	b.Update()

	assert.Zero(t, calls)
}

func TestBase_BoundsChangedDoesNotRequestRedraw(t *testing.T) {
	b := NewBase()
	var updates, changes int
	b.Events().Update().Connect(func(Event) { updates++ })
	b.Events().BoundsChange().Connect(func(Event) { changes++ })

	b.BoundsChanged()

	assert.Equal(t, 0, updates)
	assert.Equal(t, 1, changes)
}

func TestBase_Options(t *testing.T) {
	b := NewBase(WithName("axis"), WithID("v-1"), WithProperty("color", color.White))

	assert.Equal(t, "axis", b.Name())
	assert.Equal(t, "v-1", b.ID())
	v, ok := b.Property("color")
	require.True(t, ok)
	assert.Equal(t, color.White, v)
	_, ok = b.Property("missing")
	assert.False(t, ok)
}

func TestBase_GeneratedIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewBase().ID(), NewBase().ID())
}

// boxVisual is a minimal concrete visual used across the package tests.
type boxVisual struct {
	*Base
	x, y  Range
	draws int
	fill  color.Color
}

func newBoxVisual(x, y Range, opts ...Option) *boxVisual {
	v := &boxVisual{x: x, y: y, fill: color.White}
	v.Base = new(Base).Init(v, opts...)
	return v
}

func (v *boxVisual) Bounds(mode BoundsMode, axis int) (Range, bool) {
	switch axis {
	case AxisX:
		return v.x, true
	case AxisY:
		return v.y, true
	default:
		return Range{}, false
	}
}

func (v *boxVisual) Draw(ts TransformSystem) {
	v.draws++
	t := ts.VisualToFramebuffer()
	p0 := t.Map([2]float64{v.x.Min, v.y.Max})
	p1 := t.Map([2]float64{v.x.Max, v.y.Min})
	r := image.Rect(int(p0[0]), int(p0[1]), int(p1[0]), int(p1[1]))
	fb := ts.Framebuffer()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			fb.Set(x, y, v.fill)
		}
	}
}

func TestInit_EmbeddedVisualIsEventSource(t *testing.T) {
	v := newBoxVisual(Range{0, 1}, Range{0, 1})
	var src any
	v.Events().Update().Connect(func(e Event) { src = e.Source })

	v.Update()

	assert.Same(t, v, src)
}

func TestBase_ZeroValueIsUsable(t *testing.T) {
	var b Base
	var got []Event
	for _, kind := range b.Events().Kinds() {
		_, err := b.Events().Connect(kind, func(e Event) { got = append(got, e) })
		require.NoError(t, err)
	}

	require.NotPanics(t, b.Update)
	require.NotPanics(t, b.BoundsChanged)

	require.Len(t, got, 2)
	assert.Equal(t, EventUpdate, got[0].Type)
	assert.Equal(t, EventBoundsChange, got[1].Type)
	assert.Same(t, &b, got[0].Source)
	assert.Same(t, b.Events(), b.Events())
}
