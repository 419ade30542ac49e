package nimsforestscene

import (
	"image"
	"time"
)

// Frame is the result of one canvas render pass.
type Frame struct {
	Seq        uint64
	Image      *image.RGBA
	View       [2]Range
	Visuals    []VisualInfo
	Culled     int
	RenderedAt time.Time
}

// VisualInfo describes a visual that took part in a render pass.
type VisualInfo struct {
	ID     string
	Name   string
	Bounds [3]*Range // data bounds per axis, nil when unbounded
	Culled bool
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	if f == nil || f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	if f == nil || f.Image == nil {
		return 0
	}
	return f.Image.Bounds().Dy()
}

// describeVisual collects ID, name and data bounds for v.
func describeVisual(v Visual) VisualInfo {
	var info VisualInfo
	if id, ok := v.(Identified); ok {
		info.ID = id.ID()
		info.Name = id.Name()
	}
	for axis := AxisX; axis <= AxisZ; axis++ {
		if r, ok := v.Bounds(BoundsData, axis); ok {
			r := r
			info.Bounds[axis] = &r
		}
	}
	return info
}
