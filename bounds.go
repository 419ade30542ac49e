package nimsforestscene

import (
	"errors"
	"fmt"
	"math"
)

// BoundsMode describes the kind of boundary requested from a visual.
type BoundsMode int

const (
	BoundsVisual BoundsMode = iota // extent of what is drawn
	BoundsData                     // extent of the underlying data
	BoundsMouse                    // extent that reacts to the pointer
)

// ErrInvalidBoundsMode is returned by ParseBoundsMode for unknown names.
var ErrInvalidBoundsMode = errors.New("invalid bounds mode")

// BoundsModes lists every mode.
var BoundsModes = []BoundsMode{BoundsVisual, BoundsData, BoundsMouse}

func (m BoundsMode) String() string {
	switch m {
	case BoundsVisual:
		return "visual"
	case BoundsData:
		return "data"
	case BoundsMouse:
		return "mouse"
	default:
		return "unknown"
	}
}

// ParseBoundsMode converts "visual", "data" or "mouse" to a BoundsMode.
func ParseBoundsMode(s string) (BoundsMode, error) {
	for _, m := range BoundsModes {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidBoundsMode, s)
}

// Axis indices accepted by Visual.Bounds.
const (
	AxisX = 0
	AxisY = 1
	AxisZ = 2
)

// ValidAxis reports whether axis is 0, 1 or 2.
func ValidAxis(axis int) bool {
	return axis >= AxisX && axis <= AxisZ
}

// Range is a closed [Min, Max] interval along one axis.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Union returns the smallest range covering r and o.
func (r Range) Union(o Range) Range {
	return Range{Min: math.Min(r.Min, o.Min), Max: math.Max(r.Max, o.Max)}
}

// Intersects reports whether r and o overlap, touching ends included.
func (r Range) Intersects(o Range) bool {
	return r.Min <= o.Max && o.Min <= r.Max
}

// Pad widens the range by d on each side.
func (r Range) Pad(d float64) Range {
	return Range{Min: r.Min - d, Max: r.Max + d}
}

// PixelExtent is implemented by visuals that draw past their data points by a
// fixed distance in framebuffer pixels, such as a marker's half-size or a
// stroke's half-width. The canvas widens the visual bounds by it when culling.
type PixelExtent interface {
	PixelExtent() float64
}

// RangeOf returns the extent of vals, or false when vals is empty.
func RangeOf(vals ...float64) (Range, bool) {
	if len(vals) == 0 {
		return Range{}, false
	}
	r := Range{Min: vals[0], Max: vals[0]}
	for _, v := range vals[1:] {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	return r, true
}
