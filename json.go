package nimsforestscene

import (
	"encoding/json"
	"time"
)

// FrameJSON is the JSON representation of a Frame for the web frontend.
type FrameJSON struct {
	Seq        uint64       `json:"seq"`
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	ViewX      Range        `json:"view_x"`
	ViewY      Range        `json:"view_y"`
	Visuals    []VisualJSON `json:"visuals"`
	Culled     int          `json:"culled"`
	RenderedAt string       `json:"rendered_at,omitempty"`
	ImageURL   string       `json:"image_url,omitempty"`
}

// VisualJSON is the JSON representation of a visual in a frame.
type VisualJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	X      *Range `json:"x,omitempty"`
	Y      *Range `json:"y,omitempty"`
	Z      *Range `json:"z,omitempty"`
	Culled bool   `json:"culled,omitempty"`
}

// FrameToJSON converts a Frame to FrameJSON.
func FrameToJSON(frame *Frame) FrameJSON {
	if frame == nil {
		return FrameJSON{Visuals: []VisualJSON{}}
	}

	visuals := make([]VisualJSON, len(frame.Visuals))
	for i, v := range frame.Visuals {
		visuals[i] = VisualJSON{
			ID:     v.ID,
			Name:   v.Name,
			X:      v.Bounds[AxisX],
			Y:      v.Bounds[AxisY],
			Z:      v.Bounds[AxisZ],
			Culled: v.Culled,
		}
	}

	out := FrameJSON{
		Seq:     frame.Seq,
		Width:   frame.Width(),
		Height:  frame.Height(),
		ViewX:   frame.View[0],
		ViewY:   frame.View[1],
		Visuals: visuals,
		Culled:  frame.Culled,
	}
	if !frame.RenderedAt.IsZero() {
		out.RenderedAt = frame.RenderedAt.UTC().Format(time.RFC3339Nano)
	}
	if frame.Image != nil {
		out.ImageURL = "/frame.png"
	}
	return out
}

// FrameToJSONBytes converts a Frame to JSON bytes.
func FrameToJSONBytes(frame *Frame) ([]byte, error) {
	return json.Marshal(FrameToJSON(frame))
}
