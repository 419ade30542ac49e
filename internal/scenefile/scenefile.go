// Package scenefile loads canvas descriptions from YAML.
package scenefile

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"

	scene "github.com/nimsforest/nimsforestscene"
	"github.com/nimsforest/nimsforestscene/primitives"
	"golang.org/x/image/math/f64"
	"gopkg.in/yaml.v3"
)

// ErrInvalidScene is wrapped by every validation failure.
var ErrInvalidScene = errors.New("invalid scene")

// Scene is the YAML document.
type Scene struct {
	Width      int          `yaml:"width"`
	Height     int          `yaml:"height"`
	Background string       `yaml:"background"`
	AutoFit    string       `yaml:"autofit"`
	View       *View        `yaml:"view"`
	Visuals    []VisualSpec `yaml:"visuals"`
}

// View is an explicit document rectangle.
type View struct {
	X [2]float64 `yaml:"x"`
	Y [2]float64 `yaml:"y"`
}

// VisualSpec describes one visual.
type VisualSpec struct {
	Kind   string       `yaml:"kind"`
	Name   string       `yaml:"name"`
	Color  string       `yaml:"color"`
	Width  float64      `yaml:"width"`
	Size   float64      `yaml:"size"`
	Shape  string       `yaml:"shape"`
	Points [][2]float64 `yaml:"points"`
}

// Load reads and parses a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scene document.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	if s.Width == 0 {
		s.Width = 800
	}
	if s.Height == 0 {
		s.Height = 600
	}
	if s.Width < 0 || s.Height < 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidScene, s.Width, s.Height)
	}
	if s.AutoFit != "" {
		if _, err := scene.ParseBoundsMode(s.AutoFit); err != nil {
			return nil, fmt.Errorf("%w: autofit: %v", ErrInvalidScene, err)
		}
	}
	for i, v := range s.Visuals {
		switch v.Kind {
		case "line", "markers":
		default:
			return nil, fmt.Errorf("%w: visual %d: unknown kind %q", ErrInvalidScene, i, v.Kind)
		}
	}
	return &s, nil
}

// Build creates a canvas holding the scene's visuals. Extra options are
// applied after the scene's own.
func (s *Scene) Build(opts ...scene.CanvasOption) (*scene.Canvas, error) {
	canvasOpts := []scene.CanvasOption{scene.WithSize(s.Width, s.Height)}
	if s.Background != "" {
		bg, err := ParseColor(s.Background)
		if err != nil {
			return nil, fmt.Errorf("%w: background: %v", ErrInvalidScene, err)
		}
		canvasOpts = append(canvasOpts, scene.WithBackground(bg))
	}
	if s.View != nil {
		canvasOpts = append(canvasOpts, scene.WithView(
			scene.Range{Min: s.View.X[0], Max: s.View.X[1]},
			scene.Range{Min: s.View.Y[0], Max: s.View.Y[1]},
		))
	}
	c := scene.NewCanvas(append(canvasOpts, opts...)...)

	for i, spec := range s.Visuals {
		v, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("%w: visual %d: %v", ErrInvalidScene, i, err)
		}
		if err := c.AddVisual(v); err != nil {
			return nil, err
		}
	}

	if s.AutoFit != "" {
		mode, _ := scene.ParseBoundsMode(s.AutoFit)
		c.AutoFit(mode)
	}
	return c, nil
}

func (v VisualSpec) build() (scene.Visual, error) {
	c := color.Color(color.White)
	if v.Color != "" {
		parsed, err := ParseColor(v.Color)
		if err != nil {
			return nil, err
		}
		c = parsed
	}
	pts := make([]f64.Vec2, len(v.Points))
	for i, p := range v.Points {
		pts[i] = f64.Vec2{p[0], p[1]}
	}
	var opts []scene.Option
	if v.Name != "" {
		opts = append(opts, scene.WithName(v.Name))
	}

	switch v.Kind {
	case "line":
		width := v.Width
		if width == 0 {
			width = 1
		}
		return primitives.NewLine(pts, c, width, opts...), nil
	case "markers":
		size := v.Size
		if size == 0 {
			size = 6
		}
		shape := primitives.Square
		switch v.Shape {
		case "", "square":
		case "disc":
			shape = primitives.Disc
		default:
			return nil, fmt.Errorf("unknown shape %q", v.Shape)
		}
		return primitives.NewMarkers(pts, c, size, shape, opts...), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", v.Kind)
	}
}

// ParseColor accepts #rgb, #rrggbb and #rrggbbaa.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("bad color %q", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// Demo returns a sine wave with sample markers, fitted to its data.
func Demo() *Scene {
	const samples = 64
	wave := make([][2]float64, samples)
	for i := range wave {
		x := float64(i) / (samples - 1) * 2 * math.Pi
		wave[i] = [2]float64{x, math.Sin(x)}
	}
	var marks [][2]float64
	for i := 0; i < samples; i += 8 {
		marks = append(marks, wave[i])
	}
	return &Scene{
		Width:      800,
		Height:     600,
		Background: "#1a1a2e",
		AutoFit:    "data",
		Visuals: []VisualSpec{
			{Kind: "line", Name: "sine", Color: "#4ade80", Width: 2, Points: wave},
			{Kind: "markers", Name: "samples", Color: "#60a5fa", Size: 8, Shape: "disc", Points: marks},
		},
	}
}
