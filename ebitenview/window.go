// Package ebitenview shows canvas frames in a desktop window.
package ebitenview

import (
	"context"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	scene "github.com/nimsforest/nimsforestscene"
)

// Window is a scene.Target that displays the latest frame with ebiten.
type Window struct {
	mu      sync.Mutex
	title   string
	width   int
	height  int
	frame   *scene.Frame
	pending bool
	closed  bool
}

// Option configures a Window.
type Option func(*Window)

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(w *Window) {
		w.title = title
	}
}

// New creates a window sized to match a width x height canvas.
func New(width, height int, opts ...Option) *Window {
	w := &Window{
		title:  "nimsforestscene",
		width:  width,
		height: height,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name implements scene.Target.
func (w *Window) Name() string {
	return fmt.Sprintf("EbitenWindow(%s)", w.title)
}

// Update implements scene.Target.
func (w *Window) Update(ctx context.Context, frame *scene.Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.frame = frame
	w.pending = true
	return nil
}

// Close implements scene.Target. The window exits on its next tick.
func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

// Run opens the window and blocks until it is closed.
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(&game{w: w})
}

type game struct {
	w      *Window
	screen *ebiten.Image
}

func (g *game) Update() error {
	g.w.mu.Lock()
	defer g.w.mu.Unlock()
	if g.w.closed {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.w.mu.Lock()
	frame, pending := g.w.frame, g.w.pending
	g.w.pending = false
	g.w.mu.Unlock()

	if frame == nil || frame.Image == nil {
		return
	}
	b := frame.Image.Bounds()
	if g.screen == nil || g.screen.Bounds().Dx() != b.Dx() || g.screen.Bounds().Dy() != b.Dy() {
		g.screen = ebiten.NewImage(b.Dx(), b.Dy())
		pending = true
	}
	if pending {
		g.screen.WritePixels(frame.Image.Pix)
	}

	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/float64(b.Dx()), float64(sh)/float64(b.Dy()))
	screen.DrawImage(g.screen, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w.width, g.w.height
}

var _ scene.Target = (*Window)(nil)
