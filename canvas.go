package nimsforestscene

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/nimsforest/nimsforestscene"

var (
	// ErrAlreadyStarted is returned by Start on a running canvas.
	ErrAlreadyStarted = errors.New("canvas already started")

	// ErrDuplicateVisual is returned when a visual is added twice.
	ErrDuplicateVisual = errors.New("visual already on canvas")
)

// DefaultBackground is the canvas clear color.
var DefaultBackground = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}

type canvasEntry struct {
	visual Visual
	conns  []Connection
}

// Canvas owns a set of visuals, renders them into frames and pushes the
// frames to output targets.
type Canvas struct {
	mu         sync.RWMutex
	entries    []*canvasEntry
	targets    []Target
	width      int
	height     int
	background color.Color
	dpi        float64
	culling    bool
	view       [2]Range
	viewSet    bool
	interval   time.Duration
	logger     *log.Logger
	tracer     trace.Tracer
	last       *Frame
	cancel     context.CancelFunc
	done       chan struct{}

	dirty atomic.Bool
	seq   atomic.Uint64
}

// CanvasOption configures the Canvas.
type CanvasOption func(*Canvas)

// WithSize sets the framebuffer size in pixels.
func WithSize(width, height int) CanvasOption {
	return func(c *Canvas) {
		c.width = width
		c.height = height
	}
}

// WithInterval sets how often the render loop checks for pending redraws.
func WithInterval(d time.Duration) CanvasOption {
	return func(c *Canvas) {
		c.interval = d
	}
}

// WithBackground sets the clear color.
func WithBackground(bg color.Color) CanvasOption {
	return func(c *Canvas) {
		c.background = bg
	}
}

// WithDPI sets the resolution reported to visuals.
func WithDPI(dpi float64) CanvasOption {
	return func(c *Canvas) {
		c.dpi = dpi
	}
}

// WithCulling toggles skipping visuals whose bounds fall outside the view.
func WithCulling(enable bool) CanvasOption {
	return func(c *Canvas) {
		c.culling = enable
	}
}

// WithView sets the initial document rectangle shown by the canvas.
func WithView(x, y Range) CanvasOption {
	return func(c *Canvas) {
		c.view = [2]Range{x, y}
		c.viewSet = true
	}
}

// WithLogger sets the logger used by the background render loop.
func WithLogger(l *log.Logger) CanvasOption {
	return func(c *Canvas) {
		c.logger = l
	}
}

// WithTracerProvider sets the OpenTelemetry provider for render spans.
func WithTracerProvider(tp trace.TracerProvider) CanvasOption {
	return func(c *Canvas) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// NewCanvas creates a new Canvas with the given options.
func NewCanvas(opts ...CanvasOption) *Canvas {
	c := &Canvas{
		width:      800,
		height:     600,
		background: DefaultBackground,
		dpi:        96,
		culling:    true,
		interval:   time.Second / 30,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.width <= 0 {
		c.width = 1
	}
	if c.height <= 0 {
		c.height = 1
	}
	if !c.viewSet {
		c.view = [2]Range{{0, float64(c.width)}, {0, float64(c.height)}}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.tracer == nil {
		c.tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return c
}

// Size returns the framebuffer size.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// AddVisual adds v to the canvas and redraws whenever v asks for it.
func (c *Canvas) AddVisual(v Visual) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.visual == v {
			return ErrDuplicateVisual
		}
	}

	entry := &canvasEntry{visual: v}
	for _, kind := range []EventType{EventUpdate, EventBoundsChange} {
		conn, err := v.Events().Connect(kind, c.onVisualEvent)
		if err != nil {
			for _, prev := range entry.conns {
				prev.Disconnect()
			}
			return fmt.Errorf("add visual: %w", err)
		}
		entry.conns = append(entry.conns, conn)
	}
	c.entries = append(c.entries, entry)
	c.dirty.Store(true)
	return nil
}

// RemoveVisual removes v and stops listening to it.
func (c *Canvas) RemoveVisual(v Visual) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.visual == v {
			for _, conn := range e.conns {
				conn.Disconnect()
			}
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			c.dirty.Store(true)
			return true
		}
	}
	return false
}

// Visuals returns the visuals in draw order.
func (c *Canvas) Visuals() []Visual {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Visual, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.visual
	}
	return out
}

func (c *Canvas) onVisualEvent(Event) {
	c.dirty.Store(true)
}

// Dirty reports whether a redraw has been requested since the last render.
func (c *Canvas) Dirty() bool {
	return c.dirty.Load()
}

// Bounds returns the union of every visual's bound along axis.
func (c *Canvas) Bounds(mode BoundsMode, axis int) (Range, bool) {
	var (
		out   Range
		found bool
	)
	for _, v := range c.Visuals() {
		r, ok := v.Bounds(mode, axis)
		if !ok {
			continue
		}
		if !found {
			out, found = r, true
			continue
		}
		out = out.Union(r)
	}
	return out, found
}

// SetView sets the document rectangle shown by the canvas.
func (c *Canvas) SetView(x, y Range) {
	c.mu.Lock()
	c.view = [2]Range{x, y}
	c.mu.Unlock()
	c.dirty.Store(true)
}

// View returns the document rectangle shown by the canvas.
func (c *Canvas) View() (Range, Range) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view[0], c.view[1]
}

// AutoFit zooms the view to the visuals' bounds. Axes without any bound keep
// their current range. It reports whether any axis changed.
func (c *Canvas) AutoFit(mode BoundsMode) bool {
	x, y := c.View()
	view := [2]Range{x, y}
	fitted := false
	for axis := AxisX; axis <= AxisY; axis++ {
		r, ok := c.Bounds(mode, axis)
		if !ok {
			continue
		}
		if r.Span() == 0 {
			r = r.Pad(0.5)
		}
		view[axis] = r
		fitted = true
	}
	if fitted {
		c.SetView(view[0], view[1])
	}
	return fitted
}

// LastFrame returns the most recently rendered frame, or nil.
func (c *Canvas) LastFrame() *Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Render draws every visual into a new frame.
func (c *Canvas) Render(ctx context.Context) (*Frame, error) {
	ctx, span := c.tracer.Start(ctx, "canvas.render")
	defer span.End()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "context done")
		return nil, err
	}

	c.mu.RLock()
	visuals := make([]Visual, len(c.entries))
	for i, e := range c.entries {
		visuals[i] = e.visual
	}
	view := c.view
	culling := c.culling
	c.mu.RUnlock()

	// Cleared before drawing so updates raised mid-pass schedule another one.
	c.dirty.Store(false)

	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c.background), image.Point{}, draw.Src)

	ts := &Transforms{
		Visual:     Identity(),
		Document:   ViewTransform(view[0], view[1], c.width, c.height),
		Target:     img,
		Resolution: c.dpi,
	}

	perPixel := [2]float64{
		math.Abs(view[0].Span()) / float64(c.width),
		math.Abs(view[1].Span()) / float64(c.height),
	}
	frame := &Frame{Image: img, View: view}
	for _, v := range visuals {
		info := describeVisual(v)
		if culling && outsideView(v, view, perPixel) {
			info.Culled = true
			frame.Culled++
			frame.Visuals = append(frame.Visuals, info)
			continue
		}
		v.Draw(ts)
		frame.Visuals = append(frame.Visuals, info)
	}
	frame.Seq = c.seq.Add(1)
	frame.RenderedAt = time.Now()

	c.mu.Lock()
	c.last = frame
	c.mu.Unlock()

	span.SetAttributes(
		attribute.Int64("scene.frame.seq", int64(frame.Seq)),
		attribute.Int("scene.visuals", len(visuals)),
		attribute.Int("scene.culled", frame.Culled),
	)
	return frame, nil
}

// outsideView reports whether v's visual bounds miss the view on x or y.
// perPixel holds the document size of one framebuffer pixel per axis.
func outsideView(v Visual, view [2]Range, perPixel [2]float64) bool {
	var extent float64
	if pe, ok := v.(PixelExtent); ok {
		extent = pe.PixelExtent()
	}
	for axis := AxisX; axis <= AxisY; axis++ {
		r, ok := v.Bounds(BoundsVisual, axis)
		if !ok {
			continue
		}
		if extent > 0 {
			r = r.Pad(extent * perPixel[axis])
		}
		if !r.Intersects(view[axis]) {
			return true
		}
	}
	return false
}

// AddTarget adds an output target.
func (c *Canvas) AddTarget(t Target) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = append(c.targets, t)
	return nil
}

// RemoveTarget removes a target by reference.
func (c *Canvas) RemoveTarget(t Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, target := range c.targets {
		if target == t {
			c.targets = append(c.targets[:i], c.targets[i+1:]...)
			return
		}
	}
}

// Update renders a frame and sends it to all targets concurrently.
func (c *Canvas) Update(ctx context.Context) error {
	frame, err := c.Render(ctx)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	c.mu.RLock()
	targets := make([]Target, len(c.targets))
	copy(targets, c.targets)
	c.mu.RUnlock()

	var g errgroup.Group
	for _, target := range targets {
		g.Go(func() error {
			if err := target.Update(ctx, frame); err != nil {
				return fmt.Errorf("target %s: %w", target.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Start renders once and then keeps redrawing whenever a visual requests it.
func (c *Canvas) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	if err := c.Update(ctx); err != nil {
		c.logger.Printf("nimsforestscene: initial update: %v", err)
	}

	go c.run(ctx, done)
	return nil
}

func (c *Canvas) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.Dirty() {
				continue
			}
			if err := c.Update(ctx); err != nil && ctx.Err() == nil {
				c.logger.Printf("nimsforestscene: update: %v", err)
			}
		}
	}
}

// Stop stops the render loop and waits for it to exit.
func (c *Canvas) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Close stops the canvas, detaches every visual and closes all targets.
func (c *Canvas) Close() error {
	c.Stop()

	c.mu.Lock()
	entries := c.entries
	targets := c.targets
	c.entries = nil
	c.targets = nil
	c.mu.Unlock()

	for _, e := range entries {
		for _, conn := range e.conns {
			conn.Disconnect()
		}
	}

	var lastErr error
	for _, target := range targets {
		if err := target.Close(); err != nil {
			lastErr = fmt.Errorf("close %s: %w", target.Name(), err)
		}
	}
	return lastErr
}

var _ FrameSource = (*Canvas)(nil)
