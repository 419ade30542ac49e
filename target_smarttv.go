package nimsforestscene

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"time"

	smarttv "github.com/nimsforest/nimsforestsmarttv"
	"golang.org/x/image/draw"
)

// SmartTVTarget displays rendered frames on Smart TVs via DLNA.
type SmartTVTarget struct {
	tv             *smarttv.TV
	renderer       *smarttv.Renderer
	useJFIF        bool // Convert to JFIF format for better TV compatibility
	width          int
	height         int
	lastImageBytes []byte // Cache to avoid redundant updates
}

// TVOption configures a SmartTVTarget.
type TVOption func(*SmartTVTarget)

// WithJFIF enables JFIF conversion for better TV compatibility.
// Requires ffmpeg and imagemagick to be installed.
func WithJFIF(enable bool) TVOption {
	return func(t *SmartTVTarget) {
		t.useJFIF = enable
	}
}

// WithTVSize sets the resolution frames are scaled to before sending.
func WithTVSize(width, height int) TVOption {
	return func(t *SmartTVTarget) {
		t.width = width
		t.height = height
	}
}

// NewSmartTVTarget creates a target that displays frames on a Smart TV.
func NewSmartTVTarget(tv *smarttv.TV, opts ...TVOption) (*SmartTVTarget, error) {
	target := &SmartTVTarget{
		tv:      tv,
		useJFIF: true, // Default to JFIF for better compatibility
		width:   1920,
		height:  1080,
	}

	for _, opt := range opts {
		opt(target)
	}

	renderer, err := smarttv.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create smarttv renderer: %w", err)
	}
	target.renderer = renderer

	return target, nil
}

// Name implements Target.
func (t *SmartTVTarget) Name() string {
	if t.tv != nil {
		return fmt.Sprintf("SmartTV(%s)", t.tv.Name)
	}
	return "SmartTV"
}

// Update implements Target.
func (t *SmartTVTarget) Update(ctx context.Context, frame *Frame) error {
	jpegData, changed, err := t.encodeFrame(frame)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := t.renderer.DisplayImageJPEG(ctx, t.tv, jpegData); err != nil {
		return fmt.Errorf("display on TV: %w", err)
	}

	return nil
}

// encodeFrame scales and encodes frame, reporting false when the result is
// byte-identical to the previously sent image.
func (t *SmartTVTarget) encodeFrame(frame *Frame) ([]byte, bool, error) {
	if frame == nil || frame.Image == nil {
		return nil, false, fmt.Errorf("empty frame")
	}

	img := scaleTo(frame.Image, t.width, t.height)

	var jpegData []byte
	var err error
	if t.useJFIF {
		jpegData, err = convertToJFIF(img)
	} else {
		jpegData, err = encodeJPEG(img)
	}
	if err != nil {
		return nil, false, fmt.Errorf("convert to JPEG: %w", err)
	}

	// Skip if image hasn't changed
	if bytes.Equal(jpegData, t.lastImageBytes) {
		return jpegData, false, nil
	}
	t.lastImageBytes = jpegData
	return jpegData, true, nil
}

// Close implements Target.
func (t *SmartTVTarget) Close() error {
	if t.renderer != nil {
		t.renderer.Close()
	}
	return nil
}

// Stop stops playback on the TV.
func (t *SmartTVTarget) Stop(ctx context.Context) error {
	return t.renderer.Stop(ctx, t.tv)
}

// scaleTo resamples img to width x height. Images already at that size, or
// a non-positive target size, are returned unchanged.
func scaleTo(img *image.RGBA, width, height int) *image.RGBA {
	b := img.Bounds()
	if width <= 0 || height <= 0 || (b.Dx() == width && b.Dy() == height) {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// convertToJFIF converts an image to JFIF-compliant JPEG using ffmpeg + magick.
// This produces JPEG files that are compatible with more TVs (especially JVC).
func convertToJFIF(img *image.RGBA) ([]byte, error) {
	bounds := img.Bounds()

	tmpFile := fmt.Sprintf("%s/scene_%d.jpg", os.TempDir(), time.Now().UnixNano())
	jfifFile := fmt.Sprintf("%s/scene_%d_jfif.jpg", os.TempDir(), time.Now().UnixNano())
	defer os.Remove(tmpFile)
	defer os.Remove(jfifFile)

	cmd := exec.Command("ffmpeg",
		"-y", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()),
		"-i", "pipe:0",
		"-vframes", "1",
		"-pix_fmt", "yuvj420p",
		"-q:v", "2",
		tmpFile,
	)
	cmd.Stdin = bytes.NewReader(img.Pix)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	cmd2 := exec.Command("magick", tmpFile, jfifFile)
	if err := cmd2.Run(); err != nil {
		// Fallback to ffmpeg output if magick not available
		return os.ReadFile(tmpFile)
	}

	return os.ReadFile(jfifFile)
}

// encodeJPEG encodes an image as standard JPEG (may not work on all TVs).
func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
