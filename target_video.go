package nimsforestscene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	smarttv "github.com/nimsforest/nimsforestsmarttv"
)

// ErrNoSource is returned when a VideoTarget has neither a frame nor a source.
var ErrNoSource = errors.New("no frame or frame source set")

// VideoTarget streams continuous video to Smart TVs.
// Frames are encoded with ffmpeg and served to the TV over HTTP.
type VideoTarget struct {
	tv          *smarttv.TV
	tvRenderer  *smarttv.Renderer
	fps         int
	duration    time.Duration
	width       int
	height      int
	httpServer  *http.Server
	videoFile   string
	localIP     string
	port        int
	mu          sync.Mutex
	frame       *Frame
	frameSource FrameSource
}

// VideoOption configures a VideoTarget.
type VideoOption func(*VideoTarget)

// WithVideoFPS sets the video frame rate.
func WithVideoFPS(fps int) VideoOption {
	return func(t *VideoTarget) {
		t.fps = fps
	}
}

// WithVideoDuration sets the video duration.
func WithVideoDuration(d time.Duration) VideoOption {
	return func(t *VideoTarget) {
		t.duration = d
	}
}

// WithVideoSize sets the encoded resolution.
func WithVideoSize(width, height int) VideoOption {
	return func(t *VideoTarget) {
		t.width = width
		t.height = height
	}
}

// WithVideoPort sets the port the video file is served on.
func WithVideoPort(port int) VideoOption {
	return func(t *VideoTarget) {
		t.port = port
	}
}

// NewVideoTarget creates a target that streams video to a Smart TV.
func NewVideoTarget(tv *smarttv.TV, opts ...VideoOption) (*VideoTarget, error) {
	target := &VideoTarget{
		tv:       tv,
		fps:      10,
		duration: 60 * time.Second,
		port:     8889,
		width:    1920,
		height:   1080,
	}

	for _, opt := range opts {
		opt(target)
	}

	renderer, err := smarttv.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create smarttv renderer: %w", err)
	}
	target.tvRenderer = renderer
	target.localIP = getLocalIP()

	return target, nil
}

// Name implements Target.
func (t *VideoTarget) Name() string {
	if t.tv != nil {
		return fmt.Sprintf("VideoTarget(%s)", t.tv.Name)
	}
	return "VideoTarget"
}

// SetFrameSource sets the source rendered for every video frame.
func (t *VideoTarget) SetFrameSource(s FrameSource) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frameSource = s
}

// Update implements Target.
// For VideoTarget, this only records the frame - use Start() to begin streaming.
func (t *VideoTarget) Update(ctx context.Context, frame *Frame) error {
	t.mu.Lock()
	t.frame = frame
	t.mu.Unlock()
	return nil
}

// Start begins video streaming to the TV.
// This pre-renders a video file and streams it.
func (t *VideoTarget) Start(ctx context.Context) error {
	t.mu.Lock()
	source := t.frameSource
	if source == nil && t.frame != nil {
		source = NewStaticFrameSource(t.frame)
	}
	t.mu.Unlock()

	if source == nil {
		return ErrNoSource
	}

	videoFile, err := t.generateVideo(ctx, source)
	if err != nil {
		return fmt.Errorf("generate video: %w", err)
	}
	t.videoFile = videoFile

	if err := t.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	videoURL := fmt.Sprintf("http://%s:%d/stream.mp4", t.localIP, t.port)
	if err := t.tvRenderer.StreamVideo(ctx, t.tv, videoURL, "nimsforestscene"); err != nil {
		return fmt.Errorf("stream to TV: %w", err)
	}

	return nil
}

func (t *VideoTarget) generateVideo(ctx context.Context, source FrameSource) (string, error) {
	totalFrames := int(t.duration.Seconds()) * t.fps
	videoFile := fmt.Sprintf("%s/nimsforestscene_%d.mp4", os.TempDir(), time.Now().UnixNano())

	ffmpeg := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", t.width, t.height),
		"-r", fmt.Sprintf("%d", t.fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-profile:v", "baseline",
		"-level", "3.0",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		videoFile,
	)

	ffmpegIn, err := ffmpeg.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("create pipe: %w", err)
	}
	ffmpeg.Stderr = io.Discard

	if err := ffmpeg.Start(); err != nil {
		return "", fmt.Errorf("start ffmpeg: %w", err)
	}

	for i := 0; i < totalFrames; i++ {
		select {
		case <-ctx.Done():
			ffmpegIn.Close()
			ffmpeg.Wait()
			return "", ctx.Err()
		default:
		}

		frame, err := source.Render(ctx)
		if err != nil || frame == nil || frame.Image == nil {
			continue
		}

		rgba := scaleTo(frame.Image, t.width, t.height)
		if _, err := ffmpegIn.Write(rgba.Pix); err != nil {
			break
		}
	}

	ffmpegIn.Close()
	if err := ffmpeg.Wait(); err != nil {
		return "", fmt.Errorf("ffmpeg encode: %w", err)
	}

	return videoFile, nil
}

func (t *VideoTarget) startHTTPServer(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/stream.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		http.ServeFile(w, r, t.videoFile)
	})

	t.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", t.port),
		Handler: mux,
	}

	go func() {
		t.httpServer.ListenAndServe()
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)
	return nil
}

// Close implements Target.
func (t *VideoTarget) Close() error {
	if t.httpServer != nil {
		t.httpServer.Shutdown(context.Background())
	}
	if t.tvRenderer != nil {
		t.tvRenderer.Close()
	}
	if t.videoFile != "" {
		os.Remove(t.videoFile)
	}
	return nil
}

// Stop stops video playback on the TV.
func (t *VideoTarget) Stop(ctx context.Context) error {
	return t.tvRenderer.Stop(ctx, t.tv)
}

// getLocalIP returns the local IP address.
func getLocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "localhost"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
