package nimsforestscene

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"sync"
)

// WebTarget serves rendered frames via HTTP for web browsers.
// It provides a JSON API at /api/frame, the image at /frame.png and can
// serve static assets.
type WebTarget struct {
	addr    string
	server  *http.Server
	frame   *Frame
	png     []byte
	mu      sync.RWMutex
	webDir  string // Optional directory with static web assets
	started bool
	logger  *log.Logger
}

// WebOption configures a WebTarget.
type WebOption func(*WebTarget)

// WithWebDir sets the directory containing static web assets.
func WithWebDir(dir string) WebOption {
	return func(t *WebTarget) {
		t.webDir = dir
	}
}

// WithWebLogger sets the logger for server errors.
func WithWebLogger(l *log.Logger) WebOption {
	return func(t *WebTarget) {
		t.logger = l
	}
}

// NewWebTarget creates a target that serves frames via HTTP.
func NewWebTarget(addr string, opts ...WebOption) (*WebTarget, error) {
	target := &WebTarget{
		addr:   addr,
		logger: log.Default(),
	}

	for _, opt := range opts {
		opt(target)
	}

	return target, nil
}

// Name implements Target.
func (t *WebTarget) Name() string {
	return fmt.Sprintf("WebTarget(%s)", t.addr)
}

// Update implements Target.
func (t *WebTarget) Update(ctx context.Context, frame *Frame) error {
	var encoded []byte
	if frame != nil && frame.Image != nil {
		var buf bytes.Buffer
		if err := png.Encode(&buf, frame.Image); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		encoded = buf.Bytes()
	}

	t.mu.Lock()
	t.frame = frame
	t.png = encoded
	wasStarted := t.started
	t.mu.Unlock()

	// Auto-start server on first update
	if !wasStarted {
		return t.start()
	}
	return nil
}

// Handler returns the HTTP handler for embedding in existing servers.
func (t *WebTarget) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/frame", t.handleFrame)
	mux.HandleFunc("/frame.png", t.handleImage)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if t.webDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(t.webDir)))
	} else {
		mux.HandleFunc("/", t.handleIndex)
	}

	return mux
}

func (t *WebTarget) handleFrame(w http.ResponseWriter, r *http.Request) {
	t.mu.RLock()
	frame := t.frame
	t.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(FrameToJSON(frame))
}

func (t *WebTarget) handleImage(w http.ResponseWriter, r *http.Request) {
	t.mu.RLock()
	data := t.png
	t.mu.RUnlock()

	if data == nil {
		http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (t *WebTarget) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	t.mu.RLock()
	frame := t.frame
	t.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html")

	var seq uint64
	visualCount := 0
	if frame != nil {
		seq = frame.Seq
		visualCount = len(frame.Visuals)
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>nimsforestscene</title>
    <style>
        body { font-family: system-ui; background: #1a1a2e; color: #eee; padding: 2rem; }
        h1 { color: #4ade80; }
        .info { background: #16213e; padding: 1rem; border-radius: 8px; margin: 1rem 0; }
        a { color: #60a5fa; }
        img { max-width: 100%%; border-radius: 8px; }
    </style>
    <script>
        setInterval(function () {
            document.getElementById("frame").src = "/frame.png?t=" + Date.now();
        }, 1000);
    </script>
</head>
<body>
    <h1>nimsforestscene</h1>
    <div class="info">
        <p><strong>Frame:</strong> %d</p>
        <p><strong>Visuals:</strong> %d</p>
        <p><strong>API:</strong> <a href="/api/frame">/api/frame</a></p>
    </div>
    <img id="frame" src="/frame.png" alt="frame">
</body>
</html>`, seq, visualCount)

	w.Write([]byte(html))
}

func (t *WebTarget) start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	t.server = &http.Server{
		Addr:    t.addr,
		Handler: t.Handler(),
	}

	server := t.server
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Printf("nimsforestscene: web target %s: %v", t.addr, err)
		}
	}()

	t.started = true
	return nil
}

// Close implements Target.
func (t *WebTarget) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.server != nil {
		return t.server.Shutdown(context.Background())
	}
	return nil
}

// URL returns the URL where the web target is serving.
func (t *WebTarget) URL() string {
	return "http://localhost" + t.addr
}
