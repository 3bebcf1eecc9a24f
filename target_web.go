package clusterview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nimsforest/clusterview/pick"
)

// WebTarget serves the view state over HTTP. It provides a JSON API at
// /api/viewmodel and can serve static assets.
type WebTarget struct {
	addr     string
	server   *http.Server
	listener net.Listener
	state    *ViewState
	mu       sync.RWMutex
	webDir   string
	started  bool

	selection func() pick.Selection
	controls  Controls
	metrics   *Metrics
	logger    *zap.Logger
}

// WebOption configures a WebTarget.
type WebOption func(*WebTarget)

// WithWebDir sets the directory containing static web assets.
func WithWebDir(dir string) WebOption {
	return func(t *WebTarget) {
		t.webDir = dir
	}
}

// WithView exposes the view's selection details and camera reset.
func WithView(v *View) WebOption {
	return func(t *WebTarget) {
		t.selection = v.Selection
		t.controls = v
	}
}

// WithWebMetrics serves m at /metrics.
func WithWebMetrics(m *Metrics) WebOption {
	return func(t *WebTarget) {
		t.metrics = m
	}
}

// WithWebLogger sets the logger.
func WithWebLogger(l *zap.Logger) WebOption {
	return func(t *WebTarget) {
		t.logger = l
	}
}

// NewWebTarget creates a target that serves the view state via HTTP.
func NewWebTarget(addr string, opts ...WebOption) (*WebTarget, error) {
	if addr == "" {
		return nil, errors.New("web target: empty address")
	}
	target := &WebTarget{addr: addr, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(target)
	}
	return target, nil
}

// Name implements Target.
func (t *WebTarget) Name() string {
	return fmt.Sprintf("WebTarget(%s)", t.addr)
}

// Update implements Target. The server starts on the first update.
func (t *WebTarget) Update(ctx context.Context, state *ViewState) error {
	t.mu.Lock()
	t.state = state
	wasStarted := t.started
	t.mu.Unlock()

	if !wasStarted {
		return t.start()
	}
	return nil
}

// Handler returns the HTTP handler for embedding in existing servers.
func (t *WebTarget) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/api/viewmodel", t.handleViewmodel)
	r.Get("/api/selection", t.handleSelection)
	r.Post("/api/camera/reset", t.handleCameraReset)
	r.Post("/api/refresh", t.handleRefresh)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if t.metrics != nil {
		r.Method(http.MethodGet, "/metrics", t.metrics.Handler())
	}

	if t.webDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(t.webDir)))
	} else {
		r.Get("/", t.handleIndex)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (t *WebTarget) handleViewmodel(w http.ResponseWriter, r *http.Request) {
	t.mu.RLock()
	state := t.state
	t.mu.RUnlock()
	writeJSON(w, http.StatusOK, ViewStateToJSON(state))
}

func (t *WebTarget) handleSelection(w http.ResponseWriter, r *http.Request) {
	if t.selection == nil {
		writeJSON(w, http.StatusOK, DetailJSON{})
		return
	}
	writeJSON(w, http.StatusOK, Detail(t.selection(), time.Now()))
}

func (t *WebTarget) handleCameraReset(w http.ResponseWriter, r *http.Request) {
	if t.controls == nil {
		http.Error(w, "no view attached", http.StatusNotImplemented)
		return
	}
	t.controls.ResetCamera()
	w.WriteHeader(http.StatusAccepted)
}

func (t *WebTarget) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if t.controls == nil {
		http.Error(w, "no view attached", http.StatusNotImplemented)
		return
	}
	if err := t.controls.Refresh(r.Context()); err != nil {
		t.logger.Warn("refresh failed", zap.Error(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (t *WebTarget) handleIndex(w http.ResponseWriter, r *http.Request) {
	t.mu.RLock()
	state := t.state
	t.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html")

	var machines, workloads int
	if state != nil {
		machines, workloads = state.Summary.Machines, state.Summary.Workloads
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>clusterview</title>
    <style>
        body { font-family: system-ui; background: #0b1020; color: #eee; padding: 2rem; }
        h1 { color: #60a5fa; }
        .info { background: #16213e; padding: 1rem; border-radius: 8px; margin: 1rem 0; }
        a { color: #4ade80; }
    </style>
</head>
<body>
    <h1>clusterview</h1>
    <div class="info">
        <p><strong>Machines:</strong> %d</p>
        <p><strong>Workloads:</strong> %d</p>
        <p><strong>API:</strong> <a href="/api/viewmodel">/api/viewmodel</a>, <a href="/api/selection">/api/selection</a></p>
    </div>
</body>
</html>`, machines, workloads)

	w.Write([]byte(html))
}

func (t *WebTarget) start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}
	ln, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", t.addr, err)
	}
	t.listener = ln
	t.server = &http.Server{
		Handler:           t.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := t.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("web server stopped", zap.Error(err))
		}
	}()

	t.started = true
	t.logger.Info("web target listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Close implements Target.
func (t *WebTarget) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// URL returns the URL where the web target is serving.
func (t *WebTarget) URL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.listener != nil {
		return "http://" + t.listener.Addr().String()
	}
	return "http://localhost" + t.addr
}
