package clusterview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	smarttv "github.com/nimsforest/nimsforestsmarttv"
	sprites "github.com/nimsforest/nimsforestsprites"
	"go.uber.org/zap"
)

// VideoTarget streams a rendered clip to a Smart TV. With a frame source the
// clip is recorded from the live 3D view in real time; otherwise it is drawn
// from the view state with nimsforestsprites.
type VideoTarget struct {
	tv         *smarttv.TV
	tvRenderer *smarttv.Renderer
	sprites    *sprites.Renderer
	frames     FrameSource
	spriteOpts sprites.Options
	fps        int
	duration   time.Duration
	httpServer *http.Server
	videoFile  string
	localIP    string
	port       int
	logger     *zap.Logger
	mu         sync.Mutex
	state      *ViewState
}

// VideoOption configures a VideoTarget.
type VideoOption func(*VideoTarget)

// WithVideoFPS sets the video frame rate.
func WithVideoFPS(fps int) VideoOption {
	return func(t *VideoTarget) {
		t.fps = fps
	}
}

// WithVideoDuration sets the clip length.
func WithVideoDuration(d time.Duration) VideoOption {
	return func(t *VideoTarget) {
		t.duration = d
	}
}

// WithVideoPort sets the port the clip is served from.
func WithVideoPort(port int) VideoOption {
	return func(t *VideoTarget) {
		t.port = port
	}
}

// WithVideoSpriteOptions sets the frame size and sprite renderer options.
func WithVideoSpriteOptions(opts sprites.Options) VideoOption {
	return func(t *VideoTarget) {
		t.spriteOpts = opts
	}
}

// WithVideoFrames records frames from fs.
func WithVideoFrames(fs FrameSource) VideoOption {
	return func(t *VideoTarget) {
		t.frames = fs
	}
}

// WithVideoLogger sets the logger.
func WithVideoLogger(l *zap.Logger) VideoOption {
	return func(t *VideoTarget) {
		t.logger = l
	}
}

// NewVideoTarget creates a target that streams video to a Smart TV.
func NewVideoTarget(tv *smarttv.TV, opts ...VideoOption) (*VideoTarget, error) {
	target := &VideoTarget{
		tv:       tv,
		fps:      10,
		duration: 60 * time.Second,
		port:     8889,
		logger:   zap.NewNop(),
		spriteOpts: sprites.Options{
			Width:     1920,
			Height:    1080,
			FrameRate: 30,
			UseGPU:    false,
		},
	}
	for _, opt := range opts {
		opt(target)
	}
	if target.fps <= 0 {
		return nil, fmt.Errorf("invalid video fps: %d", target.fps)
	}

	renderer, err := smarttv.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create smarttv renderer: %w", err)
	}
	target.tvRenderer = renderer

	if target.frames == nil {
		spriteRenderer, err := sprites.New(target.spriteOpts)
		if err != nil {
			renderer.Close()
			return nil, fmt.Errorf("create sprite renderer: %w", err)
		}
		target.sprites = spriteRenderer
	}

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

// Update implements Target. It only records the state; Start produces the
// clip.
func (t *VideoTarget) Update(ctx context.Context, state *ViewState) error {
	t.mu.Lock()
	t.state = state
	t.mu.Unlock()
	return nil
}

// Start records a clip, serves it over HTTP and tells the TV to play it.
func (t *VideoTarget) Start(ctx context.Context) error {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	if state == nil && t.frames == nil {
		return errors.New("no state set - call Update first")
	}

	videoFile, err := t.generateVideo(ctx, state)
	if err != nil {
		return fmt.Errorf("generate video: %w", err)
	}
	t.videoFile = videoFile

	if err := t.startHTTPServer(); err != nil {
		return fmt.Errorf("start HTTP server: %w", err)
	}

	videoURL := fmt.Sprintf("http://%s:%d/stream.mp4", t.localIP, t.port)
	if err := t.tvRenderer.StreamVideo(ctx, t.tv, videoURL, "clusterview"); err != nil {
		return fmt.Errorf("stream to TV: %w", err)
	}
	t.logger.Info("video streaming", zap.String("url", videoURL))
	return nil
}

func (t *VideoTarget) generateVideo(ctx context.Context, state *ViewState) (string, error) {
	totalFrames := int(t.duration.Seconds() * float64(t.fps))
	videoFile := fmt.Sprintf("%s/clusterview_%d.mp4", os.TempDir(), time.Now().UnixNano())
	w, h := t.spriteOpts.Width, t.spriteOpts.Height

	ffmpeg := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", w, h),
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

	err = t.writeFrames(ctx, ffmpegIn, state, totalFrames, w, h)
	ffmpegIn.Close()
	if waitErr := ffmpeg.Wait(); err == nil && waitErr != nil {
		err = fmt.Errorf("ffmpeg encode: %w", waitErr)
	}
	if err != nil {
		os.Remove(videoFile)
		return "", err
	}
	return videoFile, nil
}

func (t *VideoTarget) writeFrames(ctx context.Context, out io.Writer, state *ViewState, n, w, h int) error {
	if t.frames == nil {
		adapter := NewSpritesStateAdapter(state)
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			frame := t.sprites.Render(adapter)
			if frame == nil {
				continue
			}
			if _, err := out.Write(ensureRGBA(frame).Pix); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		}
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	ticker := time.NewTicker(time.Second / time.Duration(t.fps))
	defer ticker.Stop()
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := t.frames.DrawFrame(img); err != nil {
			return fmt.Errorf("draw frame: %w", err)
		}
		if _, err := out.Write(img.Pix); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
	return nil
}

func (t *VideoTarget) startHTTPServer() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/stream.mp4", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		http.ServeFile(w, r, t.videoFile)
	})
	t.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := t.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("video server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Close implements Target.
func (t *VideoTarget) Close() error {
	if t.httpServer != nil {
		t.httpServer.Shutdown(context.Background())
	}
	if t.sprites != nil {
		t.sprites.Close()
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

// getLocalIP returns the address other hosts on the LAN can reach us at.
func getLocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "localhost"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// ensureRGBA converts any image to RGBA.
func ensureRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}
