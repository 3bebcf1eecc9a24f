package clusterview

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
	sprites "github.com/nimsforest/nimsforestsprites"
)

// FrameSource draws the current 3D frame on demand.
type FrameSource interface {
	DrawFrame(dst *image.RGBA) error
}

// SmartTVTarget displays still images on Smart TVs via DLNA. With a frame
// source it shows the rendered 3D view; otherwise it draws the view state
// with nimsforestsprites.
type SmartTVTarget struct {
	tv             *smarttv.TV
	renderer       *smarttv.Renderer
	sprites        *sprites.Renderer
	frames         FrameSource
	useJFIF        bool
	spriteOpts     sprites.Options
	lastImageBytes []byte
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

// WithSpriteOptions sets the sprite renderer options. Width and Height also
// size frames taken from a frame source.
func WithSpriteOptions(opts sprites.Options) TVOption {
	return func(t *SmartTVTarget) {
		t.spriteOpts = opts
	}
}

// WithTVFrames shows frames from fs instead of the sprite rendering.
func WithTVFrames(fs FrameSource) TVOption {
	return func(t *SmartTVTarget) {
		t.frames = fs
	}
}

// NewSmartTVTarget creates a target that displays images on a Smart TV.
func NewSmartTVTarget(tv *smarttv.TV, opts ...TVOption) (*SmartTVTarget, error) {
	target := &SmartTVTarget{
		tv:      tv,
		useJFIF: true,
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

	renderer, err := smarttv.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create smarttv renderer: %w", err)
	}
	target.renderer = renderer

	if target.frames == nil {
		spriteRenderer, err := sprites.New(target.spriteOpts)
		if err != nil {
			renderer.Close()
			return nil, fmt.Errorf("create sprite renderer: %w", err)
		}
		target.sprites = spriteRenderer
	}
	return target, nil
}

// Name implements Target.
func (t *SmartTVTarget) Name() string {
	if t.tv != nil {
		return fmt.Sprintf("SmartTV(%s)", t.tv.Name)
	}
	return "SmartTV"
}

func (t *SmartTVTarget) frame(state *ViewState) (image.Image, error) {
	if t.frames != nil {
		img := image.NewRGBA(image.Rect(0, 0, t.spriteOpts.Width, t.spriteOpts.Height))
		if err := t.frames.DrawFrame(img); err != nil {
			return nil, fmt.Errorf("draw frame: %w", err)
		}
		return img, nil
	}
	frame := t.sprites.Render(NewSpritesStateAdapter(state))
	if frame == nil {
		return nil, fmt.Errorf("failed to render frame")
	}
	return frame, nil
}

// Update implements Target. Unchanged images are not re-sent.
func (t *SmartTVTarget) Update(ctx context.Context, state *ViewState) error {
	frame, err := t.frame(state)
	if err != nil {
		return err
	}

	var jpegData []byte
	if t.useJFIF {
		jpegData, err = convertToJFIF(frame)
	} else {
		jpegData, err = encodeJPEG(frame)
	}
	if err != nil {
		return fmt.Errorf("convert to JPEG: %w", err)
	}

	if bytes.Equal(jpegData, t.lastImageBytes) {
		return nil
	}
	t.lastImageBytes = jpegData

	if err := t.renderer.DisplayImageJPEG(ctx, t.tv, jpegData); err != nil {
		return fmt.Errorf("display on TV: %w", err)
	}
	return nil
}

// Close implements Target.
func (t *SmartTVTarget) Close() error {
	if t.sprites != nil {
		t.sprites.Close()
	}
	if t.renderer != nil {
		t.renderer.Close()
	}
	return nil
}

// Stop stops playback on the TV.
func (t *SmartTVTarget) Stop(ctx context.Context) error {
	return t.renderer.Stop(ctx, t.tv)
}

// convertToJFIF converts an image to a JFIF JPEG using ffmpeg and magick,
// which more TVs accept than Go's encoder output.
func convertToJFIF(img image.Image) ([]byte, error) {
	rgba := ensureRGBA(img)
	bounds := rgba.Bounds()

	stamp := time.Now().UnixNano()
	tmpFile := fmt.Sprintf("%s/clusterview_%d.jpg", os.TempDir(), stamp)
	jfifFile := fmt.Sprintf("%s/clusterview_%d_jfif.jpg", os.TempDir(), stamp)
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
	cmd.Stdin = bytes.NewReader(rgba.Pix)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}

	if err := exec.Command("magick", tmpFile, jfifFile).Run(); err != nil {
		// magick missing: the ffmpeg output is still a valid JPEG.
		return os.ReadFile(tmpFile)
	}
	return os.ReadFile(jfifFile)
}

// encodeJPEG encodes an image as standard JPEG (may not work on all TVs).
func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, ensureRGBA(img), &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
