package render

import (
	"errors"
	"image"
	"time"

	"github.com/nimsforest/clusterview/anim"
	"github.com/nimsforest/clusterview/camera"
	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/scene"
)

// ErrStopped is returned by Step once the loop has been torn down.
var ErrStopped = errors.New("render: loop stopped")

// Engine is what a host drives once per frame.
type Engine interface {
	Step(dt time.Duration) error
	Draw(dst *image.RGBA)
	Labels(w, h int) []Label
}

// Input receives pointer and keyboard input in viewport pixels.
type Input interface {
	Click(x, y float64)
	Move(x, y float64)
	Rotate(dYaw, dPitch float64)
	Pan(right, up float64)
	Zoom(factor float64)
	ResetCamera()
}

// Interactive is an Engine that also takes input, as a window needs.
type Interactive interface {
	Engine
	Input
}

// Container is the fixed-size surface a view renders into.
type Container interface {
	Size() (w, h int)
	SetPointer(pointer bool)
}

// FixedContainer is a Container without a screen, for headless hosts.
type FixedContainer struct {
	W, H    int
	Pointer bool
}

// Size implements Container.
func (c *FixedContainer) Size() (int, int) { return c.W, c.H }

// SetPointer implements Container.
func (c *FixedContainer) SetPointer(p bool) { c.Pointer = p }

// Loop is the per-frame work of one mounted scene.
type Loop struct {
	scene    *scene.Scene
	cam      *geom.Camera
	orbit    *camera.Orbit
	animator *anim.Animator
	raster   *Rasterizer

	frames  uint64
	elapsed time.Duration
	stopped bool
}

// NewLoop creates a Loop. It produces frames until Stop is called.
func NewLoop(s *scene.Scene, cam *geom.Camera, orbit *camera.Orbit, a *anim.Animator) *Loop {
	return &Loop{scene: s, cam: cam, orbit: orbit, animator: a, raster: NewRasterizer()}
}

// Raster returns the loop's rasterizer for configuration.
func (l *Loop) Raster() *Rasterizer { return l.raster }

// SetScene swaps the scene drawn by the loop.
func (l *Loop) SetScene(s *scene.Scene) { l.scene = s }

// Step advances one frame: the particle field turns, animations tick and
// queued orbit input is applied.
func (l *Loop) Step(dt time.Duration) error {
	if l.stopped {
		return ErrStopped
	}
	if l.scene != nil {
		l.scene.Particles.Rotate(dt.Seconds())
	}
	l.animator.Advance(dt)
	if l.orbit != nil {
		l.orbit.Update(l.cam)
	}
	l.frames++
	l.elapsed += dt
	return nil
}

// Draw renders the current frame into dst. It draws nothing once stopped.
func (l *Loop) Draw(dst *image.RGBA) {
	if l.stopped {
		return
	}
	l.raster.Render(dst, l.scene, l.cam)
}

// Labels projects the scene's labels for a w×h viewport.
func (l *Loop) Labels(w, h int) []Label {
	if l.stopped {
		return nil
	}
	return Labels(l.scene, l.cam, w, h)
}

// Stop tears the loop down. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopped = true
	l.scene = nil
}

// Stopped reports whether Stop has been called.
func (l *Loop) Stopped() bool { return l.stopped }

// Frames returns the number of steps taken.
func (l *Loop) Frames() uint64 { return l.frames }

// Elapsed returns the total stepped time.
func (l *Loop) Elapsed() time.Duration { return l.elapsed }
