package camera

import (
	"time"

	"github.com/nimsforest/clusterview/anim"
	"github.com/nimsforest/clusterview/geom"
	"github.com/tanema/gween/ease"
)

// Profile is how a transition approaches its target.
type Profile struct {
	Name     string
	Offset   geom.Vec // camera position relative to the framed target
	Duration time.Duration
	Easing   ease.TweenFunc
}

var (
	MachineProfile = Profile{
		Name:     "machine",
		Offset:   geom.V(0, 10, 14),
		Duration: 1200 * time.Millisecond,
		Easing:   ease.InOutCubic,
	}
	WorkloadProfile = Profile{
		Name:     "workload",
		Offset:   geom.V(0, 3, 5),
		Duration: 1000 * time.Millisecond,
		Easing:   ease.InOutCubic,
	}
	HomeProfile = Profile{
		Name:     "home",
		Duration: 1500 * time.Millisecond,
		Easing:   ease.InOutCubic,
	}
)

// Transition describes the most recently started camera move.
type Transition struct {
	Profile     Profile
	Target      geom.Vec // look-at point; unused for home
	Destination geom.Vec
	Home        bool
}

// Controller runs camera transitions. At most one is in flight; starting a
// new one cancels the previous before it can write again.
type Controller struct {
	cam      *geom.Camera
	orbit    *Orbit
	animator *anim.Animator
	home     geom.Vec

	active *anim.Handle
	last   Transition

	// OnStart, if set, is called for every started transition.
	OnStart func(Transition)
}

// NewController records cam's current position as home.
func NewController(cam *geom.Camera, orbit *Orbit, a *anim.Animator) *Controller {
	return &Controller{cam: cam, orbit: orbit, animator: a, home: cam.Position}
}

// HomePosition returns the recorded default position.
func (c *Controller) HomePosition() geom.Vec { return c.home }

// SetHome replaces the default position.
func (c *Controller) SetHome(p geom.Vec) { c.home = p }

// InFlight reports whether a transition is running.
func (c *Controller) InFlight() bool { return c.active.Active() }

// Last returns the most recently started transition.
func (c *Controller) Last() Transition { return c.last }

// Frame moves the camera to target+p.Offset while keeping it pointed at target.
func (c *Controller) Frame(target geom.Vec, p Profile) {
	c.start(Transition{Profile: p, Target: target, Destination: target.Add(p.Offset)})
}

// Home moves the camera back to its default position without changing where
// it looks.
func (c *Controller) Home() {
	c.start(Transition{Profile: HomeProfile, Destination: c.home, Home: true})
}

// Stop cancels the in-flight transition, leaving the camera where it is.
func (c *Controller) Stop() {
	c.active.Cancel()
	c.active = nil
}

func (c *Controller) start(tr Transition) {
	c.Stop()
	if c.orbit != nil {
		c.orbit.Stop()
	}
	from := c.cam.Position
	cam, orbit := c.cam, c.orbit
	c.active = c.animator.Start(anim.Progress(tr.Profile.Duration, tr.Profile.Easing, func(p float64) {
		cam.Position = geom.Lerp(from, tr.Destination, p)
		if !tr.Home {
			cam.LookAt(tr.Target)
		}
		if orbit != nil {
			orbit.Sync(cam)
		}
	}))
	c.last = tr
	if c.OnStart != nil {
		c.OnStart(tr)
	}
}
