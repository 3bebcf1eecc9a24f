package camera

import (
	"math"
	"testing"
	"time"

	"github.com/nimsforest/clusterview/anim"
	"github.com/nimsforest/clusterview/geom"
)

const frame = time.Second / 60

func closeTo(a, b geom.Vec) bool { return a.Sub(b).Norm() < 1e-4 }

func setup() (*geom.Camera, *Orbit, *anim.Animator, *Controller) {
	cam := geom.NewCamera(geom.V(0, 30, 40), geom.V(0, 0, 0))
	orbit := NewOrbit(cam.Target)
	a := anim.New()
	return cam, orbit, a, NewController(cam, orbit, a)
}

func settle(a *anim.Animator, c *Controller) {
	for i := 0; i < 600 && c.InFlight(); i++ {
		a.Advance(frame)
	}
}

func TestFrameReachesTargetAndSyncsOrbit(t *testing.T) {
	cam, orbit, a, c := setup()
	target := geom.V(16, 1, 0)

	c.Frame(target, MachineProfile)
	a.Advance(frame)
	if cam.Target != target {
		t.Fatalf("camera not pointed at target during transition")
	}
	settle(a, c)

	if !closeTo(cam.Position, target.Add(MachineProfile.Offset)) {
		t.Fatalf("position = %v, want %v", cam.Position, target.Add(MachineProfile.Offset))
	}
	if orbit.Target != target {
		t.Fatalf("orbit target = %v, want %v", orbit.Target, target)
	}

	// Resuming manual orbit keeps the distance to the framed target.
	r := cam.Position.Sub(target).Norm()
	orbit.Rotate(0.3, 0)
	for i := 0; i < 30; i++ {
		orbit.Update(cam)
	}
	if math.Abs(cam.Position.Sub(target).Norm()-r) > 1e-6 {
		t.Fatalf("orbit snapped: radius %v -> %v", r, cam.Position.Sub(target).Norm())
	}
}

func TestNewTransitionSupersedes(t *testing.T) {
	cam, _, a, c := setup()
	first := geom.V(0, 1, 0)
	second := geom.V(32, 3, 2)

	c.Frame(first, MachineProfile)
	for i := 0; i < 10; i++ {
		a.Advance(frame)
	}
	c.Frame(second, WorkloadProfile)
	if a.Len() != 1 {
		t.Fatalf("live tasks = %d, want 1", a.Len())
	}
	a.Advance(frame)
	if cam.Target != second {
		t.Fatalf("superseded transition still writing")
	}
	settle(a, c)
	if !closeTo(cam.Position, second.Add(WorkloadProfile.Offset)) {
		t.Fatalf("position = %v", cam.Position)
	}
	if c.Last().Target != second {
		t.Fatalf("last = %+v", c.Last())
	}
}

func TestHomeReturnsToDefault(t *testing.T) {
	cam, _, a, c := setup()
	home := c.HomePosition()

	c.Frame(geom.V(16, 1, 0), MachineProfile)
	for i := 0; i < 20; i++ {
		a.Advance(frame)
	}
	c.Home()
	if !c.Last().Home {
		t.Fatalf("last transition is not home")
	}
	settle(a, c)
	if !closeTo(cam.Position, home) {
		t.Fatalf("position = %v, want home %v", cam.Position, home)
	}

	var started []string
	c.OnStart = func(tr Transition) { started = append(started, tr.Profile.Name) }
	c.Home()
	if len(started) != 1 || started[0] != "home" {
		t.Fatalf("OnStart = %v", started)
	}
}

func TestOrbitZoomClamps(t *testing.T) {
	cam := geom.NewCamera(geom.V(0, 5, 5), geom.V(0, 0, 0))
	o := NewOrbit(cam.Target)
	o.Damping = 1
	o.Zoom(0.0001)
	o.Update(cam)
	if r := cam.Position.Norm(); math.Abs(r-o.MinRadius) > 1e-9 {
		t.Fatalf("radius = %v, want %v", r, o.MinRadius)
	}
	if o.Pending() {
		t.Fatalf("undamped orbit left pending input")
	}
}

func TestFrameDropsCoastingOrbit(t *testing.T) {
	target := geom.V(16, 1, 0)
	run := func(coast bool) []geom.Vec {
		cam, orbit, a, c := setup()
		if coast {
			orbit.Rotate(0.5, 0)
			orbit.Zoom(0.5)
		}
		c.Frame(target, MachineProfile)
		var path []geom.Vec
		for i := 0; i < 120; i++ {
			a.Advance(frame)
			orbit.Update(cam)
			path = append(path, cam.Position)
		}
		return path
	}

	clean, coasting := run(false), run(true)
	for i := range clean {
		if !closeTo(clean[i], coasting[i]) {
			t.Fatalf("frame %d: position %v, want %v", i, coasting[i], clean[i])
		}
	}
	if want := target.Add(MachineProfile.Offset); !closeTo(coasting[len(coasting)-1], want) {
		t.Fatalf("final position = %v, want %v", coasting[len(coasting)-1], want)
	}
}
