// Package camera moves the scene camera: user-driven orbit/pan/zoom and timed
// transitions that frame a target or return home.
package camera

import (
	"math"

	"github.com/nimsforest/clusterview/geom"
)

// Orbit is a damped orbit/pan/zoom control around Target.
//
// Input deltas accumulate between frames and are bled off by Update, so a drag
// keeps coasting for a few frames after release.
type Orbit struct {
	Target geom.Vec

	MinRadius, MaxRadius float64
	MinPitch, MaxPitch   float64 // polar angle from +Y, radians
	Damping              float64 // 0..1 share of pending motion applied per frame

	dYaw, dPitch float64
	zoom         float64
	pan          geom.Vec
}

// NewOrbit returns an Orbit with the viewer's defaults.
func NewOrbit(target geom.Vec) *Orbit {
	return &Orbit{
		Target:    target,
		MinRadius: 2,
		MaxRadius: 400,
		MinPitch:  0.05,
		MaxPitch:  math.Pi/2 - 0.02,
		Damping:   0.1,
		zoom:      1,
	}
}

// Rotate queues yaw/pitch deltas in radians.
func (o *Orbit) Rotate(dYaw, dPitch float64) {
	o.dYaw += dYaw
	o.dPitch += dPitch
}

// Zoom queues a radius multiplier; <1 moves closer.
func (o *Orbit) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	o.zoom *= factor
}

// Pan queues a translation of the target in view space units (right, up).
func (o *Orbit) Pan(cam *geom.Camera, right, up float64) {
	f := cam.Target.Sub(cam.Position).Normalize()
	s := f.Cross(geom.V(0, 1, 0)).Normalize()
	u := s.Cross(f)
	o.pan = o.pan.Add(s.Mul(right)).Add(u.Mul(up))
}

// Pending reports whether queued input is still being applied.
func (o *Orbit) Pending() bool {
	const eps = 1e-5
	return math.Abs(o.dYaw) > eps || math.Abs(o.dPitch) > eps || math.Abs(o.zoom-1) > eps || o.pan.Norm() > eps
}

// Stop drops any queued input, ending a coasting drag.
func (o *Orbit) Stop() {
	o.dYaw, o.dPitch = 0, 0
	o.zoom = 1
	o.pan = geom.Vec{}
}

// Sync adopts the camera's current target and drops queued input. Call it
// whenever something other than the Orbit moves the camera.
func (o *Orbit) Sync(cam *geom.Camera) {
	o.Target = cam.Target
	o.Stop()
}

// Update applies one frame of pending input to cam.
func (o *Orbit) Update(cam *geom.Camera) {
	if cam == nil || !o.Pending() {
		return
	}
	d := o.Damping
	if d <= 0 || d > 1 {
		d = 1
	}

	offset := cam.Position.Sub(o.Target)
	radius := offset.Norm()
	if radius == 0 {
		radius = o.MinRadius
		offset = geom.V(0, 0, radius)
	}
	yaw := math.Atan2(offset.X, offset.Z)
	pitch := math.Acos(clamp(offset.Y/radius, -1, 1))

	yaw += o.dYaw * d
	pitch = clamp(pitch+o.dPitch*d, o.MinPitch, o.MaxPitch)
	radius *= 1 + (o.zoom-1)*d
	radius = clamp(radius, o.MinRadius, o.MaxRadius)
	o.Target = o.Target.Add(o.pan.Mul(d))

	sp := math.Sin(pitch)
	cam.Position = o.Target.Add(geom.V(radius*sp*math.Sin(yaw), radius*math.Cos(pitch), radius*sp*math.Cos(yaw)))
	cam.LookAt(o.Target)

	o.dYaw *= 1 - d
	o.dPitch *= 1 - d
	o.zoom = 1 + (o.zoom-1)*(1-d)
	o.pan = o.pan.Mul(1 - d)
}

func clamp(v, lo, hi float64) float64 {
	if lo != 0 || hi != 0 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
	}
	return v
}
