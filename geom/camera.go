package geom

import "math"

// Camera describes a perspective viewing transform.
type Camera struct {
	Position Vec
	Target   Vec
	Up       Vec

	FOVY float64 // radians
	Near float64
	Far  float64
}

// NewCamera returns a camera at pos looking at target with sane defaults.
func NewCamera(pos, target Vec) *Camera {
	return &Camera{
		Position: pos,
		Target:   target,
		Up:       V(0, 1, 0),
		FOVY:     75 * math.Pi / 180,
		Near:     0.1,
		Far:      1000,
	}
}

func (c *Camera) up() Vec {
	if c.Up == (Vec{}) {
		return V(0, 1, 0)
	}
	return c.Up
}

// LookAt re-points the camera.
func (c *Camera) LookAt(target Vec) { c.Target = target }

// View returns the view matrix.
func (c *Camera) View() Mat4 { return LookAt(c.Position, c.Target, c.up()) }

// Projection returns the projection matrix for an aspect ratio.
func (c *Camera) Projection(aspect float64) Mat4 {
	return Perspective(c.FOVY, aspect, c.Near, c.Far)
}

// Ray returns the world-space ray through normalized device coordinates
// (ndcX, ndcY in [-1, 1], +Y up).
func (c *Camera) Ray(ndcX, ndcY, aspect float64) Ray {
	f := c.Target.Sub(c.Position).Normalize()
	s := f.Cross(c.up()).Normalize()
	u := s.Cross(f)
	th := math.Tan(c.FOVY / 2)
	dir := f.Add(s.Mul(ndcX * th * aspect)).Add(u.Mul(ndcY * th))
	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// Project maps a world point to pixel coordinates of a w×h viewport. ok is
// false when the point is behind the camera.
func (c *Camera) Project(p Vec, w, h int) (x, y float64, ok bool) {
	if w <= 0 || h <= 0 {
		return 0, 0, false
	}
	mvp := Mul(c.Projection(float64(w)/float64(h)), c.View())
	clip := mvp.Point(p)
	if clip.W <= 0 {
		return 0, 0, false
	}
	nx, ny := clip.X/clip.W, clip.Y/clip.W
	return (nx*0.5 + 0.5) * float64(w), (1 - (ny*0.5 + 0.5)) * float64(h), true
}

// NDC maps viewport pixel coordinates to normalized device coordinates.
func NDC(x, y float64, w, h int) (float64, float64) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	return x/float64(w)*2 - 1, -(y/float64(h)*2 - 1)
}
