package geom

import "math"

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin Vec
	Dir    Vec
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec { return r.Origin.Add(r.Dir.Mul(t)) }

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec
}

// BoxAt returns the box of the given size centered on c.
func BoxAt(c, size Vec) Box {
	h := size.Mul(0.5)
	return Box{Min: c.Sub(h), Max: c.Add(h)}
}

// Center returns the box center.
func (b Box) Center() Vec { return b.Min.Add(b.Max).Mul(0.5) }

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	return Box{
		Min: V(math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)),
		Max: V(math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)),
	}
}

// Intersect returns the entry distance of r into b (slab test). A ray starting
// inside the box reports distance 0.
func (r Ray) Intersect(b Box) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Dir.X, r.Dir.Y, r.Dir.Z}
	lo := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	hi := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / d[i]
		t1 := (lo[i] - o[i]) * inv
		t2 := (hi[i] - o[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true
	}
	return tmin, true
}
