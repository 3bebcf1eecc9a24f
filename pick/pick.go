// Package pick turns pointer events into selection, highlight and camera
// changes.
package pick

import (
	"math"

	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/scene"
)

// Hit is the nearest intersection of a ray with a set of objects.
type Hit struct {
	Object   *scene.Object
	Distance float64
}

// Kind returns the tag of the hit object.
func (h Hit) Kind() scene.Kind { return h.Object.Kind() }

// Cast intersects r with objects and returns the nearest hit. Ties keep the
// object listed first.
func Cast(r geom.Ray, objects []*scene.Object) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	for _, o := range objects {
		if o == nil || !o.Visible {
			continue
		}
		t, ok := r.Intersect(bounds(o))
		if ok && t < best.Distance {
			best = Hit{Object: o, Distance: t}
		}
	}
	return best, best.Object != nil
}

// bounds returns the box a ray is tested against. The ground is thin, so it
// is thickened slightly to stay hittable at grazing angles.
func bounds(o *scene.Object) geom.Box {
	b := o.Box()
	if _, ok := o.Body.(*scene.Ground); ok {
		b.Min.Y -= 0.01
		b.Max.Y += 0.01
	}
	return b
}

// Ray returns the camera ray through viewport pixel (x, y) of a w×h viewport.
func Ray(cam *geom.Camera, x, y float64, w, h int) geom.Ray {
	nx, ny := geom.NDC(x, y, w, h)
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	return cam.Ray(nx, ny, aspect)
}
