// Package render draws a scene and drives the frame loop, either in a desktop
// window or headless.
package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/scene"
)

// Background is the clear color.
var Background = color.RGBA{R: 0x0b, G: 0x10, B: 0x20, A: 0xff}

// GridStep is the spacing of grid lines on the ground.
const GridStep = 2.0

// Rasterizer is a flat-shaded software renderer with a depth buffer.
//
// Create it once and reuse it to avoid allocations.
type Rasterizer struct {
	Background color.RGBA
	Light      geom.Vec // direction the light travels
	Ambient    float64

	// Labels draws label text with a bitmap font. Hosts that draw their own
	// text turn it off.
	Labels bool

	depth []float64 // 1/w per pixel; 0 is empty
	w, h  int
	mvp   geom.Mat4
	near  float64
}

// NewRasterizer returns a Rasterizer with the default lighting.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{
		Background: Background,
		Light:      geom.V(-0.4, -1, -0.6).Normalize(),
		Ambient:    0.35,
		Labels:     true,
	}
}

// Render draws s as seen by cam into dst.
func (r *Rasterizer) Render(dst *image.RGBA, s *scene.Scene, cam *geom.Camera) {
	if dst == nil || cam == nil {
		return
	}
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return
	}
	draw.Draw(dst, b, image.NewUniform(r.Background), image.Point{}, draw.Src)
	if s == nil {
		return
	}

	r.w, r.h = w, h
	if cap(r.depth) < w*h {
		r.depth = make([]float64, w*h)
	}
	r.depth = r.depth[:w*h]
	clear(r.depth)
	r.mvp = geom.Mul(cam.Projection(float64(w)/float64(h)), cam.View())
	r.near = cam.Near

	var labels []*scene.Object
	for _, o := range s.Objects {
		if !o.Visible {
			continue
		}
		switch body := o.Body.(type) {
		case *scene.Machine, *scene.Workload, *scene.Ground:
			r.solidBox(dst, o.Box(), o.Material, cam.Position)
		case *scene.Decoration:
			switch body.Role {
			case scene.RoleOutline:
				r.wireBox(dst, o.Box(), o.Material.Color)
			case scene.RoleGrid:
				r.grid(dst, o)
			case scene.RoleLabel:
				labels = append(labels, o)
			case scene.RoleParticles:
				r.points(dst, s.Particles.World(), o.Material.Color)
			}
		}
	}
	if r.Labels {
		r.labels(dst, labels, cam)
	}
}

type vertex struct {
	x, y float64 // screen
	inv  float64 // 1/w
}

var boxFaces = [6]struct {
	n       geom.Vec
	corners [4]int
}{
	{geom.V(1, 0, 0), [4]int{1, 3, 7, 5}},
	{geom.V(-1, 0, 0), [4]int{0, 4, 6, 2}},
	{geom.V(0, 1, 0), [4]int{2, 6, 7, 3}},
	{geom.V(0, -1, 0), [4]int{0, 1, 5, 4}},
	{geom.V(0, 0, 1), [4]int{4, 5, 7, 6}},
	{geom.V(0, 0, -1), [4]int{0, 2, 3, 1}},
}

var boxEdges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// corners indexes bit 0 as X, bit 1 as Y and bit 2 as Z.
func corners(b geom.Box) [8]geom.Vec {
	var c [8]geom.Vec
	for i := range c {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		c[i] = p
	}
	return c
}

func (r *Rasterizer) solidBox(dst *image.RGBA, b geom.Box, m scene.Material, eye geom.Vec) {
	c := corners(b)
	center := b.Center()
	for _, f := range boxFaces {
		// Skip faces turned away from the eye.
		faceCenter := center.Add(geom.V(f.n.X*(b.Max.X-b.Min.X)/2, f.n.Y*(b.Max.Y-b.Min.Y)/2, f.n.Z*(b.Max.Z-b.Min.Z)/2))
		if f.n.Dot(eye.Sub(faceCenter)) <= 0 {
			continue
		}
		col := r.shade(m, f.n)
		q := f.corners
		r.triangle(dst, c[q[0]], c[q[1]], c[q[2]], col)
		r.triangle(dst, c[q[0]], c[q[2]], c[q[3]], col)
	}
}

func (r *Rasterizer) shade(m scene.Material, n geom.Vec) color.RGBA {
	k := r.Ambient + math.Max(0, n.Dot(r.Light.Mul(-1)))*(1-r.Ambient)
	e := m.EmissiveIntensity
	ch := func(base, emissive uint8) uint8 {
		v := float64(base)*k + float64(emissive)*e
		return uint8(math.Min(255, v))
	}
	return color.RGBA{
		R: ch(m.Color.R, m.Emissive.R),
		G: ch(m.Color.G, m.Emissive.G),
		B: ch(m.Color.B, m.Emissive.B),
		A: 0xff,
	}
}

// clip returns the polygon's clip-space vertices inside the near plane.
func (r *Rasterizer) clip(pts ...geom.Vec) []geom.Vec4 {
	in := make([]geom.Vec4, len(pts))
	for i, p := range pts {
		in[i] = r.mvp.Point(p)
	}
	inside := func(v geom.Vec4) float64 { return v.Z + v.W }
	var out []geom.Vec4
	for i := range in {
		a, b := in[i], in[(i+1)%len(in)]
		da, db := inside(a), inside(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, geom.Vec4{
				X: a.X + (b.X-a.X)*t,
				Y: a.Y + (b.Y-a.Y)*t,
				Z: a.Z + (b.Z-a.Z)*t,
				W: a.W + (b.W-a.W)*t,
			})
		}
	}
	return out
}

func (r *Rasterizer) screen(v geom.Vec4) vertex {
	w := v.W
	if w < 1e-9 {
		w = 1e-9
	}
	return vertex{
		x:   (v.X/w*0.5 + 0.5) * float64(r.w),
		y:   (1 - (v.Y/w*0.5 + 0.5)) * float64(r.h),
		inv: 1 / w,
	}
}

func (r *Rasterizer) triangle(dst *image.RGBA, a, b, c geom.Vec, col color.RGBA) {
	poly := r.clip(a, b, c)
	for i := 1; i+1 < len(poly); i++ {
		r.fill(dst, r.screen(poly[0]), r.screen(poly[i]), r.screen(poly[i+1]), col)
	}
}

func edge(a, b vertex, x, y float64) float64 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func (r *Rasterizer) fill(dst *image.RGBA, a, b, c vertex, col color.RGBA) {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return
	}
	minX := max(0, int(math.Floor(min(a.x, b.x, c.x))))
	maxX := min(r.w-1, int(math.Ceil(max(a.x, b.x, c.x))))
	minY := max(0, int(math.Floor(min(a.y, b.y, c.y))))
	maxY := min(r.h-1, int(math.Ceil(max(a.y, b.y, c.y))))

	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			w0 := edge(b, c, px, py) / area
			w1 := edge(c, a, px, py) / area
			w2 := edge(a, b, px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			r.plot(dst, x, y, w0*a.inv+w1*b.inv+w2*c.inv, col)
		}
	}
}

// plot writes col at (x, y) if inv is nearer than what is there.
func (r *Rasterizer) plot(dst *image.RGBA, x, y int, inv float64, col color.RGBA) {
	if x < 0 || y < 0 || x >= r.w || y >= r.h {
		return
	}
	i := y*r.w + x
	if inv <= r.depth[i] {
		return
	}
	r.depth[i] = inv
	dst.SetRGBA(dst.Rect.Min.X+x, dst.Rect.Min.Y+y, col)
}

// line draws a depth-tested segment. Lines are nudged toward the eye so
// they win against the faces they lie on.
func (r *Rasterizer) line(dst *image.RGBA, a, b geom.Vec, col color.RGBA) {
	poly := r.clip(a, b)
	if len(poly) < 2 {
		return
	}
	p, q := r.screen(poly[0]), r.screen(poly[1])
	steps := int(math.Ceil(math.Max(math.Abs(q.x-p.x), math.Abs(q.y-p.y))))
	if steps > 4*(r.w+r.h) {
		steps = 4 * (r.w + r.h)
	}
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		x := p.x + (q.x-p.x)*t
		y := p.y + (q.y-p.y)*t
		inv := (p.inv + (q.inv-p.inv)*t) * 1.002
		r.plot(dst, int(x), int(y), inv, col)
	}
}

func (r *Rasterizer) wireBox(dst *image.RGBA, b geom.Box, col color.RGBA) {
	c := corners(b)
	for _, e := range boxEdges {
		r.line(dst, c[e[0]], c[e[1]], col)
	}
}

func (r *Rasterizer) grid(dst *image.RGBA, o *scene.Object) {
	b := o.Box()
	y := o.Position.Y
	for x := math.Ceil(b.Min.X/GridStep) * GridStep; x <= b.Max.X; x += GridStep {
		r.line(dst, geom.V(x, y, b.Min.Z), geom.V(x, y, b.Max.Z), o.Material.Color)
	}
	for z := math.Ceil(b.Min.Z/GridStep) * GridStep; z <= b.Max.Z; z += GridStep {
		r.line(dst, geom.V(b.Min.X, y, z), geom.V(b.Max.X, y, z), o.Material.Color)
	}
}

func (r *Rasterizer) points(dst *image.RGBA, pts []geom.Vec, col color.RGBA) {
	for _, p := range pts {
		v := r.mvp.Point(p)
		if v.W <= r.near {
			continue
		}
		s := r.screen(v)
		r.plot(dst, int(s.x), int(s.y), s.inv, col)
	}
}

// Label is a label decoration projected to the viewport.
type Label struct {
	Text  string
	X, Y  float64 // anchor, bottom center of the text
	Scale float64
	Color color.RGBA
}

// Labels projects the visible label decorations of s for a w×h viewport.
func Labels(s *scene.Scene, cam *geom.Camera, w, h int) []Label {
	if s == nil {
		return nil
	}
	var out []Label
	for _, o := range s.Objects {
		if !o.Visible {
			continue
		}
		d, ok := o.Decoration()
		if !ok || d.Role != scene.RoleLabel {
			continue
		}
		if l, ok := project(o, d, cam, w, h); ok {
			out = append(out, l)
		}
	}
	return out
}

func project(o *scene.Object, d *scene.Decoration, cam *geom.Camera, w, h int) (Label, bool) {
	x, y, ok := cam.Project(o.Position, w, h)
	if !ok || x < 0 || y < 0 || x > float64(w) || y > float64(h) {
		return Label{}, false
	}
	return Label{Text: d.Text, X: x, Y: y, Scale: d.Scale, Color: o.Material.Color}, true
}

func (r *Rasterizer) labels(dst *image.RGBA, objs []*scene.Object, cam *geom.Camera) {
	for _, o := range objs {
		d, _ := o.Decoration()
		l, ok := project(o, d, cam, r.w, r.h)
		if !ok {
			continue
		}
		drawLabel(dst, l)
	}
}

// drawLabel draws l centered horizontally on its anchor with the baseline
// at the anchor. Labels with a scale other than one are drawn offscreen at
// font size and resampled.
func drawLabel(dst *image.RGBA, l Label) {
	face := basicfont.Face7x13
	src := image.NewUniform(l.Color)
	ax, ay := dst.Rect.Min.X+int(l.X), dst.Rect.Min.Y+int(l.Y)

	if l.Scale <= 0 || l.Scale == 1 {
		dr := &font.Drawer{Dst: dst, Src: src, Face: face}
		width := dr.MeasureString(l.Text)
		dr.Dot = fixed.Point26_6{X: fixed.I(ax) - width/2, Y: fixed.I(ay)}
		dr.DrawString(l.Text)
		return
	}

	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	width := font.MeasureString(face, l.Text).Ceil()
	if width == 0 {
		return
	}
	tmp := image.NewRGBA(image.Rect(0, 0, width, ascent+descent))
	dr := &font.Drawer{Dst: tmp, Src: src, Face: face, Dot: fixed.P(0, ascent)}
	dr.DrawString(l.Text)

	sw := int(math.Round(float64(width) * l.Scale))
	sh := int(math.Round(float64(ascent+descent) * l.Scale))
	top := ay - int(math.Round(float64(ascent)*l.Scale))
	rect := image.Rect(ax-sw/2, top, ax-sw/2+sw, top+sh)
	draw.ApproxBiLinear.Scale(dst, rect, tmp, tmp.Bounds(), draw.Over, nil)
}
