package scene

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/layout"
	"github.com/nimsforest/clusterview/topology"
)

// Status colors for workloads.
var (
	ColorRunning = color.RGBA{R: 0x4a, G: 0xde, B: 0x80, A: 0xff}
	ColorPending = color.RGBA{R: 0xfb, G: 0xbf, B: 0x24, A: 0xff}
	ColorFailed  = color.RGBA{R: 0xf9, G: 0x73, B: 0x16, A: 0xff}
	ColorOther   = color.RGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
)

// Colors of the fixed scene parts.
var (
	ColorMachine  = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	ColorGround   = color.RGBA{R: 0x16, G: 0x21, B: 0x3e, A: 0xff}
	ColorGrid     = color.RGBA{R: 0x2a, G: 0x3a, B: 0x5e, A: 0xff}
	ColorOutline  = color.RGBA{R: 0x60, G: 0xa5, B: 0xfa, A: 0xff}
	ColorLabel    = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	ColorParticle = color.RGBA{R: 0x93, G: 0xc5, B: 0xfd, A: 0xff}
)

const (
	// LabelOffset is the height of a label anchor above its object's top face.
	LabelOffset = 0.6

	groundMargin   = 12.0
	groundThick    = 0.1
	particleCount  = 400
	particleRadius = 60.0
	particleSeed   = 7
)

// StatusColor maps a workload status to its base color.
func StatusColor(s topology.Status) color.RGBA {
	switch s {
	case topology.StatusRunning:
		return ColorRunning
	case topology.StatusPending:
		return ColorPending
	case topology.StatusFailed:
		return ColorFailed
	default:
		return ColorOther
	}
}

// Build instantiates scene objects for a layout.
func Build(l *layout.Layout) *Scene {
	b := &builder{s: newScene()}
	for _, mp := range l.Machines {
		obj := b.volume(mp.Center, mp.Size, ColorMachine, &Machine{Entity: mp.Machine}, mp.Machine.Name)
		b.s.machines[mp.Machine.Name] = obj
		for _, wp := range mp.Workloads {
			wobj := b.volume(wp.Center, wp.Size, StatusColor(wp.Workload.Status), &Workload{Entity: wp.Workload}, wp.Workload.Name)
			b.s.workloads[wp.Workload.Key()] = wobj
		}
	}
	b.floor(l)
	return b.s
}

type builder struct {
	s      *Scene
	nextID int
}

func (b *builder) add(o *Object) *Object {
	o.ID = b.nextID
	b.nextID++
	o.Visible = true
	b.s.Objects = append(b.s.Objects, o)
	return o
}

func (b *builder) volume(center, size geom.Vec, c color.RGBA, body Body, text string) *Object {
	obj := b.add(&Object{
		Position: center,
		Size:     size,
		Material: Material{Color: c, Emissive: color.RGBA{A: 0xff}},
		Body:     body,
	})
	obj.Label = b.add(&Object{
		Position: center.Add(geom.V(0, size.Y/2+LabelOffset, 0)),
		Material: Material{Color: ColorLabel},
		Body:     &Decoration{Role: RoleLabel, Text: text, Scale: 1},
	})
	obj.Outline = b.add(&Object{
		Position: center,
		Size:     size,
		Material: Material{Color: ColorOutline},
		Body:     &Decoration{Role: RoleOutline},
	})
	return obj
}

func (b *builder) floor(l *layout.Layout) {
	bounds, ok := l.Bounds()
	if !ok {
		bounds = geom.BoxAt(geom.V(0, 0, 0), geom.V(layout.MachineWidth, 0, layout.MachineDepth))
	}
	w := bounds.Max.X - bounds.Min.X + 2*groundMargin
	d := bounds.Max.Z - bounds.Min.Z + 2*groundMargin
	c := bounds.Center()

	b.s.Ground = b.add(&Object{
		Position: geom.V(c.X, -groundThick/2, c.Z),
		Size:     geom.V(w, groundThick, d),
		Material: Material{Color: ColorGround},
		Body:     &Ground{},
	})
	b.s.Grid = b.add(&Object{
		Position: geom.V(c.X, 0, c.Z),
		Size:     geom.V(w, 0, d),
		Material: Material{Color: ColorGrid},
		Body:     &Decoration{Role: RoleGrid},
	})

	field := b.add(&Object{
		Position: geom.V(c.X, 0, c.Z),
		Material: Material{Color: ColorParticle},
		Body:     &Decoration{Role: RoleParticles},
	})
	b.s.Particles = newParticleField(field, particleCount, particleRadius)
}

// ParticleField is the ambient point cloud that slowly turns around its center.
type ParticleField struct {
	Object *Object
	Points []geom.Vec // local offsets from Object.Position
	Angle  float64
}

// RotationSpeed is the particle field's angular speed in radians per second.
const RotationSpeed = 0.05

func newParticleField(obj *Object, n int, radius float64) *ParticleField {
	rng := rand.New(rand.NewSource(particleSeed))
	pts := make([]geom.Vec, n)
	for i := range pts {
		theta := rng.Float64() * 2 * math.Pi
		phi := math.Acos(2*rng.Float64() - 1)
		r := radius * (0.4 + 0.6*rng.Float64())
		pts[i] = geom.V(r*math.Sin(phi)*math.Cos(theta), math.Abs(r*math.Cos(phi)), r*math.Sin(phi)*math.Sin(theta))
	}
	return &ParticleField{Object: obj, Points: pts}
}

// Rotate advances the field by seconds of rotation.
func (p *ParticleField) Rotate(seconds float64) {
	if p == nil {
		return
	}
	p.Angle = math.Mod(p.Angle+RotationSpeed*seconds, 2*math.Pi)
}

// World returns the world positions of the particles at the current angle.
func (p *ParticleField) World() []geom.Vec {
	if p == nil {
		return nil
	}
	m := geom.Mul(geom.Translate(p.Object.Position), geom.RotateY(p.Angle))
	out := make([]geom.Vec, len(p.Points))
	for i, pt := range p.Points {
		v := m.Point(pt)
		out[i] = geom.V(v.X, v.Y, v.Z)
	}
	return out
}
