// Package scene holds the renderable objects of the visualization and the
// builder that creates them from a layout.
package scene

import (
	"image/color"

	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/topology"
)

// Kind tags what an Object represents.
type Kind uint8

// The four object kinds.
const (
	KindMachine Kind = iota
	KindWorkload
	KindGround
	KindDecorative
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindMachine:
		return "machine"
	case KindWorkload:
		return "workload"
	case KindGround:
		return "ground"
	default:
		return "decorative"
	}
}

// Material is the surface appearance of an Object.
type Material struct {
	Color             color.RGBA
	Emissive          color.RGBA
	EmissiveIntensity float64
}

// Body is the tagged payload of an Object. Exactly one of Machine, Workload,
// Ground or Decoration.
type Body interface {
	Kind() Kind
	body()
}

// Machine identifies a machine volume.
type Machine struct {
	Entity *topology.Machine
}

// Workload identifies a workload volume.
type Workload struct {
	Entity *topology.Workload
}

// Ground is the floor plane.
type Ground struct{}

// DecorRole says what a decoration is for.
type DecorRole uint8

// Decoration roles.
const (
	RoleLabel DecorRole = iota
	RoleOutline
	RoleGrid
	RoleParticles
)

// Decoration is any cosmetic object. Text and Scale are used by labels only.
type Decoration struct {
	Role  DecorRole
	Text  string
	Scale float64
}

func (Machine) Kind() Kind    { return KindMachine }
func (Workload) Kind() Kind   { return KindWorkload }
func (Ground) Kind() Kind     { return KindGround }
func (Decoration) Kind() Kind { return KindDecorative }

func (Machine) body()    {}
func (Workload) body()   {}
func (Ground) body()     {}
func (Decoration) body() {}

// Object is a renderable volume or label.
type Object struct {
	ID       int
	Position geom.Vec
	Size     geom.Vec
	Material Material
	Body     Body
	Visible  bool

	// Label and Outline are set on machine and workload objects.
	Label   *Object
	Outline *Object
}

// Kind returns the tag of the object's body.
func (o *Object) Kind() Kind {
	if o == nil || o.Body == nil {
		return KindDecorative
	}
	return o.Body.Kind()
}

// Box returns the object's bounds.
func (o *Object) Box() geom.Box { return geom.BoxAt(o.Position, o.Size) }

// Decoration returns the decoration payload, if o is decorative.
func (o *Object) Decoration() (*Decoration, bool) {
	d, ok := o.Body.(*Decoration)
	return d, ok
}

// Mix blends a toward b by t in [0, 1].
func Mix(a, b color.RGBA, t float64) color.RGBA {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	ch := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}
