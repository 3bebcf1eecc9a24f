package pick

import (
	"go.uber.org/zap"

	"github.com/nimsforest/clusterview/camera"
	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/highlight"
	"github.com/nimsforest/clusterview/scene"
	"github.com/nimsforest/clusterview/topology"
)

// Cursor is the host's pointer affordance.
type Cursor interface {
	SetPointer(pointer bool)
}

// Selection is the currently selected machine and workload. Either may be nil.
type Selection struct {
	Machine  *topology.Machine
	Workload *topology.Workload
}

// Result says what a click hit.
type Result string

const (
	ResultMachine  Result = "machine"
	ResultWorkload Result = "workload"
	ResultGround   Result = "ground"
	ResultMiss     Result = "miss"
)

var (
	clickKinds = []scene.Kind{scene.KindMachine, scene.KindWorkload, scene.KindGround}
	hoverKinds = []scene.Kind{scene.KindMachine, scene.KindWorkload}
)

// Pipeline handles click and move events for one scene.
type Pipeline struct {
	scene     *scene.Scene
	cam       *geom.Camera
	highlight *highlight.Controller
	camera    *camera.Controller
	cursor    Cursor
	logger    *zap.Logger

	width, height int
	selection     Selection
	pointer       bool

	// OnSelect, if set, is called after every selection change.
	OnSelect func(Selection)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCursor sets the cursor driven by Move.
func WithCursor(c Cursor) Option {
	return func(p *Pipeline) { p.cursor = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline over s viewed through cam.
func NewPipeline(s *scene.Scene, cam *geom.Camera, hl *highlight.Controller, cc *camera.Controller, opts ...Option) *Pipeline {
	p := &Pipeline{
		scene:     s,
		cam:       cam,
		highlight: hl,
		camera:    cc,
		logger:    zap.NewNop(),
		width:     1,
		height:    1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetViewport sets the viewport size in pixels.
func (p *Pipeline) SetViewport(w, h int) {
	if w > 0 && h > 0 {
		p.width, p.height = w, h
	}
}

// Selection returns the current selection.
func (p *Pipeline) Selection() Selection { return p.selection }

// Pointer reports the cursor state set by the last Move.
func (p *Pipeline) Pointer() bool { return p.pointer }

// Click picks at viewport pixel (x, y). Ground hits and misses leave the
// selection untouched.
func (p *Pipeline) Click(x, y float64) Result {
	r := Ray(p.cam, x, y, p.width, p.height)
	hit, ok := Cast(r, p.scene.Pickable(clickKinds...))
	if !ok {
		p.logger.Debug("click missed", zap.Float64("x", x), zap.Float64("y", y))
		return ResultMiss
	}

	o := hit.Object
	switch b := o.Body.(type) {
	case *scene.Machine:
		p.selection = Selection{Machine: b.Entity}
		p.highlight.Release(scene.KindWorkload)
		p.highlight.Activate(o)
		p.camera.Frame(o.Position.Add(geom.V(0, o.Size.Y/2, 0)), camera.MachineProfile)
		p.logger.Debug("machine selected", zap.String("machine", b.Entity.Name))
		p.notify()
		return ResultMachine
	case *scene.Workload:
		p.selection = Selection{Workload: b.Entity}
		p.highlight.Release(scene.KindMachine)
		p.highlight.Activate(o)
		p.camera.Frame(o.Position, camera.WorkloadProfile)
		p.logger.Debug("workload selected", zap.String("workload", b.Entity.Key()))
		p.notify()
		return ResultWorkload
	case *scene.Ground:
		return ResultGround
	case *scene.Decoration:
		return ResultMiss
	default:
		panic("pick: unknown body type")
	}
}

// Move updates the cursor for viewport pixel (x, y). It keeps no hover state
// beyond the cursor itself.
func (p *Pipeline) Move(x, y float64) bool {
	r := Ray(p.cam, x, y, p.width, p.height)
	_, ok := Cast(r, p.scene.Pickable(hoverKinds...))
	p.pointer = ok
	if p.cursor != nil {
		p.cursor.SetPointer(ok)
	}
	return ok
}

// Clear drops the selection and both highlights.
func (p *Pipeline) Clear() {
	p.highlight.ReleaseAll()
	if p.selection != (Selection{}) {
		p.selection = Selection{}
		p.notify()
	}
}

func (p *Pipeline) notify() {
	if p.OnSelect != nil {
		p.OnSelect(p.selection)
	}
}
