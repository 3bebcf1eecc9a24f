package clusterview

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nimsforest/clusterview/anim"
	"github.com/nimsforest/clusterview/camera"
	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/highlight"
	"github.com/nimsforest/clusterview/layout"
	"github.com/nimsforest/clusterview/pick"
	"github.com/nimsforest/clusterview/render"
	"github.com/nimsforest/clusterview/scene"
	"github.com/nimsforest/clusterview/topology"
)

var (
	// ErrNotMounted is returned by operations that need a mounted view.
	ErrNotMounted = errors.New("clusterview: view not mounted")

	// ErrAlreadyMounted is returned by Mount on a mounted view.
	ErrAlreadyMounted = errors.New("clusterview: view already mounted")
)

// HomeOffset is the camera's default position relative to the center of the
// cluster, before it is pulled back to fit wide clusters.
var HomeOffset = geom.V(0, 30, 40)

// View is the mountable 3D visualization. It loads the topology once per
// mount, owns the scene and all interaction state, and is driven by a host
// through Step/Draw and the input methods. All methods are safe to call from
// any goroutine; they serialize on one lock.
type View struct {
	mu      sync.Mutex
	source  topology.Source
	logger  *zap.Logger
	metrics *Metrics

	mounted    bool
	hostLabels bool
	container  render.Container
	snap       *topology.Snapshot
	layout     *layout.Layout
	scene      *scene.Scene

	cam         *geom.Camera
	orbit       *camera.Orbit
	animator    *anim.Animator
	highlight   *highlight.Controller
	transitions *camera.Controller
	picker      *pick.Pipeline
	loop        *render.Loop
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) ViewOption {
	return func(v *View) { v.logger = l }
}

// WithMetrics sets the metrics the view reports to.
func WithMetrics(m *Metrics) ViewOption {
	return func(v *View) { v.metrics = m }
}

// NewView creates an unmounted view reading from src.
func NewView(src topology.Source, opts ...ViewOption) *View {
	v := &View{source: src, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount loads the topology and builds the scene inside c. The render loop
// starts producing frames on the first Step after Mount returns.
func (v *View) Mount(ctx context.Context, c render.Container) error {
	if c == nil {
		return errors.New("clusterview: nil container")
	}
	if v.Mounted() {
		return ErrAlreadyMounted
	}
	snap, err := topology.Load(ctx, v.source)
	if err != nil {
		return fmt.Errorf("mount: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		return ErrAlreadyMounted
	}
	v.container = c
	v.build(snap, true)
	v.mounted = true

	sum := snap.Summary()
	v.logger.Info("view mounted",
		zap.Int("machines", sum.Machines),
		zap.Int("workloads", sum.Workloads))
	return nil
}

// build replaces the scene and every controller. With resetCamera the camera
// is placed at the new home position; otherwise it keeps its pose.
func (v *View) build(snap *topology.Snapshot, resetCamera bool) {
	v.snap = snap
	v.layout = layout.Compute(snap)
	v.scene = scene.Build(v.layout)

	target, home := homePose(v.layout)
	if resetCamera || v.cam == nil {
		v.cam = geom.NewCamera(home, target)
	}
	v.orbit = camera.NewOrbit(v.cam.Target)
	v.animator = anim.New()
	v.highlight = highlight.New(v.animator)
	v.transitions = camera.NewController(v.cam, v.orbit, v.animator)
	v.transitions.SetHome(home)
	v.transitions.OnStart = func(tr camera.Transition) {
		if v.metrics != nil {
			v.metrics.Transitions.WithLabelValues(tr.Profile.Name).Inc()
		}
	}

	v.picker = pick.NewPipeline(v.scene, v.cam, v.highlight, v.transitions,
		pick.WithCursor(v.container),
		pick.WithLogger(v.logger))
	v.picker.SetViewport(v.container.Size())
	v.picker.OnSelect = func(sel pick.Selection) {
		v.logger.Info("selection changed",
			zap.String("machine", machineName(sel.Machine)),
			zap.String("workload", workloadKey(sel.Workload)))
	}

	v.loop = render.NewLoop(v.scene, v.cam, v.orbit, v.animator)
	v.loop.Raster().Labels = !v.hostLabels

	if v.metrics != nil {
		sum := snap.Summary()
		v.metrics.Machines.Set(float64(sum.Machines))
		v.metrics.Workloads.Set(float64(sum.Workloads))
	}
}

// homePose returns the look-at target and default camera position for l.
func homePose(l *layout.Layout) (target, home geom.Vec) {
	b, ok := l.Bounds()
	if !ok {
		return geom.V(0, 0, 0), HomeOffset
	}
	target = b.Center()
	target.Y = 0
	span := math.Max(b.Max.X-b.Min.X, b.Max.Z-b.Min.Z)
	pull := math.Max(1, span/HomeOffset.Norm())
	return target, target.Add(HomeOffset.Mul(pull))
}

// Unmount tears the view down: animations are cancelled, the loop stops and
// the container is released. No frames are produced afterwards.
func (v *View) Unmount() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return ErrNotMounted
	}
	v.animator.CancelAll()
	v.loop.Stop()
	v.container.SetPointer(false)

	v.mounted = false
	v.container = nil
	v.snap, v.layout, v.scene = nil, nil, nil
	v.highlight, v.transitions, v.picker = nil, nil, nil
	v.logger.Info("view unmounted")
	return nil
}

// Mounted reports whether the view is mounted.
func (v *View) Mounted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mounted
}

// Refresh reloads the topology and rebuilds the scene. Running animations are
// cancelled, and selection and highlights are cleared; the camera keeps its
// pose.
func (v *View) Refresh(ctx context.Context) error {
	if !v.Mounted() {
		return ErrNotMounted
	}
	snap, err := topology.Load(ctx, v.source)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return ErrNotMounted
	}
	v.animator.CancelAll()
	v.highlight.ReleaseAll()
	v.loop.Stop()
	v.build(snap, false)
	v.logger.Info("view refreshed", zap.Int("machines", len(snap.Machines)))
	return nil
}

// Selection returns the selected machine and workload.
func (v *View) Selection() pick.Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return pick.Selection{}
	}
	return v.picker.Selection()
}

// Snapshot returns the mounted snapshot, or nil.
func (v *View) Snapshot() *topology.Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap
}

// Step implements render.Engine.
func (v *View) Step(dt time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return render.ErrStopped
	}
	if err := v.loop.Step(dt); err != nil {
		return err
	}
	if v.metrics != nil {
		v.metrics.Frames.Inc()
	}
	return nil
}

// Draw implements render.Engine.
func (v *View) Draw(dst *image.RGBA) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		v.loop.Draw(dst)
	}
}

// Labels implements render.Engine.
func (v *View) Labels(w, h int) []render.Label {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return nil
	}
	return v.loop.Labels(w, h)
}

// DrawFrame renders the current frame with labels into dst.
func (v *View) DrawFrame(dst *image.RGBA) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return ErrNotMounted
	}
	r := v.loop.Raster()
	prev := r.Labels
	r.Labels = true
	v.loop.Draw(dst)
	r.Labels = prev
	return nil
}

// SetHostLabels tells the view that the host draws labels from Labels, so
// Draw leaves them out.
func (v *View) SetHostLabels(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.hostLabels = on
	if v.mounted {
		v.loop.Raster().Labels = !on
	}
}

// Click implements render.Input.
func (v *View) Click(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return
	}
	res := v.picker.Click(x, y)
	if v.metrics != nil {
		v.metrics.Picks.WithLabelValues(string(res)).Inc()
		if res == pick.ResultMachine || res == pick.ResultWorkload {
			v.metrics.Highlights.WithLabelValues(string(res)).Inc()
		}
	}
}

// Move implements render.Input.
func (v *View) Move(x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		v.picker.Move(x, y)
	}
}

// Rotate implements render.Input.
func (v *View) Rotate(dYaw, dPitch float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		v.transitions.Stop()
		v.orbit.Rotate(dYaw, dPitch)
	}
}

// Pan implements render.Input.
func (v *View) Pan(right, up float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		v.transitions.Stop()
		v.orbit.Pan(v.cam, right, up)
	}
}

// Zoom implements render.Input.
func (v *View) Zoom(factor float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		v.transitions.Stop()
		v.orbit.Zoom(factor)
	}
}

// ResetCamera moves the camera back to its home position. Selection and
// highlights are left as they are.
func (v *View) ResetCamera() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted {
		v.transitions.Home()
	}
}

// GetViewState implements StateProvider.
func (v *View) GetViewState() (*ViewState, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.mounted {
		return nil, ErrNotMounted
	}

	state := stateFromLayout(v.snap, v.layout)
	sel := v.picker.Selection()
	state.Selection = SelectionView{
		Machine:  machineName(sel.Machine),
		Workload: workloadKey(sel.Workload),
	}
	hl := v.highlight.State()
	for i := range state.Machines {
		m := &state.Machines[i]
		m.Selected = m.Name == state.Selection.Machine
		m.Highlighted = hl.Machine != nil && bodyName(hl.Machine.Object) == m.Name
		for j := range m.Workloads {
			w := &m.Workloads[j]
			w.Selected = w.Key == state.Selection.Workload
			w.Highlighted = hl.Workload != nil && bodyName(hl.Workload.Object) == w.Key
		}
	}
	state.Camera = CameraView{
		Position: [3]float64{v.cam.Position.X, v.cam.Position.Y, v.cam.Position.Z},
		Target:   [3]float64{v.cam.Target.X, v.cam.Target.Y, v.cam.Target.Z},
		Moving:   v.transitions.InFlight(),
	}
	state.Frames = v.loop.Frames()
	return state, nil
}

func bodyName(o *scene.Object) string {
	switch b := o.Body.(type) {
	case *scene.Machine:
		return b.Entity.Name
	case *scene.Workload:
		return b.Entity.Key()
	default:
		return ""
	}
}

func machineName(m *topology.Machine) string {
	if m == nil {
		return ""
	}
	return m.Name
}

func workloadKey(w *topology.Workload) string {
	if w == nil {
		return ""
	}
	return w.Key()
}
