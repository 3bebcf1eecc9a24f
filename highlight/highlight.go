// Package highlight owns the blinking emphasis of at most one machine and at
// most one workload.
package highlight

import (
	"image/color"
	"time"

	"github.com/nimsforest/clusterview/anim"
	"github.com/nimsforest/clusterview/scene"
	"github.com/tanema/gween/ease"
)

var (
	// Emissive is the emissive hue of a highlighted volume.
	Emissive = color.RGBA{R: 0x00, G: 0xe5, B: 0xff, A: 0xff}

	// LabelColor is the hue a highlighted workload label oscillates toward.
	LabelColor = color.RGBA{R: 0xfa, G: 0xcc, B: 0x15, A: 0xff}
)

const (
	// PeakIntensity is the emissive intensity a blink leg eases toward.
	PeakIntensity = 1.0

	// LabelScale is the size of a highlighted workload's label.
	LabelScale = 1.6

	// Period is the length of one blink leg (dim to bright).
	Period = 600 * time.Millisecond
)

// Holder is the currently highlighted object of one kind together with what
// is needed to undo the highlight.
type Holder struct {
	Object *scene.Object
	saved  scene.Material
	blink  *anim.Handle

	label      *scene.Object
	labelScale float64
	labelColor color.RGBA
	labelBlink *anim.Handle
}

// State is the highlight state of one view. At most one holder per kind.
type State struct {
	Machine  *Holder
	Workload *Holder
}

// Controller applies highlight transitions to a State.
type Controller struct {
	state    State
	animator *anim.Animator
}

// New creates a Controller whose blink tasks run on a.
func New(a *anim.Animator) *Controller {
	return &Controller{animator: a}
}

// State returns the current state. Callers must not modify it.
func (c *Controller) State() State { return c.state }

// Holder returns the highlighted object of kind k, or nil.
func (c *Controller) Holder(k scene.Kind) *scene.Object {
	if slot := c.slot(k); slot != nil && *slot != nil {
		return (*slot).Object
	}
	return nil
}

func (c *Controller) slot(k scene.Kind) **Holder {
	switch k {
	case scene.KindMachine:
		return &c.state.Machine
	case scene.KindWorkload:
		return &c.state.Workload
	default:
		return nil
	}
}

// Activate highlights o. Re-activating the current holder is a no-op and
// returns false. The previous holder of the same kind is fully restored
// before o is touched. Objects that are neither machines nor workloads are
// ignored.
func (c *Controller) Activate(o *scene.Object) bool {
	if o == nil {
		return false
	}
	slot := c.slot(o.Kind())
	if slot == nil {
		return false
	}
	if *slot != nil && (*slot).Object == o {
		return false
	}
	c.release(slot)

	h := &Holder{Object: o, saved: o.Material}
	o.Material.Emissive = Emissive
	h.blink = c.animator.Start(&anim.Tween{
		From:     h.saved.EmissiveIntensity,
		To:       PeakIntensity,
		Duration: Period,
		Easing:   ease.InOutSine,
		Yoyo:     true,
		Forever:  true,
		Apply:    func(v float64) { o.Material.EmissiveIntensity = v },
	})

	if o.Kind() == scene.KindWorkload && o.Label != nil {
		if d, ok := o.Label.Decoration(); ok {
			label := o.Label
			h.label = label
			h.labelScale = d.Scale
			h.labelColor = label.Material.Color
			d.Scale = LabelScale
			from := h.labelColor
			h.labelBlink = c.animator.Start(&anim.Tween{
				From:     0,
				To:       1,
				Duration: Period,
				Easing:   ease.InOutSine,
				Yoyo:     true,
				Forever:  true,
				Apply:    func(v float64) { label.Material.Color = scene.Mix(from, LabelColor, v) },
			})
		}
	}

	*slot = h
	return true
}

// Release restores the holder of kind k, if any.
func (c *Controller) Release(k scene.Kind) {
	if slot := c.slot(k); slot != nil {
		c.release(slot)
	}
}

// ReleaseAll restores both holders.
func (c *Controller) ReleaseAll() {
	c.Release(scene.KindMachine)
	c.Release(scene.KindWorkload)
}

func (c *Controller) release(slot **Holder) {
	h := *slot
	if h == nil {
		return
	}
	h.blink.Cancel()
	h.Object.Material = h.saved
	if h.label != nil {
		h.labelBlink.Cancel()
		if d, ok := h.label.Decoration(); ok {
			d.Scale = h.labelScale
		}
		h.label.Material.Color = h.labelColor
	}
	*slot = nil
}
