package highlight

import (
	"context"
	"testing"
	"time"

	"github.com/nimsforest/clusterview/anim"
	"github.com/nimsforest/clusterview/layout"
	"github.com/nimsforest/clusterview/scene"
	"github.com/nimsforest/clusterview/topology"
)

const frame = time.Second / 60

func newScene(t *testing.T) *scene.Scene {
	t.Helper()
	snap, err := topology.Load(context.Background(), topology.DemoSource(3))
	if err != nil {
		t.Fatal(err)
	}
	return scene.Build(layout.Compute(snap))
}

func run(a *anim.Animator, frames int) {
	for i := 0; i < frames; i++ {
		a.Advance(frame)
	}
}

func highlighted(s *scene.Scene, k scene.Kind) int {
	n := 0
	s.Each(k, func(o *scene.Object) {
		if o.Material.Emissive == Emissive {
			n++
		}
	})
	return n
}

func TestActivateRestoresPreviousHolder(t *testing.T) {
	s := newScene(t)
	a := anim.New()
	c := New(a)

	first, second := s.Machine("node-a"), s.Machine("node-b")
	before := first.Material

	if !c.Activate(first) {
		t.Fatalf("first activation reported no-op")
	}
	run(a, 10)
	if first.Material.EmissiveIntensity == before.EmissiveIntensity {
		t.Fatalf("blink did not change intensity")
	}

	c.Activate(second)
	if first.Material != before {
		t.Fatalf("previous holder not restored: %+v vs %+v", first.Material, before)
	}
	run(a, 10)
	if first.Material != before {
		t.Fatalf("cancelled blink still writes to previous holder")
	}
	if got := highlighted(s, scene.KindMachine); got != 1 {
		t.Fatalf("highlighted machines = %d, want 1", got)
	}
	if c.Holder(scene.KindMachine) != second {
		t.Fatalf("holder = %v, want node-b", c.Holder(scene.KindMachine))
	}
}

func TestExclusivityAcrossManyClicks(t *testing.T) {
	s := newScene(t)
	a := anim.New()
	c := New(a)

	var workloads []*scene.Object
	s.Each(scene.KindWorkload, func(o *scene.Object) { workloads = append(workloads, o) })
	for i := 0; i < 20; i++ {
		c.Activate(workloads[i%len(workloads)])
		run(a, 3)
		if got := highlighted(s, scene.KindWorkload); got != 1 {
			t.Fatalf("step %d: highlighted workloads = %d", i, got)
		}
	}
}

func TestIdempotentActivation(t *testing.T) {
	s := newScene(t)
	a := anim.New()
	c := New(a)
	o := s.Machine("node-a")

	c.Activate(o)
	run(a, 5)
	tasks := a.Len()
	intensity := o.Material.EmissiveIntensity

	if c.Activate(o) {
		t.Fatalf("re-activation must be a no-op")
	}
	if a.Len() != tasks || o.Material.EmissiveIntensity != intensity {
		t.Fatalf("re-activation changed state")
	}
}

func TestReleaseRestoresWorkloadLabel(t *testing.T) {
	s := newScene(t)
	a := anim.New()
	c := New(a)
	o := s.Workload("default/node-b-pod-1")
	d, _ := o.Label.Decoration()
	material, labelColor, scale := o.Material, o.Label.Material.Color, d.Scale

	c.Activate(o)
	run(a, 12)
	if d.Scale != LabelScale {
		t.Fatalf("label scale = %v, want %v", d.Scale, LabelScale)
	}
	if o.Label.Material.Color == labelColor {
		t.Fatalf("label color did not oscillate")
	}

	c.Release(scene.KindWorkload)
	if o.Material != material || o.Label.Material.Color != labelColor || d.Scale != scale {
		t.Fatalf("release left stale appearance")
	}
	if a.Len() != 0 {
		t.Fatalf("animations left running: %d", a.Len())
	}
	run(a, 5)
	if o.Material != material || o.Label.Material.Color != labelColor {
		t.Fatalf("appearance changed after release")
	}
}

func TestTracksAreIndependent(t *testing.T) {
	s := newScene(t)
	a := anim.New()
	c := New(a)

	c.Activate(s.Machine("node-a"))
	c.Activate(s.Workload("default/node-c-pod-2"))
	if c.Holder(scene.KindMachine) == nil || c.Holder(scene.KindWorkload) == nil {
		t.Fatalf("one track evicted the other")
	}
	if c.Activate(s.Ground) {
		t.Fatalf("ground cannot be highlighted")
	}
	c.ReleaseAll()
	if c.Holder(scene.KindMachine) != nil || c.Holder(scene.KindWorkload) != nil {
		t.Fatalf("ReleaseAll left holders")
	}
}
