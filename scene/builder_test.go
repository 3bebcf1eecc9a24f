package scene

import (
	"context"
	"testing"

	"github.com/nimsforest/clusterview/layout"
	"github.com/nimsforest/clusterview/topology"
	corev1 "k8s.io/api/core/v1"
)

func TestObjectCountsMatchSnapshot(t *testing.T) {
	for _, n := range []int{0, 1, 4, 7} {
		snap, err := topology.Load(context.Background(), topology.DemoSource(n))
		if err != nil {
			t.Fatal(err)
		}
		s := Build(layout.Compute(snap))
		sum := snap.Summary()
		if got := s.Count(KindMachine); got != sum.Machines {
			t.Errorf("n=%d machine objects = %d, want %d", n, got, sum.Machines)
		}
		if got := s.Count(KindWorkload); got != sum.Workloads {
			t.Errorf("n=%d workload objects = %d, want %d", n, got, sum.Workloads)
		}
		if s.Count(KindGround) != 1 {
			t.Errorf("n=%d ground objects = %d", n, s.Count(KindGround))
		}
		for _, m := range snap.Machines {
			if s.Machine(m.Name) == nil {
				t.Errorf("n=%d missing machine %s", n, m.Name)
			}
			for _, w := range m.Workloads {
				obj := s.Workload(w.Key())
				if obj == nil {
					t.Fatalf("n=%d missing workload %s", n, w.Key())
				}
				if body := obj.Body.(*Workload); body.Entity != w {
					t.Errorf("workload %s back-reference mismatch", w.Key())
				}
			}
		}
	}
}

func TestScenarioColorsAndDecorations(t *testing.T) {
	snap := topology.Build(
		[]corev1.Node{topology.DemoNode("node-a", corev1.ConditionTrue, nil)},
		[]corev1.Pod{
			topology.DemoPod("pod-1", "node-a", corev1.PodRunning),
			topology.DemoPod("pod-2", "node-a", corev1.PodPending),
		},
	)
	s := Build(layout.Compute(snap))

	if got := s.Workload("default/pod-1").Material.Color; got != ColorRunning {
		t.Errorf("pod-1 color = %v, want green", got)
	}
	if got := s.Workload("default/pod-2").Material.Color; got != ColorPending {
		t.Errorf("pod-2 color = %v, want amber", got)
	}

	m := s.Machine("node-a")
	if m.Label == nil || m.Outline == nil {
		t.Fatalf("machine must carry label and outline")
	}
	if m.Label.Kind() != KindDecorative || m.Outline.Kind() != KindDecorative {
		t.Fatalf("label/outline must be decorative")
	}
	if d, ok := m.Label.Decoration(); !ok || d.Role != RoleLabel || d.Text != "node-a" {
		t.Fatalf("label = %+v", m.Label.Body)
	}
	if m.Label.Position.Y <= m.Position.Y+m.Size.Y/2 {
		t.Fatalf("label must sit above the machine")
	}

	for _, o := range s.Pickable(KindMachine, KindWorkload, KindGround) {
		if o.Kind() == KindDecorative {
			t.Fatalf("decorative object %d offered for picking", o.ID)
		}
	}
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status topology.Status
		want   any
	}{
		{topology.StatusRunning, ColorRunning},
		{topology.StatusPending, ColorPending},
		{topology.StatusFailed, ColorFailed},
		{topology.StatusOther, ColorOther},
		{topology.Status("Succeeded"), ColorOther},
	}
	for _, tt := range tests {
		if got := StatusColor(tt.status); got != tt.want {
			t.Errorf("StatusColor(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParticleRotation(t *testing.T) {
	s := Build(layout.Compute(nil))
	before := s.Particles.World()[0]
	s.Particles.Rotate(10)
	after := s.Particles.World()[0]
	if before == after {
		t.Fatalf("particles did not move")
	}
	if before.Y != after.Y {
		t.Fatalf("rotation must be about the vertical axis")
	}
}
