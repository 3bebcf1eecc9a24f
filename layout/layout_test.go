package layout

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/nimsforest/clusterview/topology"
	corev1 "k8s.io/api/core/v1"
)

func demo(t *testing.T, machines int) *topology.Snapshot {
	t.Helper()
	snap, err := topology.Load(context.Background(), topology.DemoSource(machines))
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestMachinesAlongX(t *testing.T) {
	l := Compute(demo(t, 4))
	if len(l.Machines) != 4 {
		t.Fatalf("machines = %d", len(l.Machines))
	}
	for i, m := range l.Machines {
		want := float64(i) * MachineWidth * 2
		if m.Center.X != want || m.Center.Y != MachineHeight/2 || m.Center.Z != 0 {
			t.Errorf("machine %d center = %v", i, m.Center)
		}
	}
}

func TestDeterministic(t *testing.T) {
	snap := demo(t, 5)
	a, b := Compute(snap), Compute(snap)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("layout is not deterministic")
	}
}

func TestGridCellsAndCentering(t *testing.T) {
	for n := 1; n <= 10; n++ {
		machine := MachineCenter(2)
		rows := map[int][]float64{}
		for j := 0; j < n; j++ {
			row, col := Cell(j)
			if row != j/MaxPerRow || col != j%MaxPerRow {
				t.Fatalf("n=%d j=%d cell = %d,%d", n, j, row, col)
			}
			c := WorkloadCenter(machine, j, n)
			rows[row] = append(rows[row], c.X)
			if c.Z != machine.Z+float64(row)*WorkloadSpacing {
				t.Fatalf("n=%d j=%d z = %v", n, j, c.Z)
			}
			if c.Y <= MachineHeight {
				t.Fatalf("n=%d j=%d y = %v not above machine", n, j, c.Y)
			}
		}
		for row, xs := range rows {
			lo, hi := xs[0], xs[len(xs)-1]
			if math.Abs((lo+hi)/2-machine.X) > 1e-9 {
				t.Errorf("n=%d row %d span [%v,%v] not centered on %v", n, row, lo, hi, machine.X)
			}
		}
	}
}

func TestTwoWorkloadScenario(t *testing.T) {
	snap := topology.Build(
		[]corev1.Node{topology.DemoNode("node-a", corev1.ConditionTrue, nil)},
		[]corev1.Pod{
			topology.DemoPod("pod-1", "node-a", corev1.PodRunning),
			topology.DemoPod("pod-2", "node-a", corev1.PodPending),
		},
	)
	l := Compute(snap)
	m := l.Machines[0]
	if m.Center.X != 0 {
		t.Fatalf("node-a not in first slot: %v", m.Center)
	}
	if len(m.Workloads) != 2 {
		t.Fatalf("workloads = %d", len(m.Workloads))
	}
	w1, w2 := m.Workloads[0], m.Workloads[1]
	if w1.Row != 0 || w1.Col != 0 || w2.Row != 0 || w2.Col != 1 {
		t.Fatalf("cells = %d,%d / %d,%d", w1.Row, w1.Col, w2.Row, w2.Col)
	}
	if w1.Center.X != -WorkloadSpacing/2 || w2.Center.X != WorkloadSpacing/2 {
		t.Fatalf("x = %v / %v", w1.Center.X, w2.Center.X)
	}
}

func TestEmptyMachine(t *testing.T) {
	snap := topology.Build([]corev1.Node{topology.DemoNode("idle", corev1.ConditionTrue, nil)}, nil)
	l := Compute(snap)
	if len(l.Machines) != 1 || len(l.Machines[0].Workloads) != 0 {
		t.Fatalf("layout = %+v", l.Machines)
	}
	if _, ok := Compute(nil).Bounds(); ok {
		t.Fatalf("empty layout must have no bounds")
	}
}
