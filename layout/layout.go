// Package layout places machines and their workloads in world space.
//
// Placement is a pure function of the snapshot order: machines march along +X,
// each machine's workloads form a centered grid floating above its top face.
package layout

import (
	"github.com/nimsforest/clusterview/geom"
	"github.com/nimsforest/clusterview/topology"
)

// Machine volume dimensions, in world units.
const (
	MachineWidth  = 8.0
	MachineHeight = 1.0
	MachineDepth  = 8.0
)

const (
	// MachinePitch is the distance between neighbouring machine centers.
	MachinePitch = MachineWidth * 2

	// WorkloadSize is the edge length of a workload cube.
	WorkloadSize = 1.0

	// WorkloadSpacing is the distance between neighbouring workload centers.
	WorkloadSpacing = 2.0

	// MaxPerRow caps the workloads in one row above a machine.
	MaxPerRow = 3

	// WorkloadLift is the gap between a machine's top face and the bottom of its workloads.
	WorkloadLift = 1.5
)

// Layout is the placement of a whole snapshot.
type Layout struct {
	Machines []MachinePlacement
}

// MachinePlacement positions one machine and its workloads.
type MachinePlacement struct {
	Machine   *topology.Machine
	Center    geom.Vec
	Size      geom.Vec
	Workloads []WorkloadPlacement
}

// WorkloadPlacement positions one workload.
type WorkloadPlacement struct {
	Workload *topology.Workload
	Center   geom.Vec
	Size     geom.Vec
	Row, Col int
}

// TopFace returns the center of the machine's top face.
func (m MachinePlacement) TopFace() geom.Vec {
	return m.Center.Add(geom.V(0, m.Size.Y/2, 0))
}

// Box returns the machine volume.
func (m MachinePlacement) Box() geom.Box { return geom.BoxAt(m.Center, m.Size) }

// Box returns the workload volume.
func (w WorkloadPlacement) Box() geom.Box { return geom.BoxAt(w.Center, w.Size) }

// Compute lays out snap. A nil snapshot yields an empty layout.
func Compute(snap *topology.Snapshot) *Layout {
	l := &Layout{}
	if snap == nil {
		return l
	}
	l.Machines = make([]MachinePlacement, 0, len(snap.Machines))
	for i, m := range snap.Machines {
		center := MachineCenter(i)
		mp := MachinePlacement{
			Machine: m,
			Center:  center,
			Size:    geom.V(MachineWidth, MachineHeight, MachineDepth),
		}
		n := len(m.Workloads)
		for j, w := range m.Workloads {
			row, col := Cell(j)
			mp.Workloads = append(mp.Workloads, WorkloadPlacement{
				Workload: w,
				Center:   WorkloadCenter(center, j, n),
				Size:     geom.V(WorkloadSize, WorkloadSize, WorkloadSize),
				Row:      row,
				Col:      col,
			})
		}
		l.Machines = append(l.Machines, mp)
	}
	return l
}

// MachineCenter returns the center of the i-th machine.
func MachineCenter(i int) geom.Vec {
	return geom.V(float64(i)*MachinePitch, MachineHeight/2, 0)
}

// Cell returns the grid row and column of the j-th workload.
func Cell(j int) (row, col int) {
	return j / MaxPerRow, j % MaxPerRow
}

// WorkloadCenter returns the center of the j-th of n workloads on the machine
// centered at machine. Each row is centered on its own occupancy, so a short
// last row stays symmetric about the machine.
func WorkloadCenter(machine geom.Vec, j, n int) geom.Vec {
	row, col := Cell(j)
	occupied := min(MaxPerRow, n-row*MaxPerRow)
	rowWidth := WorkloadSpacing * float64(occupied-1)
	x := machine.X - rowWidth/2 + float64(col)*WorkloadSpacing
	y := MachineHeight + WorkloadLift + WorkloadSize/2
	z := machine.Z + float64(row)*WorkloadSpacing
	return geom.V(x, y, z)
}

// Bounds returns the box enclosing every placed volume. ok is false for an
// empty layout.
func (l *Layout) Bounds() (b geom.Box, ok bool) {
	for _, m := range l.Machines {
		if !ok {
			b, ok = m.Box(), true
		} else {
			b = b.Union(m.Box())
		}
		for _, w := range m.Workloads {
			b = b.Union(w.Box())
		}
	}
	return b, ok
}

// Machine returns the placement for the named machine.
func (l *Layout) Machine(name string) (MachinePlacement, bool) {
	for _, m := range l.Machines {
		if m.Machine.Name == name {
			return m, true
		}
	}
	return MachinePlacement{}, false
}
