// Package clusterview renders a cluster's machines and workloads as an
// interactive 3D scene and fans its view state out to web, TV and bus targets.
package clusterview

// ViewState is a point-in-time copy of what the view shows.
type ViewState struct {
	Machines  []MachineView
	Selection SelectionView
	Camera    CameraView
	Summary   SummaryView
	Frames    uint64
}

// MachineView is one machine volume and the workloads floating above it.
type MachineView struct {
	Name        string
	Status      string
	Role        string
	X, Y, Z     float64
	Highlighted bool
	Selected    bool
	CPU         string
	Memory      string
	Workloads   []WorkloadView
}

// Workload returns the workload with the given key, or nil.
func (m *MachineView) Workload(key string) *WorkloadView {
	for i := range m.Workloads {
		if m.Workloads[i].Key == key {
			return &m.Workloads[i]
		}
	}
	return nil
}

// WorkloadView is one workload volume.
type WorkloadView struct {
	Key         string // namespace/name
	Name        string
	Namespace   string
	Status      string
	Machine     string
	X, Y, Z     float64
	Highlighted bool
	Selected    bool
	Restarts    int32
}

// SelectionView names the selected machine and workload; empty means none.
type SelectionView struct {
	Machine  string
	Workload string
}

// CameraView is the camera pose and whether a transition is running.
type CameraView struct {
	Position [3]float64
	Target   [3]float64
	Moving   bool
}

// SummaryView contains aggregate counts.
type SummaryView struct {
	Machines  int
	Ready     int
	Workloads int
	Running   int
	Pending   int
	Failed    int
	Other     int
}

// AllWorkloads returns every workload in machine order.
func (s *ViewState) AllWorkloads() []WorkloadView {
	var out []WorkloadView
	for _, m := range s.Machines {
		out = append(out, m.Workloads...)
	}
	return out
}
