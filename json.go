package clusterview

import (
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/nimsforest/clusterview/pick"
	"github.com/nimsforest/clusterview/topology"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ViewModelJSON is the JSON representation of ViewState.
type ViewModelJSON struct {
	Machines  []MachineJSON `json:"machines"`
	Selection SelectionJSON `json:"selection"`
	Camera    CameraJSON    `json:"camera"`
	Summary   SummaryJSON   `json:"summary"`
	Frames    uint64        `json:"frames"`
}

// MachineJSON is one machine volume.
type MachineJSON struct {
	Name        string         `json:"name"`
	Status      string         `json:"status"`
	Role        string         `json:"role"`
	Position    [3]float64     `json:"position"`
	Highlighted bool           `json:"highlighted"`
	Selected    bool           `json:"selected"`
	CPU         string         `json:"cpu"`
	Memory      string         `json:"memory"`
	Workloads   []WorkloadJSON `json:"workloads"`
}

// WorkloadJSON is one workload volume.
type WorkloadJSON struct {
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Namespace   string     `json:"namespace"`
	Status      string     `json:"status"`
	Position    [3]float64 `json:"position"`
	Highlighted bool       `json:"highlighted"`
	Selected    bool       `json:"selected"`
	Restarts    int32      `json:"restarts"`
}

// SelectionJSON names the selected entities.
type SelectionJSON struct {
	Machine  string `json:"machine,omitempty"`
	Workload string `json:"workload,omitempty"`
}

// CameraJSON is the camera pose.
type CameraJSON struct {
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
	Moving   bool       `json:"moving"`
}

// SummaryJSON holds aggregate counts.
type SummaryJSON struct {
	Machines  int `json:"machines"`
	Ready     int `json:"ready"`
	Workloads int `json:"workloads"`
	Running   int `json:"running"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
	Other     int `json:"other"`
}

// ViewStateToJSON converts a ViewState for the web API.
func ViewStateToJSON(state *ViewState) ViewModelJSON {
	if state == nil {
		return ViewModelJSON{Machines: []MachineJSON{}}
	}
	out := ViewModelJSON{
		Machines:  make([]MachineJSON, len(state.Machines)),
		Selection: SelectionJSON(state.Selection),
		Camera:    CameraJSON(state.Camera),
		Summary:   SummaryJSON(state.Summary),
		Frames:    state.Frames,
	}
	for i, m := range state.Machines {
		mj := MachineJSON{
			Name:        m.Name,
			Status:      m.Status,
			Role:        m.Role,
			Position:    [3]float64{m.X, m.Y, m.Z},
			Highlighted: m.Highlighted,
			Selected:    m.Selected,
			CPU:         m.CPU,
			Memory:      m.Memory,
			Workloads:   make([]WorkloadJSON, len(m.Workloads)),
		}
		for j, w := range m.Workloads {
			mj.Workloads[j] = WorkloadJSON{
				Key:         w.Key,
				Name:        w.Name,
				Namespace:   w.Namespace,
				Status:      w.Status,
				Position:    [3]float64{w.X, w.Y, w.Z},
				Highlighted: w.Highlighted,
				Selected:    w.Selected,
				Restarts:    w.Restarts,
			}
		}
		out.Machines[i] = mj
	}
	return out
}

// ViewStateToJSONBytes converts a ViewState to JSON bytes.
func ViewStateToJSONBytes(state *ViewState) ([]byte, error) {
	return json.Marshal(ViewStateToJSON(state))
}

// DetailJSON is what the detail panel shows for the current selection.
type DetailJSON struct {
	Machine  *MachineDetailJSON  `json:"machine,omitempty"`
	Workload *WorkloadDetailJSON `json:"workload,omitempty"`
}

// MachineDetailJSON lists a machine's attributes.
type MachineDetailJSON struct {
	Name        string            `json:"name"`
	Status      string            `json:"status"`
	Role        string            `json:"role"`
	Age         string            `json:"age"`
	Addresses   map[string]string `json:"addresses"`
	OSImage     string            `json:"os_image"`
	Kernel      string            `json:"kernel"`
	Kubelet     string            `json:"kubelet"`
	Runtime     string            `json:"runtime"`
	Arch        string            `json:"arch"`
	CPU         string            `json:"cpu"`
	Memory      string            `json:"memory"`
	Storage     string            `json:"storage"`
	Allocatable string            `json:"allocatable"`
	Conditions  []string          `json:"conditions"`
	Labels      map[string]string `json:"labels,omitempty"`
	Workloads   int               `json:"workloads"`
}

// WorkloadDetailJSON lists a workload's attributes.
type WorkloadDetailJSON struct {
	Name       string          `json:"name"`
	Namespace  string          `json:"namespace"`
	Status     string          `json:"status"`
	Phase      string          `json:"phase"`
	IP         string          `json:"ip"`
	Machine    string          `json:"machine"`
	Started    string          `json:"started"`
	QOSClass   string          `json:"qos_class"`
	Restarts   string          `json:"restarts"`
	Containers []ContainerJSON `json:"containers"`
}

// ContainerJSON is one container of a workload.
type ContainerJSON struct {
	Name     string `json:"name"`
	Image    string `json:"image"`
	CPU      string `json:"cpu"`
	Memory   string `json:"memory"`
	Restarts int32  `json:"restarts"`
}

// Detail builds the detail panel for sel, with ages relative to now.
func Detail(sel pick.Selection, now time.Time) DetailJSON {
	var d DetailJSON
	if m := sel.Machine; m != nil {
		md := &MachineDetailJSON{
			Name:        m.Name,
			Status:      m.Status,
			Role:        m.Role,
			Age:         relTime(m.CreatedAt, now),
			Addresses:   make(map[string]string, len(m.Addresses)),
			OSImage:     m.Platform.OSImage,
			Kernel:      m.Platform.KernelVersion,
			Kubelet:     m.Platform.KubeletVersion,
			Runtime:     m.Platform.ContainerRuntime,
			Arch:        m.Platform.Architecture,
			CPU:         m.Capacity.CPU,
			Memory:      bytesOf(m.Capacity.Memory),
			Storage:     bytesOf(m.Capacity.EphemeralStorage),
			Allocatable: m.Allocatable.CPU + " CPU, " + bytesOf(m.Allocatable.Memory),
			Labels:      m.Labels,
			Workloads:   len(m.Workloads),
		}
		for _, a := range m.Addresses {
			md.Addresses[a.Type] = a.Address
		}
		for _, c := range m.Conditions {
			md.Conditions = append(md.Conditions, c.Type+"="+c.Status)
		}
		d.Machine = md
	}
	if w := sel.Workload; w != nil {
		wd := &WorkloadDetailJSON{
			Name:      w.Name,
			Namespace: w.Namespace,
			Status:    string(w.Status),
			Phase:     w.Phase,
			IP:        w.IP,
			Machine:   w.MachineName,
			Started:   relTime(w.StartTime, now),
			QOSClass:  w.QOSClass,
			Restarts:  humanize.Comma(int64(w.Restarts)),
		}
		for _, c := range w.Containers {
			wd.Containers = append(wd.Containers, ContainerJSON{
				Name:     c.Name,
				Image:    c.Image,
				CPU:      c.CPURequest + " / " + c.CPULimit,
				Memory:   bytesOf(c.MemoryRequest) + " / " + bytesOf(c.MemoryLimit),
				Restarts: c.Restarts,
			})
		}
		d.Workload = wd
	}
	return d
}

func relTime(t, now time.Time) string {
	if t.IsZero() {
		return topology.NotAvailable
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// bytesOf renders a memory quantity string such as "32Gi" in IEC units.
// Unparseable and negative values are passed through.
func bytesOf(q string) string {
	v, err := resource.ParseQuantity(q)
	if err != nil || v.Sign() < 0 {
		return q
	}
	return humanize.IBytes(uint64(v.Value()))
}
