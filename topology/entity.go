// Package topology turns raw cluster records into the render-ready entity list
// used by the rest of clusterview.
//
// A Snapshot is built once per load and never patched; a refresh builds a new one.
package topology

import "time"

// NotAvailable is substituted for optional string fields that are absent.
const NotAvailable = "N/A"

// Status is the coarse lifecycle bucket of a workload.
type Status string

const (
	StatusRunning Status = "Running"
	StatusPending Status = "Pending"
	StatusFailed  Status = "Failed"
	StatusOther   Status = "Other"
)

// Snapshot is a point-in-time view of the cluster.
type Snapshot struct {
	Machines []*Machine
}

// Machine is a cluster host and the workloads scheduled on it.
type Machine struct {
	Name        string
	Status      string // status of the Ready condition
	Role        string
	Addresses   []Address
	Platform    Platform
	Capacity    Resources
	Allocatable Resources
	Conditions  []Condition
	Labels      map[string]string
	Annotations map[string]string
	CreatedAt   time.Time
	Workloads   []*Workload
}

// Address is one network address of a machine.
type Address struct {
	Type    string
	Address string
}

// Platform holds node-info fields.
type Platform struct {
	OSImage          string
	KernelVersion    string
	KubeletVersion   string
	ContainerRuntime string
	Architecture     string
	OperatingSystem  string
}

// Resources holds resource quantities as display strings.
type Resources struct {
	CPU              string
	Memory           string
	EphemeralStorage string
}

// Condition is a machine condition record.
type Condition struct {
	Type           string
	Status         string
	Reason         string
	Message        string
	TransitionTime time.Time
}

// Workload is a schedulable unit on a machine.
type Workload struct {
	Name        string
	Namespace   string
	Status      Status
	Phase       string
	IP          string
	MachineName string
	StartTime   time.Time
	QOSClass    string
	Restarts    int32
	Containers  []Container
}

// Key returns namespace/name.
func (w *Workload) Key() string {
	if w.Namespace == "" {
		return w.Name
	}
	return w.Namespace + "/" + w.Name
}

// Container is one container of a workload.
type Container struct {
	Name          string
	Image         string
	CPURequest    string
	CPULimit      string
	MemoryRequest string
	MemoryLimit   string
	Restarts      int32
}

// Summary contains aggregate counts.
type Summary struct {
	Machines  int
	Ready     int
	Workloads int
	Running   int
	Pending   int
	Failed    int
	Other     int
}

// Summary computes aggregate counts for the snapshot.
func (s *Snapshot) Summary() Summary {
	var sum Summary
	if s == nil {
		return sum
	}
	sum.Machines = len(s.Machines)
	for _, m := range s.Machines {
		if m.Status == "True" {
			sum.Ready++
		}
		for _, w := range m.Workloads {
			sum.Workloads++
			switch w.Status {
			case StatusRunning:
				sum.Running++
			case StatusPending:
				sum.Pending++
			case StatusFailed:
				sum.Failed++
			default:
				sum.Other++
			}
		}
	}
	return sum
}

// Machine returns the machine with the given name, or nil.
func (s *Snapshot) Machine(name string) *Machine {
	if s == nil {
		return nil
	}
	for _, m := range s.Machines {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Workload returns the workload with the given namespace and name, or nil.
func (s *Snapshot) Workload(namespace, name string) *Workload {
	if s == nil {
		return nil
	}
	for _, m := range s.Machines {
		for _, w := range m.Workloads {
			if w.Namespace == namespace && w.Name == name {
				return w
			}
		}
	}
	return nil
}
