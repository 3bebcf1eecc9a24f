package topology

import (
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

const (
	roleLabel       = "kubernetes.io/role"
	roleLabelPrefix = "node-role.kubernetes.io/"
	defaultRole     = "worker"
	unknownStatus   = "Unknown"
)

// Build converts raw node and pod records into a Snapshot.
//
// Machines keep input order. Pods are attached to the machine named by their
// spec.nodeName; unscheduled pods and pods naming an unknown node are dropped.
// Missing optional fields are replaced with defaults, never reported as errors.
func Build(nodes []corev1.Node, pods []corev1.Pod) *Snapshot {
	snap := &Snapshot{Machines: make([]*Machine, 0, len(nodes))}
	byName := make(map[string]*Machine, len(nodes))
	for i := range nodes {
		m := buildMachine(&nodes[i])
		snap.Machines = append(snap.Machines, m)
		if _, dup := byName[m.Name]; !dup {
			byName[m.Name] = m
		}
	}

	for i := range pods {
		p := &pods[i]
		if p.Spec.NodeName == "" {
			continue
		}
		m, ok := byName[p.Spec.NodeName]
		if !ok {
			continue
		}
		m.Workloads = append(m.Workloads, buildWorkload(p))
	}
	return snap
}

func buildMachine(n *corev1.Node) *Machine {
	m := &Machine{
		Name:        n.Name,
		Status:      readyStatus(n.Status.Conditions),
		Role:        nodeRole(n.Labels),
		Labels:      copyMap(n.Labels),
		Annotations: copyMap(n.Annotations),
		CreatedAt:   n.CreationTimestamp.Time,
		Platform: Platform{
			OSImage:          orNA(n.Status.NodeInfo.OSImage),
			KernelVersion:    orNA(n.Status.NodeInfo.KernelVersion),
			KubeletVersion:   orNA(n.Status.NodeInfo.KubeletVersion),
			ContainerRuntime: orNA(n.Status.NodeInfo.ContainerRuntimeVersion),
			Architecture:     orNA(n.Status.NodeInfo.Architecture),
			OperatingSystem:  orNA(n.Status.NodeInfo.OperatingSystem),
		},
		Capacity:    resources(n.Status.Capacity),
		Allocatable: resources(n.Status.Allocatable),
	}
	for _, a := range n.Status.Addresses {
		m.Addresses = append(m.Addresses, Address{Type: string(a.Type), Address: a.Address})
	}
	for _, c := range n.Status.Conditions {
		m.Conditions = append(m.Conditions, Condition{
			Type:           string(c.Type),
			Status:         string(c.Status),
			Reason:         c.Reason,
			Message:        c.Message,
			TransitionTime: c.LastTransitionTime.Time,
		})
	}
	return m
}

func buildWorkload(p *corev1.Pod) *Workload {
	restarts := make(map[string]int32, len(p.Status.ContainerStatuses))
	var total int32
	for _, cs := range p.Status.ContainerStatuses {
		restarts[cs.Name] += cs.RestartCount
		total += cs.RestartCount
	}

	w := &Workload{
		Name:        p.Name,
		Namespace:   p.Namespace,
		Status:      podStatus(p.Status.Phase),
		Phase:       orNA(string(p.Status.Phase)),
		IP:          orNA(p.Status.PodIP),
		MachineName: p.Spec.NodeName,
		QOSClass:    orNA(string(p.Status.QOSClass)),
		Restarts:    total,
	}
	if p.Status.StartTime != nil {
		w.StartTime = p.Status.StartTime.Time
	}
	for _, c := range p.Spec.Containers {
		w.Containers = append(w.Containers, Container{
			Name:          c.Name,
			Image:         c.Image,
			CPURequest:    quantity(c.Resources.Requests, corev1.ResourceCPU),
			CPULimit:      quantity(c.Resources.Limits, corev1.ResourceCPU),
			MemoryRequest: quantity(c.Resources.Requests, corev1.ResourceMemory),
			MemoryLimit:   quantity(c.Resources.Limits, corev1.ResourceMemory),
			Restarts:      restarts[c.Name],
		})
	}
	return w
}

func readyStatus(conds []corev1.NodeCondition) string {
	for _, c := range conds {
		if c.Type == corev1.NodeReady {
			if c.Status == "" {
				return unknownStatus
			}
			return string(c.Status)
		}
	}
	return unknownStatus
}

func nodeRole(labels map[string]string) string {
	if r := labels[roleLabel]; r != "" {
		return r
	}
	var roles []string
	for k := range labels {
		if r, ok := strings.CutPrefix(k, roleLabelPrefix); ok && r != "" {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		return defaultRole
	}
	sort.Strings(roles)
	return roles[0]
}

func podStatus(phase corev1.PodPhase) Status {
	switch phase {
	case corev1.PodRunning:
		return StatusRunning
	case corev1.PodPending:
		return StatusPending
	case corev1.PodFailed:
		return StatusFailed
	default:
		return StatusOther
	}
}

func resources(rl corev1.ResourceList) Resources {
	return Resources{
		CPU:              quantity(rl, corev1.ResourceCPU),
		Memory:           quantity(rl, corev1.ResourceMemory),
		EphemeralStorage: quantity(rl, corev1.ResourceEphemeralStorage),
	}
}

func quantity(rl corev1.ResourceList, name corev1.ResourceName) string {
	q, ok := rl[name]
	if !ok {
		return NotAvailable
	}
	return quantityString(q)
}

func quantityString(q resource.Quantity) string {
	s := q.String()
	if s == "" {
		return NotAvailable
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
