package topology

import (
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DemoSource returns a StaticSource with a small made-up cluster:
// machineCount machines, the i-th one running i+1 workloads.
func DemoSource(machineCount int) *StaticSource {
	var nodes []corev1.Node
	var pods []corev1.Pod
	phases := []corev1.PodPhase{corev1.PodRunning, corev1.PodPending, corev1.PodFailed, corev1.PodSucceeded}
	start := metav1.NewTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	for i := 0; i < machineCount; i++ {
		name := fmt.Sprintf("node-%c", 'a'+i%26)
		labels := map[string]string{}
		if i == 0 {
			labels["node-role.kubernetes.io/control-plane"] = ""
		}
		nodes = append(nodes, DemoNode(name, corev1.ConditionTrue, labels))
		for j := 0; j <= i; j++ {
			pod := DemoPod(fmt.Sprintf("%s-pod-%d", name, j), name, phases[j%len(phases)])
			pod.Status.StartTime = &start
			pods = append(pods, pod)
		}
	}
	return NewStaticSource(nodes, pods)
}

// DemoNode builds a node record with typical capacity and a Ready condition.
func DemoNode(name string, ready corev1.ConditionStatus, labels map[string]string) corev1.Node {
	return corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{{Type: corev1.NodeReady, Status: ready, Reason: "KubeletReady"}},
			Addresses: []corev1.NodeAddress{
				{Type: corev1.NodeInternalIP, Address: "10.0.0.10"},
				{Type: corev1.NodeHostName, Address: name},
			},
			NodeInfo: corev1.NodeSystemInfo{
				OSImage:                 "Ubuntu 24.04 LTS",
				KernelVersion:           "6.8.0",
				KubeletVersion:          "v1.31.3",
				ContainerRuntimeVersion: "containerd://1.7.22",
				Architecture:            "amd64",
				OperatingSystem:         "linux",
			},
			Capacity: corev1.ResourceList{
				corev1.ResourceCPU:              resource.MustParse("8"),
				corev1.ResourceMemory:           resource.MustParse("32Gi"),
				corev1.ResourceEphemeralStorage: resource.MustParse("100Gi"),
			},
			Allocatable: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("7800m"),
				corev1.ResourceMemory: resource.MustParse("30Gi"),
			},
		},
	}
}

// DemoPod builds a single-container pod bound to nodeName.
func DemoPod(name, nodeName string, phase corev1.PodPhase) corev1.Pod {
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "default"},
		Spec: corev1.PodSpec{
			NodeName: nodeName,
			Containers: []corev1.Container{{
				Name:  "app",
				Image: "nginx:1.27",
				Resources: corev1.ResourceRequirements{
					Requests: corev1.ResourceList{corev1.ResourceCPU: resource.MustParse("100m")},
				},
			}},
		},
		Status: corev1.PodStatus{
			Phase:    phase,
			PodIP:    "10.1.0.5",
			QOSClass: corev1.PodQOSBurstable,
		},
	}
}
