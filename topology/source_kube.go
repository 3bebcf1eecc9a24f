package topology

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// KubeSource lists nodes and pods from a live cluster.
type KubeSource struct {
	client kubernetes.Interface
}

// NewKubeSource builds a clientset from a kubeconfig path and context name.
// Empty values fall back to the default loading rules and current context.
func NewKubeSource(kubeconfig, kubeContext string) (*KubeSource, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		rules.ExplicitPath = kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}
	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}
	return &KubeSource{client: client}, nil
}

// NewKubeSourceFromClient wraps an existing clientset.
func NewKubeSourceFromClient(client kubernetes.Interface) *KubeSource {
	return &KubeSource{client: client}
}

// Machines implements Source.
func (s *KubeSource) Machines(ctx context.Context) ([]corev1.Node, error) {
	list, err := s.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}

// Workloads implements Source.
func (s *KubeSource) Workloads(ctx context.Context) ([]corev1.Pod, error) {
	list, err := s.client.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, err
	}
	return list.Items, nil
}
