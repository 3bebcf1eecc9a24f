package topology

import (
	"context"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	corev1 "k8s.io/api/core/v1"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Source lists raw cluster records. Implementations are read-only and
// point-in-time; the viewer loads once per mount.
type Source interface {
	// Machines lists all nodes.
	Machines(ctx context.Context) ([]corev1.Node, error)

	// Workloads lists all pods across namespaces.
	Workloads(ctx context.Context) ([]corev1.Pod, error)
}

// Load lists machines and workloads from src and builds a Snapshot.
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	if src == nil {
		return nil, fmt.Errorf("no topology source set")
	}
	nodes, err := src.Machines(ctx)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	pods, err := src.Workloads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workloads: %w", err)
	}
	return Build(nodes, pods), nil
}

// StaticSource serves fixed records.
type StaticSource struct {
	Nodes []corev1.Node
	Pods  []corev1.Pod
}

// NewStaticSource creates a Source from fixed records.
func NewStaticSource(nodes []corev1.Node, pods []corev1.Pod) *StaticSource {
	return &StaticSource{Nodes: nodes, Pods: pods}
}

// Machines implements Source.
func (s *StaticSource) Machines(ctx context.Context) ([]corev1.Node, error) {
	return s.Nodes, nil
}

// Workloads implements Source.
func (s *StaticSource) Workloads(ctx context.Context) ([]corev1.Pod, error) {
	return s.Pods, nil
}

// Document is the on-disk fixture format read by FileSource.
type Document struct {
	Nodes []corev1.Node `json:"nodes"`
	Pods  []corev1.Pod  `json:"pods"`
}

// FileSource reads a JSON Document from disk on every call.
type FileSource struct {
	path string
}

// NewFileSource creates a Source backed by a JSON fixture file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Machines implements Source.
func (s *FileSource) Machines(ctx context.Context) ([]corev1.Node, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Nodes, nil
}

// Workloads implements Source.
func (s *FileSource) Workloads(ctx context.Context) ([]corev1.Pod, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.Pods, nil
}

func (s *FileSource) read() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read topology file: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse topology file %s: %w", s.path, err)
	}
	return &doc, nil
}
