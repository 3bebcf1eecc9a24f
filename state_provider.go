package clusterview

import (
	"context"
	"fmt"

	"github.com/nimsforest/clusterview/layout"
	"github.com/nimsforest/clusterview/topology"
)

// StateProvider provides the current ViewState for targets.
type StateProvider interface {
	// GetViewState returns the current view state.
	GetViewState() (*ViewState, error)
}

// CallbackStateProvider calls a function to get state.
type CallbackStateProvider struct {
	fn func() (*ViewState, error)
}

// NewCallbackStateProvider creates a StateProvider from a callback function.
func NewCallbackStateProvider(fn func() (*ViewState, error)) *CallbackStateProvider {
	return &CallbackStateProvider{fn: fn}
}

// GetViewState implements StateProvider.
func (p *CallbackStateProvider) GetViewState() (*ViewState, error) {
	return p.fn()
}

// SourceStateProvider loads a snapshot from a topology source on every call
// and lays it out, without a scene or any interaction state. It suits
// targets that only need positions and counts.
type SourceStateProvider struct {
	ctx    context.Context
	source topology.Source
}

// NewSourceStateProvider creates a provider reading from src.
func NewSourceStateProvider(ctx context.Context, src topology.Source) *SourceStateProvider {
	return &SourceStateProvider{ctx: ctx, source: src}
}

// GetViewState implements StateProvider.
func (p *SourceStateProvider) GetViewState() (*ViewState, error) {
	snap, err := topology.Load(p.ctx, p.source)
	if err != nil {
		return nil, fmt.Errorf("failed to load topology: %w", err)
	}
	return stateFromLayout(snap, layout.Compute(snap)), nil
}

func stateFromLayout(snap *topology.Snapshot, l *layout.Layout) *ViewState {
	state := &ViewState{Summary: summaryView(snap.Summary())}
	for _, mp := range l.Machines {
		m := mp.Machine
		mv := MachineView{
			Name:   m.Name,
			Status: m.Status,
			Role:   m.Role,
			X:      mp.Center.X,
			Y:      mp.Center.Y,
			Z:      mp.Center.Z,
			CPU:    m.Capacity.CPU,
			Memory: m.Capacity.Memory,
		}
		for _, wp := range mp.Workloads {
			w := wp.Workload
			mv.Workloads = append(mv.Workloads, WorkloadView{
				Key:       w.Key(),
				Name:      w.Name,
				Namespace: w.Namespace,
				Status:    string(w.Status),
				Machine:   m.Name,
				X:         wp.Center.X,
				Y:         wp.Center.Y,
				Z:         wp.Center.Z,
				Restarts:  w.Restarts,
			})
		}
		state.Machines = append(state.Machines, mv)
	}
	return state
}

func summaryView(s topology.Summary) SummaryView {
	return SummaryView{
		Machines:  s.Machines,
		Ready:     s.Ready,
		Workloads: s.Workloads,
		Running:   s.Running,
		Pending:   s.Pending,
		Failed:    s.Failed,
		Other:     s.Other,
	}
}
