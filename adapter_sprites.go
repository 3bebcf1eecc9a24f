package clusterview

import (
	sprites "github.com/nimsforest/nimsforestsprites"

	"github.com/nimsforest/clusterview/topology"
)

// SpritesStateAdapter presents a ViewState as a sprites.State so the 2D sprite
// renderer can draw it for TVs. Machines become lands in one row; workloads
// become processes on their machine's land.
type SpritesStateAdapter struct {
	viewState *ViewState
}

// NewSpritesStateAdapter creates an adapter for sprites rendering.
func NewSpritesStateAdapter(state *ViewState) *SpritesStateAdapter {
	return &SpritesStateAdapter{viewState: state}
}

// Lands implements sprites.State. Control-plane machines use the highlighted
// land style.
func (a *SpritesStateAdapter) Lands() []sprites.Land {
	if a.viewState == nil {
		return nil
	}
	result := make([]sprites.Land, len(a.viewState.Machines))
	for i, m := range a.viewState.Machines {
		landType := "normal"
		if m.Role == "control-plane" || m.Role == "master" {
			landType = "mana"
		}
		result[i] = sprites.Land{
			ID:   m.Name,
			Name: m.Name,
			X:    float64(i),
			Y:    0,
			Type: landType,
		}
	}
	return result
}

// Processes implements sprites.State.
func (a *SpritesStateAdapter) Processes() []sprites.Process {
	if a.viewState == nil {
		return nil
	}
	var result []sprites.Process
	for i, m := range a.viewState.Machines {
		for _, w := range m.Workloads {
			kind, progress := spriteKind(topology.Status(w.Status))
			result = append(result, sprites.Process{
				ID:       w.Key,
				LandID:   m.Name,
				Type:     kind,
				Progress: progress,
				X:        float64(i),
				Y:        0,
			})
		}
	}
	return result
}

// spriteKind maps a workload status to a sprite type and progress.
func spriteKind(s topology.Status) (string, float64) {
	switch s {
	case topology.StatusRunning:
		return "tree", 1
	case topology.StatusPending:
		return "treehouse", 0.5
	case topology.StatusFailed:
		return "nim", 0
	default:
		return "nim", 0.25
	}
}

var _ sprites.State = (*SpritesStateAdapter)(nil)
