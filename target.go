package clusterview

import "context"

// Target is an output the Viewer pushes view state to.
type Target interface {
	// Update sends new state to the target.
	Update(ctx context.Context, state *ViewState) error

	// Close cleans up the target.
	Close() error

	// Name returns a descriptive name for logging and metrics.
	Name() string
}

// Controls are the view operations a remote target may invoke.
type Controls interface {
	ResetCamera()
	Refresh(ctx context.Context) error
}
