package clusterview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Viewer pushes the view state to a set of targets, once on Start and then
// every interval.
type Viewer struct {
	mu       sync.RWMutex
	provider StateProvider
	targets  []Target
	interval time.Duration
	logger   *zap.Logger
	metrics  *Metrics
	cancel   context.CancelFunc
	done     chan struct{}
}

// Option configures the Viewer.
type Option func(*Viewer)

// WithInterval sets the update interval for periodic updates.
func WithInterval(d time.Duration) Option {
	return func(v *Viewer) {
		v.interval = d
	}
}

// WithViewerLogger sets the logger used for background update failures.
func WithViewerLogger(l *zap.Logger) Option {
	return func(v *Viewer) {
		v.logger = l
	}
}

// WithViewerMetrics counts target updates on m.
func WithViewerMetrics(m *Metrics) Option {
	return func(v *Viewer) {
		v.metrics = m
	}
}

// New creates a new Viewer with the given options.
func New(opts ...Option) *Viewer {
	v := &Viewer{
		interval: time.Second,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetStateProvider sets the source of ViewState.
func (v *Viewer) SetStateProvider(p StateProvider) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.provider = p
}

// AddTarget adds an output target.
func (v *Viewer) AddTarget(t Target) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.targets = append(v.targets, t)
}

// RemoveTarget removes a target by reference.
func (v *Viewer) RemoveTarget(t Target) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, target := range v.targets {
		if target == t {
			v.targets = append(v.targets[:i], v.targets[i+1:]...)
			return
		}
	}
}

// Targets returns the current targets.
func (v *Viewer) Targets() []Target {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]Target(nil), v.targets...)
}

// Start pushes once and then begins periodic updates.
func (v *Viewer) Start(ctx context.Context) error {
	v.mu.Lock()
	if v.cancel != nil {
		v.mu.Unlock()
		return fmt.Errorf("viewer already started")
	}
	ctx, v.cancel = context.WithCancel(ctx)
	v.done = make(chan struct{})
	done := v.done
	v.mu.Unlock()

	if err := v.Update(ctx); err != nil {
		v.logger.Warn("initial update failed", zap.Error(err))
	}

	go v.run(ctx, done)
	return nil
}

func (v *Viewer) run(ctx context.Context, done chan struct{}) {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := v.Update(ctx); err != nil {
				v.logger.Warn("update failed", zap.Error(err))
			}
		}
	}
}

// Stop stops periodic updates and waits for the update goroutine to exit.
func (v *Viewer) Stop() {
	v.mu.Lock()
	done := v.done
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.done = nil
	v.mu.Unlock()

	if done != nil {
		<-done
	}
}

// Update pushes the current state to all targets. It returns the last target
// error, after every target has been tried.
func (v *Viewer) Update(ctx context.Context) error {
	v.mu.RLock()
	provider := v.provider
	targets := make([]Target, len(v.targets))
	copy(targets, v.targets)
	v.mu.RUnlock()

	if provider == nil {
		return fmt.Errorf("no state provider set")
	}

	state, err := provider.GetViewState()
	if err != nil {
		return fmt.Errorf("failed to get view state: %w", err)
	}

	var lastErr error
	for _, target := range targets {
		outcome := "ok"
		if err := target.Update(ctx, state); err != nil {
			outcome = "error"
			lastErr = fmt.Errorf("target %s: %w", target.Name(), err)
		}
		if v.metrics != nil {
			v.metrics.TargetUpdates.WithLabelValues(target.Name(), outcome).Inc()
		}
	}
	return lastErr
}

// Close stops the viewer and closes all targets.
func (v *Viewer) Close() error {
	v.Stop()

	v.mu.Lock()
	targets := v.targets
	v.targets = nil
	v.mu.Unlock()

	var lastErr error
	for _, target := range targets {
		if err := target.Close(); err != nil {
			lastErr = fmt.Errorf("close %s: %w", target.Name(), err)
		}
	}
	return lastErr
}
