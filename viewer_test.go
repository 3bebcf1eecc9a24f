package clusterview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type recordingTarget struct {
	name string
	err  error

	mu      sync.Mutex
	updates []*ViewState
	closed  bool
}

func (r *recordingTarget) Update(ctx context.Context, state *ViewState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, state)
	return r.err
}

func (r *recordingTarget) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingTarget) Name() string { return r.name }

func (r *recordingTarget) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.updates)
}

func staticProvider(s *ViewState) StateProvider {
	return NewCallbackStateProvider(func() (*ViewState, error) { return s, nil })
}

func TestViewerUpdate(t *testing.T) {
	state := &ViewState{Summary: SummaryView{Machines: 2}}
	ok := &recordingTarget{name: "ok"}
	bad := &recordingTarget{name: "bad", err: errors.New("unreachable")}
	m := NewMetrics()

	v := New(WithViewerMetrics(m))
	if err := v.Update(context.Background()); err == nil {
		t.Fatalf("Update without provider succeeded")
	}

	v.SetStateProvider(staticProvider(state))
	v.AddTarget(bad)
	v.AddTarget(ok)
	err := v.Update(context.Background())
	if !errors.Is(err, bad.err) {
		t.Fatalf("Update = %v, want the failing target's error", err)
	}
	if ok.count() != 1 || ok.updates[0] != state {
		t.Fatalf("healthy target was skipped")
	}
	if got := testutil.ToFloat64(m.TargetUpdates.WithLabelValues("bad", "error")); got != 1 {
		t.Fatalf("error count = %v", got)
	}

	v.RemoveTarget(bad)
	if got := len(v.Targets()); got != 1 {
		t.Fatalf("targets = %d after remove", got)
	}
}

func TestViewerStartStop(t *testing.T) {
	target := &recordingTarget{name: "rec"}
	v := New(WithInterval(5 * time.Millisecond))
	v.SetStateProvider(staticProvider(&ViewState{}))
	v.AddTarget(target)

	v.Stop()
	if err := v.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := v.Start(context.Background()); err == nil {
		t.Fatalf("second Start succeeded")
	}

	deadline := time.Now().Add(2 * time.Second)
	for target.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if target.count() < 3 {
		t.Fatalf("updates = %d, want periodic updates", target.count())
	}

	if err := v.Close(); err != nil {
		t.Fatal(err)
	}
	n := target.count()
	time.Sleep(20 * time.Millisecond)
	if target.count() != n || !target.closed {
		t.Fatalf("viewer kept updating after Close, or target not closed")
	}
}

func TestViewerDrivesView(t *testing.T) {
	view, _ := mountDemo(t, 2)
	target := &recordingTarget{name: "rec"}
	v := New()
	v.SetStateProvider(view)
	v.AddTarget(target)

	if err := v.Update(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := target.updates[0].Summary.Machines; got != 2 {
		t.Fatalf("machines = %d", got)
	}
}
