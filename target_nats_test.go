package clusterview

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestNATSTargetPublishesChanges(t *testing.T) {
	pub := &fakePublisher{}
	target, err := NewNATSTarget(pub, "clusterview.selection")
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	target.now = func() time.Time { return at }
	ctx := context.Background()

	states := []SelectionView{
		{},
		{},
		{Machine: "node-a"},
		{Machine: "node-a"},
		{Workload: "default/web"},
	}
	for _, sel := range states {
		if err := target.Update(ctx, &ViewState{Selection: sel}); err != nil {
			t.Fatalf("Update(%+v): %v", sel, err)
		}
	}
	if len(pub.payloads) != 3 {
		t.Fatalf("published %d events, want 3", len(pub.payloads))
	}
	if pub.subjects[0] != "clusterview.selection" {
		t.Fatalf("subject = %q", pub.subjects[0])
	}

	var ev SelectionEvent
	if err := json.Unmarshal(pub.payloads[1], &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Selection.Machine != "node-a" || !ev.At.Equal(at) {
		t.Fatalf("event = %+v", ev)
	}
}

func TestNATSTargetRetriesAfterFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("no responders")}
	target, err := NewNATSTarget(pub, "s")
	if err != nil {
		t.Fatal(err)
	}
	state := &ViewState{Selection: SelectionView{Machine: "node-a"}}
	if err := target.Update(context.Background(), state); err == nil {
		t.Fatalf("publish error not returned")
	}
	pub.err = nil
	if err := target.Update(context.Background(), state); err != nil {
		t.Fatal(err)
	}
	if len(pub.payloads) != 1 {
		t.Fatalf("unchanged selection was not retried after a failure")
	}
}

func TestNewNATSTargetValidates(t *testing.T) {
	if _, err := NewNATSTarget(nil, "s"); err == nil {
		t.Errorf("nil publisher accepted")
	}
	if _, err := NewNATSTarget(&fakePublisher{}, ""); err == nil {
		t.Errorf("empty subject accepted")
	}
	target, _ := NewNATSTarget(&fakePublisher{}, "s")
	if err := target.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
