package clusterview

import (
	"testing"

	"github.com/nimsforest/clusterview/layout"
)

func TestSpritesAdapter(t *testing.T) {
	snap := demoSnapshot(t, 4)
	a := NewSpritesStateAdapter(stateFromLayout(snap, layout.Compute(snap)))

	lands := a.Lands()
	if len(lands) != 4 {
		t.Fatalf("lands = %d", len(lands))
	}
	if lands[0].Type != "mana" || lands[1].Type != "normal" {
		t.Fatalf("land types = %q, %q", lands[0].Type, lands[1].Type)
	}

	procs := a.Processes()
	if len(procs) != 1+2+3+4 {
		t.Fatalf("processes = %d", len(procs))
	}
	want := map[string]string{
		"default/node-d-pod-0": "tree",
		"default/node-d-pod-1": "treehouse",
		"default/node-d-pod-2": "nim",
	}
	for _, p := range procs {
		if kind, ok := want[p.ID]; ok && p.Type != kind {
			t.Errorf("%s type = %q, want %q", p.ID, p.Type, kind)
		}
		if p.ID == "default/node-d-pod-0" && (p.LandID != "node-d" || p.X != 3) {
			t.Errorf("%s placed on %s at %v", p.ID, p.LandID, p.X)
		}
	}

	if NewSpritesStateAdapter(nil).Lands() != nil {
		t.Fatalf("nil state produced lands")
	}
}
