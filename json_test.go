package clusterview

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nimsforest/clusterview/pick"
	"github.com/nimsforest/clusterview/topology"
)

func demoSnapshot(t *testing.T, machines int) *topology.Snapshot {
	t.Helper()
	snap, err := topology.Load(context.Background(), topology.DemoSource(machines))
	if err != nil {
		t.Fatal(err)
	}
	return snap
}

func TestDetailMachine(t *testing.T) {
	snap := demoSnapshot(t, 1)
	d := Detail(pick.Selection{Machine: snap.Machine("node-a")}, time.Now())
	if d.Workload != nil || d.Machine == nil {
		t.Fatalf("detail = %+v", d)
	}

	tests := []struct {
		field, got, want string
	}{
		{"role", d.Machine.Role, "control-plane"},
		{"age", d.Machine.Age, topology.NotAvailable},
		{"memory", d.Machine.Memory, "32 GiB"},
		{"storage", d.Machine.Storage, "100 GiB"},
		{"allocatable", d.Machine.Allocatable, "7800m CPU, 30 GiB"},
		{"internal ip", d.Machine.Addresses["InternalIP"], "10.0.0.10"},
		{"runtime", d.Machine.Runtime, "containerd://1.7.22"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
	if len(d.Machine.Conditions) != 1 || d.Machine.Conditions[0] != "Ready=True" {
		t.Errorf("conditions = %v", d.Machine.Conditions)
	}
}

func TestDetailWorkload(t *testing.T) {
	snap := demoSnapshot(t, 1)
	w := snap.Workload("default", "node-a-pod-0")
	w.Restarts = 1234
	now := w.StartTime.Add(2 * time.Hour)

	d := Detail(pick.Selection{Workload: w}, now)
	if d.Machine != nil || d.Workload == nil {
		t.Fatalf("detail = %+v", d)
	}
	wd := d.Workload
	if wd.Started != "2 hours ago" {
		t.Errorf("started = %q", wd.Started)
	}
	if wd.Restarts != "1,234" {
		t.Errorf("restarts = %q", wd.Restarts)
	}
	if wd.Machine != "node-a" || wd.Status != "Running" {
		t.Errorf("machine/status = %q/%q", wd.Machine, wd.Status)
	}
	if len(wd.Containers) != 1 {
		t.Fatalf("containers = %+v", wd.Containers)
	}
	c := wd.Containers[0]
	if c.CPU != "100m / N/A" || c.Memory != "N/A / N/A" {
		t.Errorf("container resources = %q, %q", c.CPU, c.Memory)
	}
}

func TestDetailEmptySelection(t *testing.T) {
	data, err := json.Marshal(Detail(pick.Selection{}, time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{}" {
		t.Fatalf("empty detail = %s", data)
	}
}

func TestViewStateToJSON(t *testing.T) {
	if got := ViewStateToJSON(nil); got.Machines == nil || len(got.Machines) != 0 {
		t.Fatalf("nil state = %+v", got)
	}

	v, _ := mountDemo(t, 2)
	state, err := v.GetViewState()
	if err != nil {
		t.Fatal(err)
	}
	data, err := ViewStateToJSONBytes(state)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"name":"node-a"`, `"key":"default/node-b-pod-1"`, `"machines":2`, `"camera":{`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON lacks %s: %s", want, data)
		}
	}

	var back ViewModelJSON
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back.Machines) != 2 || len(back.Machines[1].Workloads) != 2 {
		t.Fatalf("round trip = %+v", back)
	}
}

func TestBytesOf(t *testing.T) {
	tests := []struct{ in, want string }{
		{"32Gi", "32 GiB"},
		{"512Mi", "512 MiB"},
		{"-1Gi", "-1Gi"},
		{"lots", "lots"},
	}
	for _, tt := range tests {
		if got := bytesOf(tt.in); got != tt.want {
			t.Errorf("bytesOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
