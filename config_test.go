package clusterview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nimsforest/clusterview/topology"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clusterview.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  kind: file
  path: cluster.yaml
interval: 2s
web:
  enabled: true
  addr: ":9090"
nats:
  enabled: true
video:
  duration: 30s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Kind != SourceFile || cfg.Source.Path != "cluster.yaml" {
		t.Fatalf("source = %+v", cfg.Source)
	}
	if cfg.Interval != 2*time.Second || cfg.Video.Duration != 30*time.Second {
		t.Fatalf("durations = %v, %v", cfg.Interval, cfg.Video.Duration)
	}
	if !cfg.Web.Enabled || cfg.Web.Addr != ":9090" {
		t.Fatalf("web = %+v", cfg.Web)
	}
	if cfg.NATS.Subject != "clusterview.selection" || cfg.Window.Width != 1280 {
		t.Fatalf("defaults lost: nats=%+v window=%+v", cfg.NATS, cfg.Window)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown kind", "source:\n  kind: ldap\n", "unknown source kind"},
		{"file without path", "source:\n  kind: file\n", "source.path"},
		{"bad window", "window:\n  width: 0\n", "window size"},
		{"nats without subject", "nats:\n  enabled: true\n  subject: \"\"\n", "nats.url"},
		{"malformed", "source: [\n", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("Load of a missing file succeeded")
	}
}

func TestSourceOpen(t *testing.T) {
	src, err := SourceConfig{Kind: SourceDemo, DemoMachines: 2}.Open()
	if err != nil {
		t.Fatal(err)
	}
	if s, ok := src.(*topology.StaticSource); !ok || len(s.Nodes) != 2 {
		t.Fatalf("demo source = %#v", src)
	}
	if src, err := (SourceConfig{Kind: SourceFile, Path: "x.yaml"}).Open(); err != nil {
		t.Fatal(err)
	} else if _, ok := src.(*topology.FileSource); !ok {
		t.Fatalf("file source = %T", src)
	}
	if _, err := (SourceConfig{Kind: "nope"}).Open(); err == nil {
		t.Fatalf("unknown kind opened")
	}
}
