package clusterview

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nimsforest/clusterview/topology"
)

// Source kinds.
const (
	SourceDemo = "demo"
	SourceFile = "file"
	SourceKube = "kube"
)

// Config is the clusterview configuration file.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Window   WindowConfig   `yaml:"window"`
	Headless HeadlessConfig `yaml:"headless"`
	Interval time.Duration  `yaml:"interval"`
	Web      WebConfig      `yaml:"web"`
	NATS     NATSConfig     `yaml:"nats"`
	TV       TVConfig       `yaml:"tv"`
	Video    VideoConfig    `yaml:"video"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SourceConfig selects where the topology comes from.
type SourceConfig struct {
	Kind         string `yaml:"kind"` // demo, file or kube
	Path         string `yaml:"path"`
	Kubeconfig   string `yaml:"kubeconfig"`
	Context      string `yaml:"context"`
	DemoMachines int    `yaml:"demo_machines"`
}

// WindowConfig sizes the desktop window, which is also the fixed-size
// container the view renders into.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	TPS    int    `yaml:"tps"`
}

// HeadlessConfig drives the view without a window.
type HeadlessConfig struct {
	Hz     int    `yaml:"hz"`
	Ticks  uint64 `yaml:"ticks"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// WebConfig configures the HTTP target.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Dir     string `yaml:"dir"`
}

// NATSConfig configures selection event publishing.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// TVConfig configures the still-image Smart TV target.
type TVConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Discover time.Duration `yaml:"discover"`
	JFIF     bool          `yaml:"jfif"`
}

// VideoConfig configures the Smart TV video stream.
type VideoConfig struct {
	Enabled  bool          `yaml:"enabled"`
	FPS      int           `yaml:"fps"`
	Duration time.Duration `yaml:"duration"`
	Port     int           `yaml:"port"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source:   SourceConfig{Kind: SourceDemo, DemoMachines: 4},
		Window:   WindowConfig{Title: "clusterview", Width: 1280, Height: 720, TPS: 60},
		Headless: HeadlessConfig{Hz: 30, Width: 1280, Height: 720},
		Interval: time.Second,
		Web:      WebConfig{Addr: ":8080"},
		NATS:     NATSConfig{URL: "nats://127.0.0.1:4222", Subject: "clusterview.selection"},
		TV:       TVConfig{Discover: 5 * time.Second, JFIF: true},
		Video:    VideoConfig{FPS: 10, Duration: 60 * time.Second, Port: 8889},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML configuration file on top of Default.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", filename, err)
	}
	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceDemo:
		if c.Source.DemoMachines < 0 {
			return errors.New("source.demo_machines must not be negative")
		}
	case SourceFile:
		if c.Source.Path == "" {
			return errors.New("source.path is required for a file source")
		}
	case SourceKube:
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d is invalid", c.Window.Width, c.Window.Height)
	}
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if c.Web.Enabled && c.Web.Addr == "" {
		return errors.New("web.addr is required when web is enabled")
	}
	if c.NATS.Enabled && (c.NATS.URL == "" || c.NATS.Subject == "") {
		return errors.New("nats.url and nats.subject are required when nats is enabled")
	}
	if c.Video.Enabled && c.Video.FPS <= 0 {
		return errors.New("video.fps must be positive")
	}
	return nil
}

// Open returns the topology source the configuration selects.
func (c SourceConfig) Open() (topology.Source, error) {
	switch c.Kind {
	case SourceDemo, "":
		n := c.DemoMachines
		if n == 0 {
			n = 4
		}
		return topology.DemoSource(n), nil
	case SourceFile:
		return topology.NewFileSource(c.Path), nil
	case SourceKube:
		src, err := topology.NewKubeSource(c.Kubeconfig, c.Context)
		if err != nil {
			return nil, fmt.Errorf("open kube source: %w", err)
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", c.Kind)
	}
}
