package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KhazixW2/MaaMCP/internal/domain"
)

type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	ADB      ADBConfig      `yaml:"adb"`
	Frames   FramesConfig   `yaml:"frames"`
	Reply    ReplyConfig    `yaml:"reply"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type PipelineConfig struct {
	Mode          string   `yaml:"mode"`
	FPS           float64  `yaml:"fps"`
	QueueCapacity int      `yaml:"queue_capacity"`
	Dedup         *bool    `yaml:"dedup"`
	NoiseFilter   []string `yaml:"noise_filter"`
}

type ADBConfig struct {
	Bin string `yaml:"bin"`
}

type FramesConfig struct {
	Dir      string `yaml:"dir"`
	KeepLast int    `yaml:"keep_last"`
}

// ReplyConfig holds the screen coordinates send_reply taps: the text input
// field and the send button of the target app.
type ReplyConfig struct {
	InputX int `yaml:"input_x"`
	InputY int `yaml:"input_y"`
	SendX  int `yaml:"send_x"`
	SendY  int `yaml:"send_y"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a ready-to-run configuration without reading any file.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

func (c *Config) ApplyDefaults() {
	if c.Pipeline.Mode == "" {
		c.Pipeline.Mode = string(domain.ModeScreenshot)
	}
	if c.Pipeline.FPS == 0 {
		c.Pipeline.FPS = 2.0
	}
	if c.Pipeline.QueueCapacity == 0 {
		c.Pipeline.QueueCapacity = 100
	}
	if c.Pipeline.Dedup == nil {
		enabled := true
		c.Pipeline.Dedup = &enabled
	}
	if c.ADB.Bin == "" {
		c.ADB.Bin = "adb"
	}
	if c.Frames.Dir == "" {
		c.Frames.Dir = defaultFramesDir()
	}
	if c.Frames.KeepLast == 0 {
		c.Frames.KeepLast = 200
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9180"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) Validate() error {
	switch domain.Mode(c.Pipeline.Mode) {
	case domain.ModeScreenshot, domain.ModeText:
	default:
		return fmt.Errorf("pipeline.mode must be %q or %q, got %q",
			domain.ModeScreenshot, domain.ModeText, c.Pipeline.Mode)
	}
	if c.Pipeline.FPS <= 0 {
		return fmt.Errorf("pipeline.fps must be positive, got %v", c.Pipeline.FPS)
	}
	if c.Pipeline.QueueCapacity <= 0 {
		return fmt.Errorf("pipeline.queue_capacity must be positive, got %d", c.Pipeline.QueueCapacity)
	}
	if c.Frames.Dir == "" {
		return fmt.Errorf("frames.dir is required")
	}
	return nil
}

// DedupEnabled unwraps the optional dedup flag after defaults are applied.
func (c *Config) DedupEnabled() bool {
	return c.Pipeline.Dedup == nil || *c.Pipeline.Dedup
}

func defaultFramesDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "./data/frames"
	}
	return dir + "/maa-mcp/frames"
}
