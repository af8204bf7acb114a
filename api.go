package maamcp

import (
	"github.com/KhazixW2/MaaMCP/internal/app/config"
	base "github.com/KhazixW2/MaaMCP/pkg/maamcp"
)

// Type aliases so consumers can import github.com/KhazixW2/MaaMCP directly.
type (
	Runtime = base.Runtime
	Option  = base.Option
	Config  = config.Config

	Message           = base.Message
	ScreenshotMessage = base.ScreenshotMessage
	TextMessage       = base.TextMessage
	TextRegion        = base.TextRegion
	Status            = base.Status
	Mode              = base.Mode
	Supervisor        = base.Supervisor
	Controller        = base.Controller
	ControllerKind    = base.ControllerKind
	Registry          = base.Registry
	Device            = base.Device
)

// Mode and controller-kind constants.
const (
	ModeScreenshot = base.ModeScreenshot
	ModeText       = base.ModeText
	ControllerADB  = base.ControllerADB
)

// NewRegistry returns an empty controller registry.
func NewRegistry() *Registry {
	return base.NewRegistry()
}

// Version stamped into the MCP server handshake.
const Version = base.Version

// LoadConfig loads and validates YAML configuration from disk.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

// DefaultConfig returns a ready-to-run configuration.
func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// NewRuntime bootstraps a runtime; see pkg/maamcp for the option set.
func NewRuntime(cfg *Config, opts ...Option) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

// Dependency overrides.
var (
	WithCaptureProvider    = base.WithCaptureProvider
	WithTextRecognizer     = base.WithTextRecognizer
	WithActuator           = base.WithActuator
	WithControllerRegistry = base.WithControllerRegistry
	WithMessageQueue       = base.WithMessageQueue
	WithObservability      = base.WithObservability
	WithDeviceLister       = base.WithDeviceLister
)
