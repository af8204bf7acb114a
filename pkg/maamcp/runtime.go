// Package maamcp wires the MaaMCP adapters into a runnable MCP server and
// exposes lifecycle hooks for embedding it inside any Go process.
package maamcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KhazixW2/MaaMCP/internal/adapters/adb"
	"github.com/KhazixW2/MaaMCP/internal/adapters/framestore"
	"github.com/KhazixW2/MaaMCP/internal/adapters/observability"
	"github.com/KhazixW2/MaaMCP/internal/adapters/queue"
	"github.com/KhazixW2/MaaMCP/internal/app/config"
	"github.com/KhazixW2/MaaMCP/internal/app/pipeline"
	"github.com/KhazixW2/MaaMCP/internal/domain"
	"github.com/KhazixW2/MaaMCP/internal/mcpserver"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

// Version is stamped into the MCP server handshake.
const Version = "0.3.0"

// Option customizes the dependencies used by Runtime.
type Option func(*overrides)

type overrides struct {
	capture       ports.CaptureProvider
	recognizer    ports.TextRecognizer
	actuator      ports.Actuator
	registry      ports.ControllerRegistry
	queue         ports.MessageQueue
	observability ports.Observability
	devices       mcpserver.DeviceLister
}

// WithCaptureProvider replaces the ADB screencap provider (simulators, tests).
func WithCaptureProvider(c ports.CaptureProvider) Option {
	return func(o *overrides) { o.capture = c }
}

// WithTextRecognizer replaces the uiautomator-backed recognizer, e.g. with a
// real OCR engine.
func WithTextRecognizer(r ports.TextRecognizer) Option {
	return func(o *overrides) { o.recognizer = r }
}

// WithActuator replaces the ADB input primitives.
func WithActuator(a ports.Actuator) Option {
	return func(o *overrides) { o.actuator = a }
}

// WithControllerRegistry replaces the in-memory controller registry.
func WithControllerRegistry(r ports.ControllerRegistry) Option {
	return func(o *overrides) { o.registry = r }
}

// WithMessageQueue swaps the bounded in-memory queue implementation.
func WithMessageQueue(q ports.MessageQueue) Option {
	return func(o *overrides) { o.queue = q }
}

// WithObservability plugs in a custom logging/metrics backend.
func WithObservability(obs ports.Observability) Option {
	return func(o *overrides) { o.observability = obs }
}

// WithDeviceLister replaces ADB device discovery.
func WithDeviceLister(d mcpserver.DeviceLister) Option {
	return func(o *overrides) { o.devices = d }
}

// Runtime owns the supervisor, the MCP server, the metrics endpoint, and the
// frame store for one process.
type Runtime struct {
	cfg        *config.Config
	obs        ports.Observability
	sup        *pipeline.Supervisor
	srv        *mcpserver.Server
	frames     *framestore.Store
	metricsSrv *http.Server
	logCloser  io.Closer
}

// NewRuntime bootstraps the default adapters (ADB client, frame store,
// in-memory queue, Prometheus observability) and registers the MCP tools.
// Options override any dependency.
func NewRuntime(cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var o overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	var logCloser io.Closer
	obs := o.observability
	if obs == nil {
		logger, closer, err := observability.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		obs = observability.New(logger, prometheus.DefaultRegisterer)
		logCloser = closer
	}

	frames, err := framestore.New(cfg.Frames.Dir, cfg.Frames.KeepLast)
	if err != nil {
		return nil, err
	}

	registry := o.registry
	if registry == nil {
		registry = adb.NewRegistry()
	}
	connector, ok := registry.(mcpserver.ControllerConnector)
	if !ok {
		return nil, fmt.Errorf("controller registry must implement Connect for the MCP connect tool")
	}

	client := adb.NewClient(cfg.ADB.Bin, registry, frames)

	capture := o.capture
	if capture == nil {
		capture = client
	}
	recognizer := o.recognizer
	if recognizer == nil {
		recognizer = client
	}
	actuator := o.actuator
	if actuator == nil {
		actuator = client
	}
	devices := o.devices
	if devices == nil {
		devices = client
	}

	q := o.queue
	if q == nil {
		q = queue.NewMemQueue(cfg.Pipeline.QueueCapacity)
	}

	coreCfg := pipeline.Config{
		Mode:          domain.Mode(cfg.Pipeline.Mode),
		SampleRateHz:  cfg.Pipeline.FPS,
		QueueCapacity: cfg.Pipeline.QueueCapacity,
		DedupEnabled:  cfg.DedupEnabled(),
		NoiseFilter:   cfg.Pipeline.NoiseFilter,
	}
	if err := coreCfg.Validate(); err != nil {
		return nil, err
	}

	state := pipeline.NewState(q)
	sup := pipeline.NewSupervisor(coreCfg, pipeline.Deps{
		State:      state,
		Registry:   registry,
		Capture:    capture,
		Recognizer: recognizer,
		Actuator:   actuator,
		Obs:        obs,
		Reply: pipeline.ReplyTarget{
			InputX: cfg.Reply.InputX,
			InputY: cfg.Reply.InputY,
			SendX:  cfg.Reply.SendX,
			SendY:  cfg.Reply.SendY,
		},
	})

	srv := mcpserver.New(Version, mcpserver.Deps{
		Supervisor: sup,
		Registry:   connector,
		Devices:    devices,
		Capture:    capture,
		Recognizer: recognizer,
		Actuator:   actuator,
		Obs:        obs,
	})

	return &Runtime{
		cfg:       cfg,
		obs:       obs,
		sup:       sup,
		srv:       srv,
		frames:    frames,
		logCloser: logCloser,
	}, nil
}

// Supervisor exposes the pipeline control surface for embedding without MCP.
func (r *Runtime) Supervisor() *pipeline.Supervisor { return r.sup }

// Run serves MCP on stdin/stdout and the metrics endpoint until ctx is
// cancelled or stdin closes, then shuts down gracefully.
func (r *Runtime) Run(ctx context.Context) error {
	r.startMetrics()

	serveErr := make(chan error, 1)
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		serveErr <- r.srv.Listen(serveCtx, os.Stdin, os.Stdout)
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		if errors.Is(err, context.Canceled) {
			err = nil
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return errors.Join(err, r.Shutdown(shutdownCtx))
}

// Shutdown stops the pipeline, the metrics server, and removes the session's
// frame files.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if err := r.sup.Stop(); err != nil {
		errs = append(errs, err)
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		r.metricsSrv = nil
	}

	if err := r.frames.CleanupAll(); err != nil {
		errs = append(errs, err)
	}

	if r.logCloser != nil {
		if err := r.logCloser.Close(); err != nil {
			errs = append(errs, err)
		}
		r.logCloser = nil
	}

	return errors.Join(errs...)
}

func (r *Runtime) startMetrics() {
	if r.cfg.Metrics.Addr == "" || r.cfg.Metrics.Addr == "off" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{Addr: r.cfg.Metrics.Addr, Handler: mux}
	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("metrics_server_failed", err)
		}
	}()
}

// LoadConfig loads and validates YAML configuration from disk.
func LoadConfig(path string) (*config.Config, error) {
	return config.Load(path)
}

// DefaultConfig returns a ready-to-run configuration.
func DefaultConfig() *config.Config {
	return config.Default()
}
