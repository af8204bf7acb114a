package observability

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/KhazixW2/MaaMCP/internal/ports"
)

// Obs backs the Observability port with slog for structured logging and
// Prometheus for metrics. Metric names are fixed at construction; unknown
// names are silently ignored so callers never have to check registration.
type Obs struct {
	logger   *slog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// New registers the pipeline metric set on reg and returns the adapter.
// Pass prometheus.DefaultRegisterer outside of tests.
func New(logger *slog.Logger, reg prometheus.Registerer) *Obs {
	frames := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maa_frames_captured_total",
		Help: "Frames successfully captured by the pipeline worker.",
	})
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maa_messages_published_total",
		Help: "Messages accepted into the bounded message queue.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maa_queue_dropped_total",
		Help: "Messages shed because the queue was at capacity.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "maa_iteration_failures_total",
		Help: "Worker iterations that failed and were skipped.",
	})
	queueLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "maa_queue_length",
		Help: "Current number of messages buffered in the queue.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "maa_capture_latency_seconds",
		Help:    "Latency of one capture/recognize call.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	reg.MustRegister(frames, published, dropped, failures, queueLen, latency)

	if logger == nil {
		logger = slog.Default()
	}

	return &Obs{
		logger: logger,
		counters: map[string]prometheus.Counter{
			"maa_frames_captured_total":    frames,
			"maa_messages_published_total": published,
			"maa_queue_dropped_total":      dropped,
			"maa_iteration_failures_total": failures,
		},
		gauges: map[string]prometheus.Gauge{
			"maa_queue_length": queueLen,
		},
		histos: map[string]prometheus.Observer{
			"maa_capture_latency_seconds": latency,
		},
	}
}

func (o *Obs) LogDebug(msg string, fields ...ports.Field) {
	o.logger.Debug(msg, attrs(fields)...)
}

func (o *Obs) LogInfo(msg string, fields ...ports.Field) {
	o.logger.Info(msg, attrs(fields)...)
}

func (o *Obs) LogWarn(msg string, fields ...ports.Field) {
	o.logger.Warn(msg, attrs(fields)...)
}

func (o *Obs) LogError(msg string, err error, fields ...ports.Field) {
	args := attrs(fields)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
	}
	o.logger.Error(msg, args...)
}

func (o *Obs) IncCounter(name string, v float64) {
	if c, ok := o.counters[name]; ok {
		c.Add(v)
	}
}

func (o *Obs) ObserveLatency(name string, seconds float64) {
	if h, ok := o.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (o *Obs) SetGauge(name string, v float64) {
	if g, ok := o.gauges[name]; ok {
		g.Set(v)
	}
}

func attrs(fields []ports.Field) []any {
	if len(fields) == 0 {
		return nil
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return args
}

var _ ports.Observability = (*Obs)(nil)
