package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/KhazixW2/MaaMCP/internal/domain"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

// iterationBackoff is the pause after a failed iteration before retrying.
const iterationBackoff = time.Second

// Worker owns the sampling loop of one run: capture, filter, enqueue, stats,
// sleep-to-cadence. It is the sole producer into the queue and the sole
// writer of the snapshot. Cancellation is cooperative, checked once per
// iteration and during sleeps.
type Worker struct {
	controllerID string
	cfg          Config
	state        *State
	capture      ports.CaptureProvider
	recognizer   ports.TextRecognizer
	obs          ports.Observability
}

func NewWorker(controllerID string, cfg Config, state *State, capture ports.CaptureProvider, recognizer ports.TextRecognizer, obs ports.Observability) *Worker {
	if obs == nil {
		obs = nopObs{}
	}
	return &Worker{
		controllerID: controllerID,
		cfg:          cfg,
		state:        state,
		capture:      capture,
		recognizer:   recognizer,
		obs:          obs,
	}
}

// Run executes the loop until ctx is cancelled. Iteration failures are never
// fatal: they are logged, counted, and retried after a fixed backoff. The
// cadence is measured iteration-start to iteration-start, so slow captures
// shrink the sleep but never invert it.
func (w *Worker) Run(ctx context.Context) {
	interval := w.cfg.Interval()
	w.obs.LogInfo("pipeline_worker_started",
		ports.Field{Key: "controller_id", Value: w.controllerID},
		ports.Field{Key: "mode", Value: string(w.cfg.Mode)},
		ports.Field{Key: "interval", Value: interval.String()},
	)

	for {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()

		skipped, err := w.iterate(ctx)

		var sleep time.Duration
		switch {
		case err != nil && ctx.Err() != nil:
			// cancellation mid-capture surfaces as an error; the loop
			// condition handles the exit
		case err != nil:
			w.obs.IncCounter("maa_iteration_failures_total", 1)
			w.obs.LogError("pipeline_iteration_failed", err,
				ports.Field{Key: "controller_id", Value: w.controllerID})
			sleep = iterationBackoff
		case skipped:
			w.obs.LogDebug("frame_skipped", ports.Field{Key: "controller_id", Value: w.controllerID})
			sleep = interval
		default:
			sleep = interval - time.Since(start)
			if sleep < 0 {
				sleep = 0
			}
		}

		if !sleepCtx(ctx, sleep) {
			break
		}
	}

	w.obs.LogInfo("pipeline_worker_stopped", ports.Field{Key: "controller_id", Value: w.controllerID})
}

// iterate performs one cycle. skipped means no frame was available; the
// caller sleeps a full interval and retries without counting a frame.
// Panics inside a cycle are contained here so a misbehaving provider can
// never kill the loop.
func (w *Worker) iterate(ctx context.Context) (skipped bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("iteration panic: %v", r)
		}
	}()

	if w.cfg.Mode == domain.ModeText {
		return w.iterateText(ctx)
	}
	return w.iterateScreenshot(ctx)
}

func (w *Worker) iterateScreenshot(ctx context.Context) (bool, error) {
	start := time.Now()
	path, err := w.capture.Capture(ctx, w.controllerID)
	if err != nil {
		return false, fmt.Errorf("capture: %w", err)
	}
	w.obs.ObserveLatency("maa_capture_latency_seconds", time.Since(start).Seconds())
	if path == "" {
		return true, nil
	}

	now := time.Now().UnixMilli()
	frameID := w.state.NextFrame(now)
	w.obs.IncCounter("maa_frames_captured_total", 1)

	w.publish(domain.NewScreenshotMessage(path, now, frameID))
	w.state.SetSnapshot(domain.Snapshot{ImagePath: path, CapturedAt: now})
	w.obs.SetGauge("maa_queue_length", float64(w.state.Queue().Len()))
	return false, nil
}

func (w *Worker) iterateText(ctx context.Context) (bool, error) {
	start := time.Now()
	regions, err := w.recognizer.Recognize(ctx, w.controllerID)
	if err != nil {
		return false, fmt.Errorf("recognize: %w", err)
	}
	w.obs.ObserveLatency("maa_capture_latency_seconds", time.Since(start).Seconds())

	texts := make([]string, 0, len(regions))
	for _, r := range regions {
		texts = append(texts, r.Text)
	}

	var prev []string
	if snap, ok := w.state.Snapshot(); ok {
		prev = snap.Texts
	}
	fresh := Filter(texts, prev, w.cfg.NoiseFilter, w.cfg.DedupEnabled)

	now := time.Now().UnixMilli()
	frameID := w.state.NextFrame(now)
	w.state.IncAnalysis()
	w.obs.IncCounter("maa_frames_captured_total", 1)

	// Deliver the first region per surviving text, in discovery order.
	pending := make(map[string]struct{}, len(fresh))
	for _, t := range fresh {
		pending[t] = struct{}{}
	}
	for _, r := range regions {
		if _, ok := pending[r.Text]; !ok {
			continue
		}
		delete(pending, r.Text)
		w.publish(domain.TextMessage{
			Text:      r.Text,
			X:         r.X,
			Y:         r.Y,
			Score:     r.Score,
			Timestamp: now,
			FrameID:   frameID,
		})
	}

	// The snapshot advances every successful cycle, novel items or not, so
	// the next diff runs against the screen as it is now.
	w.state.SetSnapshot(domain.Snapshot{Texts: texts, CapturedAt: now})
	w.obs.SetGauge("maa_queue_length", float64(w.state.Queue().Len()))
	return false, nil
}

// publish enqueues one message, shedding it when the queue is full. The
// producer never blocks; overflow is a logged warning, not a fault.
func (w *Worker) publish(m domain.Message) {
	if !w.state.Queue().Enqueue(m) {
		w.obs.IncCounter("maa_queue_dropped_total", 1)
		w.obs.LogWarn("queue_full_drop", ports.Field{Key: "frame_id", Value: m.Frame()})
		return
	}
	w.state.AddNewMessages(1)
	w.obs.IncCounter("maa_messages_published_total", 1)
	w.obs.LogDebug("message_published", ports.Field{Key: "frame_id", Value: m.Frame()})
}

// sleepCtx waits d or until cancellation; false means the context ended.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

type nopObs struct{}

func (nopObs) LogDebug(string, ...ports.Field)        {}
func (nopObs) LogInfo(string, ...ports.Field)         {}
func (nopObs) LogWarn(string, ...ports.Field)         {}
func (nopObs) LogError(string, error, ...ports.Field) {}
func (nopObs) IncCounter(string, float64)             {}
func (nopObs) ObserveLatency(string, float64)         {}
func (nopObs) SetGauge(string, float64)               {}
