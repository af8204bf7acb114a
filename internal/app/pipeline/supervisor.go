package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KhazixW2/MaaMCP/internal/domain"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

var (
	// ErrAlreadyRunning rejects a second Start while a run is live.
	ErrAlreadyRunning = errors.New("pipeline is already running")
	// ErrUnknownController rejects a Start for an unresolvable controller.
	ErrUnknownController = errors.New("unknown controller")
	// ErrInvalidSampleRate rejects a non-positive fps.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	// ErrTextModeOnly rejects send_reply outside text mode.
	ErrTextModeOnly = errors.New("send_reply requires text mode")
	// ErrReplyNotConfigured rejects send_reply without reply coordinates.
	ErrReplyNotConfigured = errors.New("reply coordinates not configured")
)

// defaultStopTimeout bounds how long Stop waits for the worker to observe
// cancellation before abandoning it.
const defaultStopTimeout = 5 * time.Second

// ReplyTarget holds the screen coordinates SendReply taps.
type ReplyTarget struct {
	InputX, InputY int
	SendX, SendY   int
}

// Deps are the collaborators the supervisor wires into each run.
type Deps struct {
	State      *State
	Registry   ports.ControllerRegistry
	Capture    ports.CaptureProvider
	Recognizer ports.TextRecognizer
	Actuator   ports.Actuator
	Obs        ports.Observability
	Reply      ReplyTarget
}

// Supervisor is the control surface over the pipeline: start, stop, drain,
// status. All methods are safe to call from any goroutine, concurrently with
// a running worker.
type Supervisor struct {
	base        Config
	state       *State
	registry    ports.ControllerRegistry
	capture     ports.CaptureProvider
	recognizer  ports.TextRecognizer
	actuator    ports.Actuator
	obs         ports.Observability
	reply       ReplyTarget
	stopTimeout time.Duration
}

func NewSupervisor(base Config, deps Deps) *Supervisor {
	obs := deps.Obs
	if obs == nil {
		obs = nopObs{}
	}
	return &Supervisor{
		base:        base,
		state:       deps.State,
		registry:    deps.Registry,
		capture:     deps.Capture,
		recognizer:  deps.Recognizer,
		actuator:    deps.Actuator,
		obs:         obs,
		reply:       deps.Reply,
		stopTimeout: defaultStopTimeout,
	}
}

// Start validates preconditions, resets the previous run's state, and spawns
// a worker bound to the controller. On any precondition failure nothing is
// mutated.
func (s *Supervisor) Start(controllerID string, fps float64) error {
	if fps <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidSampleRate, fps)
	}
	if _, ok := s.registry.Resolve(controllerID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownController, controllerID)
	}

	cfg := s.base
	cfg.SampleRateHz = fps
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	if err := s.state.Begin(controllerID, cancel, done); err != nil {
		cancel()
		return err
	}

	w := NewWorker(controllerID, cfg, s.state, s.capture, s.recognizer, s.obs)
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	s.obs.LogInfo("pipeline_started",
		ports.Field{Key: "controller_id", Value: controllerID},
		ports.Field{Key: "fps", Value: fps},
		ports.Field{Key: "mode", Value: string(cfg.Mode)},
	)
	return nil
}

// Stop cancels the worker and waits up to the stop timeout for it to exit.
// A timeout is logged and the state still transitions to Stopped; the
// abandoned goroutine exits at its next cancellation check. Calling Stop
// when nothing runs is a no-op success.
func (s *Supervisor) Stop() error {
	cancel, done, ok := s.state.BeginStop()
	if !ok {
		return nil
	}

	cancel()
	select {
	case <-done:
	case <-time.After(s.stopTimeout):
		s.obs.LogWarn("pipeline_stop_timeout",
			ports.Field{Key: "timeout", Value: s.stopTimeout.String()})
	}

	s.state.End()
	s.obs.LogInfo("pipeline_stopped")
	return nil
}

// Drain pops up to max messages in FIFO order without blocking. Undrained
// messages survive Stop until the next Start resets the queue.
func (s *Supervisor) Drain(max int) []domain.Message {
	msgs := s.state.Queue().DequeueBatch(max)
	s.obs.SetGauge("maa_queue_length", float64(s.state.Queue().Len()))
	return msgs
}

// Status returns a consistent view of the current run.
func (s *Supervisor) Status() domain.Status {
	return s.state.Status(time.Now())
}

// SendReply taps the configured input field, types text, and taps send on
// the controller bound to the running pipeline. Text mode only; shares the
// controller binding but not the worker's concurrency contract.
func (s *Supervisor) SendReply(ctx context.Context, text string) error {
	if s.base.Mode != domain.ModeText {
		return ErrTextModeOnly
	}
	if s.reply == (ReplyTarget{}) {
		return ErrReplyNotConfigured
	}
	controllerID := s.state.ControllerID()
	if controllerID == "" {
		return fmt.Errorf("%w: no controller bound", ErrUnknownController)
	}

	if err := s.actuator.Tap(ctx, controllerID, s.reply.InputX, s.reply.InputY); err != nil {
		return fmt.Errorf("tap input field: %w", err)
	}
	if err := s.actuator.TypeText(ctx, controllerID, text); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	if err := s.actuator.Tap(ctx, controllerID, s.reply.SendX, s.reply.SendY); err != nil {
		return fmt.Errorf("tap send: %w", err)
	}

	s.obs.LogInfo("reply_sent", ports.Field{Key: "controller_id", Value: controllerID})
	return nil
}
