package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KhazixW2/MaaMCP/internal/adapters/queue"
	"github.com/KhazixW2/MaaMCP/internal/domain"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

func newTestSupervisor(mode domain.Mode, capture ports.CaptureProvider, rec ports.TextRecognizer) (*Supervisor, *State) {
	st := NewState(queue.NewMemQueue(10))
	reg := &mockRegistry{controllers: map[string]ports.Controller{
		"ctrl-1": {ID: "ctrl-1", Kind: ports.ControllerADB, Serial: "emulator-5554"},
	}}
	sup := NewSupervisor(
		Config{Mode: mode, SampleRateHz: 2, QueueCapacity: 10, DedupEnabled: true},
		Deps{State: st, Registry: reg, Capture: capture, Recognizer: rec},
	)
	return sup, st
}

func TestSupervisorStartRejectsUnknownController(t *testing.T) {
	sup, st := newTestSupervisor(domain.ModeScreenshot, &mockCapture{}, nil)

	err := sup.Start("nope", 2.0)
	if !errors.Is(err, ErrUnknownController) {
		t.Fatalf("expected ErrUnknownController, got %v", err)
	}
	if st.Running() {
		t.Fatalf("failed start must not leave state running")
	}
}

func TestSupervisorStartRejectsBadSampleRate(t *testing.T) {
	sup, st := newTestSupervisor(domain.ModeScreenshot, &mockCapture{}, nil)

	for _, fps := range []float64{0, -1} {
		if err := sup.Start("ctrl-1", fps); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("fps=%v: expected ErrInvalidSampleRate, got %v", fps, err)
		}
	}
	if st.Running() {
		t.Fatalf("failed start must not leave state running")
	}
}

func TestSupervisorStartStopLifecycle(t *testing.T) {
	capture := &mockCapture{loop: true, paths: []string{"/tmp/frame.png"}}
	sup, st := newTestSupervisor(domain.ModeScreenshot, capture, nil)

	if err := sup.Start("ctrl-1", 50.0); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sup.Start("ctrl-1", 50.0); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second start should fail, got %v", err)
	}

	waitFor(t, func() bool { return st.Stats().FrameCount > 0 })

	status := sup.Status()
	if !status.IsRunning || status.ControllerID != "ctrl-1" {
		t.Fatalf("unexpected running status: %+v", status)
	}

	if err := sup.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if sup.Status().IsRunning {
		t.Fatalf("status should report stopped")
	}

	// Stop is idempotent.
	if err := sup.Stop(); err != nil {
		t.Fatalf("second stop should be a no-op, got %v", err)
	}

	// A fresh run is accepted after stop.
	if err := sup.Start("ctrl-1", 50.0); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := sup.Stop(); err != nil {
		t.Fatalf("final stop: %v", err)
	}
}

func TestSupervisorStopAbandonsStuckWorker(t *testing.T) {
	block := make(chan struct{})
	capture := &blockingCapture{release: block, started: make(chan struct{})}
	sup, st := newTestSupervisor(domain.ModeScreenshot, capture, nil)
	sup.stopTimeout = 50 * time.Millisecond

	if err := sup.Start("ctrl-1", 10.0); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, func() bool { return capture.entered() })

	start := time.Now()
	if err := sup.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("stop should give up after the timeout, took %v", elapsed)
	}
	if st.Running() {
		t.Fatalf("state must transition to stopped even when the worker is stuck")
	}
	close(block)
}

func TestSupervisorDrainFIFO(t *testing.T) {
	sup, st := newTestSupervisor(domain.ModeScreenshot, &mockCapture{}, nil)
	q := st.Queue()
	for i := int64(1); i <= 3; i++ {
		q.Enqueue(domain.NewScreenshotMessage("/tmp/a.png", i, i))
	}

	batch := sup.Drain(2)
	if len(batch) != 2 || batch[0].Frame() != 1 || batch[1].Frame() != 2 {
		t.Fatalf("unexpected drain batch: %+v", batch)
	}
	rest := sup.Drain(10)
	if len(rest) != 1 || rest[0].Frame() != 3 {
		t.Fatalf("unexpected remainder: %+v", rest)
	}
	if batch = sup.Drain(10); len(batch) != 0 {
		t.Fatalf("drained queue should be empty, got %+v", batch)
	}
}

func TestSupervisorSendReplyRequiresTextMode(t *testing.T) {
	sup, _ := newTestSupervisor(domain.ModeScreenshot, &mockCapture{}, nil)
	if err := sup.SendReply(context.Background(), "hi"); !errors.Is(err, ErrTextModeOnly) {
		t.Fatalf("expected ErrTextModeOnly, got %v", err)
	}
}

func TestSupervisorSendReplyRequiresCoordinates(t *testing.T) {
	sup, _ := newTestSupervisor(domain.ModeText, nil, &mockRecognizer{frames: [][]domain.TextRegion{nil}})
	if err := sup.SendReply(context.Background(), "hi"); !errors.Is(err, ErrReplyNotConfigured) {
		t.Fatalf("expected ErrReplyNotConfigured, got %v", err)
	}
}

func TestSupervisorSendReplyTapsTypeTaps(t *testing.T) {
	st := NewState(queue.NewMemQueue(10))
	reg := &mockRegistry{controllers: map[string]ports.Controller{
		"ctrl-1": {ID: "ctrl-1", Kind: ports.ControllerADB},
	}}
	act := &mockActuator{}
	sup := NewSupervisor(
		Config{Mode: domain.ModeText, SampleRateHz: 2, QueueCapacity: 10},
		Deps{
			State:      st,
			Registry:   reg,
			Recognizer: &mockRecognizer{frames: [][]domain.TextRegion{nil}},
			Actuator:   act,
			Reply:      ReplyTarget{InputX: 100, InputY: 200, SendX: 300, SendY: 400},
		},
	)

	if err := sup.Start("ctrl-1", 1.0); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer sup.Stop()

	if err := sup.SendReply(context.Background(), "on my way"); err != nil {
		t.Fatalf("send reply: %v", err)
	}
	want := []string{"tap 100,200", "type on my way", "tap 300,400"}
	if len(act.calls) != 3 || act.calls[0] != want[0] || act.calls[1] != want[1] || act.calls[2] != want[2] {
		t.Fatalf("unexpected actuator calls: %v", act.calls)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached within deadline")
}

type mockRegistry struct {
	controllers map[string]ports.Controller
}

func (m *mockRegistry) Register(c ports.Controller) { m.controllers[c.ID] = c }
func (m *mockRegistry) Resolve(id string) (ports.Controller, bool) {
	c, ok := m.controllers[id]
	return c, ok
}
func (m *mockRegistry) List() []ports.Controller {
	out := make([]ports.Controller, 0, len(m.controllers))
	for _, c := range m.controllers {
		out = append(out, c)
	}
	return out
}
func (m *mockRegistry) Remove(id string) { delete(m.controllers, id) }

type blockingCapture struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (b *blockingCapture) Capture(context.Context, string) (string, error) {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return "", nil
}

func (b *blockingCapture) entered() bool {
	select {
	case <-b.started:
		return true
	default:
		return false
	}
}

type mockActuator struct {
	calls []string
}

func (m *mockActuator) Tap(_ context.Context, _ string, x, y int) error {
	m.calls = append(m.calls, fmt.Sprintf("tap %d,%d", x, y))
	return nil
}
func (m *mockActuator) Swipe(_ context.Context, _ string, x1, y1, x2, y2 int, _ time.Duration) error {
	m.calls = append(m.calls, "swipe")
	return nil
}
func (m *mockActuator) TypeText(_ context.Context, _ string, text string) error {
	m.calls = append(m.calls, "type "+text)
	return nil
}
func (m *mockActuator) PressKey(_ context.Context, _ string, key string) error {
	m.calls = append(m.calls, "key "+key)
	return nil
}
