package pipeline

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/KhazixW2/MaaMCP/internal/domain"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

// RunStats are the counters of one run. The worker is the only writer; reads
// take a copy under the state lock.
type RunStats struct {
	FrameCount      int64
	AnalysisCount   int64
	NewMessageCount int64
	StartedAt       int64 // epoch ms
	LastUpdate      int64 // epoch ms
}

// State is the process-wide pipeline aggregate: running flag, bound
// controller, cancellation handles, stats, last snapshot, and the message
// queue. One mutex guards every mutable field; the queue carries its own
// lock so enqueue/dequeue never contend with status reads, and Len stays
// linearizable with pending counts.
type State struct {
	mu           sync.Mutex
	running      bool
	controllerID string
	cancel       context.CancelFunc
	done         chan struct{}
	stats        RunStats
	snapshot     domain.Snapshot
	hasSnapshot  bool

	queue ports.MessageQueue
}

func NewState(q ports.MessageQueue) *State {
	return &State{queue: q}
}

// Begin transitions Idle/Stopped → Running. It clears the previous run's
// queue, stats, and snapshot, then binds the controller and cancellation
// handles atomically. Fails without any mutation if a run is already live.
func (s *State) Begin(controllerID string, cancel context.CancelFunc, done chan struct{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.resetLocked()
	s.running = true
	s.controllerID = controllerID
	s.cancel = cancel
	s.done = done
	s.stats.StartedAt = time.Now().UnixMilli()
	return nil
}

// BeginStop hands back the live run's cancellation handles, or ok=false when
// nothing is running. The running flag stays set until End so a concurrent
// Start keeps failing during the Stopping window.
func (s *State) BeginStop() (cancel context.CancelFunc, done chan struct{}, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil, nil, false
	}
	return s.cancel, s.done, true
}

// End transitions to Stopped. The controller binding and stats survive so
// Status keeps reporting the last run.
func (s *State) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.cancel = nil
	s.done = nil
}

// Reset clears queue, stats, and snapshot. Refused while a worker is live.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.resetLocked()
	return nil
}

func (s *State) resetLocked() {
	s.queue.Clear()
	s.stats = RunStats{}
	s.snapshot = domain.Snapshot{}
	s.hasSnapshot = false
	s.controllerID = ""
}

func (s *State) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *State) ControllerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controllerID
}

// NextFrame advances the frame counter for a successful iteration and
// returns the new frame ID. Skipped iterations never call this.
func (s *State) NextFrame(nowMs int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.FrameCount++
	s.stats.LastUpdate = nowMs
	return s.stats.FrameCount
}

func (s *State) IncAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.AnalysisCount++
}

func (s *State) AddNewMessages(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.NewMessageCount += n
}

// SetSnapshot records a completed capture+filter cycle. Failed cycles never
// reach this.
func (s *State) SetSnapshot(snap domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.hasSnapshot = true
}

func (s *State) Snapshot() (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.hasSnapshot
}

func (s *State) Stats() RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Queue exposes the bounded message queue; it is safe to use concurrently
// with any State method.
func (s *State) Queue() ports.MessageQueue {
	return s.queue
}

// Status assembles a consistent consumer-facing view under the state lock.
func (s *State) Status(now time.Time) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	var uptime float64
	if s.stats.StartedAt > 0 {
		uptime = float64(now.UnixMilli()-s.stats.StartedAt) / 1000.0
		uptime = math.Round(uptime*10) / 10
	}
	return domain.Status{
		IsRunning:    s.running,
		ControllerID: s.controllerID,
		Uptime:       uptime,
		Pending:      s.queue.Len(),
		FrameCount:   s.stats.FrameCount,
		NewMessages:  s.stats.NewMessageCount,
	}
}
