package pipeline

import (
	"fmt"
	"time"

	"github.com/KhazixW2/MaaMCP/internal/domain"
)

// Config holds the immutable parameters of one pipeline run. It is fixed at
// Start and shared read-only with the worker goroutine.
type Config struct {
	Mode          domain.Mode
	SampleRateHz  float64
	QueueCapacity int
	DedupEnabled  bool
	NoiseFilter   []string
}

// Interval is the target wall-clock spacing between loop iterations.
func (c Config) Interval() time.Duration {
	return time.Duration(float64(time.Second) / c.SampleRateHz)
}

func (c Config) Validate() error {
	switch c.Mode {
	case domain.ModeScreenshot, domain.ModeText:
	default:
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	if c.SampleRateHz <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, c.SampleRateHz)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive, got %d", c.QueueCapacity)
	}
	return nil
}
