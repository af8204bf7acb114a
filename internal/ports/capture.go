package ports

import (
	"context"

	"github.com/KhazixW2/MaaMCP/internal/domain"
)

// CaptureProvider persists one frame for a controller and returns its path.
// An empty path with a nil error means no frame was available this cycle;
// the worker treats both that and an error as a skipped iteration.
type CaptureProvider interface {
	Capture(ctx context.Context, controllerID string) (string, error)
}

// TextRecognizer extracts the currently visible text regions for a controller.
type TextRecognizer interface {
	Recognize(ctx context.Context, controllerID string) ([]domain.TextRegion, error)
}
