package domain

// Mode selects which message variant a pipeline run produces. A run uses
// exactly one mode; the two are never mixed in the same queue.
type Mode string

const (
	// ModeScreenshot streams persisted frame paths without any recognition.
	ModeScreenshot Mode = "screenshot"
	// ModeText streams OCR text diffed against the previous sample.
	ModeText Mode = "text"
)

// Message is one unit of new information published by the pipeline worker.
type Message interface {
	Frame() int64
}

// ScreenshotMessage points the consumer at a frame persisted on disk.
type ScreenshotMessage struct {
	Type      string `json:"type"`
	ImagePath string `json:"image_path"`
	Timestamp int64  `json:"timestamp"`
	FrameID   int64  `json:"frame_id"`
}

func (m ScreenshotMessage) Frame() int64 { return m.FrameID }

// NewScreenshotMessage builds a screenshot message with the fixed type tag.
func NewScreenshotMessage(imagePath string, timestampMs, frameID int64) ScreenshotMessage {
	return ScreenshotMessage{
		Type:      "screenshot",
		ImagePath: imagePath,
		Timestamp: timestampMs,
		FrameID:   frameID,
	}
}

// TextMessage carries one newly observed text region.
type TextMessage struct {
	Text      string  `json:"text"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Score     float64 `json:"score"`
	Timestamp int64   `json:"timestamp"`
	FrameID   int64   `json:"frame_id"`
}

func (m TextMessage) Frame() int64 { return m.FrameID }
