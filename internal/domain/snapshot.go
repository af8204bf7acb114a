package domain

// TextRegion is one recognized piece of on-screen text with its location.
type TextRegion struct {
	Text   string  `json:"text"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Score  float64 `json:"score"`
}

// Snapshot is one completed sampling result, the basis for the next dedup
// comparison. Immutable after creation; the worker replaces it wholesale.
type Snapshot struct {
	Texts      []string
	ImagePath  string
	CapturedAt int64 // epoch ms
}

// Status is the consumer-facing view of the running pipeline.
type Status struct {
	IsRunning    bool    `json:"is_running"`
	ControllerID string  `json:"controller_id"`
	Uptime       float64 `json:"uptime"`
	Pending      int     `json:"pending"`
	FrameCount   int64   `json:"frame_count"`
	NewMessages  int64   `json:"new_messages"`
}
