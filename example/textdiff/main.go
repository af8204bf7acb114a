// Demonstrates text-diff streaming: a fake recognizer flips between two
// screens and only the genuinely new lines come out of the queue. The
// "Send" button is filtered as interface chrome.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	maamcp "github.com/KhazixW2/MaaMCP"
)

type flippingRecognizer struct{ n int }

func (r *flippingRecognizer) Recognize(_ context.Context, _ string) ([]maamcp.TextRegion, error) {
	r.n++
	regions := []maamcp.TextRegion{
		{Text: "Alice: hello", X: 40, Y: 200, Score: 1.0},
		{Text: "Send", X: 600, Y: 1200, Score: 1.0},
	}
	if r.n > 3 {
		regions = append(regions, maamcp.TextRegion{Text: "Alice: are you there?", X: 40, Y: 300, Score: 1.0})
	}
	return regions, nil
}

func main() {
	dir, err := os.MkdirTemp("", "maamcp-textdiff")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := maamcp.DefaultConfig()
	cfg.Metrics.Addr = "off"
	cfg.Frames.Dir = dir
	cfg.Pipeline.Mode = string(maamcp.ModeText)
	cfg.Pipeline.NoiseFilter = []string{"Send"}

	reg := maamcp.NewRegistry()
	ctrl := reg.Connect(maamcp.ControllerADB, "synthetic-0", "demo device")

	rt, err := maamcp.NewRuntime(cfg,
		maamcp.WithControllerRegistry(reg),
		maamcp.WithTextRecognizer(&flippingRecognizer{}),
	)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	sup := rt.Supervisor()
	if err := sup.Start(ctrl.ID, 4.0); err != nil {
		log.Fatalf("start pipeline: %v", err)
	}

	time.Sleep(2 * time.Second)
	for _, m := range sup.Drain(50) {
		if tm, ok := m.(maamcp.TextMessage); ok {
			fmt.Printf("new text (frame %d): %s\n", tm.FrameID, tm.Text)
		}
	}

	if err := sup.Stop(); err != nil {
		log.Fatalf("stop pipeline: %v", err)
	}
}
