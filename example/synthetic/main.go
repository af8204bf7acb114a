// Drives the pipeline supervisor directly, without MCP, against a synthetic
// capture provider. Useful for watching cadence, queue shedding, and drain
// behavior on a machine with no device attached.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	maamcp "github.com/KhazixW2/MaaMCP"
)

type syntheticCapture struct {
	dir string
	n   int
}

func (c *syntheticCapture) Capture(_ context.Context, _ string) (string, error) {
	c.n++
	path := fmt.Sprintf("%s/synthetic_%04d.png", c.dir, c.n)
	if err := os.WriteFile(path, []byte("not a real frame"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func main() {
	dir, err := os.MkdirTemp("", "maamcp-synthetic")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := maamcp.DefaultConfig()
	cfg.Metrics.Addr = "off"
	cfg.Frames.Dir = dir
	cfg.Pipeline.QueueCapacity = 8

	reg := maamcp.NewRegistry()
	ctrl := reg.Connect(maamcp.ControllerADB, "synthetic-0", "demo device")

	rt, err := maamcp.NewRuntime(cfg,
		maamcp.WithControllerRegistry(reg),
		maamcp.WithCaptureProvider(&syntheticCapture{dir: dir}),
	)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	sup := rt.Supervisor()
	if err := sup.Start(ctrl.ID, 5.0); err != nil {
		log.Fatalf("start pipeline: %v", err)
	}

	deadline := time.After(3 * time.Second)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-deadline:
			break loop
		case <-ticker.C:
			for _, m := range sup.Drain(10) {
				fmt.Printf("message: %+v\n", m)
			}
		}
	}

	if err := sup.Stop(); err != nil {
		log.Fatalf("stop pipeline: %v", err)
	}
	fmt.Printf("final status: %+v\n", sup.Status())
}
