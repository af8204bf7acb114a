// Runs the MCP server on stdio with the default ADB adapters, the same thing
// `maa-mcp serve` does.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	maamcp "github.com/KhazixW2/MaaMCP"
)

func main() {
	cfg := maamcp.DefaultConfig()

	rt, err := maamcp.NewRuntime(cfg)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("runtime exited: %v", err)
	}
}
