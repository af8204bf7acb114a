package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	maamcp "github.com/KhazixW2/MaaMCP"
	"github.com/KhazixW2/MaaMCP/internal/adapters/adb"
	"github.com/KhazixW2/MaaMCP/internal/adapters/framestore"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "serve":
		err = serveCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "devices":
		err = devicesCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("maa-mcp %s: %v", cmd, err)
	}
}

func serveCommand(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to configuration file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := maamcp.DefaultConfig()
	if *cfgPath != "" {
		loaded, err := maamcp.LoadConfig(*cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	rt, err := maamcp.NewRuntime(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rt.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := maamcp.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good ✅\n", *cfgPath)
	return nil
}

func devicesCommand(args []string) error {
	fs := flag.NewFlagSet("devices", flag.ExitOnError)
	bin := fs.String("adb", "adb", "Path to the adb binary")
	if err := fs.Parse(args); err != nil {
		return err
	}

	frames, err := framestore.New(os.TempDir()+"/maa-mcp-devices", 1)
	if err != nil {
		return err
	}
	defer frames.CleanupAll()

	client := adb.NewClient(*bin, adb.NewRegistry(), frames)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	devices, err := client.Devices(ctx)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("no devices found")
		return nil
	}
	out, err := json.MarshalIndent(devices, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9180/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"maa_frames_captured_total":    0,
		"maa_messages_published_total": 0,
		"maa_queue_dropped_total":      0,
		"maa_queue_length":             0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %f", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] frames=%.0f published=%.0f dropped=%.0f queue=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets["maa_frames_captured_total"],
		targets["maa_messages_published_total"],
		targets["maa_queue_dropped_total"],
		targets["maa_queue_length"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`MaaMCP CLI

Usage:
  maa-mcp <command> [flags]

Commands:
  serve      Run the MCP server on stdio (the command MCP clients launch)
  validate   Load and validate a config file without starting the server
  devices    List ADB devices reachable from this host
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  maa-mcp serve -config ./config.yaml
  maa-mcp validate -config ./config.yaml
  maa-mcp devices
  maa-mcp stats -url http://localhost:9180/metrics -interval 1s
`)
}
