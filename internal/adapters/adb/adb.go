// Package adb drives Android devices through the adb binary. It backs the
// capture, recognition, and actuation ports with plain adb subcommands so the
// pipeline core never links against device tooling directly.
package adb

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/KhazixW2/MaaMCP/internal/adapters/framestore"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return nil, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Client wraps one adb binary plus the registry that maps controller IDs to
// device serials.
type Client struct {
	bin      string
	registry ports.ControllerRegistry
	frames   *framestore.Store
	run      runFunc
}

func NewClient(bin string, registry ports.ControllerRegistry, frames *framestore.Store) *Client {
	if bin == "" {
		bin = "adb"
	}
	return &Client{bin: bin, registry: registry, frames: frames, run: defaultRun}
}

// Device is one row of `adb devices -l`.
type Device struct {
	Serial string `json:"serial"`
	State  string `json:"state"`
	Model  string `json:"model,omitempty"`
}

// Devices lists the devices the adb server currently sees.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	out, err := c.run(ctx, c.bin, "devices", "-l")
	if err != nil {
		return nil, err
	}
	return parseDevices(string(out)), nil
}

func parseDevices(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "List of devices") || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		d := Device{Serial: fields[0], State: fields[1]}
		for _, f := range fields[2:] {
			if v, ok := strings.CutPrefix(f, "model:"); ok {
				d.Model = v
			}
		}
		devices = append(devices, d)
	}
	return devices
}

func (c *Client) serialFor(controllerID string) (string, error) {
	ctrl, ok := c.registry.Resolve(controllerID)
	if !ok {
		return "", fmt.Errorf("unknown controller %q", controllerID)
	}
	if ctrl.Kind != ports.ControllerADB {
		return "", fmt.Errorf("controller %q is %s, not adb", controllerID, ctrl.Kind)
	}
	return ctrl.Serial, nil
}

func (c *Client) shell(ctx context.Context, serial string, args ...string) ([]byte, error) {
	full := append([]string{"-s", serial, "shell"}, args...)
	return c.run(ctx, c.bin, full...)
}
