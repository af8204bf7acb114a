package adb

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/KhazixW2/MaaMCP/internal/ports"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

const captureTimeout = 10 * time.Second

// Capture grabs one frame via `screencap -p` and persists it to the frame
// store. An empty device response is reported as "no frame" (empty path, nil
// error) so the worker skips the iteration instead of failing it.
func (c *Client) Capture(ctx context.Context, controllerID string) (string, error) {
	serial, err := c.serialFor(controllerID)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	out, err := c.run(ctx, c.bin, "-s", serial, "exec-out", "screencap", "-p")
	if err != nil {
		return "", fmt.Errorf("screencap: %w", err)
	}
	if len(out) == 0 {
		return "", nil
	}
	if !bytes.HasPrefix(out, pngMagic) {
		return "", fmt.Errorf("screencap: device returned %d bytes of non-PNG data", len(out))
	}

	return c.frames.Save(out)
}

var _ ports.CaptureProvider = (*Client)(nil)
