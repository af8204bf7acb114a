package adb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KhazixW2/MaaMCP/internal/ports"
)

func (c *Client) Tap(ctx context.Context, controllerID string, x, y int) error {
	serial, err := c.serialFor(controllerID)
	if err != nil {
		return err
	}
	_, err = c.shell(ctx, serial, "input", "tap", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

func (c *Client) Swipe(ctx context.Context, controllerID string, x1, y1, x2, y2 int, duration time.Duration) error {
	serial, err := c.serialFor(controllerID)
	if err != nil {
		return err
	}
	if duration <= 0 {
		duration = 300 * time.Millisecond
	}
	_, err = c.shell(ctx, serial, "input", "swipe",
		strconv.Itoa(x1), strconv.Itoa(y1),
		strconv.Itoa(x2), strconv.Itoa(y2),
		strconv.Itoa(int(duration.Milliseconds())))
	return err
}

func (c *Client) TypeText(ctx context.Context, controllerID, text string) error {
	serial, err := c.serialFor(controllerID)
	if err != nil {
		return err
	}
	_, err = c.shell(ctx, serial, "input", "text", escapeInputText(text))
	return err
}

func (c *Client) PressKey(ctx context.Context, controllerID, key string) error {
	serial, err := c.serialFor(controllerID)
	if err != nil {
		return err
	}
	code, err := keyEventCode(key)
	if err != nil {
		return err
	}
	_, err = c.shell(ctx, serial, "input", "keyevent", code)
	return err
}

// escapeInputText quotes text for `input text`, which splits on spaces and
// interprets shell metacharacters.
func escapeInputText(text string) string {
	replacer := strings.NewReplacer(
		" ", "%s",
		"&", `\&`,
		"<", `\<`,
		">", `\>`,
		"(", `\(`,
		")", `\)`,
		"'", `\'`,
		`"`, `\"`,
		";", `\;`,
		"|", `\|`,
	)
	return replacer.Replace(text)
}

// keyEventCode accepts a raw keycode number or a friendly name like "back".
func keyEventCode(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}
	if _, err := strconv.Atoi(key); err == nil {
		return key, nil
	}
	name := strings.ToUpper(key)
	if !strings.HasPrefix(name, "KEYCODE_") {
		name = "KEYCODE_" + name
	}
	return name, nil
}

var _ ports.Actuator = (*Client)(nil)
