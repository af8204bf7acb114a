package adb

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/KhazixW2/MaaMCP/internal/domain"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

// Recognize extracts visible text via `uiautomator dump`. The accessibility
// hierarchy is exact text, so every region carries score 1.0.
func (c *Client) Recognize(ctx context.Context, controllerID string) ([]domain.TextRegion, error) {
	serial, err := c.serialFor(controllerID)
	if err != nil {
		return nil, err
	}

	out, err := c.run(ctx, c.bin, "-s", serial, "exec-out", "uiautomator", "dump", "/dev/tty")
	if err != nil {
		return nil, fmt.Errorf("uiautomator dump: %w", err)
	}
	return parseHierarchy(string(out))
}

type uiNode struct {
	Text   string   `xml:"text,attr"`
	Bounds string   `xml:"bounds,attr"`
	Nodes  []uiNode `xml:"node"`
}

type uiHierarchy struct {
	Nodes []uiNode `xml:"node"`
}

// parseHierarchy pulls the XML document out of the dump output (the device
// appends a status line after the document) and flattens it depth-first, so
// region order follows on-screen reading order of the hierarchy.
func parseHierarchy(out string) ([]domain.TextRegion, error) {
	start := strings.Index(out, "<?xml")
	if start < 0 {
		start = strings.Index(out, "<hierarchy")
	}
	end := strings.LastIndex(out, "</hierarchy>")
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("no hierarchy document in dump output")
	}
	doc := out[start : end+len("</hierarchy>")]

	var h uiHierarchy
	if err := xml.Unmarshal([]byte(doc), &h); err != nil {
		return nil, fmt.Errorf("parse hierarchy: %w", err)
	}

	var regions []domain.TextRegion
	var walk func(n uiNode)
	walk = func(n uiNode) {
		if t := strings.TrimSpace(n.Text); t != "" {
			r := domain.TextRegion{Text: t, Score: 1.0}
			if x, y, w, hgt, ok := parseBounds(n.Bounds); ok {
				r.X, r.Y, r.Width, r.Height = x, y, w, hgt
			}
			regions = append(regions, r)
		}
		for _, child := range n.Nodes {
			walk(child)
		}
	}
	for _, n := range h.Nodes {
		walk(n)
	}
	return regions, nil
}

// parseBounds reads the uiautomator "[x1,y1][x2,y2]" attribute format.
func parseBounds(b string) (x, y, w, h int, ok bool) {
	var x1, y1, x2, y2 int
	if _, err := fmt.Sscanf(b, "[%d,%d][%d,%d]", &x1, &y1, &x2, &y2); err != nil {
		return 0, 0, 0, 0, false
	}
	return x1, y1, x2 - x1, y2 - y1, true
}

var _ ports.TextRecognizer = (*Client)(nil)
