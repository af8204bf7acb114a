package adb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/KhazixW2/MaaMCP/internal/adapters/framestore"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

func newTestClient(t *testing.T, run runFunc) (*Client, string) {
	t.Helper()
	reg := NewRegistry()
	ctrl := reg.Connect(ports.ControllerADB, "emulator-5554", "test device")
	frames, err := framestore.New(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("framestore: %v", err)
	}
	c := NewClient("adb", reg, frames)
	c.run = run
	return c, ctrl.ID
}

func TestParseDevices(t *testing.T) {
	out := `List of devices attached
emulator-5554          device product:sdk_gphone64 model:sdk_gphone64_x86_64 device:emu64x
192.168.1.20:5555      offline
* daemon started successfully

`
	devices := parseDevices(out)
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d: %+v", len(devices), devices)
	}
	if devices[0].Serial != "emulator-5554" || devices[0].State != "device" {
		t.Fatalf("unexpected first device: %+v", devices[0])
	}
	if devices[0].Model != "sdk_gphone64_x86_64" {
		t.Fatalf("model not parsed: %+v", devices[0])
	}
	if devices[1].Serial != "192.168.1.20:5555" || devices[1].State != "offline" {
		t.Fatalf("unexpected second device: %+v", devices[1])
	}
}

func TestParseDevicesEmpty(t *testing.T) {
	if devices := parseDevices("List of devices attached\n\n"); len(devices) != 0 {
		t.Fatalf("expected no devices, got %+v", devices)
	}
}

func TestCaptureSavesPNG(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G'}, []byte("fake image data")...)
	c, id := newTestClient(t, func(_ context.Context, name string, args ...string) ([]byte, error) {
		got := name + " " + strings.Join(args, " ")
		want := "adb -s emulator-5554 exec-out screencap -p"
		if got != want {
			return nil, errors.New("unexpected command: " + got)
		}
		return png, nil
	})

	path, err := c.Capture(context.Background(), id)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if path == "" || !strings.HasSuffix(path, ".png") {
		t.Fatalf("unexpected frame path %q", path)
	}
}

func TestCaptureEmptyOutputMeansNoFrame(t *testing.T) {
	c, id := newTestClient(t, func(context.Context, string, ...string) ([]byte, error) {
		return nil, nil
	})

	path, err := c.Capture(context.Background(), id)
	if err != nil {
		t.Fatalf("empty output should not be an error: %v", err)
	}
	if path != "" {
		t.Fatalf("expected empty path for missing frame, got %q", path)
	}
}

func TestCaptureRejectsNonPNG(t *testing.T) {
	c, id := newTestClient(t, func(context.Context, string, ...string) ([]byte, error) {
		return []byte("error: device offline"), nil
	})

	if _, err := c.Capture(context.Background(), id); err == nil {
		t.Fatalf("expected error for non-PNG payload")
	}
}

func TestCaptureUnknownController(t *testing.T) {
	c, _ := newTestClient(t, func(context.Context, string, ...string) ([]byte, error) {
		t.Fatalf("run should not be called for unknown controller")
		return nil, nil
	})
	if _, err := c.Capture(context.Background(), "nope"); err == nil {
		t.Fatalf("expected unknown controller error")
	}
}

func TestParseHierarchy(t *testing.T) {
	dump := `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?><hierarchy rotation="0"><node text="" bounds="[0,0][1080,2400]"><node text="Alice: hello" bounds="[42,180][600,240]"><node text="" bounds="[0,0][0,0]"/></node><node text="Send" bounds="[900,2200][1040,2300]"/></node></hierarchy>UI hierchary dumped to: /dev/tty`

	regions, err := parseHierarchy(dump)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 text regions, got %d: %+v", len(regions), regions)
	}
	first := regions[0]
	if first.Text != "Alice: hello" || first.X != 42 || first.Y != 180 {
		t.Fatalf("unexpected first region: %+v", first)
	}
	if first.Width != 558 || first.Height != 60 {
		t.Fatalf("bounds not converted to size: %+v", first)
	}
	if first.Score != 1.0 {
		t.Fatalf("hierarchy text should score 1.0: %+v", first)
	}
	if regions[1].Text != "Send" {
		t.Fatalf("unexpected second region: %+v", regions[1])
	}
}

func TestParseHierarchyNoDocument(t *testing.T) {
	if _, err := parseHierarchy("ERROR: could not get idle state."); err == nil {
		t.Fatalf("expected error for missing document")
	}
}

func TestParseBounds(t *testing.T) {
	x, y, w, h, ok := parseBounds("[10,20][110,220]")
	if !ok || x != 10 || y != 20 || w != 100 || h != 200 {
		t.Fatalf("unexpected bounds: %d,%d %dx%d ok=%v", x, y, w, h, ok)
	}
	if _, _, _, _, ok := parseBounds("garbage"); ok {
		t.Fatalf("garbage bounds should not parse")
	}
}

func TestActuatorCommands(t *testing.T) {
	var commands []string
	c, id := newTestClient(t, func(_ context.Context, name string, args ...string) ([]byte, error) {
		commands = append(commands, name+" "+strings.Join(args, " "))
		return nil, nil
	})
	ctx := context.Background()

	if err := c.Tap(ctx, id, 100, 200); err != nil {
		t.Fatalf("tap: %v", err)
	}
	if err := c.Swipe(ctx, id, 1, 2, 3, 4, 0); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if err := c.Swipe(ctx, id, 1, 2, 3, 4, 150*time.Millisecond); err != nil {
		t.Fatalf("swipe: %v", err)
	}
	if err := c.TypeText(ctx, id, "hello world"); err != nil {
		t.Fatalf("type: %v", err)
	}
	if err := c.PressKey(ctx, id, "back"); err != nil {
		t.Fatalf("key: %v", err)
	}

	want := []string{
		"adb -s emulator-5554 shell input tap 100 200",
		"adb -s emulator-5554 shell input swipe 1 2 3 4 300",
		"adb -s emulator-5554 shell input swipe 1 2 3 4 150",
		"adb -s emulator-5554 shell input text hello%sworld",
		"adb -s emulator-5554 shell input keyevent KEYCODE_BACK",
	}
	if len(commands) != len(want) {
		t.Fatalf("expected %d commands, got %d: %v", len(want), len(commands), commands)
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Fatalf("command %d: got %q, want %q", i, commands[i], want[i])
		}
	}
}

func TestEscapeInputText(t *testing.T) {
	cases := map[string]string{
		"hello world": "hello%sworld",
		"a&b":         `a\&b`,
		`say "hi"`:    `say%s\"hi\"`,
		"it's":        `it\'s`,
		"a|b;c":       `a\|b\;c`,
		"plain":       "plain",
	}
	for in, want := range cases {
		if got := escapeInputText(in); got != want {
			t.Fatalf("escape %q: got %q, want %q", in, got, want)
		}
	}
}

func TestKeyEventCode(t *testing.T) {
	cases := map[string]string{
		"back":         "KEYCODE_BACK",
		"HOME":         "KEYCODE_HOME",
		"KEYCODE_MENU": "KEYCODE_MENU",
		"4":            "4",
	}
	for in, want := range cases {
		got, err := keyEventCode(in)
		if err != nil {
			t.Fatalf("keyEventCode(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("keyEventCode(%q): got %q, want %q", in, got, want)
		}
	}
	if _, err := keyEventCode(""); err == nil {
		t.Fatalf("empty key should be rejected")
	}
}

func TestRegistryConnectIdempotent(t *testing.T) {
	reg := NewRegistry()
	a := reg.Connect(ports.ControllerADB, "emulator-5554", "dev")
	b := reg.Connect(ports.ControllerADB, "emulator-5554", "dev again")
	if a.ID != b.ID {
		t.Fatalf("same kind+serial should reuse the handle: %q vs %q", a.ID, b.ID)
	}
	c := reg.Connect(ports.ControllerADB, "emulator-5556", "other")
	if c.ID == a.ID {
		t.Fatalf("distinct serials must mint distinct IDs")
	}
	if len(reg.List()) != 2 {
		t.Fatalf("expected 2 registered controllers, got %d", len(reg.List()))
	}

	reg.Remove(a.ID)
	if _, ok := reg.Resolve(a.ID); ok {
		t.Fatalf("removed controller still resolves")
	}
}
