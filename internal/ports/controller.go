package ports

import (
	"context"
	"time"
)

// ControllerKind distinguishes how a controller is reached.
type ControllerKind string

const (
	ControllerADB   ControllerKind = "adb"
	ControllerWin32 ControllerKind = "win32"
)

// Controller is an opaque handle to a connected device or window.
type Controller struct {
	ID     string
	Kind   ControllerKind
	Serial string // ADB serial, or window handle for win32
	Label  string
}

// ControllerRegistry resolves controller identifiers to live handles.
// Resolution is checked once at pipeline start; the pipeline never owns
// the registry's lifecycle.
type ControllerRegistry interface {
	Register(c Controller)
	Resolve(id string) (Controller, bool)
	List() []Controller
	Remove(id string)
}

// Actuator exposes the input primitives the consumer drives after analyzing
// pipeline output. Thin synchronous pass-throughs; never called by the worker.
type Actuator interface {
	Tap(ctx context.Context, controllerID string, x, y int) error
	Swipe(ctx context.Context, controllerID string, x1, y1, x2, y2 int, duration time.Duration) error
	TypeText(ctx context.Context, controllerID, text string) error
	PressKey(ctx context.Context, controllerID, key string) error
}
