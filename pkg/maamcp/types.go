package maamcp

import (
	"github.com/KhazixW2/MaaMCP/internal/adapters/adb"
	"github.com/KhazixW2/MaaMCP/internal/app/pipeline"
	"github.com/KhazixW2/MaaMCP/internal/domain"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

// Message is one unit of new information drained from the pipeline.
type Message = domain.Message

// ScreenshotMessage points the consumer at a persisted frame.
type ScreenshotMessage = domain.ScreenshotMessage

// TextMessage carries one newly observed text region.
type TextMessage = domain.TextMessage

// TextRegion is one recognized piece of on-screen text.
type TextRegion = domain.TextRegion

// Status is the consumer-facing pipeline state.
type Status = domain.Status

// Mode selects the pipeline's deployment mode.
type Mode = domain.Mode

const (
	ModeScreenshot = domain.ModeScreenshot
	ModeText       = domain.ModeText
)

// Supervisor is the pipeline control surface: Start, Stop, Drain, Status.
type Supervisor = pipeline.Supervisor

// CaptureProvider persists one frame and returns its path.
type CaptureProvider = ports.CaptureProvider

// TextRecognizer extracts visible text regions.
type TextRecognizer = ports.TextRecognizer

// Actuator exposes tap/swipe/type/key input primitives.
type Actuator = ports.Actuator

// ControllerRegistry resolves controller IDs to device handles.
type ControllerRegistry = ports.ControllerRegistry

// Controller is an opaque handle to a connected device or window.
type Controller = ports.Controller

// ControllerKind distinguishes controller transports.
type ControllerKind = ports.ControllerKind

const (
	ControllerADB   = ports.ControllerADB
	ControllerWin32 = ports.ControllerWin32
)

// MessageQueue is the bounded FIFO buffer between worker and consumer.
type MessageQueue = ports.MessageQueue

// Observability emits structured logs and metrics.
type Observability = ports.Observability

// Field is a structured log field.
type Field = ports.Field

// Registry is the default in-memory controller registry.
type Registry = adb.Registry

// NewRegistry returns an empty controller registry.
func NewRegistry() *Registry {
	return adb.NewRegistry()
}

// Device is one discovered ADB device.
type Device = adb.Device
