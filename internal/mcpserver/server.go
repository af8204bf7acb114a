// Package mcpserver exposes the automation surface over the Model Context
// Protocol: device discovery and connection, serial screencap/ocr/actuation
// tools, and the background pipeline controls.
package mcpserver

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/KhazixW2/MaaMCP/internal/adapters/adb"
	"github.com/KhazixW2/MaaMCP/internal/adapters/observability"
	"github.com/KhazixW2/MaaMCP/internal/app/pipeline"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

const serverName = "MaaMCP"

const instructions = `MaaMCP provides Android device automation over ADB:
screen capture, text extraction, tap/swipe/key/text input, and a background
screen-monitoring pipeline.

Standard workflow:
1. Discovery and connection (required):
   - find_adb_device_list() scans for reachable devices.
   - connect_adb_device(serial) binds one and returns its controller_id.
   - Multiple devices may be connected; every operation takes a controller_id.
2. Serial loop: ocr(controller_id) or screencap(controller_id), then
   click/swipe/press_key/input_text based on the result.
3. Pipeline loop (high-frequency monitoring):
   - start_pipeline(controller_id, fps) begins background sampling.
   - get_pipeline_status() reports run state and pending message count.
   - get_new_messages(max_count) drains new information without blocking.
   - stop_pipeline() ends the run; undrained messages stay readable.
   - send_reply(text) types and sends a reply via configured coordinates
     (text mode only).

Prefer ocr over screencap: structured text costs far fewer tokens than
images. Only one pipeline runs at a time.`

// DeviceLister is the discovery slice of the adb client.
type DeviceLister interface {
	Devices(ctx context.Context) ([]adb.Device, error)
}

// ControllerConnector extends the registry port with handle minting, which
// the connect tool needs.
type ControllerConnector interface {
	ports.ControllerRegistry
	Connect(kind ports.ControllerKind, serial, label string) ports.Controller
}

// Deps wires the tool handlers to the application layer.
type Deps struct {
	Supervisor *pipeline.Supervisor
	Registry   ControllerConnector
	Devices    DeviceLister
	Capture    ports.CaptureProvider
	Recognizer ports.TextRecognizer
	Actuator   ports.Actuator
	Obs        ports.Observability
}

// Server owns the MCP server instance and its registered tools.
type Server struct {
	mcp        *server.MCPServer
	sup        *pipeline.Supervisor
	registry   ControllerConnector
	devices    DeviceLister
	capture    ports.CaptureProvider
	recognizer ports.TextRecognizer
	actuator   ports.Actuator
	obs        ports.Observability
}

func New(version string, deps Deps) *Server {
	s := &Server{
		sup:        deps.Supervisor,
		registry:   deps.Registry,
		devices:    deps.Devices,
		capture:    deps.Capture,
		recognizer: deps.Recognizer,
		actuator:   deps.Actuator,
		obs:        deps.Obs,
	}
	if s.obs == nil {
		s.obs = observability.Nop{}
	}

	s.mcp = server.NewMCPServer(serverName, version,
		server.WithInstructions(instructions),
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.registerDeviceTools()
	s.registerPipelineTools()
	return s
}

// Listen serves MCP over the given streams until ctx is cancelled or the
// input closes. Stdout must carry nothing but protocol frames.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) registerDeviceTools() {
	s.mcp.AddTool(mcp.NewTool("find_adb_device_list",
		mcp.WithDescription("Scan for ADB devices reachable from this host. Returns a JSON list of {serial, state, model}."),
	), s.handleFindDevices)

	s.mcp.AddTool(mcp.NewTool("connect_adb_device",
		mcp.WithDescription("Bind an ADB device and return its controller_id. Reconnecting the same serial returns the existing controller_id."),
		mcp.WithString("serial", mcp.Required(), mcp.Description("Device serial from find_adb_device_list")),
	), s.handleConnectDevice)

	s.mcp.AddTool(mcp.NewTool("screencap",
		mcp.WithDescription("Capture one screenshot and return the saved image path."),
		mcp.WithString("controller_id", mcp.Required()),
	), s.handleScreencap)

	s.mcp.AddTool(mcp.NewTool("ocr",
		mcp.WithDescription("Extract visible text regions. Returns a JSON list of {text, x, y, width, height, score}."),
		mcp.WithString("controller_id", mcp.Required()),
	), s.handleOCR)

	s.mcp.AddTool(mcp.NewTool("click",
		mcp.WithDescription("Tap the screen at (x, y)."),
		mcp.WithString("controller_id", mcp.Required()),
		mcp.WithNumber("x", mcp.Required()),
		mcp.WithNumber("y", mcp.Required()),
	), s.handleClick)

	s.mcp.AddTool(mcp.NewTool("double_click",
		mcp.WithDescription("Tap the screen twice at (x, y)."),
		mcp.WithString("controller_id", mcp.Required()),
		mcp.WithNumber("x", mcp.Required()),
		mcp.WithNumber("y", mcp.Required()),
	), s.handleDoubleClick)

	s.mcp.AddTool(mcp.NewTool("swipe",
		mcp.WithDescription("Swipe from (x1, y1) to (x2, y2). Use for scrolling on Android."),
		mcp.WithString("controller_id", mcp.Required()),
		mcp.WithNumber("x1", mcp.Required()),
		mcp.WithNumber("y1", mcp.Required()),
		mcp.WithNumber("x2", mcp.Required()),
		mcp.WithNumber("y2", mcp.Required()),
		mcp.WithNumber("duration_ms", mcp.DefaultNumber(300)),
	), s.handleSwipe)

	s.mcp.AddTool(mcp.NewTool("press_key",
		mcp.WithDescription("Press a key, e.g. back, home, enter, or a raw keycode number."),
		mcp.WithString("controller_id", mcp.Required()),
		mcp.WithString("key", mcp.Required()),
	), s.handlePressKey)

	s.mcp.AddTool(mcp.NewTool("input_text",
		mcp.WithDescription("Type text into the focused input field."),
		mcp.WithString("controller_id", mcp.Required()),
		mcp.WithString("text", mcp.Required()),
	), s.handleInputText)
}

func (s *Server) registerPipelineTools() {
	s.mcp.AddTool(mcp.NewTool("start_pipeline",
		mcp.WithDescription("Start the background monitoring pipeline for a controller. It samples the screen at the given rate and queues new information for get_new_messages. Only one pipeline runs at a time."),
		mcp.WithString("controller_id", mcp.Required()),
		mcp.WithNumber("fps", mcp.DefaultNumber(2.0), mcp.Description("Samples per second, must be positive")),
	), s.handleStartPipeline)

	s.mcp.AddTool(mcp.NewTool("stop_pipeline",
		mcp.WithDescription("Stop the running pipeline. Undrained messages remain available via get_new_messages."),
	), s.handleStopPipeline)

	s.mcp.AddTool(mcp.NewTool("get_new_messages",
		mcp.WithDescription("Drain up to max_count queued messages in FIFO order without blocking. Drained messages are not returned again."),
		mcp.WithNumber("max_count", mcp.DefaultNumber(10)),
	), s.handleGetNewMessages)

	s.mcp.AddTool(mcp.NewTool("get_pipeline_status",
		mcp.WithDescription("Report pipeline state: {is_running, controller_id, uptime, pending, frame_count, new_messages}."),
	), s.handlePipelineStatus)

	s.mcp.AddTool(mcp.NewTool("send_reply",
		mcp.WithDescription("Tap the configured input field, type the text, and tap send on the pipeline's controller. Text mode only."),
		mcp.WithString("text", mcp.Required()),
	), s.handleSendReply)
}
