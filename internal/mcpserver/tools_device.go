package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/KhazixW2/MaaMCP/internal/ports"
)

func (s *Server) handleFindDevices(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := s.devices.Devices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ adb discovery failed: %v", err)), nil
	}
	if len(devices) == 0 {
		return mcp.NewToolResultText("[]"), nil
	}
	raw, err := json.Marshal(devices)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ encode devices: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleConnectDevice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	serial, err := req.RequireString("serial")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	devices, err := s.devices.Devices(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ adb discovery failed: %v", err)), nil
	}
	var label string
	found := false
	for _, d := range devices {
		if d.Serial == serial {
			if d.State != "device" {
				return mcp.NewToolResultError(fmt.Sprintf("❌ device %s is %s, not ready", serial, d.State)), nil
			}
			label = d.Model
			found = true
			break
		}
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("❌ no device with serial %q; run find_adb_device_list first", serial)), nil
	}

	ctrl := s.registry.Connect(ports.ControllerADB, serial, label)
	s.obs.LogInfo("controller_connected",
		ports.Field{Key: "controller_id", Value: ctrl.ID},
		ports.Field{Key: "serial", Value: serial},
	)
	return mcp.NewToolResultText(fmt.Sprintf("✅ connected (controller_id: %s)", ctrl.ID)), nil
}

func (s *Server) handleScreencap(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controllerID, err := req.RequireString("controller_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.capture.Capture(ctx, controllerID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ screencap failed: %v", err)), nil
	}
	if path == "" {
		return mcp.NewToolResultError("❌ device returned no frame, try again"), nil
	}
	return mcp.NewToolResultText(path), nil
}

func (s *Server) handleOCR(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controllerID, err := req.RequireString("controller_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	regions, err := s.recognizer.Recognize(ctx, controllerID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ text recognition failed: %v", err)), nil
	}
	if len(regions) == 0 {
		return mcp.NewToolResultText("[]"), nil
	}
	raw, err := json.Marshal(regions)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ encode regions: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *Server) handleClick(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controllerID, err := req.RequireString("controller_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x := req.GetInt("x", 0)
	y := req.GetInt("y", 0)
	if err := s.actuator.Tap(ctx, controllerID, x, y); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ click failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ clicked (%d, %d)", x, y)), nil
}

func (s *Server) handleDoubleClick(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controllerID, err := req.RequireString("controller_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x := req.GetInt("x", 0)
	y := req.GetInt("y", 0)
	for i := 0; i < 2; i++ {
		if err := s.actuator.Tap(ctx, controllerID, x, y); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("❌ double click failed: %v", err)), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ double clicked (%d, %d)", x, y)), nil
}

func (s *Server) handleSwipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controllerID, err := req.RequireString("controller_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	x1 := req.GetInt("x1", 0)
	y1 := req.GetInt("y1", 0)
	x2 := req.GetInt("x2", 0)
	y2 := req.GetInt("y2", 0)
	durationMs := req.GetInt("duration_ms", 300)

	err = s.actuator.Swipe(ctx, controllerID, x1, y1, x2, y2, time.Duration(durationMs)*time.Millisecond)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ swipe failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ swiped (%d, %d) → (%d, %d)", x1, y1, x2, y2)), nil
}

func (s *Server) handlePressKey(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controllerID, err := req.RequireString("controller_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.actuator.PressKey(ctx, controllerID, key); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ press key failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ pressed %s", key)), nil
}

func (s *Server) handleInputText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controllerID, err := req.RequireString("controller_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.actuator.TypeText(ctx, controllerID, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ input text failed: %v", err)), nil
	}
	return mcp.NewToolResultText("✅ text entered"), nil
}
