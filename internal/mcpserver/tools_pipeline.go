package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/KhazixW2/MaaMCP/internal/domain"
)

func (s *Server) handleStartPipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controllerID, err := req.RequireString("controller_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fps := req.GetFloat("fps", 2.0)

	if err := s.sup.Start(controllerID, fps); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ failed to start pipeline: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("✅ pipeline started (controller: %s, fps: %g)", controllerID, fps)), nil
}

func (s *Server) handleStopPipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	wasRunning := s.sup.Status().IsRunning
	if err := s.sup.Stop(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ failed to stop pipeline: %v", err)), nil
	}
	if !wasRunning {
		return mcp.NewToolResultText("⚠️ pipeline was not running"), nil
	}
	return mcp.NewToolResultText("✅ pipeline stopped"), nil
}

func (s *Server) handleGetNewMessages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	max := req.GetInt("max_count", 10)
	msgs := s.sup.Drain(max)
	out, err := renderMessages(msgs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ encode messages: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handlePipelineStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := renderStatus(s.sup.Status())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ encode status: %v", err)), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) handleSendReply(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.sup.SendReply(ctx, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("❌ failed to send reply: %v", err)), nil
	}
	return mcp.NewToolResultText("✅ reply sent"), nil
}

// renderMessages serializes drained messages with the stable consumer-facing
// field names. An empty drain renders as an empty JSON array, not null.
func renderMessages(msgs []domain.Message) (string, error) {
	if len(msgs) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func renderStatus(st domain.Status) (string, error) {
	raw, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
