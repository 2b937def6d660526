// Package mcpserver exposes analysis and follow-up chat as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"medassist-backend/internal/extractor"
	"medassist-backend/internal/model"
	"medassist-backend/pkg/logger"
)

type MedicalService interface {
	AnalyzeDocument(ctx context.Context, doc extractor.Document, symptoms string) (*model.AnalyzeResponse, error)
	ContinueChat(ctx context.Context, sessionID, message string) (string, error)
	Session(ctx context.Context, sessionID string) (*model.SessionResponse, error)
}

func New(svc MedicalService, version string) *server.MCPServer {
	s := server.NewMCPServer("medassist", version, server.WithToolCapabilities(true))

	s.AddTool(analyzeTool(), handleAnalyze(svc))
	s.AddTool(chatTool(), handleChat(svc))
	s.AddTool(sessionTool(), handleSession(svc))
	return s
}

// Serve blocks on stdio until the client disconnects.
func Serve(svc MedicalService, version string) error {
	return server.ServeStdio(New(svc, version))
}

func analyzeTool() mcp.Tool {
	return mcp.NewTool("analyze_medical_history",
		mcp.WithDescription("Summarize a medical-history PDF and suggest care for the current symptoms. Returns a session_id for follow-up questions."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file on the server's filesystem"),
		),
		mcp.WithString("symptoms",
			mcp.Required(),
			mcp.Description("The patient's current problem or symptoms"),
		),
	)
}

func chatTool() mcp.Tool {
	return mcp.NewTool("continue_medical_chat",
		mcp.WithDescription("Ask a follow-up question about a previous analysis. Only the last 3 exchanges are remembered."),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by analyze_medical_history"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The follow-up question"),
		),
	)
}

func sessionTool() mcp.Tool {
	return mcp.NewTool("get_medical_session",
		mcp.WithDescription("Show the stored analysis and chat history of a session"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Session id returned by analyze_medical_history"),
		),
	)
}

func handleAnalyze(svc MedicalService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		symptoms, err := request.RequireString("symptoms")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read %s: %v", path, err)), nil
		}

		resp, err := svc.AnalyzeDocument(ctx, extractor.Document{Name: filepath.Base(path), Data: data}, symptoms)
		if err != nil {
			logger.WithFields(logger.Fields{"tool": "analyze_medical_history", "path": path}).Warnf("tool failed: %v", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(resp)
	}
}

func handleChat(svc MedicalService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		message, err := request.RequireString("message")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		reply, err := svc.ContinueChat(ctx, sessionID, message)
		if err != nil {
			logger.WithFields(logger.Fields{"tool": "continue_medical_chat", "session_id": sessionID}).Warnf("tool failed: %v", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(reply), nil
	}
}

func handleSession(svc MedicalService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := request.RequireString("session_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp, err := svc.Session(ctx, sessionID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(resp)
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}
