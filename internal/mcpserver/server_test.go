package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist-backend/internal/extractor"
	"medassist-backend/internal/metrics"
	"medassist-backend/internal/model"
	"medassist-backend/internal/service"
	"medassist-backend/internal/storage"
	"medassist-backend/internal/testutil"
)

func newService(t *testing.T) *service.MedicalService {
	t.Helper()
	ext, err := extractor.New(extractor.DefaultChunkSize, extractor.DefaultChunkOverlap)
	require.NoError(t, err)

	m := metrics.New()
	chatModel := model.NewOfflineChatModel()
	store := storage.NewMemoryStorage()
	return service.NewMedicalService(ext,
		service.NewAnalysisPipeline(chatModel, m),
		service.NewChatService(store, chatModel, m),
		store, m)
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "unexpected content type %T", result.Content[0])
	return text.Text
}

func TestTools_AnalyzeThenChat(t *testing.T) {
	svc := newService(t)
	path := filepath.Join(t.TempDir(), "history.pdf")
	require.NoError(t, os.WriteFile(path, testutil.PDF(t, "Asthma since childhood, uses inhaler"), 0o600))
	ctx := context.Background()

	result, err := handleAnalyze(svc)(ctx, call("analyze_medical_history", map[string]any{
		"path":     path,
		"symptoms": "shortness of breath",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var analyzed model.AnalyzeResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &analyzed))
	require.NotEmpty(t, analyzed.SessionID)

	result, err = handleChat(svc)(ctx, call("continue_medical_chat", map[string]any{
		"session_id": analyzed.SessionID,
		"message":    "which medicine?",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "shortness of breath")

	result, err = handleSession(svc)(ctx, call("get_medical_session", map[string]any{"session_id": analyzed.SessionID}))
	require.NoError(t, err)
	var session model.SessionResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &session))
	assert.Equal(t, 1, session.HistoryLength)
}

func TestTools_Errors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	result, err := handleAnalyze(svc)(ctx, call("analyze_medical_history", map[string]any{"symptoms": "x"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = handleAnalyze(svc)(ctx, call("analyze_medical_history", map[string]any{
		"path":     filepath.Join(t.TempDir(), "missing.pdf"),
		"symptoms": "x",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = handleChat(svc)(ctx, call("continue_medical_chat", map[string]any{
		"session_id": "unknown",
		"message":    "hello",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "session not found")
}

func TestNew_RegistersTools(t *testing.T) {
	s := New(newService(t), "test")
	require.NotNil(t, s)

	required := map[string][]string{
		"analyze_medical_history": {"path", "symptoms"},
		"continue_medical_chat":   {"session_id", "message"},
		"get_medical_session":     {"session_id"},
	}
	for _, tool := range []mcp.Tool{analyzeTool(), chatTool(), sessionTool()} {
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.ElementsMatch(t, required[tool.Name], tool.InputSchema.Required, tool.Name)
	}
}
