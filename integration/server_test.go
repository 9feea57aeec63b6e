//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claudebridge "github.com/streamweld/claude-bridge"
	"github.com/streamweld/claude-bridge/internal/api"
	"github.com/streamweld/claude-bridge/internal/auth"
	"github.com/streamweld/claude-bridge/internal/cli"
)

// startServer runs the full router with auth open, as when no keys are
// configured.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := api.NewServer(log, api.Config{ChatTimeout: 60 * time.Second}, auth.NewVerifier(log, nil))

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return ts
}

func skipWithoutCLI(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := cli.Discover(ctx, &cli.Config{SkipVersionCheck: true}); err != nil {
		t.Skip("Claude CLI not installed")
	}
}

func TestServer_Health(t *testing.T) {
	ts := startServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, claudebridge.Version, body["version"])
}

func TestServer_Chat(t *testing.T) {
	skipWithoutCLI(t)

	ts := startServer(t)

	payload, err := json.Marshal(map[string]any{
		"prompt": "What is 2+2? Reply with just the number.",
		"model":  "haiku",
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/llm/chat", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Text      string `json:"text"`
		Model     string `json:"model"`
		IsError   bool   `json:"is_error"`
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	t.Logf("Response: %+v", body)
	assert.False(t, body.IsError)
	assert.True(t, containsFour(body.Text), "expected the answer to 2+2, got %q", body.Text)
	assert.NotEmpty(t, body.SessionID)
}

func TestServer_ChatStream(t *testing.T) {
	skipWithoutCLI(t)

	ts := startServer(t)

	payload, err := json.Marshal(map[string]any{
		"prompt": "What is 2+2? Reply with just the number.",
		"model":  "haiku",
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/llm/chat/stream", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	frames := bytes.Count(raw, []byte("data: "))
	assert.GreaterOrEqual(t, frames, 2, "at least a start and a terminal frame")
	assert.Contains(t, string(raw), `"type":"start"`)
	assert.Contains(t, string(raw), `"type":"end"`)
}

func TestServer_JSONExtraction(t *testing.T) {
	skipWithoutCLI(t)

	ts := startServer(t)

	payload, err := json.Marshal(map[string]any{
		"prompt": `Return a JSON object {"answer": <the result of 2+2>} and nothing else.`,
		"model":  "haiku",
		"schema": map[string]any{
			"type":     "object",
			"required": []string{"answer"},
			"properties": map[string]any{
				"answer": map[string]any{"type": "integer"},
			},
		},
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/llm/json", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	var doc struct {
		Answer int `json:"answer"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &doc))
	assert.Equal(t, 4, doc.Answer)
}
