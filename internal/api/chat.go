package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	claudebridge "github.com/streamweld/claude-bridge"
	"github.com/streamweld/claude-bridge/internal/jsonx"
)

//nolint:tagliatelle // wire format is snake_case
type chatResponse struct {
	Text         string   `json:"text"`
	Model        string   `json:"model"`
	IsError      bool     `json:"is_error"`
	ErrorMessage string   `json:"error_message,omitempty"`
	SessionID    string   `json:"session_id,omitempty"`
	NumTurns     int      `json:"num_turns,omitempty"`
	CostUSD      *float64 `json:"cost_usd,omitempty"`
	DurationMs   int64    `json:"duration_ms,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	model, opts, err := s.buildInvocation(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	summary, err := s.invoke(r.Context(), req.Prompt, opts...)
	if err != nil {
		s.respondInvokeError(w, model, err)

		return
	}

	writeJSON(w, http.StatusOK, summaryResponse(model, summary))
}

func summaryResponse(model *claudebridge.Model, sum *claudebridge.ResultSummary) chatResponse {
	resp := chatResponse{
		Text:       sum.Text,
		Model:      model.Alias,
		IsError:    sum.IsError,
		SessionID:  sum.SessionID,
		NumTurns:   sum.NumTurns,
		CostUSD:    sum.CostUSD,
		DurationMs: sum.DurationMs,
	}

	if sum.IsError {
		resp.ErrorMessage = errorMessage(sum)
	}

	return resp
}

func errorMessage(sum *claudebridge.ResultSummary) string {
	if sum.Classification != "" {
		return string(sum.Classification)
	}

	if sum.Subtype != "" {
		return sum.Subtype
	}

	return "execution failed"
}

// respondInvokeError maps a failure with no usable terminal event onto
// a status code. Subprocess failures stay 200 with is_error set so
// callers can tell "the bridge broke" apart from "the run failed".
func (s *Server) respondInvokeError(w http.ResponseWriter, model *claudebridge.Model, err error) {
	switch claudebridge.CodeOf(err) {
	case claudebridge.CodeInvalidConfig:
		writeError(w, http.StatusBadRequest, err.Error())
	case claudebridge.CodeCLINotFound:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case claudebridge.CodeInvocationTimeout:
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeJSON(w, http.StatusOK, chatResponse{
			Model:        model.Alias,
			IsError:      true,
			ErrorMessage: err.Error(),
		})
	}
}

type sseFrame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	model, opts, err := s.buildInvocation(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	// Pre-spawn failures surface synchronously and still get a JSON
	// error response; once streaming starts, errors ride the SSE frames.
	chunks, err := s.stream(r.Context(), req.Prompt, opts...)
	if err != nil {
		s.respondInvokeError(w, model, err)

		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")

		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for chunk := range chunks {
		switch chunk.Type {
		case claudebridge.ChunkTypeStart:
			writeSSE(w, flusher, sseFrame{Type: "start"})
		case claudebridge.ChunkTypeText:
			writeSSE(w, flusher, sseFrame{Type: "chunk", Text: chunk.Text})
		case claudebridge.ChunkTypeEnd:
			writeSSE(w, flusher, sseFrame{Type: "end"})
		case claudebridge.ChunkTypeError:
			writeSSE(w, flusher, sseFrame{Type: "error", Message: chunk.Err.Error()})
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, frame sseFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}

//nolint:tagliatelle // wire format is snake_case
type jsonResponse struct {
	Data      json.RawMessage `json:"data"`
	Model     string          `json:"model"`
	SessionID string          `json:"session_id,omitempty"`
	CostUSD   *float64        `json:"cost_usd,omitempty"`
}

// handleJSON runs an aggregate invocation and extracts a JSON document
// from the response text, optionally validating it against a schema
// supplied with the request.
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	model, opts, err := s.buildInvocation(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())

		return
	}

	// Reject a bad schema before paying for an invocation.
	var schema *jsonx.Schema
	if req.hasSchema() {
		schema, err = jsonx.CompileSchema(req.Schema)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())

			return
		}
	}

	summary, err := s.invoke(r.Context(), req.Prompt, opts...)
	if err != nil {
		switch claudebridge.CodeOf(err) {
		case claudebridge.CodeInvalidConfig:
			writeError(w, http.StatusBadRequest, err.Error())
		case claudebridge.CodeCLINotFound:
			writeError(w, http.StatusServiceUnavailable, err.Error())
		case claudebridge.CodeInvocationTimeout:
			writeError(w, http.StatusGatewayTimeout, err.Error())
		default:
			writeError(w, http.StatusUnprocessableEntity, "invocation failed: "+err.Error())
		}

		return
	}

	if summary.IsError {
		writeError(w, http.StatusUnprocessableEntity, "model run failed: "+errorMessage(summary))

		return
	}

	doc, err := jsonx.Extract(summary.Text)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())

		return
	}

	if schema != nil {
		if err := schema.Validate(doc); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())

			return
		}
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		Data:      doc,
		Model:     model.Alias,
		SessionID: summary.SessionID,
		CostUSD:   summary.CostUSD,
	})
}
