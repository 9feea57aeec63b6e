package claudebridge

import (
	"github.com/streamweld/claude-bridge/internal/config"
	"github.com/streamweld/claude-bridge/internal/event"
	"github.com/streamweld/claude-bridge/internal/track"
)

// Version is the bridge release version, reported by the health endpoint.
const Version = "0.1.0"

// Re-export types from internal packages

// ===== Options and Configuration =====

// Options configures a single invocation of the Claude CLI.
type Options = config.Options

// ImageAttachment is an image delivered to the CLI over stdin.
type ImageAttachment = config.ImageAttachment

// DefaultTerminationGrace is the default window between SIGTERM and
// SIGKILL when an invocation is shut down.
const DefaultTerminationGrace = config.DefaultTerminationGrace

// ===== Token Accounting =====

// Usage holds aggregate token counts for an invocation.
type Usage = event.Usage

// ModelUsage holds per-model token and cost figures.
type ModelUsage = event.ModelUsage

// ===== Invocation Lifecycle =====

// State is the lifecycle position of an invocation.
type State = track.State

const (
	// StateIdle is the state before the process is spawned.
	StateIdle = track.StateIdle
	// StateRunning covers spawn through terminal resolution.
	StateRunning = track.StateRunning
	// StateCompleted is a successful terminal event.
	StateCompleted = track.StateCompleted
	// StateBudgetExceeded is a terminal cost past the configured ceiling.
	StateBudgetExceeded = track.StateBudgetExceeded
	// StateTurnsExceeded is a process-reported turn ceiling hit.
	StateTurnsExceeded = track.StateTurnsExceeded
	// StateTimedOut is a hard deadline expiry.
	StateTimedOut = track.StateTimedOut
	// StateCancelled is a caller or downstream cancellation.
	StateCancelled = track.StateCancelled
	// StateFailed is any other failure.
	StateFailed = track.StateFailed
)

// ===== Results =====

// ResultSummary is the aggregate outcome of one invocation. It is
// returned whenever a usable terminal event was parsed, including
// process-reported failures such as a turn-ceiling stop; IsError and
// Classification carry the failure, so callers keep the session, turn,
// and cost figures that arrived with it.
//
//nolint:tagliatelle // serialized form follows the Claude CLI's snake_case
type ResultSummary struct {
	// Text is the final result text, empty when the process reported an
	// error without a payload.
	Text string `json:"text"`
	// IsError reports whether the invocation failed.
	IsError bool `json:"is_error"`
	// Classification is the failure code, empty on success.
	Classification Code `json:"classification,omitempty"`
	// State is the terminal lifecycle state.
	State State `json:"state"`
	// Subtype is the raw terminal subtype reported by the CLI.
	Subtype string `json:"subtype,omitempty"`
	// SessionID identifies the conversation for resume.
	SessionID string `json:"session_id,omitempty"`
	// NumTurns is the number of conversation turns consumed.
	NumTurns int `json:"num_turns"`
	// CostUSD is the total cost in USD, nil when unreported.
	CostUSD *float64 `json:"cost_usd,omitempty"`
	// Usage holds aggregate token counts, nil when unreported.
	Usage *Usage `json:"usage,omitempty"`
	// ModelUsage holds per-model token and cost figures.
	ModelUsage map[string]ModelUsage `json:"model_usage,omitempty"`
	// DurationMs is the wall-clock duration reported by the CLI.
	DurationMs int64 `json:"duration_ms,omitempty"`
	// DurationAPIMs is the API-time duration reported by the CLI.
	DurationAPIMs int64 `json:"duration_api_ms,omitempty"`
}

// ===== Streaming =====

// ChunkType discriminates the chunks delivered by Stream.
type ChunkType string

const (
	// ChunkTypeStart opens the stream, before any output.
	ChunkTypeStart ChunkType = "start"
	// ChunkTypeText carries an incremental piece of assistant text.
	ChunkTypeText ChunkType = "text"
	// ChunkTypeEnd ends the stream with the aggregate summary.
	ChunkTypeEnd ChunkType = "end"
	// ChunkTypeError ends the stream with a failure.
	ChunkTypeError ChunkType = "error"
)

// StreamChunk is one unit of streaming output. A stream delivers one
// Start chunk, zero or more Text chunks, and then exactly one of End or
// Error before the channel closes.
type StreamChunk struct {
	// Type discriminates the chunk.
	Type ChunkType
	// Text is the delta payload for ChunkTypeText.
	Text string
	// Summary is the aggregate outcome, set on ChunkTypeEnd.
	Summary *ResultSummary
	// Err is the terminal failure, set on ChunkTypeError.
	Err error
}
