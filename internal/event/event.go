package event

// Kind discriminates the RawEvent variants.
type Kind string

const (
	// KindSystemInit is the session bootstrap line emitted at startup.
	KindSystemInit Kind = "system_init"
	// KindAssistantMessage is a completed assistant turn.
	KindAssistantMessage Kind = "assistant_message"
	// KindUserMessage is a user-role line echoed back mid-invocation,
	// typically carrying tool results.
	KindUserMessage Kind = "user_message"
	// KindContentDelta is an incremental fragment of response text.
	KindContentDelta Kind = "content_delta"
	// KindResult is the terminal event. At most one per invocation.
	KindResult Kind = "result"
	// KindUnrecognized is a decodable line with an unknown or missing
	// type. Non-fatal; counted and skipped.
	KindUnrecognized Kind = "unrecognized"
)

// Terminal event subtypes the CLI is known to emit.
const (
	SubtypeSuccess        = "success"
	SubtypeErrorMaxTurns  = "error_max_turns"
	SubtypeErrorExecution = "error_during_execution"
)

// RawEvent is one decoded line of process output.
// Use a type switch over the concrete variants.
type RawEvent interface {
	EventKind() Kind
}

// Compile-time verification that all variants implement RawEvent.
var (
	_ RawEvent = (*SystemInit)(nil)
	_ RawEvent = (*AssistantMessage)(nil)
	_ RawEvent = (*UserMessage)(nil)
	_ RawEvent = (*ContentDelta)(nil)
	_ RawEvent = (*Result)(nil)
	_ RawEvent = (*Unrecognized)(nil)
)

// SystemInit announces the session the CLI opened for this invocation.
type SystemInit struct {
	SessionID string
	Model     string
}

// EventKind implements RawEvent.
func (e *SystemInit) EventKind() Kind { return KindSystemInit }

// AssistantMessage carries the concatenated text of one completed
// assistant turn. Non-text content blocks are skipped.
type AssistantMessage struct {
	Model string
	Text  string
}

// EventKind implements RawEvent.
func (e *AssistantMessage) EventKind() Kind { return KindAssistantMessage }

// UserMessage marks an echoed user turn. The bridge observes these only
// to count turns in flight; their content is not consumed.
type UserMessage struct{}

// EventKind implements RawEvent.
func (e *UserMessage) EventKind() Kind { return KindUserMessage }

// ContentDelta is a non-empty incremental text fragment.
type ContentDelta struct {
	Text string
}

// EventKind implements RawEvent.
func (e *ContentDelta) EventKind() Kind { return KindContentDelta }

// Result is the terminal event of an invocation.
//
//nolint:tagliatelle // Claude CLI uses snake_case
type Result struct {
	Subtype       string                `json:"subtype"`
	IsError       bool                  `json:"is_error"`
	Result        *string               `json:"result,omitempty"`
	SessionID     string                `json:"session_id"`
	NumTurns      int                   `json:"num_turns"`
	TotalCostUSD  *float64              `json:"total_cost_usd,omitempty"`
	DurationMs    int                   `json:"duration_ms"`
	DurationAPIMs int                   `json:"duration_api_ms"`
	Usage         *Usage                `json:"usage,omitempty"`
	ModelUsage    map[string]ModelUsage `json:"modelUsage,omitempty"`
}

// EventKind implements RawEvent.
func (e *Result) EventKind() Kind { return KindResult }

// Text returns the response text, or "" when absent.
func (e *Result) Text() string {
	if e.Result == nil {
		return ""
	}

	return *e.Result
}

// Unrecognized is a decoded line whose type the bridge does not model.
type Unrecognized struct {
	// Type is the line's type field, or "" when it was missing.
	Type string
}

// EventKind implements RawEvent.
func (e *Unrecognized) EventKind() Kind { return KindUnrecognized }

// Usage contains aggregate token counts from the terminal event.
//
//nolint:tagliatelle // Claude CLI uses snake_case
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// ModelUsage is the per-model token and cost breakdown. Unlike the rest
// of the protocol, the CLI emits camelCase keys inside modelUsage.
type ModelUsage struct {
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	CostUSD      float64 `json:"costUSD"`
}
