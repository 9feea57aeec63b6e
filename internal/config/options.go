package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/streamweld/claude-bridge/internal/errors"
)

// DefaultTerminationGrace is the window a cancelled process gets between
// SIGTERM and SIGKILL when Options.TerminationGrace is zero.
const DefaultTerminationGrace = 5 * time.Second

// ImageAttachment is an image sent alongside the prompt.
type ImageAttachment struct {
	// Data is the raw image content (not base64 encoded).
	Data []byte

	// MediaType is the IANA media type, e.g. "image/png" or "image/jpeg".
	MediaType string
}

// Options configures a single bridge invocation.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// SystemPrompt is the system message to send to Claude.
	SystemPrompt string

	// Model selects the Claude model, by alias (e.g. "haiku") or full API id.
	// If empty, the CLI picks its own default.
	Model string

	// MaxTurns limits the number of agentic turns the CLI may take.
	// Zero passes no limit.
	MaxTurns int

	// MaxBudgetUSD sets a cost ceiling for the invocation in USD.
	// If nil, no budget limit is imposed. The ceiling is forwarded to the
	// CLI and re-checked against the reported total cost once the terminal
	// event arrives.
	MaxBudgetUSD *float64

	// Timeout bounds the whole invocation, spawn to exit.
	// Zero means no timeout.
	Timeout time.Duration

	// AllowedTools is the tool allow-list. nil passes no allow-list flag;
	// an empty non-nil slice is an explicit empty allow-list and disables
	// all tools.
	AllowedTools []string

	// DisallowedTools is a list of tools that are explicitly blocked.
	DisallowedTools []string

	// Resume is the session id to resume. nil starts a fresh session.
	// A non-nil empty id fails validation before any process is spawned.
	Resume *string

	// ContinueConversation resumes the most recent session instead of a
	// specific id.
	ContinueConversation bool

	// ForkSession gives the resumed conversation a new session id.
	ForkSession bool

	// Images are attachments included with the prompt. When present the
	// prompt travels over stdin as a streamed user message instead of argv.
	Images []ImageAttachment

	// CliPath is the explicit path to the claude CLI binary.
	// If empty, the CLI is searched in PATH and common install directories.
	CliPath string

	// Env provides additional environment variables for the CLI process.
	Env map[string]string

	// TerminationGrace is how long a cancelled process gets between SIGTERM
	// and SIGKILL. Zero selects DefaultTerminationGrace.
	TerminationGrace time.Duration

	// IncludePartialMessages enables streaming of partial message updates.
	IncludePartialMessages bool

	// MaxBufferSize caps a single stdout line read from the CLI.
	// If nil, uses default buffering.
	MaxBufferSize *int

	// Stderr is a callback function for handling stderr output.
	Stderr func(string)

	// Transport allows injecting a custom transport implementation.
	// If nil, the default CLI subprocess transport is created automatically.
	// This field is not serialized to JSON.
	Transport Transport `json:"-"`
}

// Validate rejects option combinations the CLI would either silently
// ignore or fail on with an opaque error. It runs before any process is
// spawned; every failure is an InvalidConfigError.
func (o *Options) Validate() error {
	if o.MaxTurns < 0 {
		return &errors.InvalidConfigError{Reason: "max turns must not be negative"}
	}

	if o.MaxBudgetUSD != nil && *o.MaxBudgetUSD <= 0 {
		return &errors.InvalidConfigError{Reason: "max budget must be positive"}
	}

	if o.Timeout < 0 {
		return &errors.InvalidConfigError{Reason: "timeout must not be negative"}
	}

	if o.TerminationGrace < 0 {
		return &errors.InvalidConfigError{Reason: "termination grace must not be negative"}
	}

	if o.Resume != nil && strings.TrimSpace(*o.Resume) == "" {
		return &errors.InvalidConfigError{Reason: "resume requires a non-empty session id"}
	}

	if o.Resume != nil && o.ContinueConversation {
		return &errors.InvalidConfigError{Reason: "resume and continue-conversation are mutually exclusive"}
	}

	if o.ForkSession && o.Resume == nil && !o.ContinueConversation {
		return &errors.InvalidConfigError{Reason: "fork-session requires resume or continue-conversation"}
	}

	for i, img := range o.Images {
		if len(img.Data) == 0 {
			return &errors.InvalidConfigError{Reason: fmt.Sprintf("image attachment %d has no data", i)}
		}

		if img.MediaType == "" {
			return &errors.InvalidConfigError{Reason: fmt.Sprintf("image attachment %d has no media type", i)}
		}
	}

	return nil
}
