package claudebridge

import (
	"log/slog"
	"time"
)

// Option configures invocation Options using the functional options
// pattern. This is the primary option type for Invoke and Stream.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithModel specifies which Claude model to use, by alias ("haiku") or
// API identifier ("claude-sonnet-4-5-20250929").
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithSystemPrompt sets the system message for the invocation.
func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

// WithMaxTurns limits the number of conversation turns.
func WithMaxTurns(maxTurns int) Option {
	return func(o *Options) {
		o.MaxTurns = maxTurns
	}
}

// WithMaxBudgetUSD sets a cost ceiling for the invocation in USD. The
// ceiling is passed to the CLI and re-checked against the terminal
// event's reported cost.
func WithMaxBudgetUSD(budget float64) Option {
	return func(o *Options) {
		o.MaxBudgetUSD = &budget
	}
}

// WithTimeout sets the hard wall-clock deadline for the invocation.
// When it expires the process is terminated and the invocation resolves
// as timed out. Zero means no deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// ===== Tools =====

// WithAllowedTools sets the tools the CLI may use without prompting.
// Calling it with no arguments sets an explicitly empty allow-list,
// which disables all tools; not calling it leaves tool policy to the
// CLI's defaults.
func WithAllowedTools(tools ...string) Option {
	return func(o *Options) {
		o.AllowedTools = append([]string{}, tools...)
	}
}

// WithDisallowedTools sets tools that are explicitly blocked.
func WithDisallowedTools(tools ...string) Option {
	return func(o *Options) {
		o.DisallowedTools = append([]string{}, tools...)
	}
}

// ===== Session =====

// WithContinueConversation continues the most recent conversation
// instead of starting a fresh one.
func WithContinueConversation(cont bool) Option {
	return func(o *Options) {
		o.ContinueConversation = cont
	}
}

// WithResume resumes the conversation with the given session ID. An
// empty ID is rejected by validation before any process is spawned.
func WithResume(sessionID string) Option {
	return func(o *Options) {
		o.Resume = &sessionID
	}
}

// WithForkSession forks the resumed conversation to a new session ID
// instead of appending to the original.
func WithForkSession(fork bool) Option {
	return func(o *Options) {
		o.ForkSession = fork
	}
}

// ===== Images =====

// WithImage attaches an image to the prompt. Image attachments switch
// the invocation to stream-json input: the prompt and images are
// delivered as a single user message over stdin.
func WithImage(data []byte, mediaType string) Option {
	return func(o *Options) {
		o.Images = append(o.Images, ImageAttachment{Data: data, MediaType: mediaType})
	}
}

// ===== Process =====

// WithCliPath sets the explicit path to the claude CLI binary.
// If not set, the CLI will be searched in PATH.
func WithCliPath(path string) Option {
	return func(o *Options) {
		o.CliPath = path
	}
}

// WithEnv provides additional environment variables for the CLI process.
// ANTHROPIC_API_KEY is stripped from the child environment regardless.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithTerminationGrace sets the window between SIGTERM and SIGKILL when
// the invocation is shut down.
func WithTerminationGrace(grace time.Duration) Option {
	return func(o *Options) {
		o.TerminationGrace = grace
	}
}

// WithIncludePartialMessages enables incremental text deltas from the
// CLI. Stream enables this itself.
func WithIncludePartialMessages(include bool) Option {
	return func(o *Options) {
		o.IncludePartialMessages = include
	}
}

// WithMaxBufferSize sets the maximum bytes for a single CLI stdout line.
func WithMaxBufferSize(size int) Option {
	return func(o *Options) {
		o.MaxBufferSize = &size
	}
}

// WithStderr sets a callback invoked with each CLI stderr line.
func WithStderr(handler func(string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// WithTransport injects a custom transport implementation.
// The transport must implement the Transport interface.
func WithTransport(transport Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}
