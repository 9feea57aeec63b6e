package claudebridge

import "github.com/streamweld/claude-bridge/internal/errors"

// Re-export error types from internal package

// BridgeError is the base interface for all bridge errors.
type BridgeError = errors.BridgeError

// CLINotFoundError indicates the Claude CLI binary was not found.
type CLINotFoundError = errors.CLINotFoundError

// InvalidConfigError indicates an invocation config rejected before spawn.
type InvalidConfigError = errors.InvalidConfigError

// TimeoutError indicates the invocation's hard deadline expired.
type TimeoutError = errors.TimeoutError

// ProcessExitError indicates the CLI exited non-zero with no usable
// terminal event.
type ProcessExitError = errors.ProcessExitError

// IncompleteResponseError indicates the stream ended before any terminal
// event arrived.
type IncompleteResponseError = errors.IncompleteResponseError

// MalformedResultError indicates a terminal event missing required fields.
type MalformedResultError = errors.MalformedResultError

// BudgetExceededError indicates cumulative cost exceeded the ceiling.
type BudgetExceededError = errors.BudgetExceededError

// CancelledError indicates caller cancellation or client disconnect.
type CancelledError = errors.CancelledError

// JSONDecodeError indicates a single undecodable stdout line. It is
// non-fatal; the parser skips the line and continues.
type JSONDecodeError = errors.JSONDecodeError

// Code identifies one classification in the closed failure taxonomy.
type Code = errors.Code

// Classification codes, mirrored on ResultSummary.Classification and on
// every BridgeError.
const (
	// CodeInvocationTimeout classifies a hard-deadline expiry.
	CodeInvocationTimeout = errors.CodeInvocationTimeout
	// CodeProcessNonZeroExit classifies a non-zero exit with no parseable
	// terminal event.
	CodeProcessNonZeroExit = errors.CodeProcessNonZeroExit
	// CodeIncompleteResponse classifies EOF before any terminal event.
	CodeIncompleteResponse = errors.CodeIncompleteResponse
	// CodeMalformedTerminalEvent classifies a terminal event with missing
	// required fields.
	CodeMalformedTerminalEvent = errors.CodeMalformedTerminalEvent
	// CodeBudgetExceeded classifies cumulative cost over the ceiling.
	CodeBudgetExceeded = errors.CodeBudgetExceeded
	// CodeTurnsExceeded classifies a process-reported turn-ceiling stop.
	CodeTurnsExceeded = errors.CodeTurnsExceeded
	// CodeCancelled classifies caller cancellation or client disconnect.
	CodeCancelled = errors.CodeCancelled
	// CodeInvalidConfig classifies a config rejected before spawn.
	CodeInvalidConfig = errors.CodeInvalidConfig
	// CodeCLINotFound classifies a missing claude binary.
	CodeCLINotFound = errors.CodeCLINotFound
	// CodeFailed classifies a process-reported failure with no more
	// specific subtype.
	CodeFailed = errors.CodeFailed
)

// CodeOf extracts the classification code from err, or "" for errors
// that are not part of the taxonomy.
var CodeOf = errors.CodeOf

// Re-export sentinel errors from internal package.
var (
	// ErrTransportNotStarted indicates the transport was used before Start.
	ErrTransportNotStarted = errors.ErrTransportNotStarted

	// ErrStdinClosed indicates a write to a closed or absent stdin channel.
	ErrStdinClosed = errors.ErrStdinClosed
)
