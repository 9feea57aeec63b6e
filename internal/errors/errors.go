package errors

import (
	"errors"
	"fmt"
	"time"
)

// BridgeError is the base interface for all bridge errors.
type BridgeError interface {
	error
	IsBridgeError() bool
	// Code returns the classification code for this error.
	Code() Code
}

// Compile-time verification that all error types implement BridgeError.
var (
	_ BridgeError = (*CLINotFoundError)(nil)
	_ BridgeError = (*InvalidConfigError)(nil)
	_ BridgeError = (*TimeoutError)(nil)
	_ BridgeError = (*ProcessExitError)(nil)
	_ BridgeError = (*IncompleteResponseError)(nil)
	_ BridgeError = (*MalformedResultError)(nil)
	_ BridgeError = (*BudgetExceededError)(nil)
	_ BridgeError = (*CancelledError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrTransportNotStarted indicates the transport was used before Start.
	ErrTransportNotStarted = errors.New("transport not started")

	// ErrStdinClosed indicates stdin was closed due to context cancellation.
	ErrStdinClosed = errors.New("stdin closed")
)

// CLINotFoundError indicates the Claude CLI binary was not found.
type CLINotFoundError struct {
	SearchedPaths []string
}

func (e *CLINotFoundError) Error() string {
	return fmt.Sprintf("claude CLI not found in: %v", e.SearchedPaths)
}

// IsBridgeError implements BridgeError.
func (e *CLINotFoundError) IsBridgeError() bool { return true }

// Code implements BridgeError.
func (e *CLINotFoundError) Code() Code { return CodeCLINotFound }

// InvalidConfigError indicates the invocation config was rejected before
// any process was spawned.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid invocation config: %s", e.Reason)
}

// IsBridgeError implements BridgeError.
func (e *InvalidConfigError) IsBridgeError() bool { return true }

// Code implements BridgeError.
func (e *InvalidConfigError) Code() Code { return CodeInvalidConfig }

// TimeoutError indicates the invocation exceeded its hard deadline and the
// process was terminated.
type TimeoutError struct {
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("invocation timed out after %s", e.Limit)
}

// IsBridgeError implements BridgeError.
func (e *TimeoutError) IsBridgeError() bool { return true }

// Code implements BridgeError.
func (e *TimeoutError) Code() Code { return CodeInvocationTimeout }

// ProcessExitError indicates the process exited non-zero without emitting a
// parseable terminal event.
type ProcessExitError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("process failed (exit %d): %s", e.ExitCode, e.Stderr)
	}

	if e.Err != nil {
		return fmt.Sprintf("process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("process failed (exit %d)", e.ExitCode)
}

func (e *ProcessExitError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *ProcessExitError) IsBridgeError() bool { return true }

// Code implements BridgeError.
func (e *ProcessExitError) Code() Code { return CodeProcessNonZeroExit }

// IncompleteResponseError indicates stdout closed before a terminal event
// was observed, with the process exiting cleanly.
type IncompleteResponseError struct {
	EventsSeen int
}

func (e *IncompleteResponseError) Error() string {
	return fmt.Sprintf("stream ended with no terminal event after %d events", e.EventsSeen)
}

// IsBridgeError implements BridgeError.
func (e *IncompleteResponseError) IsBridgeError() bool { return true }

// Code implements BridgeError.
func (e *IncompleteResponseError) Code() Code { return CodeIncompleteResponse }

// MalformedResultError indicates a terminal event arrived but was missing
// required fields.
type MalformedResultError struct {
	Missing string
	Data    map[string]any
}

func (e *MalformedResultError) Error() string {
	if e.Missing == "" {
		return "terminal event is malformed"
	}

	return fmt.Sprintf("terminal event missing required field %q", e.Missing)
}

// IsBridgeError implements BridgeError.
func (e *MalformedResultError) IsBridgeError() bool { return true }

// Code implements BridgeError.
func (e *MalformedResultError) Code() Code { return CodeMalformedTerminalEvent }

// BudgetExceededError indicates cumulative cost passed the configured ceiling.
type BudgetExceededError struct {
	CostUSD  float64
	LimitUSD float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("cost $%.4f exceeded budget $%.4f", e.CostUSD, e.LimitUSD)
}

// IsBridgeError implements BridgeError.
func (e *BudgetExceededError) IsBridgeError() bool { return true }

// Code implements BridgeError.
func (e *BudgetExceededError) Code() Code { return CodeBudgetExceeded }

// CancelledError indicates the invocation was cancelled by the caller or by
// a downstream disconnect, and the process was terminated.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invocation cancelled: %v", e.Err)
	}

	return "invocation cancelled"
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *CancelledError) IsBridgeError() bool { return true }

// Code implements BridgeError.
func (e *CancelledError) Code() Code { return CodeCancelled }

// JSONDecodeError indicates a stdout line failed to decode as JSON.
// These are non-fatal: the line is counted and skipped.
type JSONDecodeError struct {
	RawLine string
	Err     error
}

func (e *JSONDecodeError) Error() string {
	return fmt.Sprintf("failed to decode JSON line: %v", e.Err)
}

func (e *JSONDecodeError) Unwrap() error {
	return e.Err
}
