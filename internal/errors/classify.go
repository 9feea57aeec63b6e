package errors

import (
	"context"
	"errors"
	"time"
)

// Code identifies one classification in the closed failure taxonomy.
type Code string

const (
	// CodeInvocationTimeout classifies a hard-deadline expiry.
	CodeInvocationTimeout Code = "invocation_timeout"
	// CodeProcessNonZeroExit classifies a non-zero exit with no parseable
	// terminal event.
	CodeProcessNonZeroExit Code = "process_non_zero_exit"
	// CodeIncompleteResponse classifies EOF before any terminal event.
	CodeIncompleteResponse Code = "incomplete_response"
	// CodeMalformedTerminalEvent classifies a terminal event with missing
	// required fields.
	CodeMalformedTerminalEvent Code = "malformed_terminal_event"
	// CodeBudgetExceeded classifies cumulative cost over the ceiling.
	CodeBudgetExceeded Code = "budget_exceeded"
	// CodeTurnsExceeded classifies a process-reported turn-ceiling stop.
	CodeTurnsExceeded Code = "turns_exceeded"
	// CodeCancelled classifies caller cancellation or client disconnect.
	CodeCancelled Code = "cancelled"
	// CodeInvalidConfig classifies a config rejected before spawn.
	CodeInvalidConfig Code = "invalid_config"
	// CodeCLINotFound classifies a missing claude binary. This is an
	// environment error rather than an invocation outcome.
	CodeCLINotFound Code = "cli_not_found"
	// CodeFailed classifies a process-reported failure with no more
	// specific subtype.
	CodeFailed Code = "failed"
)

// CodeOf extracts the classification code from err, or "" for errors that
// are not part of the taxonomy.
func CodeOf(err error) Code {
	var be BridgeError
	if errors.As(err, &be) {
		return be.Code()
	}

	return ""
}

// Outcome carries the signals observed at the end of an invocation.
// Classify resolves them into a single error by precedence: cancellation
// over a non-zero exit, a non-zero exit over parse incompleteness. A
// parsed terminal event suppresses the exit code entirely, so callers must
// only Classify when no usable terminal event exists.
type Outcome struct {
	// Cancelled is the context error when the caller cancelled or
	// disconnected, nil otherwise.
	Cancelled error
	// TimedOut is set when the invocation's hard deadline expired.
	TimedOut bool
	// Timeout is the configured deadline, for the error message.
	Timeout time.Duration
	// ExitErr is the process failure from the invoker, if any.
	ExitErr *ProcessExitError
	// EventsSeen counts protocol events observed before the stream ended.
	EventsSeen int
}

// Classify maps an Outcome to its highest-precedence classification.
func Classify(o Outcome) error {
	switch {
	case o.TimedOut:
		return &TimeoutError{Limit: o.Timeout}
	case o.Cancelled != nil && !errors.Is(o.Cancelled, context.DeadlineExceeded):
		return &CancelledError{Err: o.Cancelled}
	case o.Cancelled != nil:
		return &TimeoutError{Limit: o.Timeout}
	case o.ExitErr != nil:
		return o.ExitErr
	default:
		return &IncompleteResponseError{EventsSeen: o.EventsSeen}
	}
}
