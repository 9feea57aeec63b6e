package claudebridge

import (
	"context"

	"github.com/streamweld/claude-bridge/internal/event"
)

// Invoke executes one prompt against the Claude CLI and returns the
// aggregate result.
//
// By default, logging is disabled. Use WithLogger to enable logging:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	sum, err := claudebridge.Invoke(ctx, "What is 2+2?",
//	    claudebridge.WithLogger(logger),
//	    claudebridge.WithModel("haiku"),
//	    claudebridge.WithMaxTurns(1),
//	)
//
// A ResultSummary comes back whenever a usable terminal event was
// parsed, including process-reported failures such as a turn-ceiling
// stop; those carry IsError and a classification code alongside the
// session, turn, and cost figures:
//
//	sum, err := claudebridge.Invoke(ctx, prompt)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if sum.IsError {
//	    log.Printf("invocation failed: %s", sum.Classification)
//	}
//	fmt.Println(sum.Text)
//
// Invoke returns an error only when no usable terminal event exists:
// the config was rejected before spawn (InvalidConfigError), the CLI
// binary is missing (CLINotFoundError), the deadline expired
// (TimeoutError), the caller cancelled (CancelledError), the process
// exited non-zero without a terminal event (ProcessExitError), the
// stream ended early (IncompleteResponseError), or the terminal event
// was unusable (MalformedResultError).
func Invoke(ctx context.Context, prompt string, opts ...Option) (*ResultSummary, error) {
	inv, err := newInvocation("invoke", prompt, opts)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := inv.invocationContext(ctx)
	defer cancel()

	if err := inv.start(runCtx); err != nil {
		return nil, err
	}

	res, err := inv.execute(runCtx, func(event.RawEvent) {})
	if err != nil {
		return nil, err
	}

	if err := inv.budgetKillError(res); err != nil {
		inv.log.Warn("Budget exceeded with no usable payload", "error", err)

		return nil, err
	}

	sum := inv.summarize(res)

	inv.log.Info("Invocation finished",
		"state", sum.State,
		"num_turns", sum.NumTurns,
		"session_id", sum.SessionID,
	)

	return sum, nil
}
