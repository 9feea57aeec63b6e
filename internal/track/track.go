package track

import (
	"log/slog"

	"github.com/streamweld/claude-bridge/internal/errors"
	"github.com/streamweld/claude-bridge/internal/event"
)

// State is the lifecycle position of one invocation.
type State string

const (
	// StateIdle is the state before the process is spawned.
	StateIdle State = "idle"
	// StateRunning covers spawn through terminal resolution.
	StateRunning State = "running"
	// StateCompleted is a successful terminal event.
	StateCompleted State = "completed"
	// StateBudgetExceeded is a terminal cost past the configured ceiling.
	StateBudgetExceeded State = "budget_exceeded"
	// StateTurnsExceeded is a process-reported turn ceiling hit.
	StateTurnsExceeded State = "turns_exceeded"
	// StateTimedOut is a hard deadline expiry.
	StateTimedOut State = "timed_out"
	// StateCancelled is a caller or downstream cancellation.
	StateCancelled State = "cancelled"
	// StateFailed is any other failure.
	StateFailed State = "failed"
)

// Terminal reports whether the state ends the invocation.
func (s State) Terminal() bool {
	return s != StateIdle && s != StateRunning
}

// Code maps a terminal state to its classification code. Completed and
// non-terminal states have none.
func (s State) Code() errors.Code {
	switch s {
	case StateBudgetExceeded:
		return errors.CodeBudgetExceeded
	case StateTurnsExceeded:
		return errors.CodeTurnsExceeded
	case StateTimedOut:
		return errors.CodeInvocationTimeout
	case StateCancelled:
		return errors.CodeCancelled
	case StateFailed:
		return errors.CodeFailed
	default:
		return ""
	}
}

// Tracker observes the event sequence of one invocation and resolves its
// terminal state. The first terminal transition wins; anything after is
// ignored.
//
// A Tracker belongs to the single goroutine driving the invocation and
// is not safe for concurrent use.
type Tracker struct {
	log    *slog.Logger
	budget *float64

	state       State
	sessionID   string
	costUSD     *float64
	numTurns    int
	eventsSeen  int
	dropped     int
	undecodable int
}

// New creates a Tracker in the Idle state.
//
// budgetUSD is the post-hoc cost ceiling; nil disables the check. Cost
// is only authoritatively known at the terminal event, so mid-stream the
// ceiling is advisory at best. The CLI receives the same ceiling via its
// own flag and may cut the invocation short first.
func New(log *slog.Logger, budgetUSD *float64) *Tracker {
	return &Tracker{
		log:    log.With("component", "tracker"),
		budget: budgetUSD,
		state:  StateIdle,
	}
}

// Start marks the process as spawned. Only valid from Idle.
func (t *Tracker) Start() {
	if t.state != StateIdle {
		return
	}

	t.state = StateRunning
}

// Observe folds one classified event into the tracker.
//
// A Result event resolves the terminal state: turn-ceiling subtypes map
// to TurnsExceeded, a cost past the ceiling to BudgetExceeded, any other
// process-reported error to Failed, and the rest to Completed.
func (t *Tracker) Observe(ev event.RawEvent) {
	if ev == nil || t.state.Terminal() {
		return
	}

	t.eventsSeen++

	switch e := ev.(type) {
	case *event.SystemInit:
		t.sessionID = e.SessionID
	case *event.Unrecognized:
		t.dropped++
		t.log.Debug("Dropped unrecognized event", "event_type", e.Type)
	case *event.Result:
		t.resolveResult(e)
	}
}

// CountUndecodable records one stdout line that failed to decode.
func (t *Tracker) CountUndecodable() {
	t.undecodable++
}

// Fail resolves a terminal state from an invocation error: timeouts map
// to TimedOut, cancellations to Cancelled, everything else to Failed.
func (t *Tracker) Fail(err error) {
	if t.state.Terminal() {
		return
	}

	switch errors.CodeOf(err) {
	case errors.CodeInvocationTimeout:
		t.state = StateTimedOut
	case errors.CodeCancelled:
		t.state = StateCancelled
	default:
		t.state = StateFailed
	}

	t.log.Debug("Invocation failed", "state", t.state, "error", err)
}

func (t *Tracker) resolveResult(res *event.Result) {
	if res.SessionID != "" {
		t.sessionID = res.SessionID
	}

	t.numTurns = res.NumTurns
	t.costUSD = res.TotalCostUSD

	switch {
	case res.Subtype == event.SubtypeErrorMaxTurns:
		t.state = StateTurnsExceeded
	case t.overBudget():
		t.state = StateBudgetExceeded
	case res.IsError:
		t.state = StateFailed
	default:
		t.state = StateCompleted
	}

	t.log.Debug("Terminal event resolved",
		"state", t.state,
		"subtype", res.Subtype,
		"num_turns", t.numTurns,
		"session_id", t.sessionID,
	)
}

func (t *Tracker) overBudget() bool {
	return t.budget != nil && t.costUSD != nil && *t.costUSD > *t.budget
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	return t.state
}

// SessionID returns the session identifier the process announced, or ""
// if none was ever emitted.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// CostUSD returns the cumulative cost, or nil before it is known.
func (t *Tracker) CostUSD() *float64 {
	return t.costUSD
}

// NumTurns returns the turn count from the terminal event.
func (t *Tracker) NumTurns() int {
	return t.numTurns
}

// EventsSeen returns how many classified events were observed.
func (t *Tracker) EventsSeen() int {
	return t.eventsSeen
}

// DroppedLines returns unrecognized events plus undecodable lines.
func (t *Tracker) DroppedLines() int {
	return t.dropped + t.undecodable
}

// BudgetError returns the typed error for a budget-exceeded terminal
// state, or nil in any other state.
func (t *Tracker) BudgetError() error {
	if t.state != StateBudgetExceeded || t.costUSD == nil || t.budget == nil {
		return nil
	}

	return &errors.BudgetExceededError{CostUSD: *t.costUSD, LimitUSD: *t.budget}
}
