package claudebridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/streamweld/claude-bridge/internal/cli"
	berrors "github.com/streamweld/claude-bridge/internal/errors"
	"github.com/streamweld/claude-bridge/internal/event"
	"github.com/streamweld/claude-bridge/internal/subprocess"
	"github.com/streamweld/claude-bridge/internal/track"
)

// invocation carries the per-call state shared by Invoke and Stream.
type invocation struct {
	id        string
	log       *slog.Logger
	prompt    string
	options   *Options
	transport Transport
	tracker   *track.Tracker
}

// newInvocation validates options and wires the transport and tracker.
// Validation failures surface as InvalidConfigError before any process
// is spawned.
func newInvocation(component, prompt string, opts []Option) (*invocation, error) {
	options := applyOptions(opts)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	id := ulid.Make().String()
	log = log.With("component", component, "invocation_id", id)

	transport := options.Transport
	if transport == nil {
		transport = subprocess.NewCLITransport(log, prompt, options)
	} else {
		log.Debug("Using injected custom transport")
	}

	return &invocation{
		id:        id,
		log:       log,
		prompt:    prompt,
		options:   options,
		transport: transport,
		tracker:   track.New(log, options.MaxBudgetUSD),
	}, nil
}

// invocationContext derives the context governing this invocation,
// applying the configured hard deadline when one is set.
func (inv *invocation) invocationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if inv.options.Timeout > 0 {
		return context.WithTimeout(ctx, inv.options.Timeout)
	}

	return context.WithCancel(ctx)
}

// start spawns the process and moves the tracker to Running.
func (inv *invocation) start(ctx context.Context) error {
	inv.log.Info("Starting transport")

	if err := inv.transport.Start(ctx); err != nil {
		inv.log.Error("Failed to start CLI", "error", err)
		inv.tracker.Fail(err)

		return err
	}

	inv.tracker.Start()

	return nil
}

// execute observes the started process until its first terminal event
// and classifies the outcome. onEvent sees every classified event in
// arrival order. The returned Result is nil exactly when the returned
// error is non-nil; either way the process has been shut down and
// reaped by the time execute returns.
func (inv *invocation) execute(ctx context.Context, onEvent func(event.RawEvent)) (*event.Result, error) {
	g, gCtx := errgroup.WithContext(ctx)

	// Cancellation must unblock a reader stuck on a silent process.
	// Closing the transport kills the process group, which closes the
	// pipes and lets the read loop drain to completion.
	stop := context.AfterFunc(gCtx, func() {
		_ = inv.transport.Close()
	})
	defer stop()
	defer inv.transport.Close()

	if len(inv.options.Images) > 0 {
		g.Go(func() error {
			return inv.sendPrompt(gCtx)
		})
	}

	res, err := inv.pump(gCtx, onEvent)

	// A failed stdin send cancels gCtx and surfaces through the context
	// cause in pump, so the group error itself is not needed here.
	_ = g.Wait()

	if err != nil {
		inv.tracker.Fail(err)

		return nil, err
	}

	return res, nil
}

// sendPrompt delivers the prompt and image attachments as a single user
// message over stdin, then closes stdin to signal end of input.
func (inv *invocation) sendPrompt(ctx context.Context) error {
	payload, err := cli.BuildStdinMessage(inv.prompt, inv.options.Images)
	if err != nil {
		return fmt.Errorf("build stdin message: %w", err)
	}

	if err := inv.transport.SendMessage(ctx, payload); err != nil {
		return fmt.Errorf("send prompt: %w", err)
	}

	inv.log.Debug("Prompt sent over stdin", "images", len(inv.options.Images))

	if err := inv.transport.EndInput(); err != nil {
		return fmt.Errorf("end input: %w", err)
	}

	return nil
}

// pump reads the event stream until the first terminal event or until
// the channels close, then resolves the outcome by precedence: a parsed
// terminal event wins outright, then cancellation or timeout, then a
// non-zero exit, then incompleteness.
func (inv *invocation) pump(ctx context.Context, onEvent func(event.RawEvent)) (*event.Result, error) {
	msgCh, errCh := inv.transport.ReadMessages(ctx)

	var (
		res       *event.Result
		malformed error
		exitErr   *berrors.ProcessExitError
		readErr   error
	)

	done := ctx.Done()

	for msgCh != nil || errCh != nil {
		select {
		case m, ok := <-msgCh:
			if !ok {
				msgCh = nil

				continue
			}

			if res != nil || malformed != nil {
				// The invocation is over; drain the channels to closure.
				continue
			}

			ev, err := event.Classify(inv.log, m)
			if err != nil {
				inv.log.Error("Malformed terminal event", "error", err)

				malformed = err

				_ = inv.transport.Close()

				continue
			}

			if ev == nil {
				continue
			}

			inv.tracker.Observe(ev)
			onEvent(ev)

			if r, ok := ev.(*event.Result); ok {
				inv.log.Debug("Terminal event received",
					"subtype", r.Subtype,
					"num_turns", r.NumTurns,
					"session_id", r.SessionID,
				)

				// The first terminal event ends the invocation. Shut the
				// process down; the channels drain to closure above.
				res = r

				_ = inv.transport.Close()
			}

		case err, ok := <-errCh:
			if !ok {
				errCh = nil

				continue
			}

			if _, isDecode := stderrors.AsType[*berrors.JSONDecodeError](err); isDecode {
				inv.log.Warn("Skipping undecodable output line", "error", err)
				inv.tracker.CountUndecodable()

				continue
			}

			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				// Resolved below from the context itself.
				continue
			}

			if pe, ok := stderrors.AsType[*berrors.ProcessExitError](err); ok {
				exitErr = pe
			} else if readErr == nil {
				readErr = err
			}

			// A dead reader leaves the process writing into a full pipe;
			// kill it so the stream can drain to closure.
			_ = inv.transport.Close()

		case <-done:
			// The AfterFunc is already shutting the process down; keep
			// draining until the channels close.
			done = nil
		}
	}

	switch {
	case res != nil:
		return res, nil
	case malformed != nil:
		return nil, malformed
	case ctx.Err() != nil:
		if cause := context.Cause(ctx); cause != nil &&
			!stderrors.Is(cause, context.Canceled) &&
			!stderrors.Is(cause, context.DeadlineExceeded) {
			// A failed stdin send cancelled the group; it is the root
			// cause, not the cancellation it triggered.
			return nil, cause
		}

		return nil, berrors.Classify(berrors.Outcome{
			Cancelled:  ctx.Err(),
			Timeout:    inv.options.Timeout,
			EventsSeen: inv.tracker.EventsSeen(),
		})
	case exitErr != nil:
		return nil, exitErr
	case readErr != nil:
		return nil, readErr
	default:
		return nil, berrors.Classify(berrors.Outcome{
			EventsSeen: inv.tracker.EventsSeen(),
		})
	}
}

// summarize folds the terminal event and tracker state into the
// aggregate summary handed to callers.
func (inv *invocation) summarize(res *event.Result) *ResultSummary {
	state := inv.tracker.State()

	return &ResultSummary{
		Text:           res.Text(),
		IsError:        res.IsError || state != track.StateCompleted,
		Classification: state.Code(),
		State:          state,
		Subtype:        res.Subtype,
		SessionID:      inv.tracker.SessionID(),
		NumTurns:       res.NumTurns,
		CostUSD:        res.TotalCostUSD,
		Usage:          res.Usage,
		ModelUsage:     res.ModelUsage,
		DurationMs:     int64(res.DurationMs),
		DurationAPIMs:  int64(res.DurationAPIMs),
	}
}

// budgetKillError returns the budget error for a terminal event that
// carries no usable payload, nil otherwise. A budget-exceeded result
// that still has text aggregates into a summary instead.
func (inv *invocation) budgetKillError(res *event.Result) error {
	if !res.IsError || res.Result != nil {
		return nil
	}

	return inv.tracker.BudgetError()
}
