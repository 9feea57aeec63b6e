package claudebridge

import (
	"context"

	"github.com/streamweld/claude-bridge/internal/event"
)

// Stream executes one prompt against the Claude CLI and delivers the
// response incrementally.
//
// The returned channel carries one Start chunk, zero or more Text
// chunks as assistant output arrives, and then exactly one of End
// (with the aggregate summary) or Error before closing. When the CLI
// provides no incremental deltas, the full result text arrives as a
// single Text chunk before End.
//
// Setup failures that happen before the process produces output, such
// as a rejected config or a missing CLI binary, return a synchronous
// error instead of a channel.
//
// Cancelling ctx terminates the process; in-flight sends are abandoned
// rather than blocking past the cancellation, so an HTTP handler can
// stop consuming the moment its client disconnects:
//
//	chunks, err := claudebridge.Stream(ctx, "Tell me a story",
//	    claudebridge.WithModel("sonnet"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range chunks {
//	    switch chunk.Type {
//	    case claudebridge.ChunkTypeText:
//	        fmt.Print(chunk.Text)
//	    case claudebridge.ChunkTypeEnd:
//	        fmt.Printf("\ncost: %v\n", chunk.Summary.CostUSD)
//	    case claudebridge.ChunkTypeError:
//	        log.Fatal(chunk.Err)
//	    }
//	}
func Stream(ctx context.Context, prompt string, opts ...Option) (<-chan StreamChunk, error) {
	inv, err := newInvocation("stream", prompt, opts)
	if err != nil {
		return nil, err
	}

	// Deltas only arrive when the CLI is asked for partial messages.
	inv.options.IncludePartialMessages = true

	runCtx, cancel := inv.invocationContext(ctx)

	if err := inv.start(runCtx); err != nil {
		cancel()

		return nil, err
	}

	out := make(chan StreamChunk)

	go func() {
		defer close(out)
		defer cancel()

		// send delivers a chunk unless the consumer is gone. It is
		// guarded by the caller's context rather than the invocation
		// deadline: a timed-out invocation still owes its consumer the
		// terminal error chunk.
		send := func(c StreamChunk) bool {
			select {
			case out <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		send(StreamChunk{Type: ChunkTypeStart})

		textSent := false

		res, err := inv.execute(runCtx, func(ev event.RawEvent) {
			if delta, ok := ev.(*event.ContentDelta); ok {
				if send(StreamChunk{Type: ChunkTypeText, Text: delta.Text}) {
					textSent = true
				}
			}
		})

		if err != nil {
			send(StreamChunk{Type: ChunkTypeError, Err: err})

			return
		}

		if err := inv.budgetKillError(res); err != nil {
			send(StreamChunk{Type: ChunkTypeError, Err: err})

			return
		}

		sum := inv.summarize(res)

		// Without partial messages the whole response arrives with the
		// terminal event; surface it as one Text chunk so consumers see
		// the content either way.
		if !textSent && sum.Text != "" {
			send(StreamChunk{Type: ChunkTypeText, Text: sum.Text})
		}

		inv.log.Info("Stream finished", "state", sum.State, "session_id", sum.SessionID)

		send(StreamChunk{Type: ChunkTypeEnd, Summary: sum})
	}()

	return out, nil
}
