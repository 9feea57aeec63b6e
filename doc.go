// Package claudebridge bridges the Claude Code CLI's line-delimited JSON
// stream into a typed Go API.
//
// Each call spawns one CLI process in its own process group, feeds it a
// prompt, parses the stream-json events it emits, and resolves a single
// outcome: an aggregate result or a stream of text deltas, plus a
// classification when the invocation fails.
//
// # Aggregate Mode
//
// For request/response use, Invoke blocks until the terminal event:
//
//	ctx := context.Background()
//	sum, err := claudebridge.Invoke(ctx, "What is 2+2?",
//	    claudebridge.WithModel("haiku"),
//	    claudebridge.WithMaxTurns(1),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(sum.Text)
//
// # Streaming Mode
//
// Stream delivers assistant text incrementally, ending with the same
// aggregate summary:
//
//	chunks, err := claudebridge.Stream(ctx, "Tell me a story")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for chunk := range chunks {
//	    if chunk.Type == claudebridge.ChunkTypeText {
//	        fmt.Print(chunk.Text)
//	    }
//	}
//
// # Sessions
//
// Conversations continue across invocations through the session ID on
// the summary:
//
//	first, _ := claudebridge.Invoke(ctx, "My name is Ada.")
//	second, _ := claudebridge.Invoke(ctx, "What is my name?",
//	    claudebridge.WithResume(first.SessionID),
//	)
//
// Session carries the id automatically; see NewSession.
//
// # Error Handling
//
// Failures without a usable terminal event surface as typed errors:
//
//	sum, err := claudebridge.Invoke(ctx, prompt)
//	if err != nil {
//	    if cliErr, ok := errors.AsType[*claudebridge.CLINotFoundError](err); ok {
//	        log.Fatalf("Claude CLI not installed, searched: %v", cliErr.SearchedPaths)
//	    }
//	    if procErr, ok := errors.AsType[*claudebridge.ProcessExitError](err); ok {
//	        log.Fatalf("CLI exited %d: %s", procErr.ExitCode, procErr.Stderr)
//	    }
//	    log.Fatal(err)
//	}
//
// Process-reported failures that still parse, such as a turn-ceiling
// stop, come back as a ResultSummary with IsError set and a
// classification code, so session and cost figures survive the failure.
//
// # Requirements
//
// The bridge requires the Claude CLI to be installed and available in
// PATH. Use WithCliPath to point at a specific binary. The child
// process never inherits ANTHROPIC_API_KEY; authentication is the
// CLI's own concern.
package claudebridge
