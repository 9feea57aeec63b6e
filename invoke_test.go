package claudebridge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_Success(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			assistantEvent("the answer"),
			resultEvent(map[string]any{"session_id": "sess-1"}),
		},
	}

	sum, err := Invoke(context.Background(), "what is the answer",
		WithTransport(transport),
	)
	require.NoError(t, err)
	require.NotNil(t, sum)

	assert.Equal(t, "the answer", sum.Text)
	assert.False(t, sum.IsError)
	assert.Equal(t, StateCompleted, sum.State)
	assert.Equal(t, Code(""), sum.Classification)
	assert.Equal(t, "sess-1", sum.SessionID)
	assert.Equal(t, 1, sum.NumTurns)
	require.NotNil(t, sum.CostUSD)
	assert.InDelta(t, 0.0042, *sum.CostUSD, 1e-9)
	require.NotNil(t, sum.Usage)
	assert.Equal(t, 12, sum.Usage.InputTokens)
	assert.Equal(t, 34, sum.Usage.OutputTokens)
	require.Contains(t, sum.ModelUsage, "claude-haiku-4-5-20251001")
	assert.InDelta(t, 0.0042, sum.ModelUsage["claude-haiku-4-5-20251001"].CostUSD, 1e-9)
	assert.Equal(t, int64(1800), sum.DurationMs)
	assert.Equal(t, int64(1500), sum.DurationAPIMs)

	assert.True(t, transport.wasClosed(), "transport must be shut down after the terminal event")
}

func TestInvoke_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"negative max turns", []Option{WithMaxTurns(-1)}},
		{"empty resume id", []Option{WithResume("")}},
		{"resume with continue", []Option{WithResume("sess-1"), WithContinueConversation(true)}},
		{"fork without session directive", []Option{WithForkSession(true)}},
		{"zero budget", []Option{WithMaxBudgetUSD(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{}
			opts := append([]Option{WithTransport(transport)}, tt.opts...)

			sum, err := Invoke(context.Background(), "hello", opts...)
			require.Error(t, err)
			assert.Nil(t, sum)

			var cfgErr *InvalidConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, CodeInvalidConfig, CodeOf(err))
			assert.False(t, transport.started, "no process may be spawned for a rejected config")
		})
	}
}

func TestInvoke_StartFailure(t *testing.T) {
	transport := &fakeTransport{
		startErr: &CLINotFoundError{SearchedPaths: []string{"/usr/local/bin/claude"}},
	}

	sum, err := Invoke(context.Background(), "hello", WithTransport(transport))
	require.Error(t, err)
	assert.Nil(t, sum)

	var notFound *CLINotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, CodeCLINotFound, CodeOf(err))
}

func TestInvoke_TurnsExceeded(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			resultEvent(map[string]any{
				"subtype":   "error_max_turns",
				"is_error":  true,
				"result":    nil,
				"num_turns": float64(10),
			}),
		},
	}

	sum, err := Invoke(context.Background(), "hello", WithTransport(transport))
	require.NoError(t, err, "a parsed turn-ceiling stop aggregates into a summary")
	require.NotNil(t, sum)

	assert.True(t, sum.IsError)
	assert.Equal(t, StateTurnsExceeded, sum.State)
	assert.Equal(t, CodeTurnsExceeded, sum.Classification)
	assert.Equal(t, 10, sum.NumTurns)
	assert.Empty(t, sum.Text)
}

func TestInvoke_ProcessReportedFailure(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			resultEvent(map[string]any{
				"subtype":  "error_during_execution",
				"is_error": true,
				"result":   "something broke",
			}),
		},
	}

	sum, err := Invoke(context.Background(), "hello", WithTransport(transport))
	require.NoError(t, err)
	require.NotNil(t, sum)

	assert.True(t, sum.IsError)
	assert.Equal(t, StateFailed, sum.State)
	assert.Equal(t, CodeFailed, sum.Classification)
	assert.Equal(t, "something broke", sum.Text)
}

func TestInvoke_MalformedResult(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			resultEvent(map[string]any{"result": nil}),
		},
	}

	sum, err := Invoke(context.Background(), "hello", WithTransport(transport))
	require.Error(t, err)
	assert.Nil(t, sum)

	var malformed *MalformedResultError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, CodeMalformedTerminalEvent, CodeOf(err))
	assert.True(t, transport.wasClosed())
}

func TestInvoke_IncompleteResponse(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			assistantEvent("partial"),
		},
	}

	sum, err := Invoke(context.Background(), "hello", WithTransport(transport))
	require.Error(t, err)
	assert.Nil(t, sum)

	var incomplete *IncompleteResponseError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, 2, incomplete.EventsSeen)
	assert.Equal(t, CodeIncompleteResponse, CodeOf(err))
}

func TestInvoke_ProcessExit(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{initEvent("sess-1")},
		errs:   []error{&ProcessExitError{ExitCode: 3, Stderr: "Error: not logged in"}},
	}

	sum, err := Invoke(context.Background(), "hello", WithTransport(transport))
	require.Error(t, err)
	assert.Nil(t, sum)

	var exitErr *ProcessExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode)
	assert.Contains(t, exitErr.Stderr, "not logged in")
}

// A terminal event that parsed suppresses a trailing non-zero exit.
func TestInvoke_ResultSuppressesExitCode(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			resultEvent(nil),
		},
		errs: []error{&ProcessExitError{ExitCode: 1}},
	}

	sum, err := Invoke(context.Background(), "hello", WithTransport(transport))
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, "the answer", sum.Text)
}

func TestInvoke_ToleratesJunkOnTheStream(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			{"type": "telemetry", "payload": "ignored"},
			{"no_type_at_all": true},
			assistantEvent("the answer"),
			resultEvent(nil),
		},
	}

	sum, err := Invoke(context.Background(), "hello", WithTransport(transport))
	require.NoError(t, err)
	assert.Equal(t, "the answer", sum.Text)
	assert.False(t, sum.IsError)
}

func TestInvoke_Timeout(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{initEvent("sess-1")},
		hold:   true,
	}

	start := time.Now()

	sum, err := Invoke(context.Background(), "hello",
		WithTransport(transport),
		WithTimeout(100*time.Millisecond),
	)
	require.Error(t, err)
	assert.Nil(t, sum)
	assert.Less(t, time.Since(start), 5*time.Second)

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, 100*time.Millisecond, timeout.Limit)
	assert.Equal(t, CodeInvocationTimeout, CodeOf(err))
	assert.True(t, transport.wasClosed(), "a timed-out process must be terminated")
}

func TestInvoke_Cancelled(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{initEvent("sess-1")},
		hold:   true,
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	sum, err := Invoke(ctx, "hello", WithTransport(transport))
	require.Error(t, err)
	assert.Nil(t, sum)

	var cancelled *CancelledError
	require.ErrorAs(t, err, &cancelled)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, CodeCancelled, CodeOf(err))
	assert.True(t, transport.wasClosed(), "cancellation must terminate the process")
}

func TestInvoke_BudgetExceededWithPayload(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			resultEvent(map[string]any{"total_cost_usd": 0.05}),
		},
	}

	sum, err := Invoke(context.Background(), "hello",
		WithTransport(transport),
		WithMaxBudgetUSD(0.01),
	)
	require.NoError(t, err, "a usable over-budget result still aggregates")
	require.NotNil(t, sum)

	assert.True(t, sum.IsError)
	assert.Equal(t, StateBudgetExceeded, sum.State)
	assert.Equal(t, CodeBudgetExceeded, sum.Classification)
	assert.Equal(t, "the answer", sum.Text)
}

func TestInvoke_BudgetExceededOnKill(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			resultEvent(map[string]any{
				"is_error":       true,
				"result":         nil,
				"total_cost_usd": 0.05,
			}),
		},
	}

	sum, err := Invoke(context.Background(), "hello",
		WithTransport(transport),
		WithMaxBudgetUSD(0.01),
	)
	require.Error(t, err, "an over-budget kill with no payload is an error")
	assert.Nil(t, sum)

	var budget *BudgetExceededError
	require.ErrorAs(t, err, &budget)
	assert.InDelta(t, 0.05, budget.CostUSD, 1e-9)
	assert.InDelta(t, 0.01, budget.LimitUSD, 1e-9)
	assert.Equal(t, CodeBudgetExceeded, CodeOf(err))
}

func TestInvoke_ImagePrompt(t *testing.T) {
	transport := &fakeTransport{
		events: []map[string]any{
			initEvent("sess-1"),
			resultEvent(map[string]any{"result": "a small red square"}),
		},
	}

	imageData := []byte{0x89, 0x50, 0x4e, 0x47}

	sum, err := Invoke(context.Background(), "describe this image",
		WithTransport(transport),
		WithImage(imageData, "image/png"),
	)
	require.NoError(t, err)
	assert.Equal(t, "a small red square", sum.Text)

	sent := transport.sentMessages()
	require.Len(t, sent, 1, "the prompt must arrive as a single stdin message")
	assert.True(t, transport.inputEnded, "stdin must be closed after the primed message")

	var msg map[string]any
	require.NoError(t, json.Unmarshal(sent[0], &msg))
	assert.Equal(t, "user", msg["type"])

	raw := string(sent[0])
	assert.Contains(t, raw, base64.StdEncoding.EncodeToString(imageData))
	assert.Contains(t, raw, "describe this image")
}
