package claudebridge

import (
	"context"
	"sync"
	"time"
)

// fakeTransport replays a scripted event sequence through the Transport
// seam. Events are delivered first, then errors, then both channels
// close; a holding transport keeps them open until the context fires,
// standing in for a process that never finishes.
type fakeTransport struct {
	mu sync.Mutex

	events   []map[string]any
	errs     []error
	startErr error
	hold     bool
	gap      time.Duration

	started    bool
	closed     bool
	sent       [][]byte
	inputEnded bool
}

func (f *fakeTransport) Start(_ context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	f.mu.Lock()
	f.started = true
	f.mu.Unlock()

	return nil
}

func (f *fakeTransport) ReadMessages(ctx context.Context) (<-chan map[string]any, <-chan error) {
	messages := make(chan map[string]any)
	errs := make(chan error, 1)

	go func() {
		defer close(messages)
		defer close(errs)

		for _, ev := range f.events {
			if f.gap > 0 {
				select {
				case <-time.After(f.gap):
				case <-ctx.Done():
					return
				}
			}

			select {
			case messages <- ev:
			case <-ctx.Done():
				return
			}
		}

		for _, err := range f.errs {
			select {
			case errs <- err:
			case <-ctx.Done():
				return
			}
		}

		if f.hold {
			<-ctx.Done()
		}
	}()

	return messages, errs
}

func (f *fakeTransport) SendMessage(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	f.sent = append(f.sent, buf)

	return nil
}

func (f *fakeTransport) EndInput() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inputEnded = true

	return nil
}

func (f *fakeTransport) IsReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.started && !f.closed
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	return nil
}

func (f *fakeTransport) wasClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

func (f *fakeTransport) sentMessages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([][]byte, len(f.sent))
	copy(out, f.sent)

	return out
}

// Compile-time check that fakeTransport implements Transport.
var _ Transport = (*fakeTransport)(nil)

// ===== Event fixtures =====

func initEvent(sessionID string) map[string]any {
	return map[string]any{
		"type":       "system",
		"subtype":    "init",
		"session_id": sessionID,
		"model":      "claude-haiku-4-5-20251001",
	}
}

func assistantEvent(text string) map[string]any {
	return map[string]any{
		"type": "assistant",
		"message": map[string]any{
			"model": "claude-haiku-4-5-20251001",
			"content": []any{
				map[string]any{"type": "text", "text": text},
			},
		},
	}
}

func deltaEvent(text string) map[string]any {
	return map[string]any{
		"type": "stream_event",
		"event": map[string]any{
			"type": "content_block_delta",
			"delta": map[string]any{
				"type": "text_delta",
				"text": text,
			},
		},
	}
}

func resultEvent(overrides map[string]any) map[string]any {
	ev := map[string]any{
		"type":            "result",
		"subtype":         "success",
		"is_error":        false,
		"result":          "the answer",
		"session_id":      "sess-fixture",
		"num_turns":       float64(1),
		"total_cost_usd":  0.0042,
		"duration_ms":     float64(1800),
		"duration_api_ms": float64(1500),
		"usage": map[string]any{
			"input_tokens":  float64(12),
			"output_tokens": float64(34),
		},
		"modelUsage": map[string]any{
			"claude-haiku-4-5-20251001": map[string]any{
				"inputTokens":  float64(12),
				"outputTokens": float64(34),
				"costUSD":      0.0042,
			},
		},
	}

	for k, v := range overrides {
		if v == nil {
			delete(ev, k)

			continue
		}

		ev[k] = v
	}

	return ev
}
