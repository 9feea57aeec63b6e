// Package config provides per-invocation options and the transport seam
// for the bridge.
package config

import "context"

// Transport moves line-delimited JSON between the bridge and the external
// process. Implement this to substitute the subprocess with a fake for
// testing or an alternative communication method.
//
// The default implementation is the CLI subprocess transport, which spawns
// the claude binary. Custom transports are injected via Options.Transport.
type Transport interface {
	// Start launches the underlying process and prepares it for
	// communication. It is called once, before any reads or writes.
	Start(ctx context.Context) error

	// ReadMessages returns channels for receiving events and errors.
	// The message channel yields one decoded JSON object per stdout line.
	// The error channel yields per-line decode errors (non-fatal) and, if
	// the process exits non-zero, the final exit error. Both channels are
	// closed when reading completes.
	ReadMessages(ctx context.Context) (<-chan map[string]any, <-chan error)

	// SendMessage writes a JSON message to the process stdin.
	// A trailing newline is appended if missing. Safe for concurrent use.
	SendMessage(ctx context.Context, data []byte) error

	// EndInput signals that no more input will be sent.
	// For process-based transports, this closes stdin.
	EndInput() error

	// IsReady reports whether the transport can accept messages.
	IsReady() bool

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close() error
}
