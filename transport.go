package claudebridge

import "github.com/streamweld/claude-bridge/internal/config"

// Transport defines the interface for Claude CLI communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative process supervision.
//
// The default implementation spawns the CLI as a subprocess in its own
// process group. Custom transports can be injected via WithTransport.
type Transport = config.Transport
