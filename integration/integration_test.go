//go:build integration

package integration

import (
	"errors"
	"strings"
	"testing"

	claudebridge "github.com/streamweld/claude-bridge"
)

// skipIfCLINotInstalled skips the test when the error says the claude
// binary is missing, so the suite degrades gracefully off-workstation.
func skipIfCLINotInstalled(t *testing.T, err error) {
	t.Helper()

	if _, ok := errors.AsType[*claudebridge.CLINotFoundError](err); ok {
		t.Skip("Claude CLI not installed")
	}
}

// containsFour checks for the answer to 2+2 in its common spellings.
func containsFour(s string) bool {
	lower := strings.ToLower(s)

	return strings.Contains(lower, "4") || strings.Contains(lower, "four")
}

// tinyPNG is a valid 1x1 transparent PNG, small enough to inline.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}
