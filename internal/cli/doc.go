// Package cli locates the Claude Code CLI binary and builds the argument
// vector and environment for one invocation.
//
// Discovery searches the explicit configured path, then PATH, then the
// common install directories, and warns (without failing) when the found
// binary predates MinimumVersion. Probe runs the binary's --version under
// a bounded timeout for the status surface.
//
// BuildArgs produces the stream-json invocation vector; BuildEnvironment
// produces the process environment with ANTHROPIC_API_KEY unconditionally
// stripped.
package cli
