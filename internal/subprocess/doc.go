// Package subprocess runs the Claude CLI as a child process and exposes
// it through the Transport interface.
//
// The child is spawned in its own process group with stdout and stderr
// captured as line streams. Stdin is the null device for plain prompts
// and a short-lived pipe for invocations with image attachments. Close
// terminates the group with a SIGTERM that escalates to SIGKILL after a
// bounded grace period, and the child is reaped on every exit path.
package subprocess
