// Package errors defines the failure taxonomy for the bridge.
//
// Every way an invocation can fail maps to one typed error carrying a
// classification code. All error types support unwrapping and can be
// checked with errors.Is, errors.As, and errors.AsType. Classify resolves
// simultaneous failure signals by precedence.
package errors
