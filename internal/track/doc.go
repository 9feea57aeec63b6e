// Package track resolves the lifecycle state of a single invocation
// from its event sequence and from engine-level failures.
package track
