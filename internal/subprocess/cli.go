package subprocess

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/streamweld/claude-bridge/internal/cli"
	"github.com/streamweld/claude-bridge/internal/config"
	"github.com/streamweld/claude-bridge/internal/errors"
)

const (
	// maxScanTokenSize is the default cap for one stdout line.
	maxScanTokenSize = 1024 * 1024 // 1MB

	// maxStderrBufferSize caps the stderr buffer kept for error reporting.
	// The stderr callback still receives every line; only the buffer stops
	// growing past this limit.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// CLITransport implements config.Transport by spawning a Claude CLI
// subprocess in its own process group.
//
// The transport is non-interactive. Without image attachments the child's
// stdin is the null device from spawn; with attachments stdin stays open
// just long enough for the single primed user message, then EndInput
// closes it. Close terminates the whole process group, SIGTERM first and
// SIGKILL once the grace period elapses, and the process is always
// reaped regardless of which side initiated shutdown.
type CLITransport struct {
	log            *slog.Logger
	options        *config.Options
	prompt         string
	cmd            *exec.Cmd
	stdin          io.WriteCloser
	stdout         io.ReadCloser
	stderr         io.ReadCloser
	stderrCallback func(string)

	mu          sync.Mutex // guards stdin state and the closing flag
	closing     bool
	stdinClosed bool

	waitOnce sync.Once
	waitErr  error
	waitDone chan struct{}
}

// Compile-time verification that CLITransport implements config.Transport.
var _ config.Transport = (*CLITransport)(nil)

// NewCLITransport creates a transport for one invocation.
//
// Whether the prompt rides argv or stdin is decided by the options: image
// attachments switch the invocation to streamed stdin input. Binary
// discovery is deferred to Start so it can use the caller's context.
func NewCLITransport(log *slog.Logger, prompt string, options *config.Options) *CLITransport {
	return &CLITransport{
		log:            log.With("component", "cli_transport"),
		options:        options,
		prompt:         prompt,
		stderrCallback: options.Stderr,
		waitDone:       make(chan struct{}),
	}
}

// Start discovers the CLI binary and spawns the process.
//
// Returns CLINotFoundError when no binary can be located. The child runs
// in its own process group so that cancellation can reach any helper
// processes the CLI forks.
func (t *CLITransport) Start(ctx context.Context) error {
	// Version validation happens once at server startup and on the status
	// surface, not on every spawn.
	cliPath, err := cli.Discover(ctx, &cli.Config{
		CliPath:          t.options.CliPath,
		SkipVersionCheck: true,
		Logger:           t.log,
	})
	if err != nil {
		return fmt.Errorf("discover CLI: %w", err)
	}

	args := cli.BuildArgs(t.prompt, t.options)
	t.log.Debug("Built command arguments", "args", args)

	//nolint:gosec // G204: spawning the discovered CLI with built args is the point
	cmd := exec.Command(cliPath, args...)
	cmd.Env = cli.BuildEnvironment(t.options)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if len(t.options.Images) > 0 {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return fmt.Errorf("stdin pipe: %w", err)
		}

		t.stdin = stdin
	}
	// With no attachments cmd.Stdin stays nil and the child reads the
	// null device: non-interactive from the first instruction.

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	t.stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	t.stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start process: %w", err)
	}

	t.cmd = cmd
	t.log.Info("Claude CLI subprocess started", "pid", cmd.Process.Pid, "cli_path", cliPath)

	return nil
}

// ReadMessages pumps decoded stdout lines into the returned message
// channel. Blank lines are skipped; lines that fail to decode surface as
// non-fatal JSONDecodeError values on the error channel. When the
// process exits non-zero outside an intentional shutdown, the final
// error is a ProcessExitError carrying the exit code and stderr tail.
// Both channels close when reading completes.
func (t *CLITransport) ReadMessages(ctx context.Context) (<-chan map[string]any, <-chan error) {
	messages := make(chan map[string]any)
	errs := make(chan error, 1)

	var (
		stderrWg     sync.WaitGroup
		stderrBuffer strings.Builder
		stderrMu     sync.Mutex
	)

	// Stderr must be drained before Wait; see os/exec StderrPipe docs.
	stderrWg.Go(func() {
		scanner := bufio.NewScanner(t.stderr)
		for scanner.Scan() {
			line := scanner.Text()

			stderrMu.Lock()

			if stderrBuffer.Len() < maxStderrBufferSize {
				if stderrBuffer.Len() > 0 {
					stderrBuffer.WriteString("\n")
				}

				stderrBuffer.WriteString(line)
			}

			stderrMu.Unlock()

			if t.stderrCallback != nil {
				t.stderrCallback(line)
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Debug("Stderr scanner error", "error", err)
		}
	})

	go func() {
		defer close(messages)
		defer close(errs)

		maxBuf := maxScanTokenSize
		if t.options.MaxBufferSize != nil {
			maxBuf = *t.options.MaxBufferSize
		}

		scanner := bufio.NewScanner(t.stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), maxBuf)

		for scanner.Scan() {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()

				return
			default:
			}

			line := scanner.Bytes()
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}

			var msg map[string]any
			if err := json.Unmarshal(line, &msg); err != nil {
				t.log.Debug("Undecodable stdout line", "error", err, "line", string(line))

				errs <- &errors.JSONDecodeError{RawLine: string(line), Err: err}

				continue
			}

			select {
			case messages <- msg:
			case <-ctx.Done():
				errs <- ctx.Err()

				return
			}
		}

		if err := scanner.Err(); err != nil {
			t.log.Error("Scanner error while reading CLI output", "error", err)

			errs <- fmt.Errorf("scanner error: %w", err)
		}

		stderrWg.Wait()

		if err := t.wait(); err != nil {
			t.mu.Lock()
			isClosing := t.closing
			t.mu.Unlock()

			if isClosing {
				t.log.Debug("CLI process terminated during shutdown")

				return
			}

			stderrMu.Lock()
			stderrOutput := cleanStderr(stderrBuffer.String())
			stderrMu.Unlock()

			exitCode := 0
			if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
				exitCode = exitErr.ExitCode()
			}

			t.log.Error("CLI process exited with error", "exit_code", exitCode, "stderr", stderrOutput)

			errs <- &errors.ProcessExitError{
				ExitCode: exitCode,
				Stderr:   stderrOutput,
				Err:      err,
			}
		} else {
			t.log.Debug("CLI process exited cleanly")
		}
	}()

	return messages, errs
}

// SendMessage writes one JSON message to the child's stdin.
//
// Only invocations with image attachments keep stdin open; anything else
// gets ErrStdinClosed. A blocked write is unblocked by closing stdin
// when the context fires.
func (t *CLITransport) SendMessage(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cmd == nil {
		return errors.ErrTransportNotStarted
	}

	if t.stdin == nil || t.stdinClosed {
		return errors.ErrStdinClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// Append the newline on a copy; the caller's slice may have spare
	// capacity we must not scribble on.
	if len(data) == 0 || data[len(data)-1] != '\n' {
		buf := make([]byte, len(data)+1)
		copy(buf, data)
		buf[len(data)] = '\n'
		data = buf
	}

	done := make(chan error, 1)

	go func() {
		_, err := t.stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("write to stdin: %w", err)
		}

		return nil
	case <-ctx.Done():
		_ = t.stdin.Close()
		t.stdinClosed = true

		select {
		case <-done:
		case <-time.After(time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close")
		}

		return ctx.Err()
	}
}

// EndInput closes the child's stdin, signalling that the primed message
// sequence is complete.
func (t *CLITransport) EndInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin != nil && !t.stdinClosed {
		t.stdinClosed = true
		err := t.stdin.Close()
		t.stdin = nil

		return err
	}

	return nil
}

// IsReady reports whether the process is spawned and not shut down.
func (t *CLITransport) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cmd != nil && t.cmd.Process != nil && !t.closing
}

// Close terminates the process group and reaps the child.
//
// SIGTERM goes to the group first. If the group is still alive when the
// grace period (Options.TerminationGrace, default 5s) elapses, SIGKILL
// follows. Close blocks until the child is reaped and is safe to call
// multiple times; after a clean exit it degrades to a no-op.
func (t *CLITransport) Close() error {
	t.mu.Lock()

	if t.closing {
		t.mu.Unlock()
		<-t.waitDoneOrNothing()

		return nil
	}

	t.closing = true
	t.stdinClosed = true

	if t.stdin != nil {
		_ = t.stdin.Close()
		t.stdin = nil
	}

	cmd := t.cmd
	t.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}

	grace := t.options.TerminationGrace
	if grace == 0 {
		grace = config.DefaultTerminationGrace
	}

	pid := cmd.Process.Pid

	// Negative pid addresses the whole group. Fall back to the direct
	// process if the group is already gone.
	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		_ = cmd.Process.Signal(syscall.SIGTERM)
	}

	t.log.Debug("Sent SIGTERM to process group", "pid", pid, "grace", grace)

	// The reader goroutine normally reaps the child. Reap here too so a
	// transport that was started but never read still leaves no zombie;
	// waitOnce keeps the two paths from colliding.
	exited := make(chan struct{})

	go func() {
		_ = t.wait()
		close(exited)
	}()

	select {
	case <-exited:
		t.log.Debug("Process exited within grace period", "pid", pid)

		return nil
	case <-time.After(grace):
	}

	t.log.Warn("Process ignored SIGTERM, escalating to SIGKILL", "pid", pid)

	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		_ = cmd.Process.Kill()
	}

	<-exited

	return nil
}

// wait reaps the child exactly once and records its exit error.
func (t *CLITransport) wait() error {
	t.waitOnce.Do(func() {
		t.waitErr = t.cmd.Wait()
		close(t.waitDone)
	})

	return t.waitErr
}

// waitDoneOrNothing returns a channel that is already closed when no
// process was ever started, so repeated Close calls never block forever.
func (t *CLITransport) waitDoneOrNothing() <-chan struct{} {
	if t.cmd == nil {
		done := make(chan struct{})
		close(done)

		return done
	}

	return t.waitDone
}

// sourceContextRe matches Bun's minified source context lines
// ("1234 | <code>"), which drown out the actual error message.
var sourceContextRe = regexp.MustCompile(`^\s*[0-9]+\s*\|`)

// cleanStderr strips Bun source context from the CLI's stderr, keeping
// error messages and stack traces.
func cleanStderr(stderr string) string {
	if stderr == "" {
		return ""
	}

	lines := strings.Split(stderr, "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		if sourceContextRe.MatchString(line) {
			continue
		}

		kept = append(kept, line)
	}

	return strings.TrimSpace(strings.Join(kept, "\n"))
}
