package claudebridge

import (
	"context"
	"sync"
)

// Session chains one-shot invocations into a conversation by carrying
// the CLI's opaque session id between calls. Each call still spawns its
// own process; the CLI holds the conversation state, the Session only
// remembers which conversation to resume.
//
//	sess := claudebridge.NewSession(
//	    claudebridge.WithModel("sonnet"),
//	)
//	first, err := sess.Ask(ctx, "Pick a number between 1 and 10.")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	second, err := sess.Ask(ctx, "Double it.")
//
// Until a call completes, continuity directives in the configured
// options pass through unchanged, so a session built with
// WithContinueConversation(true) picks up the most recent conversation
// on its first call. Once a call captures a session id, later calls pin
// to that id and override any conflicting directive.
//
// A Session is safe for concurrent use, though interleaved calls race
// for which turn the next one resumes from; conversations are
// inherently sequential.
type Session struct {
	mu   sync.Mutex
	id   string
	fork bool
	opts []Option
}

// NewSession returns a session applying opts to every call.
func NewSession(opts ...Option) *Session {
	return &Session{opts: opts}
}

// ID returns the session id captured from the most recent completed
// call, or "" before the first one.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id
}

// Fork returns a new session branching off the conversation captured so
// far. Its first call resumes the conversation under a fresh session
// id, leaving the original session's history intact.
func (s *Session) Fork() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &Session{id: s.id, fork: s.id != "", opts: s.opts}
}

// Ask runs one conversation turn and returns its aggregate result.
// Per-call opts apply after the session-wide ones. Failures follow the
// Invoke contract; a failed call leaves the session id unchanged.
func (s *Session) Ask(ctx context.Context, prompt string, opts ...Option) (*ResultSummary, error) {
	sum, err := Invoke(ctx, prompt, s.callOptions(opts)...)
	if err != nil {
		return nil, err
	}

	s.remember(sum.SessionID)

	return sum, nil
}

// AskStream runs one conversation turn in streaming mode. The channel
// follows the Stream contract; the session id is captured from the End
// chunk's summary as it passes through.
func (s *Session) AskStream(ctx context.Context, prompt string, opts ...Option) (<-chan StreamChunk, error) {
	chunks, err := Stream(ctx, prompt, s.callOptions(opts)...)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamChunk)

	go func() {
		defer close(out)

		for c := range chunks {
			if c.Type == ChunkTypeEnd && c.Summary != nil {
				s.remember(c.Summary.SessionID)
			}

			select {
			case out <- c:
			case <-ctx.Done():
				// Consumer is gone; keep draining so the stream closes.
			}
		}
	}()

	return out, nil
}

// callOptions assembles the option list for one call: session-wide
// options, per-call extras, and then the continuity override once a
// session id has been captured. The override comes last so that the
// session, not the caller, owns which conversation a turn resumes.
func (s *Session) callOptions(extra []Option) []Option {
	s.mu.Lock()
	id, fork := s.id, s.fork
	s.mu.Unlock()

	opts := make([]Option, 0, len(s.opts)+len(extra)+1)
	opts = append(opts, s.opts...)
	opts = append(opts, extra...)

	if id != "" {
		opts = append(opts, func(o *Options) {
			o.Resume = &id
			o.ForkSession = fork
			o.ContinueConversation = false
		})
	}

	return opts
}

// remember pins the session to the id reported by a completed call. A
// forked session stops forking once its branch has its own id.
func (s *Session) remember(id string) {
	if id == "" {
		return
	}

	s.mu.Lock()
	s.id = id
	s.fork = false
	s.mu.Unlock()
}
