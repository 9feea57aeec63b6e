package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/streamweld/claude-bridge/internal/config"
)

// BuildArgs constructs the CLI argument vector for one invocation.
//
// Output always arrives as line-delimited stream-json on stdout. Without
// image attachments the prompt rides as the positional argument after
// "--". With attachments the prompt is omitted from argv and the process
// instead reads a single streamed user message from stdin
// (--input-format stream-json).
func BuildArgs(prompt string, options *config.Options) []string {
	args := []string{
		"-p",
		"--output-format", "stream-json",
		"--verbose",
	}

	if options.Model != "" {
		args = append(args, "--model", options.Model)
	}

	if options.MaxTurns > 0 {
		args = append(args, "--max-turns", strconv.Itoa(options.MaxTurns))
	}

	if options.SystemPrompt != "" {
		args = append(args, "--system-prompt", options.SystemPrompt)
	}

	if options.IncludePartialMessages {
		args = append(args, "--include-partial-messages")
	}

	if options.MaxBudgetUSD != nil {
		args = append(args, "--max-budget-usd", fmt.Sprintf("%g", *options.MaxBudgetUSD))
	}

	// A nil allow-list passes no flag; an empty non-nil slice serializes
	// as an explicit empty allow-list, which disables all tools.
	if options.AllowedTools != nil {
		args = append(args, "--allowed-tools", strings.Join(options.AllowedTools, ","))
	}

	if len(options.DisallowedTools) > 0 {
		args = append(args, "--disallowed-tools", strings.Join(options.DisallowedTools, ","))
	}

	if options.ContinueConversation {
		args = append(args, "--continue")
	}

	if options.Resume != nil {
		args = append(args, "--resume", *options.Resume)
	}

	if options.ForkSession {
		args = append(args, "--fork-session")
	}

	if len(options.Images) > 0 {
		args = append(args, "--input-format", "stream-json")
	} else {
		args = append(args, "--", prompt)
	}

	return args
}

// BuildStdinMessage builds the single user message delivered over stdin
// when image attachments switch the invocation to stream-json input.
// Image blocks come first, base64-encoded, followed by one text block
// carrying the prompt.
func BuildStdinMessage(prompt string, images []config.ImageAttachment) ([]byte, error) {
	content := make([]map[string]any, 0, len(images)+1)

	for _, img := range images {
		content = append(content, map[string]any{
			"type": "image",
			"source": map[string]any{
				"type":       "base64",
				"media_type": img.MediaType,
				"data":       base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}

	if prompt != "" {
		content = append(content, map[string]any{
			"type": "text",
			"text": prompt,
		})
	}

	msg := map[string]any{
		"type": "user",
		"message": map[string]any{
			"role":    "user",
			"content": content,
		},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal stdin message: %w", err)
	}

	return data, nil
}

// BuildEnvironment constructs the environment for the CLI process.
//
// ANTHROPIC_API_KEY is stripped whether or not it is set, including from
// per-invocation overrides, so the CLI always authenticates with its own
// ambient credentials.
func BuildEnvironment(options *config.Options) []string {
	ambient := os.Environ()
	env := make([]string, 0, len(ambient)+len(options.Env))

	for _, kv := range ambient {
		if strings.HasPrefix(kv, "ANTHROPIC_API_KEY=") {
			continue
		}

		env = append(env, kv)
	}

	for key, value := range options.Env {
		if key == "ANTHROPIC_API_KEY" {
			continue
		}

		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
