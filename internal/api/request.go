package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	claudebridge "github.com/streamweld/claude-bridge"
)

const (
	minRequestTurns = 1
	maxRequestTurns = 10
)

// chatRequest is the body shared by the chat, stream, and json
// endpoints. Schema is only honored by /llm/json.
//
//nolint:tagliatelle // wire format is snake_case
type chatRequest struct {
	Prompt          string          `json:"prompt"`
	System          string          `json:"system"`
	Model           string          `json:"model"`
	MaxTurns        int             `json:"max_turns"`
	SessionID       string          `json:"session_id"`
	ContinueLast    bool            `json:"continue_last"`
	AllowedTools    []string        `json:"allowed_tools"`
	DisallowedTools []string        `json:"disallowed_tools"`
	MaxBudgetUSD    *float64        `json:"max_budget_usd"`
	Images          []imagePayload  `json:"images"`
	Schema          json.RawMessage `json:"schema"`
}

//nolint:tagliatelle // wire format is snake_case
type imagePayload struct {
	Data      string `json:"data"`
	MediaType string `json:"media_type"`
}

// buildInvocation validates the request and turns it into the model
// entry and option list for one invocation. Any error maps to a 400.
func (s *Server) buildInvocation(req *chatRequest) (*claudebridge.Model, []claudebridge.Option, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, nil, errors.New("prompt is required")
	}

	turns := req.MaxTurns
	if turns == 0 {
		turns = minRequestTurns
	}

	if turns < minRequestTurns || turns > maxRequestTurns {
		return nil, nil, fmt.Errorf("max_turns must be between %d and %d", minRequestTurns, maxRequestTurns)
	}

	id := req.Model
	if id == "" {
		id = claudebridge.DefaultModel().Alias
	}

	model := claudebridge.ResolveModel(id)
	if model == nil {
		return nil, nil, fmt.Errorf("unknown model %q", id)
	}

	opts := []claudebridge.Option{
		claudebridge.WithLogger(s.log),
		claudebridge.WithModel(model.CLIArg()),
		claudebridge.WithMaxTurns(turns),
		claudebridge.WithTimeout(s.cfg.ChatTimeout),
	}

	if req.System != "" {
		opts = append(opts, claudebridge.WithSystemPrompt(req.System))
	}

	if req.SessionID != "" {
		opts = append(opts, claudebridge.WithResume(req.SessionID))
	}

	if req.ContinueLast {
		opts = append(opts, claudebridge.WithContinueConversation(true))
	}

	// A present-but-empty list is an explicit empty allow-list; an
	// absent field leaves tool policy alone.
	if req.AllowedTools != nil {
		opts = append(opts, claudebridge.WithAllowedTools(req.AllowedTools...))
	}

	if req.DisallowedTools != nil {
		opts = append(opts, claudebridge.WithDisallowedTools(req.DisallowedTools...))
	}

	if req.MaxBudgetUSD != nil {
		opts = append(opts, claudebridge.WithMaxBudgetUSD(*req.MaxBudgetUSD))
	}

	for i, img := range req.Images {
		if img.MediaType == "" {
			return nil, nil, fmt.Errorf("images[%d]: media_type is required", i)
		}

		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("images[%d]: invalid base64 data", i)
		}

		opts = append(opts, claudebridge.WithImage(data, img.MediaType))
	}

	return model, opts, nil
}

// hasSchema reports whether the request carries a usable schema field.
func (req *chatRequest) hasSchema() bool {
	return len(req.Schema) > 0 && string(req.Schema) != "null"
}
