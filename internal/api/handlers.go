package api

import (
	"net/http"

	claudebridge "github.com/streamweld/claude-bridge"
	"github.com/streamweld/claude-bridge/internal/cli"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "claude-bridge",
		"version": claudebridge.Version,
	})
}

//nolint:tagliatelle // wire format is snake_case
type modelEntry struct {
	ID            string `json:"id"`
	APIID         string `json:"api_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	ContextWindow int    `json:"context_window"`
	MaxOutput     int    `json:"max_output"`
	InputPrice    string `json:"input_price"`
	OutputPrice   string `json:"output_price"`
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	catalog := claudebridge.Models()
	entries := make([]modelEntry, 0, len(catalog))

	for _, m := range catalog {
		entries = append(entries, modelEntry{
			ID:            m.Alias,
			APIID:         m.APIID,
			Name:          m.Name,
			Description:   m.Description,
			ContextWindow: m.ContextWindow,
			MaxOutput:     m.MaxOutputTokens,
			InputPrice:    m.InputPrice,
			OutputPrice:   m.OutputPrice,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"models": entries})
}

//nolint:tagliatelle // wire format is snake_case
type statusResponse struct {
	Available  bool   `json:"available"`
	BinaryPath string `json:"binary_path,omitempty"`
	Version    string `json:"version,omitempty"`
}

// handleStatus probes for the CLI binary. Available means found and
// responsive; a binary that is present but does not answer --version
// reports its path with available=false.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse

	path, err := cli.Discover(r.Context(), &cli.Config{Logger: s.log, SkipVersionCheck: true})
	if err != nil {
		writeJSON(w, http.StatusOK, resp)

		return
	}

	resp.BinaryPath = path

	version, err := cli.Probe(r.Context(), path)
	if err != nil {
		s.log.Warn("CLI version probe failed", "error", err)
		writeJSON(w, http.StatusOK, resp)

		return
	}

	resp.Available = true
	resp.Version = version
	writeJSON(w, http.StatusOK, resp)
}
