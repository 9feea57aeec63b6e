// Package models provides the catalog of Claude models the bridge accepts.
// It is the source of truth for model metadata: aliases, API identifiers,
// tiers, context windows, and pricing.
package models

import "strings"

// Tier represents the speed/capability trade-off of a model.
type Tier string

const (
	// TierFast is haiku-class: quickest responses, lowest cost.
	TierFast Tier = "fast"
	// TierBalanced is sonnet-class: strong general-purpose default.
	TierBalanced Tier = "balanced"
	// TierCapable is opus-class: maximum intelligence at premium cost.
	TierCapable Tier = "capable"
)

// Model holds metadata for a single Claude model.
type Model struct {
	// Alias is the short name the CLI accepts (e.g. "haiku").
	Alias string
	// APIID is the official dated Anthropic API model identifier.
	APIID string
	// Name is the human-readable display name.
	Name string
	// Description is a one-line summary shown by the models endpoint.
	Description string
	// Tier is the speed/capability tier this model serves.
	Tier Tier
	// ContextWindow is the context window size in tokens.
	ContextWindow int
	// MaxOutputTokens is the maximum number of output tokens.
	MaxOutputTokens int
	// InputPrice is the price per million input tokens.
	InputPrice string
	// OutputPrice is the price per million output tokens.
	OutputPrice string
}

// CLIArg returns the value to pass to the CLI's --model flag.
func (m Model) CLIArg() string { return m.Alias }

// All returns a copy of every known model in the catalog.
func All() []Model {
	out := make([]Model, len(registry))
	copy(out, registry)

	return out
}

// Resolve looks up a model by identifier. It checks in order:
//  1. Exact match on Alias
//  2. Exact match on APIID
//  3. Prefix match on APIID root (for undated IDs like "claude-haiku-4-5")
//
// Returns nil if no model is found.
func Resolve(id string) *Model {
	if id == "" {
		return nil
	}

	for i := range registry {
		if registry[i].Alias == id {
			m := registry[i]

			return &m
		}
	}

	for i := range registry {
		if registry[i].APIID == id {
			m := registry[i]

			return &m
		}
	}

	// Undated variants: "claude-haiku-4-5" matches "claude-haiku-4-5-20251001".
	for i := range registry {
		if strings.HasPrefix(registry[i].APIID, id+"-") {
			m := registry[i]

			return &m
		}
	}

	return nil
}

// ByTier returns the model serving the given tier, or nil for an unknown
// tier. The catalog keeps exactly one model per tier.
func ByTier(tier Tier) *Model {
	for i := range registry {
		if registry[i].Tier == tier {
			m := registry[i]

			return &m
		}
	}

	return nil
}

// Default returns the model used when a request names none.
func Default() Model {
	return *ByTier(TierFast)
}
