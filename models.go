package claudebridge

import "github.com/streamweld/claude-bridge/internal/models"

// Re-export model types from internal/models.

// Model holds metadata for a single Claude model.
type Model = models.Model

// ModelTier represents the speed/capability trade-off of a model.
type ModelTier = models.Tier

// Model tier constants.
const (
	// ModelTierFast is haiku-class: quickest responses, lowest cost.
	ModelTierFast = models.TierFast
	// ModelTierBalanced is sonnet-class: strong general-purpose default.
	ModelTierBalanced = models.TierBalanced
	// ModelTierCapable is opus-class: maximum intelligence at premium cost.
	ModelTierCapable = models.TierCapable
)

// Models returns a copy of every model the bridge accepts.
func Models() []Model {
	return models.All()
}

// ResolveModel looks up a model by alias, API identifier, or undated
// identifier prefix. Returns nil if no model matches.
func ResolveModel(id string) *Model {
	return models.Resolve(id)
}

// ModelByTier returns the model serving the given tier, or nil for an
// unknown tier.
func ModelByTier(tier ModelTier) *Model {
	return models.ByTier(tier)
}

// DefaultModel returns the model used when a request names none.
func DefaultModel() Model {
	return models.Default()
}
