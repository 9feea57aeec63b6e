package models

// registry is the internal list of models the bridge accepts, one per tier.
// Aligned with the official Anthropic API model overview.
var registry = []Model{
	{
		Alias:           "haiku",
		APIID:           "claude-haiku-4-5-20251001",
		Name:            "Claude Haiku 4.5",
		Description:     "Our fastest model with near-frontier intelligence",
		Tier:            TierFast,
		ContextWindow:   200_000,
		MaxOutputTokens: 64_000,
		InputPrice:      "$1",
		OutputPrice:     "$5",
	},
	{
		Alias:           "sonnet",
		APIID:           "claude-sonnet-4-5-20250929",
		Name:            "Claude Sonnet 4.5",
		Description:     "Our smart model for complex agents and coding",
		Tier:            TierBalanced,
		ContextWindow:   200_000,
		MaxOutputTokens: 64_000,
		InputPrice:      "$3",
		OutputPrice:     "$15",
	},
	{
		Alias:           "opus",
		APIID:           "claude-opus-4-5-20251101",
		Name:            "Claude Opus 4.5",
		Description:     "Premium model combining maximum intelligence with practical performance",
		Tier:            TierCapable,
		ContextWindow:   200_000,
		MaxOutputTokens: 64_000,
		InputPrice:      "$5",
		OutputPrice:     "$25",
	},
}
