package claudebridge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOptions_Defaults(t *testing.T) {
	options := applyOptions(nil)

	assert.Nil(t, options.AllowedTools, "unset allow-list must stay nil")
	assert.Nil(t, options.Resume)
	assert.Nil(t, options.MaxBudgetUSD)
	assert.Zero(t, options.Timeout)
	assert.Empty(t, options.Images)
}

// An empty call is an explicit empty allow-list, which is distinct from
// never calling the option at all.
func TestWithAllowedTools_EmptyVersusUnset(t *testing.T) {
	unset := applyOptions(nil)
	assert.Nil(t, unset.AllowedTools)

	empty := applyOptions([]Option{WithAllowedTools()})
	require.NotNil(t, empty.AllowedTools)
	assert.Empty(t, empty.AllowedTools)

	populated := applyOptions([]Option{WithAllowedTools("Read", "Grep")})
	assert.Equal(t, []string{"Read", "Grep"}, populated.AllowedTools)
}

func TestWithResume_SetsPointer(t *testing.T) {
	options := applyOptions([]Option{WithResume("sess-42")})

	require.NotNil(t, options.Resume)
	assert.Equal(t, "sess-42", *options.Resume)
}

func TestWithImage_Appends(t *testing.T) {
	options := applyOptions([]Option{
		WithImage([]byte{0x89}, "image/png"),
		WithImage([]byte{0xff}, "image/jpeg"),
	})

	require.Len(t, options.Images, 2)
	assert.Equal(t, "image/png", options.Images[0].MediaType)
	assert.Equal(t, "image/jpeg", options.Images[1].MediaType)
}

func TestOptions_Combined(t *testing.T) {
	options := applyOptions([]Option{
		WithModel("haiku"),
		WithSystemPrompt("be terse"),
		WithMaxTurns(3),
		WithMaxBudgetUSD(0.5),
		WithTimeout(2 * time.Minute),
		WithTerminationGrace(10 * time.Second),
		WithDisallowedTools("Bash"),
		WithEnv(map[string]string{"CLAUDE_CONFIG_DIR": "/tmp/claude"}),
	})

	assert.Equal(t, "haiku", options.Model)
	assert.Equal(t, "be terse", options.SystemPrompt)
	assert.Equal(t, 3, options.MaxTurns)
	require.NotNil(t, options.MaxBudgetUSD)
	assert.InDelta(t, 0.5, *options.MaxBudgetUSD, 1e-9)
	assert.Equal(t, 2*time.Minute, options.Timeout)
	assert.Equal(t, 10*time.Second, options.TerminationGrace)
	assert.Equal(t, []string{"Bash"}, options.DisallowedTools)
	assert.Equal(t, "/tmp/claude", options.Env["CLAUDE_CONFIG_DIR"])
}
