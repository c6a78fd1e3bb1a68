package footy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFootyConfig(t *testing.T) {
	config := DefaultFootyConfig()

	assert.Equal(t, 8, config.WindowLength)
	assert.Equal(t, 10, config.Folds)
	assert.Equal(t, 10, config.FixturesPerRound)
	assert.Equal(t, 380, config.SeasonFixtures)
	assert.Equal(t, 90, config.ManagerNewDays)
	assert.Equal(t, "balanced_accuracy", config.PrimaryMetric)
	assert.Equal(t, []string{"accuracy"}, config.SecondaryMetrics)

	require.NoError(t, config.Validate())
}

// With the default season shape the first eight game-weeks and the final
// game-week are excluded from training
func TestExclusionBoundaries(t *testing.T) {
	config := DefaultFootyConfig()
	assert.Equal(t, 80, config.FirstIncludedFixtureID())
	assert.Equal(t, 370, config.LastIncludedFixtureID())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*FootyConfig)
	}{
		{"zero window", func(c *FootyConfig) { c.WindowLength = 0 }},
		{"one fold", func(c *FootyConfig) { c.Folds = 1 }},
		{"bad season shape", func(c *FootyConfig) { c.SeasonFixtures = 5 }},
		{"zero estimators", func(c *FootyConfig) { c.Estimators = 0 }},
		{"zero depth", func(c *FootyConfig) { c.MaxDepth = 0 }},
		{"bad learning rate", func(c *FootyConfig) { c.LearningRate = 1.5 }},
		{"unknown primary metric", func(c *FootyConfig) { c.PrimaryMetric = "log_loss" }},
		{"unknown secondary metric", func(c *FootyConfig) { c.SecondaryMetrics = []string{"mcc"} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultFootyConfig()
			tc.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FOOTY_WINDOW_LENGTH", "5")
	t.Setenv("FOOTY_TEST_MODE", "true")
	t.Setenv("FOOTY_LEAGUE_CODE", "E1")

	config := LoadConfig()
	assert.Equal(t, 5, config.WindowLength)
	assert.True(t, config.TestMode)
	assert.Equal(t, "E1", config.LeagueCode)
}
