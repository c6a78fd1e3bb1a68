package footy

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// targetFixture returns an unplayed 21st meeting of the two synthetic
// teams, with manager features already derived
func targetFixture() *Fixture {
	return &Fixture{
		Season:         "2023/2024",
		FixtureID:      21,
		Date:           weeklyDate(20),
		HomeID:         1,
		AwayID:         2,
		HomeTeam:       "United",
		AwayTeam:       "City",
		HomeGoals:      -1,
		AwayGoals:      -1,
		B365HomeOdds:   1.9,
		B365DrawOdds:   3.4,
		B365AwayOdds:   4.0,
		HomeManagerNew: 0.0,
		HomeManagerAge: 2.5,
		AwayManagerNew: 1.0,
		AwayManagerAge: 0.1,
	}
}

func TestComputeFeaturesComplete(t *testing.T) {
	history := BuildTeamHistory(twoTeamSeries(20))

	fv, err := ComputeFeatures(targetFixture(), history, 8)
	require.NoError(t, err)

	// Every model feature present and finite
	require.Len(t, ModelFeatures, 38)
	for _, name := range ModelFeatures {
		v, ok := fv.Features[name]
		require.True(t, ok, "missing feature %s", name)
		assert.False(t, math.IsNaN(v), "feature %s is NaN", name)
		assert.False(t, math.IsInf(v, 0), "feature %s is infinite", name)
	}

	vec, err := fv.Vector(ModelFeatures)
	require.NoError(t, err)
	assert.Len(t, vec, 38)
}

// The home side scores exactly two goals in every window game, so the
// rolling mean is exact and the deviation zero
func TestComputeFeaturesConstantScorer(t *testing.T) {
	history := BuildTeamHistory(twoTeamSeries(20))

	fv, err := ComputeFeatures(targetFixture(), history, 8)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, fv.Features["avg_goals_for_home"], 1e-9)
	assert.InDelta(t, 0.0, fv.Features["sd_goals_for_home"], 1e-9)
	assert.InDelta(t, 1.0, fv.Features["avg_goals_against_home"], 1e-9)
	assert.InDelta(t, 1.0, fv.Features["avg_goals_for_away"], 1e-9)
	assert.InDelta(t, 0.0, fv.Features["sd_goals_for_away"], 1e-9)

	// Team 1 wins everything, team 2 loses everything
	assert.InDelta(t, 1.0, fv.Features["win_rate_home"], 1e-9)
	assert.InDelta(t, 0.0, fv.Features["loss_rate_home"], 1e-9)
	assert.InDelta(t, 0.0, fv.Features["win_rate_away"], 1e-9)
	assert.InDelta(t, 1.0, fv.Features["loss_rate_away"], 1e-9)

	// Venue alternates over an even window: points split equally between
	// home and away games for the winner
	assert.InDelta(t, 0.0, fv.Features["home_advantage_sum_home"], 1e-9)

	// The target fixture's own odds and manager features pass through
	assert.InDelta(t, 1.9, fv.Features["b365_win_odds_home"], 1e-9)
	assert.InDelta(t, 4.0, fv.Features["b365_win_odds_away"], 1e-9)
	assert.InDelta(t, 1.0, fv.Features["manager_new_away"], 1e-9)
	assert.InDelta(t, 2.5, fv.Features["manager_age_home"], 1e-9)
}

// Mutating a fixture played after the target must not change the target's
// features
func TestComputeFeaturesNoLookAhead(t *testing.T) {
	fixtures := twoTeamSeries(12)
	target := &Fixture{
		Season:    "2023/2024",
		FixtureID: 10,
		Date:      weeklyDate(9),
		HomeID:    1,
		AwayID:    2,
		HomeGoals: -1,
		AwayGoals: -1,
	}

	before, err := ComputeFeatures(target, BuildTeamHistory(fixtures), 8)
	require.NoError(t, err)

	// Rewrite the result of the 12th fixture, which postdates the target
	fixtures[11].HomeGoals = 9
	fixtures[11].AwayGoals = 0
	fixtures[11].FullTimeResult = "H"

	after, err := ComputeFeatures(target, BuildTeamHistory(fixtures), 8)
	require.NoError(t, err)

	assert.Equal(t, before.Features, after.Features)
}

func TestComputeFeaturesShortWindow(t *testing.T) {
	history := BuildTeamHistory(twoTeamSeries(5))

	_, err := ComputeFeatures(targetFixture(), history, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
}

func TestVectorMissingFeature(t *testing.T) {
	fv := &FeatureVector{FixtureID: 1, Features: map[string]float64{"win_rate_home": 0.5}}
	_, err := fv.Vector(ModelFeatures)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestMeanAndStddev(t *testing.T) {
	assert.InDelta(t, 2.0, mean([]float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 1.0, stddev([]float64{1, 2, 3}), 1e-9)
	assert.Equal(t, 0.0, mean(nil))
	assert.Equal(t, 0.0, stddev([]float64{5}))
}
