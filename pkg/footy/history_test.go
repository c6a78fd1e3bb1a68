package footy

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weeklyDate returns the date of the i-th game-week of a synthetic season
// starting 2023-08-05
func weeklyDate(i int) string {
	start := time.Date(2023, 8, 5, 0, 0, 0, 0, time.UTC)
	return start.AddDate(0, 0, 7*i).Format("2006-01-02")
}

// twoTeamSeries produces n played fixtures between teams 1 and 2, venue
// alternating, where team 1 always scores two goals and team 2 always one
func twoTeamSeries(n int) []*Fixture {
	fixtures := make([]*Fixture, n)
	for i := 0; i < n; i++ {
		f := &Fixture{
			Season:          "2023/2024",
			FixtureID:       i + 1,
			Date:            weeklyDate(i),
			HomeTeam:        "United",
			AwayTeam:        "City",
			HomeShots:       10,
			AwayShots:       8,
			HomeYellowCards: 1,
			AwayYellowCards: 2,
			HomeRedCards:    0,
			AwayRedCards:    0,
			B365HomeOdds:    1.8,
			B365DrawOdds:    3.5,
			B365AwayOdds:    4.2,
		}
		if i%2 == 0 {
			f.HomeID, f.AwayID = 1, 2
			f.HomeGoals, f.AwayGoals = 2, 1
		} else {
			f.HomeID, f.AwayID = 2, 1
			f.HomeGoals, f.AwayGoals = 1, 2
		}
		f.FullTimeResult = resultLetter(f.HomeGoals, f.AwayGoals)
		fixtures[i] = f
	}
	return fixtures
}

func TestBuildTeamHistory(t *testing.T) {
	history := BuildTeamHistory(twoTeamSeries(6))

	require.Len(t, history[1], 6)
	require.Len(t, history[2], 6)

	// Team 1 wins every game regardless of venue
	for i, rec := range history[1] {
		assert.Equal(t, 2, rec.GoalsFor, "game %d", i)
		assert.Equal(t, 1, rec.GoalsAgainst, "game %d", i)
		assert.Equal(t, 1.0, rec.Outcome, "game %d", i)
		assert.Equal(t, 3, rec.Points, "game %d", i)
	}
	for i, rec := range history[2] {
		assert.Equal(t, 0.0, rec.Outcome, "game %d", i)
		assert.Equal(t, 0, rec.Points, "game %d", i)
	}

	// Chronological order
	for i := 1; i < len(history[1]); i++ {
		assert.Less(t, history[1][i-1].Date, history[1][i].Date)
	}
}

func TestBuildTeamHistorySkipsUnplayed(t *testing.T) {
	fixtures := twoTeamSeries(3)
	fixtures = append(fixtures, &Fixture{
		Season: "2023/2024", FixtureID: 4, Date: weeklyDate(3),
		HomeID: 1, AwayID: 2, HomeGoals: -1, AwayGoals: -1,
	})
	history := BuildTeamHistory(fixtures)
	assert.Len(t, history[1], 3)
}

func TestWindowBefore(t *testing.T) {
	history := BuildTeamHistory(twoTeamSeries(10))

	// Window before the 8th fixture (index 7) holds fixtures 4..7
	window, err := history.WindowBefore(1, weeklyDate(7), 8, 4)
	require.NoError(t, err)
	require.Len(t, window, 4)
	assert.Equal(t, 4, window[0].FixtureID)
	assert.Equal(t, 7, window[3].FixtureID)
}

func TestWindowBeforeExcludesTarget(t *testing.T) {
	history := BuildTeamHistory(twoTeamSeries(10))

	// A window anchored on a played fixture must not contain that fixture
	window, err := history.WindowBefore(1, weeklyDate(9), 10, 8)
	require.NoError(t, err)
	for _, rec := range window {
		assert.NotEqual(t, 10, rec.FixtureID)
	}
}

func TestWindowBeforeInsufficientHistory(t *testing.T) {
	history := BuildTeamHistory(twoTeamSeries(5))

	_, err := history.WindowBefore(1, weeklyDate(5), 6, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientHistory), fmt.Sprintf("got %v", err))

	// Unknown team has no history at all
	_, err = history.WindowBefore(99, weeklyDate(5), 6, 8)
	assert.True(t, errors.Is(err, ErrInsufficientHistory))
}
