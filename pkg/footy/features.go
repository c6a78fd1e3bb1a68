package footy

import (
	"fmt"
	"math"
)

// ModelFeatures lists every model input feature in training order: the home
// side's block followed by the away side's block, nineteen features each.
var ModelFeatures = []string{
	"avg_goals_for_home",
	"avg_goals_against_home",
	"sd_goals_for_home",
	"sd_goals_against_home",
	"avg_shots_for_home",
	"avg_shots_against_home",
	"sd_shots_for_home",
	"sd_shots_against_home",
	"avg_yellow_cards_home",
	"avg_red_cards_home",
	"b365_win_odds_home",
	"avg_perf_vs_bm_home",
	"manager_new_home",
	"manager_age_home",
	"win_rate_home",
	"draw_rate_home",
	"loss_rate_home",
	"home_advantage_sum_home",
	"home_advantage_avg_home",
	"avg_goals_for_away",
	"avg_goals_against_away",
	"sd_goals_for_away",
	"sd_goals_against_away",
	"avg_shots_for_away",
	"avg_shots_against_away",
	"sd_shots_for_away",
	"sd_shots_against_away",
	"avg_yellow_cards_away",
	"avg_red_cards_away",
	"b365_win_odds_away",
	"avg_perf_vs_bm_away",
	"manager_new_away",
	"manager_age_away",
	"win_rate_away",
	"draw_rate_away",
	"loss_rate_away",
	"home_advantage_sum_away",
	"home_advantage_avg_away",
}

// FeatureVector is one engineered row: the model input features plus the
// identifier columns carried alongside (and excluded from model input), plus
// the label when the fixture has been played.
type FeatureVector struct {
	FixtureID int
	Date      string
	Season    string
	HomeID    int
	HomeTeam  string
	AwayID    int
	AwayTeam  string

	// Bookmaker prices for the target fixture, carried for profit
	// calculation alongside the model inputs
	HomeOdds float64
	DrawOdds float64
	AwayOdds float64

	// Label is the full-time result class, empty for unplayed fixtures
	Label string

	Features map[string]float64
}

// Vector returns the feature values in the order of the given feature list
func (fv *FeatureVector) Vector(featureList []string) ([]float64, error) {
	out := make([]float64, len(featureList))
	for i, name := range featureList {
		v, ok := fv.Features[name]
		if !ok {
			return nil, fmt.Errorf("feature vector for fixture %d is missing %q", fv.FixtureID, name)
		}
		out[i] = v
	}
	return out, nil
}

// ComputeFeatures builds the feature vector for one fixture from the team
// history table. Pure function of its inputs: the rolling statistics for
// each side use only that team's windowLength fixtures strictly before the
// target (no look-ahead). Returns ErrInsufficientHistory when either side
// has too few prior games.
func ComputeFeatures(fixture *Fixture, history TeamHistory, windowLength int) (*FeatureVector, error) {
	homeWindow, err := history.WindowBefore(fixture.HomeID, fixture.Date, fixture.FixtureID, windowLength)
	if err != nil {
		return nil, err
	}
	awayWindow, err := history.WindowBefore(fixture.AwayID, fixture.Date, fixture.FixtureID, windowLength)
	if err != nil {
		return nil, err
	}

	features := make(map[string]float64, len(ModelFeatures))
	windowFeatures(features, "_home", homeWindow)
	windowFeatures(features, "_away", awayWindow)

	// The target fixture's own bookmaker odds for each side
	features["b365_win_odds_home"] = fixture.B365HomeOdds
	features["b365_win_odds_away"] = fixture.B365AwayOdds

	// Manager features derived by the augmenter
	features["manager_new_home"] = fixture.HomeManagerNew
	features["manager_age_home"] = fixture.HomeManagerAge
	features["manager_new_away"] = fixture.AwayManagerNew
	features["manager_age_away"] = fixture.AwayManagerAge

	return &FeatureVector{
		FixtureID: fixture.FixtureID,
		Date:      fixture.Date,
		Season:    fixture.Season,
		HomeID:    fixture.HomeID,
		HomeTeam:  fixture.HomeTeam,
		AwayID:    fixture.AwayID,
		AwayTeam:  fixture.AwayTeam,
		HomeOdds:  fixture.B365HomeOdds,
		DrawOdds:  fixture.B365DrawOdds,
		AwayOdds:  fixture.B365AwayOdds,
		Label:     fixture.FullTimeResult,
		Features:  features,
	}, nil
}

// windowFeatures fills the rolling statistics for one side's window into the
// feature map under the given suffix
func windowFeatures(features map[string]float64, suffix string, window []*TeamRecord) {
	n := float64(len(window))

	goalsFor := make([]float64, len(window))
	goalsAgainst := make([]float64, len(window))
	shotsFor := make([]float64, len(window))
	shotsAgainst := make([]float64, len(window))

	var yellow, red float64
	var wins, draws, losses float64
	var homePoints, awayPoints int
	var perfSum float64
	var perfCount int

	for i, rec := range window {
		goalsFor[i] = float64(rec.GoalsFor)
		goalsAgainst[i] = float64(rec.GoalsAgainst)
		shotsFor[i] = float64(rec.ShotsFor)
		shotsAgainst[i] = float64(rec.ShotsAgainst)
		yellow += float64(rec.YellowCards)
		red += float64(rec.RedCards)

		switch rec.Outcome {
		case 1.0:
			wins++
		case 0.5:
			draws++
		default:
			losses++
		}

		if rec.Home {
			homePoints += rec.Points
		} else {
			awayPoints += rec.Points
		}

		// Performance against the bookmaker's expectation: realised outcome
		// value minus the implied win probability. Records without usable
		// odds are left out of the average.
		if rec.WinOdds > 1.0 {
			perfSum += rec.Outcome - 1.0/rec.WinOdds
			perfCount++
		}
	}

	features["avg_goals_for"+suffix] = mean(goalsFor)
	features["avg_goals_against"+suffix] = mean(goalsAgainst)
	features["sd_goals_for"+suffix] = stddev(goalsFor)
	features["sd_goals_against"+suffix] = stddev(goalsAgainst)
	features["avg_shots_for"+suffix] = mean(shotsFor)
	features["avg_shots_against"+suffix] = mean(shotsAgainst)
	features["sd_shots_for"+suffix] = stddev(shotsFor)
	features["sd_shots_against"+suffix] = stddev(shotsAgainst)
	features["avg_yellow_cards"+suffix] = yellow / n
	features["avg_red_cards"+suffix] = red / n
	features["win_rate"+suffix] = wins / n
	features["draw_rate"+suffix] = draws / n
	features["loss_rate"+suffix] = losses / n

	// Home-advantage score: points taken at home minus points taken away
	// within the window
	haSum := float64(homePoints - awayPoints)
	features["home_advantage_sum"+suffix] = haSum
	features["home_advantage_avg"+suffix] = haSum / n

	perf := 0.0
	if perfCount > 0 {
		perf = perfSum / float64(perfCount)
	}
	features["avg_perf_vs_bm"+suffix] = perf
}

// mean returns the arithmetic mean of the values
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev returns the sample standard deviation of the values
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
