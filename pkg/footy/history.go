package footy

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInsufficientHistory is returned when a team has fewer strictly-prior
// fixtures than the rolling window needs. Partial windows would produce
// statistics that are not comparable across rows, so such rows are invalid
// rather than approximated.
var ErrInsufficientHistory = errors.New("insufficient prior fixtures for rolling window")

// TeamRecord is one played fixture seen from one team's perspective. Two
// records are derived from every played fixture, one per side.
type TeamRecord struct {
	TeamID       int
	Season       string
	FixtureID    int
	Date         string
	Home         bool
	GoalsFor     int
	GoalsAgainst int
	ShotsFor     int
	ShotsAgainst int
	YellowCards  int
	RedCards     int
	WinOdds      float64 // bookmaker odds for this team winning this fixture

	// Outcome value: win 1.0, draw 0.5, loss 0.0
	Outcome float64
	// League points taken: win 3, draw 1, loss 0
	Points int
}

// TeamHistory holds each team's played records in chronological order
// (date, then fixture id)
type TeamHistory map[int][]*TeamRecord

// BuildTeamHistory derives the per-team history table from played fixtures
func BuildTeamHistory(fixtures []*Fixture) TeamHistory {
	history := make(TeamHistory)
	for _, f := range fixtures {
		if !f.HasBeenPlayed() {
			continue
		}
		home := &TeamRecord{
			TeamID:       f.HomeID,
			Season:       f.Season,
			FixtureID:    f.FixtureID,
			Date:         f.Date,
			Home:         true,
			GoalsFor:     f.HomeGoals,
			GoalsAgainst: f.AwayGoals,
			ShotsFor:     f.HomeShots,
			ShotsAgainst: f.AwayShots,
			YellowCards:  f.HomeYellowCards,
			RedCards:     f.HomeRedCards,
			WinOdds:      f.B365HomeOdds,
		}
		away := &TeamRecord{
			TeamID:       f.AwayID,
			Season:       f.Season,
			FixtureID:    f.FixtureID,
			Date:         f.Date,
			Home:         false,
			GoalsFor:     f.AwayGoals,
			GoalsAgainst: f.HomeGoals,
			ShotsFor:     f.AwayShots,
			ShotsAgainst: f.HomeShots,
			YellowCards:  f.AwayYellowCards,
			RedCards:     f.AwayRedCards,
			WinOdds:      f.B365AwayOdds,
		}
		switch resultLetter(f.HomeGoals, f.AwayGoals) {
		case "H":
			home.Outcome, home.Points = 1.0, 3
			away.Outcome, away.Points = 0.0, 0
		case "A":
			home.Outcome, home.Points = 0.0, 0
			away.Outcome, away.Points = 1.0, 3
		default:
			home.Outcome, home.Points = 0.5, 1
			away.Outcome, away.Points = 0.5, 1
		}
		history[f.HomeID] = append(history[f.HomeID], home)
		history[f.AwayID] = append(history[f.AwayID], away)
	}

	for teamID := range history {
		records := history[teamID]
		sort.SliceStable(records, func(i, j int) bool {
			if records[i].Date != records[j].Date {
				return records[i].Date < records[j].Date
			}
			return records[i].FixtureID < records[j].FixtureID
		})
	}
	return history
}

// WindowBefore returns the team's last windowLength records strictly before
// the given target fixture. "Before" is (date, fixture id) ordering, so a
// record on the target's own date with an equal or later fixture id is
// excluded, as is the target itself.
func (h TeamHistory) WindowBefore(teamID int, date string, fixtureID, windowLength int) ([]*TeamRecord, error) {
	records := h[teamID]
	// records are sorted, find the cut point
	cut := sort.Search(len(records), func(i int) bool {
		if records[i].Date != date {
			return records[i].Date > date
		}
		return records[i].FixtureID >= fixtureID
	})
	if cut < windowLength {
		return nil, fmt.Errorf("team %d before fixture %d on %s has %d prior games, need %d: %w",
			teamID, fixtureID, date, cut, windowLength, ErrInsufficientHistory)
	}
	return records[cut-windowLength : cut], nil
}
