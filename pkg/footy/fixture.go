package footy

import (
	"time"
)

// Compile-time check to ensure Fixture implements Persistable interface
var _ Persistable = (*Fixture)(nil)

// Fixture represents one played or scheduled match in the main_fixtures
// table. Fixture ids run 1..SeasonFixtures within a season, ten per
// game-week, so the (season, fixture_id) pair is the primary key. Rows are
// immutable once the result is recorded.
type Fixture struct {
	// Primary key
	Season    string `json:"season" column:"season" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	FixtureID int    `json:"fixtureId" column:"fixture_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`

	// Info
	Date     string `json:"date" column:"date" dbtype:"TEXT NOT NULL" index:"true"`
	HomeID   int    `json:"homeId" column:"home_id" dbtype:"INTEGER NOT NULL" index:"true"`
	AwayID   int    `json:"awayId" column:"away_id" dbtype:"INTEGER NOT NULL" index:"true"`
	HomeTeam string `json:"homeTeam" column:"home_team" dbtype:"TEXT NOT NULL"`
	AwayTeam string `json:"awayTeam" column:"away_team" dbtype:"TEXT NOT NULL"`

	// Result: "H", "D", "A", or empty if the match has not been played
	FullTimeResult string `json:"fullTimeResult" column:"full_time_result" dbtype:"TEXT DEFAULT ''"`

	// Per-team match statistics
	HomeGoals       int `json:"homeGoals" column:"home_goals" dbtype:"INTEGER DEFAULT -1"`
	AwayGoals       int `json:"awayGoals" column:"away_goals" dbtype:"INTEGER DEFAULT -1"`
	HomeShots       int `json:"homeShots" column:"home_shots" dbtype:"INTEGER DEFAULT -1"`
	AwayShots       int `json:"awayShots" column:"away_shots" dbtype:"INTEGER DEFAULT -1"`
	HomeYellowCards int `json:"homeYellowCards" column:"home_yellow_cards" dbtype:"INTEGER DEFAULT -1"`
	AwayYellowCards int `json:"awayYellowCards" column:"away_yellow_cards" dbtype:"INTEGER DEFAULT -1"`
	HomeRedCards    int `json:"homeRedCards" column:"home_red_cards" dbtype:"INTEGER DEFAULT -1"`
	AwayRedCards    int `json:"awayRedCards" column:"away_red_cards" dbtype:"INTEGER DEFAULT -1"`

	// Bookmaker odds
	B365HomeOdds float64 `json:"b365HomeOdds" column:"b365_home_odds" dbtype:"REAL DEFAULT -1.0"`
	B365DrawOdds float64 `json:"b365DrawOdds" column:"b365_draw_odds" dbtype:"REAL DEFAULT -1.0"`
	B365AwayOdds float64 `json:"b365AwayOdds" column:"b365_away_odds" dbtype:"REAL DEFAULT -1.0"`

	// Manager columns joined on by the loader and filled by the augmenter.
	// Not persisted with the fixture; managers have their own table.
	HomeManager      string `json:"homeManager,omitempty"`
	HomeManagerStart string `json:"homeManagerStart,omitempty"`
	AwayManager      string `json:"awayManager,omitempty"`
	AwayManagerStart string `json:"awayManagerStart,omitempty"`

	// Derived manager features, set by AugmentManagers
	HomeManagerNew float64 `json:"homeManagerNew,omitempty"`
	HomeManagerAge float64 `json:"homeManagerAge,omitempty"`
	AwayManagerNew float64 `json:"awayManagerNew,omitempty"`
	AwayManagerAge float64 `json:"awayManagerAge,omitempty"`
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the compound primary key as a map
func (f *Fixture) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"season":     f.Season,
		"fixture_id": f.FixtureID,
	}
}

// GetTableName returns the table name for fixtures
func (f *Fixture) GetTableName() string {
	return "main_fixtures"
}

// BeforeSave is called before saving the fixture
func (f *Fixture) BeforeSave() error {
	// Derive the result letter if goals are known but the result column
	// was never set
	if f.FullTimeResult == "" && f.HasBeenPlayed() {
		f.FullTimeResult = resultLetter(f.HomeGoals, f.AwayGoals)
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Status Query Methods
/////////////////////////////////////////////////////////////////////////

// HasBeenPlayed determines if the match has been completed
func (f *Fixture) HasBeenPlayed() bool {
	return f.HomeGoals >= 0 && f.AwayGoals >= 0
}

// ParsedDate returns the fixture date as a time.Time
func (f *Fixture) ParsedDate() (time.Time, error) {
	return time.Parse("2006-01-02", f.Date)
}

// resultLetter returns "H" for a home win, "D" for a draw, "A" for an away win
func resultLetter(homeGoals, awayGoals int) string {
	if homeGoals > awayGoals {
		return "H"
	} else if homeGoals < awayGoals {
		return "A"
	}
	return "D"
}
