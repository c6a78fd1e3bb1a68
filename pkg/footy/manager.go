package footy

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoManager is returned when a team has no manager of record on a given
// date. Missing manager data indicates an upstream data-quality problem, so
// it always propagates rather than defaulting.
var ErrNoManager = errors.New("no manager of record")

// Compile-time check to ensure ManagerTenure implements Persistable interface
var _ Persistable = (*ManagerTenure)(nil)

// ManagerTenure is one (team, manager, start date, end date) spell in the
// managers table. An empty end date means the tenure is still active.
type ManagerTenure struct {
	TeamID    int    `json:"teamId" column:"team_id" dbtype:"INTEGER NOT NULL" primary:"true" index:"true"`
	Manager   string `json:"manager" column:"manager" dbtype:"TEXT NOT NULL" primary:"true"`
	StartDate string `json:"startDate" column:"start_date" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	EndDate   string `json:"endDate" column:"end_date" dbtype:"TEXT DEFAULT ''"`
}

// GetPrimaryKey returns the compound primary key as a map
func (m *ManagerTenure) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"team_id":    m.TeamID,
		"manager":    m.Manager,
		"start_date": m.StartDate,
	}
}

// GetTableName returns the table name for manager tenures
func (m *ManagerTenure) GetTableName() string {
	return "managers"
}

// BeforeSave is called before saving the tenure
func (m *ManagerTenure) BeforeSave() error {
	if m.Manager == "" || m.StartDate == "" {
		return fmt.Errorf("manager tenure for team %d is missing manager or start date", m.TeamID)
	}
	return nil
}

// Covers reports whether this tenure was active on the given date.
// The end date is inclusive with a one-day grace, matching how the fixtures
// join treats a manager's final match day.
func (m *ManagerTenure) Covers(date string) bool {
	if m.StartDate == "" || date < m.StartDate {
		return false
	}
	if m.EndDate == "" {
		return true
	}
	end, err := time.Parse("2006-01-02", m.EndDate)
	if err != nil {
		return date <= m.EndDate
	}
	return date <= end.AddDate(0, 0, 1).Format("2006-01-02")
}

// ActiveManager resolves the manager in charge of the given team on the
// given date. Returns ErrNoManager (wrapped with the team identity) when no
// tenure covers the date.
func (s *Store) ActiveManager(teamID int, date string) (*ManagerTenure, error) {
	results, err := s.FindWhere(&ManagerTenure{},
		"team_id = ? AND start_date <= ? AND (end_date = '' OR ? <= date(end_date, '+1 day')) ORDER BY start_date DESC LIMIT 1",
		teamID, date, date)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("team %d on %s: %w", teamID, date, ErrNoManager)
	}
	return results[0].(*ManagerTenure), nil
}

/////////////////////////////////////////////////////////////////////////
////// Manager Feature Augmenter
/////////////////////////////////////////////////////////////////////////

// AugmentManagers derives the manager_new and manager_age features for both
// sides of every fixture from the joined tenure start dates. A fixture whose
// home or away side has no manager of record aborts the whole batch; the
// error identifies the team and fixture.
func AugmentManagers(fixtures []*Fixture, config *FootyConfig) error {
	for _, fixture := range fixtures {
		if fixture.HomeManagerStart == "" {
			return fmt.Errorf("fixture %d (%s): home team %d: %w",
				fixture.FixtureID, fixture.Date, fixture.HomeID, ErrNoManager)
		}
		if fixture.AwayManagerStart == "" {
			return fmt.Errorf("fixture %d (%s): away team %d: %w",
				fixture.FixtureID, fixture.Date, fixture.AwayID, ErrNoManager)
		}

		date, err := fixture.ParsedDate()
		if err != nil {
			return fmt.Errorf("fixture %d: bad date %q: %w", fixture.FixtureID, fixture.Date, err)
		}

		isNew, age, err := managerFeatures(date, fixture.HomeManagerStart, config.ManagerNewDays)
		if err != nil {
			return fmt.Errorf("fixture %d home manager: %w", fixture.FixtureID, err)
		}
		fixture.HomeManagerNew = isNew
		fixture.HomeManagerAge = age

		isNew, age, err = managerFeatures(date, fixture.AwayManagerStart, config.ManagerNewDays)
		if err != nil {
			return fmt.Errorf("fixture %d away manager: %w", fixture.FixtureID, err)
		}
		fixture.AwayManagerNew = isNew
		fixture.AwayManagerAge = age
	}
	return nil
}

// managerFeatures returns the manager_new flag (1.0 within newDays of
// tenure start, else 0.0) and manager_age in years elapsed since tenure
// start as of the fixture date
func managerFeatures(fixtureDate time.Time, startDate string, newDays int) (float64, float64, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return 0, 0, fmt.Errorf("bad tenure start date %q: %w", startDate, err)
	}
	days := fixtureDate.Sub(start).Hours() / 24.0
	if days < 0 {
		return 0, 0, fmt.Errorf("tenure starting %s postdates fixture on %s",
			startDate, fixtureDate.Format("2006-01-02"))
	}

	isNew := 0.0
	if days <= float64(newDays) {
		isNew = 1.0
	}
	return isNew, days / 365.25, nil
}
