package footy

import (
	"errors"
	"fmt"
)

// ErrNoTrainingData is returned when the training query matches no fixtures
var ErrNoTrainingData = errors.New("no training data available")

// trainingDataQuery joins played fixtures with the manager tenure active for
// each side on the fixture date. A tenure matches when the fixture date
// falls inside [start_date, end_date + 1 day], or after the start of a
// still-open tenure.
const trainingDataQuery = `
select t1.season, t1.fixture_id, t1.date, t1.home_id, t1.away_id,
	t1.home_team, t1.away_team, t1.full_time_result,
	t1.home_goals, t1.away_goals, t1.home_shots, t1.away_shots,
	t1.home_yellow_cards, t1.away_yellow_cards, t1.home_red_cards, t1.away_red_cards,
	t1.b365_home_odds, t1.b365_draw_odds, t1.b365_away_odds,
	ifnull(m_h.manager, ''), ifnull(m_h.start_date, ''),
	ifnull(m_a.manager, ''), ifnull(m_a.start_date, '')
from main_fixtures t1
left join managers m_h
	on t1.home_id = m_h.team_id
	and (t1.date between m_h.start_date and date(m_h.end_date, '+1 day')
		or (t1.date >= m_h.start_date and m_h.end_date = ''))
left join managers m_a
	on t1.away_id = m_a.team_id
	and (t1.date between m_a.start_date and date(m_a.end_date, '+1 day')
		or (t1.date >= m_a.start_date and m_a.end_date = ''))
where t1.date > ? and t1.full_time_result != ''
order by t1.date, t1.fixture_id`

// LoadTrainingFixtures returns all played fixtures since the configured
// cutoff date, each annotated with the manager in charge of either side.
// Rows with no matching tenure come back with empty manager columns; the
// augmenter decides whether that is fatal.
func (s *Store) LoadTrainingFixtures(minDate string) ([]*Fixture, error) {
	rows, err := s.db.Query(trainingDataQuery, minDate)
	if err != nil {
		return nil, fmt.Errorf("training data query failed: %w", err)
	}
	defer rows.Close()

	var fixtures []*Fixture
	for rows.Next() {
		f := &Fixture{}
		err := rows.Scan(
			&f.Season, &f.FixtureID, &f.Date, &f.HomeID, &f.AwayID,
			&f.HomeTeam, &f.AwayTeam, &f.FullTimeResult,
			&f.HomeGoals, &f.AwayGoals, &f.HomeShots, &f.AwayShots,
			&f.HomeYellowCards, &f.AwayYellowCards, &f.HomeRedCards, &f.AwayRedCards,
			&f.B365HomeOdds, &f.B365DrawOdds, &f.B365AwayOdds,
			&f.HomeManager, &f.HomeManagerStart,
			&f.AwayManager, &f.AwayManagerStart,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan training row: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating training rows: %w", err)
	}
	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no played fixtures since %s: %w", minDate, ErrNoTrainingData)
	}
	return fixtures, nil
}

// LoadPlayedFixtures returns every played fixture since the given date,
// without manager columns. This is the raw material for the per-team
// history table.
func (s *Store) LoadPlayedFixtures(minDate string) ([]*Fixture, error) {
	results, err := s.FindWhere(&Fixture{},
		"date > ? and full_time_result != '' order by date, fixture_id", minDate)
	if err != nil {
		return nil, err
	}
	fixtures := make([]*Fixture, 0, len(results))
	for _, r := range results {
		fixtures = append(fixtures, r.(*Fixture))
	}
	return fixtures, nil
}

// NextFixtureID returns a placeholder fixture id for online prediction: one
// greater than the highest fixture id on the most recent date in the store.
// It aligns the feature window for a not-yet-recorded fixture and is not a
// durable identifier.
func (s *Store) NextFixtureID() (int, string, error) {
	var maxDate string
	err := s.db.QueryRow("select ifnull(max(date), '') from main_fixtures").Scan(&maxDate)
	if err != nil {
		return 0, "", fmt.Errorf("failed to find latest fixture date: %w", err)
	}
	if maxDate == "" {
		return 0, "", ErrNoTrainingData
	}
	var maxFixture int
	err = s.db.QueryRow("select max(fixture_id) from main_fixtures where date = ?", maxDate).Scan(&maxFixture)
	if err != nil {
		return 0, "", fmt.Errorf("failed to find latest fixture id: %w", err)
	}
	return maxFixture + 1, maxDate, nil
}
