package footy

import (
	"fmt"
)

// Compile-time check to ensure Team implements Persistable interface
var _ Persistable = (*Team)(nil)

// Team is the id-to-name lookup table, used only for display in predictor
// output
type Team struct {
	ID   int    `json:"id" column:"id" dbtype:"INTEGER" primary:"true" index:"true"`
	Name string `json:"name" column:"name" dbtype:"TEXT NOT NULL" index:"true"`
}

// GetPrimaryKey returns the primary key as a map
func (t *Team) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{
		"id": t.ID,
	}
}

// GetTableName returns the table name for teams
func (t *Team) GetTableName() string {
	return "teams"
}

// BeforeSave is called before saving the team
func (t *Team) BeforeSave() error {
	if t.Name == "" {
		return fmt.Errorf("team %d has no name", t.ID)
	}
	return nil
}

// NameFor returns the display name for the given team id
func (s *Store) NameFor(teamID int) (string, error) {
	team := &Team{}
	if err := s.FindByPrimaryKey(team, map[string]interface{}{"id": teamID}); err != nil {
		return "", fmt.Errorf("no name found for team %d: %w", teamID, err)
	}
	return team.Name, nil
}

// IDForName resolves a team name to its id, allocating the next id when
// the team has not been seen before. Names are matched exactly, so callers
// must clean them first.
func (s *Store) IDForName(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("cannot resolve an empty team name")
	}
	results, err := s.FindWhere(&Team{}, "name = ?", name)
	if err != nil {
		return 0, err
	}
	if len(results) > 0 {
		return results[0].(*Team).ID, nil
	}

	var maxID int
	row := s.db.QueryRow("SELECT ifnull(max(id), 0) FROM teams")
	if err := row.Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to allocate a team id: %w", err)
	}
	team := &Team{ID: maxID + 1, Name: name}
	if err := s.Save(team); err != nil {
		return 0, err
	}
	return team.ID, nil
}
