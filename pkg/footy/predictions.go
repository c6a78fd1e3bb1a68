package footy

import (
	"fmt"
)

// Compile-time check to ensure PredictionRecord implements Persistable interface
var _ Persistable = (*PredictionRecord)(nil)

// PredictionRecord is one out-of-fold (or live) prediction in the
// append-only historic_predictions table, tagged with the producing model so
// model performances can be compared after the fact.
type PredictionRecord struct {
	ModelID   string `json:"modelId" column:"model_id" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Season    string `json:"season" column:"season" dbtype:"TEXT NOT NULL" primary:"true"`
	FixtureID int    `json:"fixtureId" column:"fixture_id" dbtype:"INTEGER NOT NULL" primary:"true"`

	Date     string `json:"date" column:"date" dbtype:"TEXT NOT NULL"`
	HomeID   int    `json:"homeId" column:"home_id" dbtype:"INTEGER NOT NULL"`
	AwayID   int    `json:"awayId" column:"away_id" dbtype:"INTEGER NOT NULL"`
	HomeTeam string `json:"homeTeam" column:"home_team" dbtype:"TEXT NOT NULL"`
	AwayTeam string `json:"awayTeam" column:"away_team" dbtype:"TEXT NOT NULL"`

	// Predicted and actual outcome classes; actual is empty for live
	// predictions on unplayed fixtures
	Predicted string `json:"predicted" column:"predicted" dbtype:"TEXT NOT NULL"`
	Actual    string `json:"actual" column:"actual" dbtype:"TEXT DEFAULT ''"`

	// Profit from a one-unit bet on the predicted outcome at the fixture's
	// bookmaker odds
	Profit float64 `json:"profit" column:"profit" dbtype:"REAL DEFAULT 0.0"`
}

// GetPrimaryKey returns the compound primary key as a map
func (p *PredictionRecord) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"model_id":   p.ModelID,
		"season":     p.Season,
		"fixture_id": p.FixtureID,
	}
}

// GetTableName returns the table name for the prediction log
func (p *PredictionRecord) GetTableName() string {
	return "historic_predictions"
}

// BeforeSave is called before saving the record
func (p *PredictionRecord) BeforeSave() error {
	if p.ModelID == "" {
		return fmt.Errorf("prediction for fixture %d has no model id", p.FixtureID)
	}
	return nil
}

// AppendPredictions writes a batch of prediction records to the log in one
// transaction
func (s *Store) AppendPredictions(records []*PredictionRecord) error {
	objects := make([]Persistable, len(records))
	for i, r := range records {
		objects[i] = r
	}
	return s.BulkSave(objects)
}

// PredictionsByModel reads back every logged prediction made by the given
// model
func (s *Store) PredictionsByModel(modelID string) ([]*PredictionRecord, error) {
	results, err := s.FindWhere(&PredictionRecord{},
		"model_id = ? order by season, fixture_id", modelID)
	if err != nil {
		return nil, err
	}
	records := make([]*PredictionRecord, 0, len(results))
	for _, r := range results {
		records = append(records, r.(*PredictionRecord))
	}
	return records, nil
}

// ComputeProfit returns the return on a one-unit bet on the predicted
// outcome: odds minus stake when the prediction was right, the lost stake
// when it was wrong, zero when the outcome or odds are unknown
func ComputeProfit(predicted, actual string, homeOdds, drawOdds, awayOdds float64) float64 {
	if actual == "" {
		return 0.0
	}
	var odds float64
	switch predicted {
	case "H":
		odds = homeOdds
	case "D":
		odds = drawOdds
	case "A":
		odds = awayOdds
	default:
		return 0.0
	}
	if odds <= 1.0 {
		return 0.0
	}
	if predicted == actual {
		return odds - 1.0
	}
	return -1.0
}
