package footy

import (
	"fmt"
	"math"

	"github.com/richard-senior/footy/internal/logger"
)

// Predictor serves outcome probabilities for upcoming fixtures from the
// trainer's currently best artifact
type Predictor struct {
	store   *Store
	config  *FootyConfig
	log     *logger.Logger
	trainer *Trainer
}

// NewPredictor returns a predictor bound to the given trainer's artifact
func NewPredictor(store *Store, config *FootyConfig, log *logger.Logger, trainer *Trainer) *Predictor {
	if log == nil {
		log = logger.Default()
	}
	return &Predictor{
		store:   store,
		config:  config,
		log:     log,
		trainer: trainer,
	}
}

// Predict returns the home win, draw and away win probabilities for a
// fixture between the two teams on the given date, keyed "H", "D" and "A"
// and rounded to two decimal places. The feature vector is built exactly as
// in training: rolling windows over each side's most recent played
// fixtures, bookmaker odds where a stored fixture carries them, and the
// managers of record on the date. Returns ErrModelNotTrained when no
// fitted artifact is available and ErrNoManager when either side has no
// manager of record.
func (p *Predictor) Predict(homeID, awayID int, date, season string) (map[string]float64, error) {
	artifact := p.trainer.Artifact()
	if artifact == nil || !artifact.Fitted() {
		return nil, ErrModelNotTrained
	}

	fixture, err := p.pseudoFixture(homeID, awayID, date, season)
	if err != nil {
		return nil, err
	}
	if err := p.augmentManagers(fixture); err != nil {
		return nil, err
	}

	played, err := p.store.LoadPlayedFixtures(p.config.MinTrainingDate)
	if err != nil {
		return nil, err
	}
	history := BuildTeamHistory(played)

	fv, err := ComputeFeatures(fixture, history, p.config.WindowLength)
	if err != nil {
		return nil, err
	}
	// Restrict to the artifact's own feature list so a model trained on an
	// older feature set still receives the columns it expects
	vec, err := fv.Vector(artifact.FeatureList)
	if err != nil {
		return nil, err
	}

	proba, err := artifact.Model.PredictProba(vec)
	if err != nil {
		return nil, err
	}

	// The probability columns follow the order the classes were seen at fit
	// time. The artifact records that order; a mismatch means the artifact
	// file was tampered with or mixed between models.
	if len(artifact.ClassOrder) != len(artifact.Model.Classes) {
		return nil, fmt.Errorf("artifact %s class order does not match its model", artifact.ModelID)
	}
	for i, class := range artifact.ClassOrder {
		if artifact.Model.Classes[i] != class {
			return nil, fmt.Errorf("artifact %s class order does not match its model", artifact.ModelID)
		}
	}

	out := map[string]float64{"H": 0.0, "D": 0.0, "A": 0.0}
	for i, class := range artifact.ClassOrder {
		if _, ok := out[class]; !ok {
			return nil, fmt.Errorf("artifact %s has unknown outcome class %q", artifact.ModelID, class)
		}
		out[class] = math.Round(proba[i]*100) / 100
	}

	p.log.Info("Predicted", fixture.HomeTeam, "v", fixture.AwayTeam, "H", out["H"], "D", out["D"], "A", out["A"])
	return out, nil
}

// pseudoFixture builds the unplayed fixture row the feature extractor
// needs. A stored fixture for the same pairing in the same season supplies
// the odds and fixture id; otherwise the next sequential fixture id is
// used and the bookmaker odds stay at their unknown default.
func (p *Predictor) pseudoFixture(homeID, awayID int, date, season string) (*Fixture, error) {
	results, err := p.store.FindWhere(&Fixture{},
		"season = ? AND home_id = ? AND away_id = ?", season, homeID, awayID)
	if err != nil {
		return nil, err
	}
	if len(results) > 0 {
		fixture := results[0].(*Fixture)
		fixture.Date = date
		return fixture, nil
	}

	fixtureID, _, err := p.store.NextFixtureID()
	if err != nil {
		return nil, err
	}
	homeTeam, err := p.store.NameFor(homeID)
	if err != nil {
		return nil, err
	}
	awayTeam, err := p.store.NameFor(awayID)
	if err != nil {
		return nil, err
	}
	return &Fixture{
		Season:       season,
		FixtureID:    fixtureID,
		Date:         date,
		HomeID:       homeID,
		AwayID:       awayID,
		HomeTeam:     homeTeam,
		AwayTeam:     awayTeam,
		HomeGoals:    -1,
		AwayGoals:    -1,
		B365HomeOdds: -1.0,
		B365DrawOdds: -1.0,
		B365AwayOdds: -1.0,
	}, nil
}

// augmentManagers resolves both sides' managers of record for the fixture
// date and derives the manager features
func (p *Predictor) augmentManagers(fixture *Fixture) error {
	home, err := p.store.ActiveManager(fixture.HomeID, fixture.Date)
	if err != nil {
		return err
	}
	fixture.HomeManager = home.Manager
	fixture.HomeManagerStart = home.StartDate

	away, err := p.store.ActiveManager(fixture.AwayID, fixture.Date)
	if err != nil {
		return err
	}
	fixture.AwayManager = away.Manager
	fixture.AwayManagerStart = away.StartDate

	return AugmentManagers([]*Fixture{fixture}, p.config)
}
