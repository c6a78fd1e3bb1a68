package footy

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/richard-senior/footy/internal/logger"
)

// Trainer owns the cross-validated train/evaluate/select loop and the
// currently best artifact. All collaborators are passed in explicitly.
type Trainer struct {
	store       *Store
	config      *FootyConfig
	log         *logger.Logger
	primary     Metric
	secondaries []Metric

	// The best artifact seen so far. Swapped atomically: it is only
	// replaced once a candidate's full metric set has been computed and
	// its primary score beats the stored one.
	artifact *Artifact
}

// NewTrainer validates the configuration (including the metric names) and
// returns a trainer with no model yet
func NewTrainer(store *Store, config *FootyConfig, log *logger.Logger) (*Trainer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if log == nil {
		log = logger.Default()
	}
	primary, _ := LookupMetric(config.PrimaryMetric)
	secondaries := make([]Metric, 0, len(config.SecondaryMetrics))
	for _, name := range config.SecondaryMetrics {
		metric, _ := LookupMetric(name)
		secondaries = append(secondaries, metric)
	}
	return &Trainer{
		store:       store,
		config:      config,
		log:         log,
		primary:     primary,
		secondaries: secondaries,
	}, nil
}

// Artifact returns the currently best trained artifact, or nil before any
// successful training run
func (t *Trainer) Artifact() *Artifact {
	return t.artifact
}

// SetArtifact installs a previously loaded artifact as the current model
func (t *Trainer) SetArtifact(artifact *Artifact) {
	t.artifact = artifact
}

// Run executes the full pipeline: optionally load a saved model, otherwise
// load training data, engineer features, train with cross-validation, and
// persist the resulting artifact
func (t *Trainer) Run(loadModel bool, loadModelDate string) error {
	if loadModel {
		artifact, err := LoadArtifact(t.config.ModelsPath, ModelType, loadModelDate)
		if err == nil {
			t.log.Info("Loaded model", artifact.ModelID)
			t.artifact = artifact
			return nil
		}
		// Load failure is non-fatal: fall through and retrain
		t.log.Warn("Could not load a saved model, training a new one", err)
	}

	t.log.Info("Training a new model.")
	fixtures, err := t.store.LoadTrainingFixtures(t.config.MinTrainingDate)
	if err != nil {
		return err
	}
	rows, labels, err := t.BuildFeatures(fixtures)
	if err != nil {
		return err
	}
	if t.config.TuneHyperparams {
		if err := t.TuneHyperparams(rows, labels); err != nil {
			return err
		}
	}
	if _, _, err := t.Train(rows, labels); err != nil {
		return err
	}
	if t.config.SaveTrainedModel {
		if err := t.artifact.Save(t.config.ModelsPath); err != nil {
			return err
		}
		t.log.Info("Saved model artifact", t.artifact.Filename())
	}
	return nil
}

// BuildFeatures runs the joined training rows through the manager augmenter
// and the feature extractor. Rows inside the season exclusion boundaries
// are dropped, as are rows whose teams lack a full history window (counted
// and logged; the policy is drop, not partial-window).
func (t *Trainer) BuildFeatures(fixtures []*Fixture) ([]*FeatureVector, []string, error) {
	t.log.Info("Preprocessing data and generating features.")

	if err := AugmentManagers(fixtures, t.config); err != nil {
		return nil, nil, err
	}

	played, err := t.store.LoadPlayedFixtures(t.config.MinTrainingDate)
	if err != nil {
		return nil, nil, err
	}
	history := BuildTeamHistory(played)

	var rows []*FeatureVector
	var labels []string
	shortWindow := 0

	for _, fixture := range fixtures {
		// Drop the first WindowLength game-weeks and the final game-week
		// of each season
		if fixture.FixtureID <= t.config.FirstIncludedFixtureID() ||
			fixture.FixtureID >= t.config.LastIncludedFixtureID() {
			continue
		}
		if t.config.TestMode && len(rows) >= t.config.TestModeRows {
			break
		}

		fv, err := ComputeFeatures(fixture, history, t.config.WindowLength)
		if err != nil {
			if errors.Is(err, ErrInsufficientHistory) {
				shortWindow++
				continue
			}
			return nil, nil, err
		}
		rows = append(rows, fv)
		if fv.Label != "" {
			labels = append(labels, fv.Label)
		}
	}

	if shortWindow > 0 {
		t.log.Debug("Dropped rows with short history windows", shortWindow)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("feature generation produced no usable rows: %w", ErrNoTrainingData)
	}
	if len(labels) != len(rows) {
		return nil, nil, fmt.Errorf("%d feature rows but %d labels; training rows must all carry a result", len(rows), len(labels))
	}
	return rows, labels, nil
}

// Train fits one classifier per cross-validation fold, predicts each held
// out subset, evaluates the union of held-out predictions, and keeps the
// candidate model only if the primary metric improves on the stored score.
// Held-out predictions are appended to the prediction log tagged with the
// candidate's model id.
func (t *Trainer) Train(rows []*FeatureVector, labels []string) (*Artifact, []*PredictionRecord, error) {
	t.log.Info("Training model.")

	n := len(rows)
	if n != len(labels) {
		return nil, nil, fmt.Errorf("feature matrix has %d rows but %d labels", n, len(labels))
	}
	if n < t.config.Folds {
		return nil, nil, fmt.Errorf("%d rows cannot be split into %d folds: %w", n, t.config.Folds, ErrNoTrainingData)
	}

	X, err := designMatrix(rows)
	if err != nil {
		return nil, nil, err
	}

	candidate := NewArtifact()

	predictions, model, err := t.crossValidate(X, labels, t.gbtParams())
	if err != nil {
		return nil, nil, err
	}

	records := make([]*PredictionRecord, n)
	for i, row := range rows {
		records[i] = &PredictionRecord{
			ModelID:   candidate.ModelID,
			Season:    row.Season,
			FixtureID: row.FixtureID,
			Date:      row.Date,
			HomeID:    row.HomeID,
			AwayID:    row.AwayID,
			HomeTeam:  row.HomeTeam,
			AwayTeam:  row.AwayTeam,
			Predicted: predictions[i],
			Actual:    labels[i],
			Profit:    ComputeProfit(predictions[i], labels[i], row.HomeOdds, row.DrawOdds, row.AwayOdds),
		}
	}

	// Evaluate the union of held-out predictions against actuals
	primaryScore := t.primary.Score(labels, predictions)
	t.log.Info("Model performance:", t.primary.Name, primaryScore)

	stored := 0.0
	if t.artifact != nil {
		stored = t.artifact.Performance[t.primary.Name]
	}
	if primaryScore > stored {
		// Compute the full metric set before swapping so the stored
		// artifact never holds a partial update
		performance := map[string]float64{t.primary.Name: primaryScore}
		for _, metric := range t.secondaries {
			performance[metric.Name] = metric.Score(labels, predictions)
		}
		candidate.Performance = performance
		candidate.ClassOrder = append([]string(nil), model.Classes...)
		candidate.Model = model
		t.artifact = candidate
	} else {
		t.log.Info("Candidate did not improve on stored score, keeping previous model", stored)
	}
	if t.artifact == nil {
		return nil, nil, fmt.Errorf("candidate scored %.4f on %s and no previous model is held; nothing was retained", primaryScore, t.primary.Name)
	}

	// Upload the out-of-fold predictions unless test mode suppresses it
	if !t.config.TestMode || t.config.UploadPredictions {
		if err := t.store.AppendPredictions(records); err != nil {
			return nil, nil, fmt.Errorf("failed to upload historic predictions: %w", err)
		}
	}

	return t.artifact, records, nil
}

// TuneHyperparams evaluates every combination of the configured depth and
// estimator grids with the same cross-validation used for training, scores
// each on the primary metric, and writes the winning combination back into
// the configuration so the subsequent Train call uses it.
func (t *Trainer) TuneHyperparams(rows []*FeatureVector, labels []string) error {
	t.log.Info("Tuning hyperparameters.")

	if len(rows) != len(labels) {
		return fmt.Errorf("feature matrix has %d rows but %d labels", len(rows), len(labels))
	}
	if len(rows) < t.config.Folds {
		return fmt.Errorf("%d rows cannot be split into %d folds: %w", len(rows), t.config.Folds, ErrNoTrainingData)
	}

	X, err := designMatrix(rows)
	if err != nil {
		return err
	}

	bestScore := -1.0
	bestDepth := t.config.MaxDepth
	bestEstimators := t.config.Estimators
	for _, depth := range t.config.MaxDepthGrid {
		for _, estimators := range t.config.EstimatorsGrid {
			params := GBTParams{
				Estimators:   estimators,
				MaxDepth:     depth,
				LearningRate: t.config.LearningRate,
				MinLeaf:      t.config.MinLeaf,
			}
			predictions, _, err := t.crossValidate(X, labels, params)
			if err != nil {
				return fmt.Errorf("tuning max_depth=%d n_estimators=%d: %w", depth, estimators, err)
			}
			score := t.primary.Score(labels, predictions)
			t.log.Debug("Tuning candidate", "max_depth", depth, "n_estimators", estimators, t.primary.Name, score)
			if score > bestScore {
				bestScore = score
				bestDepth = depth
				bestEstimators = estimators
			}
		}
	}

	t.config.MaxDepth = bestDepth
	t.config.Estimators = bestEstimators
	t.log.Info("Best params:", "max_depth", bestDepth, "n_estimators", bestEstimators, t.primary.Name, bestScore)
	return nil
}

func (t *Trainer) gbtParams() GBTParams {
	return GBTParams{
		Estimators:   t.config.Estimators,
		MaxDepth:     t.config.MaxDepth,
		LearningRate: t.config.LearningRate,
		MinLeaf:      t.config.MinLeaf,
	}
}

func designMatrix(rows []*FeatureVector) ([][]float64, error) {
	X := make([][]float64, len(rows))
	for i, row := range rows {
		vec, err := row.Vector(ModelFeatures)
		if err != nil {
			return nil, err
		}
		X[i] = vec
	}
	return X, nil
}

// crossValidate fits one classifier per fold and predicts each held out
// subset. Out-of-fold predictions keep their original row index so the
// union evaluation is deterministic regardless of fold order. The model
// fitted on the final fold is returned alongside the predictions.
func (t *Trainer) crossValidate(X [][]float64, labels []string, params GBTParams) ([]string, *GBTClassifier, error) {
	n := len(X)
	folds := FoldIndices(n, t.config.Folds, t.config.PartitionSeed)

	predictions := make([]string, n)
	var model *GBTClassifier

	for foldIndex, heldOut := range folds {
		inFold := make(map[int]bool, len(heldOut))
		for _, i := range heldOut {
			inFold[i] = true
		}
		var trainX [][]float64
		var trainY []string
		for i := 0; i < n; i++ {
			if !inFold[i] {
				trainX = append(trainX, X[i])
				trainY = append(trainY, labels[i])
			}
		}

		model = NewGBTClassifier(params)
		// A fold that cannot fit aborts the whole run; silently skipping
		// a fold would leave holes in the out-of-fold evaluation
		if err := model.Fit(trainX, trainY); err != nil {
			return nil, nil, fmt.Errorf("fold %d of %d failed to fit: %w", foldIndex+1, len(folds), err)
		}

		for _, i := range heldOut {
			predicted, err := model.Predict(X[i])
			if err != nil {
				return nil, nil, fmt.Errorf("fold %d prediction failed: %w", foldIndex+1, err)
			}
			predictions[i] = predicted
		}
	}
	return predictions, model, nil
}

// FoldIndices partitions row indices 0..n-1 into k folds. The shuffle is
// seeded so repeated runs produce the same partition. Every index lands in
// exactly one fold.
func FoldIndices(n, k int, seed int64) [][]int {
	indices := rand.New(rand.NewSource(seed)).Perm(n)

	folds := make([][]int, k)
	base := n / k
	extra := n % k
	pos := 0
	for f := 0; f < k; f++ {
		size := base
		if f < extra {
			size++
		}
		folds[f] = indices[pos : pos+size]
		pos += size
	}
	return folds
}
