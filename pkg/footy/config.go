package footy

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// FootyConfig contains all configurable parameters that influence training
// and prediction outcomes. This centralizes all magic numbers and constants
// for easy adjustment.
type FootyConfig struct {
	// Asset locations
	AssetsPath string // The base directory of assets relating to footy
	CachePath  string // The location in which cached downloaded data is stored
	DbPath     string // The location of the footy sqlite database
	ModelsPath string // The directory in which trained model artifacts are saved

	// === DATA SOURCES ===

	LeagueCode  string // football-data.co.uk league code (default: E0, the Premier League)
	ManagersURL string // Page to scrape manager tenures from

	// === TRAINING DATA PARAMETERS ===

	WindowLength    int    // How many prior games to roll statistics over (default: 8)
	MinTrainingDate string // The minimum date to get training data from (default: 2013-08-01)

	// Season shape, used for the exclusion boundaries: the first
	// WindowLength game-weeks and the final game-week of each season are
	// dropped from training
	FixturesPerRound int // Fixtures per game-week (default: 10)
	SeasonFixtures   int // Fixtures per season (default: 380)

	// === MANAGER FEATURES ===

	ManagerNewDays int // A manager is "new" within this many days of tenure start (default: 90)

	// === CROSS-VALIDATION ===

	Folds         int   // Number of cross-validation folds (default: 10)
	PartitionSeed int64 // Seed for the fold partition shuffle, fixed for reproducibility

	// === MODEL SELECTION METRICS ===

	PrimaryMetric    string   // Metric that decides whether a new model replaces the stored one
	SecondaryMetrics []string // Additional metrics recorded alongside the primary

	// === CLASSIFIER HYPERPARAMETERS ===

	Estimators   int     // Number of boosting rounds (default: 100)
	MaxDepth     int     // Maximum tree depth (default: 4)
	LearningRate float64 // Shrinkage applied to each tree's contribution (default: 0.1)
	MinLeaf      int     // Minimum samples per leaf (default: 5)

	// === HYPERPARAMETER TUNING ===

	TuneHyperparams bool  // Grid-search MaxDepth and Estimators before training
	MaxDepthGrid    []int // Depth candidates for the grid search (default: 2, 4, 6)
	EstimatorsGrid  []int // Boosting round candidates for the grid search (default: 50, 100, 200)

	// === RUN MODES ===

	TestMode          bool // Subsamples data and skips prediction uploads
	UploadPredictions bool // Force prediction uploads even in test mode
	SaveTrainedModel  bool // Persist the trained artifact after a run
	TestModeRows      int  // Max feature rows generated in test mode (default: 100)
}

// DefaultFootyConfig returns the default configuration with all standard values
func DefaultFootyConfig() *FootyConfig {
	assetsPath := os.Getenv("HOME") + "/.footy/"
	return &FootyConfig{
		AssetsPath: assetsPath,
		CachePath:  assetsPath + "cache/",
		DbPath:     assetsPath + "footy.db",
		ModelsPath: assetsPath + "models/",

		LeagueCode:  "E0",
		ManagersURL: "https://en.wikipedia.org/wiki/List_of_Premier_League_managers",

		WindowLength:     8,
		MinTrainingDate:  "2013-08-01",
		FixturesPerRound: 10,
		SeasonFixtures:   380,

		ManagerNewDays: 90,

		Folds:         10,
		PartitionSeed: 42,

		PrimaryMetric:    "balanced_accuracy",
		SecondaryMetrics: []string{"accuracy"},

		Estimators:   100,
		MaxDepth:     4,
		LearningRate: 0.1,
		MinLeaf:      5,

		TuneHyperparams: true,
		MaxDepthGrid:    []int{2, 4, 6},
		EstimatorsGrid:  []int{50, 100, 200},

		TestMode:          false,
		UploadPredictions: false,
		SaveTrainedModel:  true,
		TestModeRows:      100,
	}
}

// LoadConfig returns the default configuration with any .env / environment
// overrides applied
func LoadConfig() *FootyConfig {
	_ = godotenv.Load()

	config := DefaultFootyConfig()
	config.AssetsPath = envStr("FOOTY_ASSETS_PATH", config.AssetsPath)
	config.CachePath = envStr("FOOTY_CACHE_PATH", config.AssetsPath+"cache/")
	config.DbPath = envStr("FOOTY_DB_PATH", config.AssetsPath+"footy.db")
	config.ModelsPath = envStr("FOOTY_MODELS_PATH", config.AssetsPath+"models/")
	config.LeagueCode = envStr("FOOTY_LEAGUE_CODE", config.LeagueCode)
	config.ManagersURL = envStr("FOOTY_MANAGERS_URL", config.ManagersURL)
	config.WindowLength = envInt("FOOTY_WINDOW_LENGTH", config.WindowLength)
	config.MinTrainingDate = envStr("FOOTY_MIN_TRAINING_DATE", config.MinTrainingDate)
	config.Folds = envInt("FOOTY_FOLDS", config.Folds)
	config.Estimators = envInt("FOOTY_ESTIMATORS", config.Estimators)
	config.MaxDepth = envInt("FOOTY_MAX_DEPTH", config.MaxDepth)
	config.TuneHyperparams = envBool("FOOTY_TUNE_HYPERPARAMS", config.TuneHyperparams)
	config.TestMode = envBool("FOOTY_TEST_MODE", config.TestMode)
	return config
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// Validate ensures all configuration values are within reasonable ranges.
// The metric configuration is checked against the enumerated registry so a
// typo fails here rather than mid-run.
func (c *FootyConfig) Validate() error {
	if c.WindowLength < 1 {
		return fmt.Errorf("WindowLength must be at least 1, got: %d", c.WindowLength)
	}
	if c.Folds < 2 {
		return fmt.Errorf("Folds must be at least 2, got: %d", c.Folds)
	}
	if c.FixturesPerRound < 1 || c.SeasonFixtures < c.FixturesPerRound {
		return fmt.Errorf("invalid season shape: %d fixtures per round, %d per season",
			c.FixturesPerRound, c.SeasonFixtures)
	}
	if c.Estimators < 1 {
		return fmt.Errorf("Estimators must be at least 1, got: %d", c.Estimators)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("MaxDepth must be at least 1, got: %d", c.MaxDepth)
	}
	if c.LearningRate <= 0.0 || c.LearningRate > 1.0 {
		return fmt.Errorf("LearningRate must be in (0, 1], got: %f", c.LearningRate)
	}
	if c.TuneHyperparams {
		if len(c.MaxDepthGrid) == 0 || len(c.EstimatorsGrid) == 0 {
			return fmt.Errorf("tuning is enabled but the parameter grids are empty")
		}
		for _, d := range c.MaxDepthGrid {
			if d < 1 {
				return fmt.Errorf("MaxDepthGrid values must be at least 1, got: %d", d)
			}
		}
		for _, e := range c.EstimatorsGrid {
			if e < 1 {
				return fmt.Errorf("EstimatorsGrid values must be at least 1, got: %d", e)
			}
		}
	}

	primary, err := LookupMetric(c.PrimaryMetric)
	if err != nil {
		return fmt.Errorf("primary metric: %w", err)
	}
	// The stored-score baseline is zero, which only orders correctly when
	// larger scores are better. A lower-is-better primary must be rejected
	// rather than silently mis-compared.
	if !primary.HigherIsBetter {
		return fmt.Errorf("primary metric %q is lower-is-better and cannot be used for model selection against a zero baseline", c.PrimaryMetric)
	}
	for _, name := range c.SecondaryMetrics {
		if _, err := LookupMetric(name); err != nil {
			return fmt.Errorf("secondary metric: %w", err)
		}
	}
	return nil
}

// FirstIncludedFixtureID returns the lowest fixture id (exclusive bound) a
// training row may have: the first WindowLength game-weeks are dropped
func (c *FootyConfig) FirstIncludedFixtureID() int {
	return c.WindowLength * c.FixturesPerRound
}

// LastIncludedFixtureID returns the highest fixture id (exclusive bound) a
// training row may have: the final game-week is dropped
func (c *FootyConfig) LastIncludedFixtureID() int {
	return c.SeasonFixtures - c.FixturesPerRound
}
