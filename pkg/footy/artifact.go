package footy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrModelNotTrained is returned when a prediction is requested before any
// model has been trained or loaded
var ErrModelNotTrained = errors.New("no trained model available")

// ModelType identifies the classifier family an artifact was trained with
const ModelType = "GBTClassifier"

// Artifact is a fitted classifier together with the metadata needed to use
// and compare it across runs: identity, creation date, the metric scores of
// its selection run, the exact feature list it was trained on, and the
// class order its probability output follows.
type Artifact struct {
	ModelType    string             `json:"modelType"`
	ModelID      string             `json:"modelId"`
	CreationDate string             `json:"creationDate"`
	Performance  map[string]float64 `json:"performance"`
	FeatureList  []string           `json:"featureList"`
	ClassOrder   []string           `json:"classOrder"`
	Model        *GBTClassifier     `json:"model"`
}

// NewArtifact creates an empty artifact with a fresh unique model id
func NewArtifact() *Artifact {
	creationDate := time.Now().Format("2006-01-02")
	return &Artifact{
		ModelType:    ModelType,
		ModelID:      fmt.Sprintf("%s_%s_%s", ModelType, creationDate, uuid.NewString()[:8]),
		CreationDate: creationDate,
		Performance:  map[string]float64{},
		FeatureList:  append([]string(nil), ModelFeatures...),
	}
}

// Fitted reports whether the artifact carries a usable trained model
func (a *Artifact) Fitted() bool {
	return a != nil && a.Model != nil && len(a.Model.Classes) > 0
}

// Filename returns the on-disk name an artifact saves under, keyed by model
// type and creation date
func (a *Artifact) Filename() string {
	return fmt.Sprintf("%s_%s.json", a.ModelType, a.CreationDate)
}

// Save writes the artifact as JSON into the given models directory
func (a *Artifact) Save(modelsPath string) error {
	if !a.Fitted() {
		return ErrModelNotTrained
	}
	if err := os.MkdirAll(modelsPath, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model artifact: %w", err)
	}
	path := filepath.Join(modelsPath, a.Filename())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model artifact %s: %w", path, err)
	}
	return nil
}

// LoadArtifact reads a saved artifact for the given model type. An empty
// date loads the most recently dated artifact of that type. Callers treat a
// load failure as non-fatal and retrain.
func LoadArtifact(modelsPath, modelType, date string) (*Artifact, error) {
	var path string
	if date != "" {
		path = filepath.Join(modelsPath, fmt.Sprintf("%s_%s.json", modelType, date))
	} else {
		matches, err := filepath.Glob(filepath.Join(modelsPath, modelType+"_*.json"))
		if err != nil || len(matches) == 0 {
			return nil, fmt.Errorf("no saved %s artifacts in %s", modelType, modelsPath)
		}
		// Dated filenames sort chronologically
		sort.Strings(matches)
		path = matches[len(matches)-1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}
	artifact := &Artifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	if !artifact.Fitted() {
		return nil, fmt.Errorf("artifact %s contains no fitted model", path)
	}
	if !strings.EqualFold(artifact.ModelType, modelType) {
		return nil, fmt.Errorf("artifact %s has model type %s, want %s", path, artifact.ModelType, modelType)
	}
	return artifact, nil
}
