package footy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fittedArtifact(t *testing.T) *Artifact {
	t.Helper()
	X, y := separableTrainingData()
	model := NewGBTClassifier(testGBTParams())
	require.NoError(t, model.Fit(X, y))

	artifact := NewArtifact()
	artifact.Performance = map[string]float64{"balanced_accuracy": 0.55}
	artifact.ClassOrder = append([]string(nil), model.Classes...)
	artifact.Model = model
	return artifact
}

func TestArtifactIdentity(t *testing.T) {
	a := NewArtifact()
	b := NewArtifact()
	assert.Equal(t, ModelType, a.ModelType)
	assert.NotEqual(t, a.ModelID, b.ModelID)
	assert.Contains(t, a.ModelID, ModelType)
	assert.False(t, a.Fitted())
}

func TestArtifactSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	artifact := fittedArtifact(t)
	require.NoError(t, artifact.Save(dir))

	loaded, err := LoadArtifact(dir, ModelType, artifact.CreationDate)
	require.NoError(t, err)

	assert.Equal(t, artifact.ModelID, loaded.ModelID)
	assert.Equal(t, artifact.ClassOrder, loaded.ClassOrder)
	assert.Equal(t, artifact.FeatureList, loaded.FeatureList)
	assert.InDelta(t, 0.55, loaded.Performance["balanced_accuracy"], 1e-9)

	// The reloaded model predicts identically
	probe := []float64{4.2, 5.0}
	want, err := artifact.Model.PredictProba(probe)
	require.NoError(t, err)
	got, err := loaded.Model.PredictProba(probe)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestLoadArtifactLatest(t *testing.T) {
	dir := t.TempDir()
	artifact := fittedArtifact(t)

	// An older artifact alongside the current one
	old := fittedArtifact(t)
	old.CreationDate = "2020-01-01"
	old.ModelID = "older"
	require.NoError(t, old.Save(dir))
	require.NoError(t, artifact.Save(dir))

	loaded, err := LoadArtifact(dir, ModelType, "")
	require.NoError(t, err)
	assert.Equal(t, artifact.ModelID, loaded.ModelID)
}

func TestLoadArtifactMissing(t *testing.T) {
	_, err := LoadArtifact(t.TempDir(), ModelType, "")
	require.Error(t, err)

	_, err = LoadArtifact(t.TempDir(), ModelType, "2024-01-01")
	require.Error(t, err)
}

func TestSaveUnfittedArtifact(t *testing.T) {
	err := NewArtifact().Save(t.TempDir())
	assert.ErrorIs(t, err, ErrModelNotTrained)
}

func TestLoadArtifactRejectsWrongType(t *testing.T) {
	dir := t.TempDir()
	artifact := fittedArtifact(t)
	require.NoError(t, artifact.Save(dir))

	// Rename the file so it is picked up under a different model type
	data, err := os.ReadFile(filepath.Join(dir, artifact.Filename()))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "OtherModel_"+artifact.CreationDate+".json"), data, 0644))

	_, err = LoadArtifact(dir, "OtherModel", artifact.CreationDate)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model type")
}
