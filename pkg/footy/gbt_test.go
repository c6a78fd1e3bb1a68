package footy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGBTParams() GBTParams {
	return GBTParams{
		Estimators:   20,
		MaxDepth:     3,
		LearningRate: 0.3,
		MinLeaf:      1,
	}
}

// separableTrainingData produces three well-separated clusters, one per
// outcome class
func separableTrainingData() ([][]float64, []string) {
	var X [][]float64
	var y []string
	for i := 0; i < 10; i++ {
		jitter := float64(i) * 0.01
		X = append(X, []float64{0.0 + jitter, 5.0})
		y = append(y, "A")
		X = append(X, []float64{5.0 + jitter, 5.0})
		y = append(y, "D")
		X = append(X, []float64{10.0 + jitter, 5.0})
		y = append(y, "H")
	}
	return X, y
}

func TestGBTFitAndPredict(t *testing.T) {
	X, y := separableTrainingData()
	model := NewGBTClassifier(testGBTParams())
	require.NoError(t, model.Fit(X, y))

	for i := range X {
		predicted, err := model.Predict(X[i])
		require.NoError(t, err)
		assert.Equal(t, y[i], predicted, "row %d", i)
	}
}

func TestGBTClassesAreLexicographic(t *testing.T) {
	X, y := separableTrainingData()
	model := NewGBTClassifier(testGBTParams())
	require.NoError(t, model.Fit(X, y))

	assert.Equal(t, []string{"A", "D", "H"}, model.Classes)
}

func TestGBTProbabilitiesSumToOne(t *testing.T) {
	X, y := separableTrainingData()
	model := NewGBTClassifier(testGBTParams())
	require.NoError(t, model.Fit(X, y))

	for _, x := range [][]float64{{0, 5}, {5, 5}, {10, 5}, {2.5, 5}, {-100, 100}} {
		probs, err := model.PredictProba(x)
		require.NoError(t, err)
		require.Len(t, probs, 3)
		sum := 0.0
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 0.01)
	}
}

func TestGBTDegenerateLabels(t *testing.T) {
	X := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	y := []string{"H", "H", "H"}
	model := NewGBTClassifier(testGBTParams())
	err := model.Fit(X, y)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degenerate")
}

func TestGBTEmptyTrainingData(t *testing.T) {
	model := NewGBTClassifier(testGBTParams())
	require.Error(t, model.Fit(nil, nil))
	require.Error(t, model.Fit([][]float64{{1}}, []string{"H", "A"}))
}

func TestGBTUnfittedPredict(t *testing.T) {
	model := NewGBTClassifier(testGBTParams())
	_, err := model.PredictProba([]float64{1, 2})
	require.Error(t, err)
	_, err = model.Predict([]float64{1, 2})
	require.Error(t, err)
}

// Training involves no randomness, so two fits of the same data must agree
// exactly
func TestGBTDeterminism(t *testing.T) {
	X, y := separableTrainingData()

	first := NewGBTClassifier(testGBTParams())
	require.NoError(t, first.Fit(X, y))
	second := NewGBTClassifier(testGBTParams())
	require.NoError(t, second.Fit(X, y))

	probe := []float64{4.2, 5.0}
	p1, err := first.PredictProba(probe)
	require.NoError(t, err)
	p2, err := second.PredictProba(probe)
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}
