package footy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupMetric(t *testing.T) {
	metric, err := LookupMetric("balanced_accuracy")
	require.NoError(t, err)
	assert.Equal(t, "balanced_accuracy", metric.Name)
	assert.True(t, metric.HigherIsBetter)

	_, err = LookupMetric("f1_macro")
	require.Error(t, err)
}

func TestAccuracy(t *testing.T) {
	actuals := []string{"H", "D", "A", "H"}
	predictions := []string{"H", "D", "H", "A"}
	assert.InDelta(t, 0.5, accuracy(actuals, predictions), 1e-9)

	assert.Equal(t, 0.0, accuracy(nil, nil))
	assert.Equal(t, 0.0, accuracy([]string{"H"}, []string{"H", "D"}))
}

// A classifier that always says home win scores well on raw accuracy but
// the balanced metric averages the per-class recalls instead
func TestBalancedAccuracy(t *testing.T) {
	actuals := []string{"H", "H", "H", "A"}
	predictions := []string{"H", "H", "H", "H"}

	assert.InDelta(t, 0.75, accuracy(actuals, predictions), 1e-9)
	// recall H = 1.0, recall A = 0.0
	assert.InDelta(t, 0.5, balancedAccuracy(actuals, predictions), 1e-9)
}

func TestBalancedAccuracyPerfect(t *testing.T) {
	actuals := []string{"H", "D", "A", "H", "D", "A"}
	assert.InDelta(t, 1.0, balancedAccuracy(actuals, actuals), 1e-9)
}
