package footy

import (
	"fmt"
)

// Metric is a pure scoring function over parallel slices of actual and
// predicted outcome classes, plus the direction its scores order in.
// Metrics are looked up by name from the enumerated registry below and
// validated at configuration time.
type Metric struct {
	Name           string
	HigherIsBetter bool
	Score          func(actuals, predictions []string) float64
}

var metricRegistry = map[string]Metric{
	"balanced_accuracy": {
		Name:           "balanced_accuracy",
		HigherIsBetter: true,
		Score:          balancedAccuracy,
	},
	"accuracy": {
		Name:           "accuracy",
		HigherIsBetter: true,
		Score:          accuracy,
	},
}

// LookupMetric returns the registered metric for the given name
func LookupMetric(name string) (Metric, error) {
	metric, ok := metricRegistry[name]
	if !ok {
		return Metric{}, fmt.Errorf("unknown metric %q", name)
	}
	return metric, nil
}

// accuracy is the fraction of predictions matching the actual outcome
func accuracy(actuals, predictions []string) float64 {
	if len(actuals) == 0 || len(actuals) != len(predictions) {
		return 0.0
	}
	correct := 0
	for i := range actuals {
		if actuals[i] == predictions[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actuals))
}

// balancedAccuracy is the mean of per-class recalls, which stops the
// majority class (home wins) from dominating the score
func balancedAccuracy(actuals, predictions []string) float64 {
	if len(actuals) == 0 || len(actuals) != len(predictions) {
		return 0.0
	}
	total := make(map[string]int)
	correct := make(map[string]int)
	for i := range actuals {
		total[actuals[i]]++
		if actuals[i] == predictions[i] {
			correct[actuals[i]]++
		}
	}
	sum := 0.0
	for class, n := range total {
		sum += float64(correct[class]) / float64(n)
	}
	return sum / float64(len(total))
}
