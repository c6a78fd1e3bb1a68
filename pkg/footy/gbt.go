package footy

import (
	"fmt"
	"math"
	"sort"
)

// GBTParams holds the boosting hyperparameters
type GBTParams struct {
	Estimators   int     `json:"estimators"`   // boosting rounds
	MaxDepth     int     `json:"maxDepth"`     // maximum tree depth
	LearningRate float64 `json:"learningRate"` // shrinkage per tree
	MinLeaf      int     `json:"minLeaf"`      // minimum samples per leaf
}

// TreeNode is one node of a regression tree. Feature -1 marks a leaf, in
// which case Value carries the (already shrunk) score contribution.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *TreeNode `json:"left,omitempty"`
	Right     *TreeNode `json:"right,omitempty"`
	Value     float64   `json:"value,omitempty"`
}

// GBTClassifier is a gradient-boosted tree classifier: multinomial softmax
// over one regression tree per class per boosting round, each tree fitted to
// the log-loss gradients with Newton-style leaf weights. Fully serialisable
// so trained models survive process restarts.
type GBTClassifier struct {
	Params    GBTParams     `json:"params"`
	Classes   []string      `json:"classes"`   // label set in lexicographic order
	BaseScore []float64     `json:"baseScore"` // per-class prior log-odds
	Trees     [][]*TreeNode `json:"trees"`     // [round][class]
}

// NewGBTClassifier creates an unfitted classifier with the given parameters
func NewGBTClassifier(params GBTParams) *GBTClassifier {
	return &GBTClassifier{Params: params}
}

// Fit trains the classifier. X is row-major with one feature vector per
// label in y. Fitting on fewer than two outcome classes is a degenerate
// label distribution and fails rather than producing a trivial model.
func (c *GBTClassifier) Fit(X [][]float64, y []string) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("training data has %d rows but %d labels", len(X), len(y))
	}

	// Lexicographically ordered class set; this ordering is stored with the
	// model and drives the probability output index mapping
	classSet := make(map[string]bool)
	for _, label := range y {
		classSet[label] = true
	}
	if len(classSet) < 2 {
		return fmt.Errorf("degenerate label distribution: only %d class in %d training rows", len(classSet), len(y))
	}
	classes := make([]string, 0, len(classSet))
	for class := range classSet {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	c.Classes = classes

	classIndex := make(map[string]int, len(classes))
	for i, class := range classes {
		classIndex[class] = i
	}

	n := len(X)
	k := len(classes)

	// Prior log-odds from class frequencies
	c.BaseScore = make([]float64, k)
	for _, label := range y {
		c.BaseScore[classIndex[label]]++
	}
	for j := range c.BaseScore {
		c.BaseScore[j] = math.Log(c.BaseScore[j] / float64(n))
	}

	// Running raw scores per row per class
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, k)
		copy(scores[i], c.BaseScore)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	c.Trees = make([][]*TreeNode, c.Params.Estimators)
	grad := make([]float64, n)
	hess := make([]float64, n)

	for round := 0; round < c.Params.Estimators; round++ {
		roundTrees := make([]*TreeNode, k)
		for j := 0; j < k; j++ {
			// Log-loss gradients for this class: g = target - probability,
			// h = probability * (1 - probability)
			for i := 0; i < n; i++ {
				p := softmax(scores[i])[j]
				target := 0.0
				if classIndex[y[i]] == j {
					target = 1.0
				}
				grad[i] = target - p
				hess[i] = p * (1.0 - p)
			}
			tree := c.buildTree(X, grad, hess, indices, c.Params.MaxDepth)
			roundTrees[j] = tree
			for i := 0; i < n; i++ {
				scores[i][j] += predictTree(tree, X[i])
			}
		}
		c.Trees[round] = roundTrees
	}
	return nil
}

// PredictProba returns the class probabilities for one feature vector, in
// the order of c.Classes
func (c *GBTClassifier) PredictProba(x []float64) ([]float64, error) {
	if len(c.Classes) == 0 {
		return nil, fmt.Errorf("classifier has not been fitted")
	}
	scores := make([]float64, len(c.Classes))
	copy(scores, c.BaseScore)
	for _, roundTrees := range c.Trees {
		for j, tree := range roundTrees {
			scores[j] += predictTree(tree, x)
		}
	}
	return softmax(scores), nil
}

// Predict returns the most probable class label for one feature vector
func (c *GBTClassifier) Predict(x []float64) (string, error) {
	probs, err := c.PredictProba(x)
	if err != nil {
		return "", err
	}
	best := 0
	for j := range probs {
		if probs[j] > probs[best] {
			best = j
		}
	}
	return c.Classes[best], nil
}

// buildTree fits one regression tree to the gradient/hessian pairs of the
// rows in idx
func (c *GBTClassifier) buildTree(X [][]float64, grad, hess []float64, idx []int, depth int) *TreeNode {
	var sumG, sumH float64
	for _, i := range idx {
		sumG += grad[i]
		sumH += hess[i]
	}

	if depth <= 0 || len(idx) < 2*c.Params.MinLeaf {
		return leafNode(sumG, sumH, c.Params.LearningRate)
	}

	feature, threshold, gain := c.bestSplit(X, grad, hess, idx, sumG, sumH)
	if gain <= 0 {
		return leafNode(sumG, sumH, c.Params.LearningRate)
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      c.buildTree(X, grad, hess, left, depth-1),
		Right:     c.buildTree(X, grad, hess, right, depth-1),
	}
}

// bestSplit scans every feature for the split maximising the gain in the
// regularised score. Returns a non-positive gain when no split improves on
// the unsplit node.
func (c *GBTClassifier) bestSplit(X [][]float64, grad, hess []float64, idx []int, sumG, sumH float64) (int, float64, float64) {
	const lambda = 1.0
	parentScore := sumG * sumG / (sumH + lambda)

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0

	order := make([]int, len(idx))
	for f := 0; f < len(X[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][f] < X[order[b]][f]
		})

		var leftG, leftH float64
		for pos := 0; pos < len(order)-1; pos++ {
			i := order[pos]
			leftG += grad[i]
			leftH += hess[i]

			// Only split between distinct feature values
			cur, next := X[i][f], X[order[pos+1]][f]
			if cur == next {
				continue
			}
			if pos+1 < c.Params.MinLeaf || len(order)-pos-1 < c.Params.MinLeaf {
				continue
			}

			rightG := sumG - leftG
			rightH := sumH - leftH
			gain := leftG*leftG/(leftH+lambda) + rightG*rightG/(rightH+lambda) - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (cur + next) / 2.0
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

// leafNode produces a leaf with the Newton-step weight, shrunk by the
// learning rate
func leafNode(sumG, sumH, learningRate float64) *TreeNode {
	const lambda = 1.0
	return &TreeNode{
		Feature: -1,
		Value:   learningRate * sumG / (sumH + lambda),
	}
}

// predictTree walks a single tree for one feature vector
func predictTree(node *TreeNode, x []float64) float64 {
	for node.Feature >= 0 {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// softmax converts raw scores to probabilities
func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	out := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
