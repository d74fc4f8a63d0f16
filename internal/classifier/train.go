package classifier

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// Sample is one labeled training example.
type Sample struct {
	Features Features
	Label    string
}

// TreeOptions controls CART growth.
type TreeOptions struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
}

// DefaultTreeOptions keeps the tree shallow enough to stay explainable.
func DefaultTreeOptions() TreeOptions {
	return TreeOptions{
		MaxDepth:        5,
		MinSamplesSplit: 10,
		MinSamplesLeaf:  5,
	}
}

var errNoSamples = errors.New("no training samples")

// ClassesOf returns the sorted distinct labels of samples.
func ClassesOf(samples []Sample) []string {
	var classes []string
	for _, s := range samples {
		if !slices.Contains(classes, s.Label) {
			classes = append(classes, s.Label)
		}
	}
	slices.Sort(classes)
	return classes
}

// TrainDecisionTree grows a CART tree using gini impurity.
// Candidate thresholds are midpoints between consecutive distinct feature values; ties between
// equally good splits go to the lower feature index, then the lower threshold.
func TrainDecisionTree(samples []Sample, opts TreeOptions) (*DecisionTree, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}
	if opts.MaxDepth < 0 || opts.MinSamplesSplit < 2 || opts.MinSamplesLeaf < 1 {
		return nil, fmt.Errorf("invalid tree options %+v", opts)
	}

	b := treeBuilder{
		samples: samples,
		classes: ClassesOf(samples),
		opts:    opts,
	}
	b.classIndex = make(map[string]int, len(b.classes))
	for i, c := range b.classes {
		b.classIndex[c] = i
	}

	indices := make([]int, len(samples))
	for i := range indices {
		indices[i] = i
	}
	b.grow(indices, 0)
	return NewDecisionTree(b.classes, b.nodes)
}

type treeBuilder struct {
	samples    []Sample
	classes    []string
	classIndex map[string]int
	opts       TreeOptions
	nodes      []TreeNode
}

func (b *treeBuilder) counts(indices []int) []float64 {
	counts := make([]float64, len(b.classes))
	for _, i := range indices {
		counts[b.classIndex[b.samples[i].Label]]++
	}
	return counts
}

// grow appends the subtree of indices in pre-order and returns the index of its root.
func (b *treeBuilder) grow(indices []int, depth int) int {
	counts := b.counts(indices)
	id := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{Feature: LeafFeature, Counts: counts})

	if depth >= b.opts.MaxDepth || len(indices) < b.opts.MinSamplesSplit || gini(counts, float64(len(indices))) == 0 {
		return id
	}
	feature, threshold, ok := b.bestSplit(indices, counts)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range indices {
		if b.samples[i].Features[feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	leftID := b.grow(left, depth+1)
	rightID := b.grow(right, depth+1)
	b.nodes[id] = TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      leftID,
		Right:     rightID,
		Counts:    counts,
	}
	return id
}

func (b *treeBuilder) bestSplit(indices []int, parent []float64) (int, float64, bool) {
	n := float64(len(indices))
	bestImpurity := gini(parent, n)
	bestFeature, bestThreshold, found := 0, 0.0, false

	sorted := slices.Clone(indices)
	for feature := range NumFeatures {
		slices.SortStableFunc(sorted, func(x, y int) int {
			return cmp.Compare(b.samples[x].Features[feature], b.samples[y].Features[feature])
		})

		left := make([]float64, len(b.classes))
		right := slices.Clone(parent)
		for pos := 0; pos < len(sorted)-1; pos++ {
			label := b.classIndex[b.samples[sorted[pos]].Label]
			left[label]++
			right[label]--

			value := b.samples[sorted[pos]].Features[feature]
			next := b.samples[sorted[pos+1]].Features[feature]
			if value == next {
				continue
			}
			nLeft := float64(pos + 1)
			nRight := n - nLeft
			if int(nLeft) < b.opts.MinSamplesLeaf || int(nRight) < b.opts.MinSamplesLeaf {
				continue
			}
			impurity := (nLeft*gini(left, nLeft) + nRight*gini(right, nRight)) / n
			if impurity < bestImpurity-1e-12 {
				bestImpurity = impurity
				bestFeature = feature
				bestThreshold = (value + next) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / n
		impurity -= p * p
	}
	return impurity
}

// LogisticOptions controls gradient descent for TrainLogisticRegression.
type LogisticOptions struct {
	Iterations   int
	LearningRate float64
	L2           float64
}

func DefaultLogisticOptions() LogisticOptions {
	return LogisticOptions{
		Iterations:   1000,
		LearningRate: 0.5,
		L2:           0.01,
	}
}

// TrainLogisticRegression fits a multinomial logistic regression with full-batch gradient
// descent on standardized features. Training is deterministic: weights start at zero.
func TrainLogisticRegression(samples []Sample, opts LogisticOptions) (*LogisticRegression, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}
	if opts.Iterations <= 0 || opts.LearningRate <= 0 || opts.L2 < 0 {
		return nil, fmt.Errorf("invalid logistic options %+v", opts)
	}
	classes := ClassesOf(samples)
	if len(classes) < 2 {
		return nil, fmt.Errorf("need at least 2 classes to train, got %v", classes)
	}

	n := float64(len(samples))
	means := make([]float64, NumFeatures)
	scales := make([]float64, NumFeatures)
	for _, s := range samples {
		for j, v := range s.Features {
			means[j] += v / n
		}
	}
	for _, s := range samples {
		for j, v := range s.Features {
			scales[j] += (v - means[j]) * (v - means[j]) / n
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j])
		if scales[j] == 0 {
			scales[j] = 1
		}
	}

	weights := make([][]float64, len(classes))
	for k := range weights {
		weights[k] = make([]float64, NumFeatures)
	}
	model, err := NewLogisticRegression(classes, weights, make([]float64, len(classes)), means, scales)
	if err != nil {
		return nil, err
	}

	targets := make([]int, len(samples))
	for i, s := range samples {
		targets[i] = slices.Index(classes, s.Label)
	}
	xs := make([]Features, len(samples))
	for i, s := range samples {
		xs[i] = model.standardize(s.Features)
	}

	for range opts.Iterations {
		gradW := make([][]float64, len(classes))
		for k := range gradW {
			gradW[k] = make([]float64, NumFeatures)
		}
		gradB := make([]float64, len(classes))
		for i, x := range xs {
			probabilities := model.probabilitiesStandardized(x)
			for k := range classes {
				diff := probabilities[k]
				if k == targets[i] {
					diff--
				}
				gradB[k] += diff / n
				for j, v := range x {
					gradW[k][j] += diff * v / n
				}
			}
		}
		for k := range classes {
			model.intercepts[k] -= opts.LearningRate * gradB[k]
			for j := range NumFeatures {
				model.weights[k][j] -= opts.LearningRate * (gradW[k][j] + opts.L2*model.weights[k][j])
			}
		}
	}
	return model, nil
}

// StratifiedSplit shuffles each class with a seeded generator and moves testRatio of it to
// the test set, so both sets keep the label distribution.
func StratifiedSplit(samples []Sample, testRatio float64, seed uint64) (train, test []Sample, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, fmt.Errorf("test ratio must be in (0, 1), got %v", testRatio)
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	for _, class := range ClassesOf(samples) {
		var group []Sample
		for _, s := range samples {
			if s.Label == class {
				group = append(group, s)
			}
		}
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		nTest := int(math.Round(float64(len(group)) * testRatio))
		test = append(test, group[:nTest]...)
		train = append(train, group[nTest:]...)
	}
	return train, test, nil
}

// Metrics summarizes a classifier on a labeled set.
type Metrics struct {
	Samples  int      `json:"samples" yaml:"samples"`
	Accuracy float64  `json:"accuracy" yaml:"accuracy"`
	Classes  []string `json:"classes" yaml:"classes"`
	// Confusion[i][j] counts samples of Classes[i] predicted as Classes[j].
	Confusion [][]int `json:"confusion" yaml:"confusion"`
}

// Evaluate runs model over samples. Labels the model does not know are an error.
func Evaluate(model Classifier, samples []Sample) (Metrics, error) {
	classes := model.Classes()
	metrics := Metrics{
		Samples:   len(samples),
		Classes:   classes,
		Confusion: make([][]int, len(classes)),
	}
	for i := range metrics.Confusion {
		metrics.Confusion[i] = make([]int, len(classes))
	}
	if len(samples) == 0 {
		return metrics, nil
	}

	var correct int
	for _, s := range samples {
		actual := slices.Index(classes, s.Label)
		if actual < 0 {
			return Metrics{}, fmt.Errorf("%w: label %q is not a model class", ErrIncompatibleArtifact, s.Label)
		}
		result, err := model.Predict(s.Features)
		if err != nil {
			return Metrics{}, fmt.Errorf("model.Predict > %w", err)
		}
		predicted := slices.Index(classes, result.Class)
		metrics.Confusion[actual][predicted]++
		if actual == predicted {
			correct++
		}
	}
	metrics.Accuracy = float64(correct) / float64(len(samples))
	return metrics, nil
}
