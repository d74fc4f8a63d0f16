package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridSamples labels a study/sleep grid: sleep < 5 is High, study > 8 is Medium, the rest Low.
func gridSamples() []Sample {
	var samples []Sample
	for studyHours := 2.0; studyHours <= 12; studyHours++ {
		for sleepHours := 3.0; sleepHours <= 10; sleepHours++ {
			label := "Low"
			switch {
			case sleepHours < 5:
				label = "High"
			case studyHours > 8:
				label = "Medium"
			}
			samples = append(samples, Sample{
				Features: Features{studyHours, sleepHours, 1, 5, 6},
				Label:    label,
			})
		}
	}
	return samples
}

func TestTrainDecisionTree(t *testing.T) {
	samples := gridSamples()
	opts := DefaultTreeOptions()

	tree, err := TrainDecisionTree(samples, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"High", "Low", "Medium"}, tree.Classes())
	assert.LessOrEqual(t, tree.Depth(), opts.MaxDepth)
	for _, node := range tree.Nodes() {
		if node.Feature != LeafFeature {
			continue
		}
		var n float64
		for _, c := range node.Counts {
			n += c
		}
		assert.GreaterOrEqual(t, n, float64(opts.MinSamplesLeaf))
	}

	metrics, err := Evaluate(tree, samples)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, metrics.Accuracy, 0.95)

	again, err := TrainDecisionTree(samples, opts)
	require.NoError(t, err)
	assert.Equal(t, tree, again)
}

func TestTrainDecisionTree_StopsOnPureOrSmallSets(t *testing.T) {
	pure := []Sample{
		{Features: Features{1}, Label: "Low"},
		{Features: Features{2}, Label: "Low"},
	}
	tree, err := TrainDecisionTree(pure, DefaultTreeOptions())
	require.NoError(t, err)
	assert.Len(t, tree.Nodes(), 1)

	small := []Sample{
		{Features: Features{1}, Label: "Low"},
		{Features: Features{9}, Label: "High"},
	}
	tree, err = TrainDecisionTree(small, DefaultTreeOptions())
	require.NoError(t, err)
	assert.Len(t, tree.Nodes(), 1)
}

func TestTrainDecisionTree_Invalid(t *testing.T) {
	_, err := TrainDecisionTree(nil, DefaultTreeOptions())
	assert.Error(t, err)

	_, err = TrainDecisionTree(gridSamples(), TreeOptions{MaxDepth: 3, MinSamplesSplit: 1, MinSamplesLeaf: 1})
	assert.Error(t, err)
}

func TestTrainLogisticRegression(t *testing.T) {
	var samples []Sample
	for sleepHours := 3.0; sleepHours <= 10; sleepHours += 0.5 {
		label := "Low"
		if sleepHours < 6 {
			label = "High"
		}
		samples = append(samples, Sample{Features: Features{6, sleepHours, 1, 5, 6}, Label: label})
	}

	model, err := TrainLogisticRegression(samples, DefaultLogisticOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"High", "Low"}, model.Classes())

	metrics, err := Evaluate(model, samples)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, metrics.Accuracy, 0.9)

	_, err = TrainLogisticRegression(samples[:1], DefaultLogisticOptions())
	assert.Error(t, err)
}

func TestStratifiedSplit(t *testing.T) {
	var samples []Sample
	for i, n := range map[string]int{"High": 50, "Low": 30, "Medium": 20} {
		for j := range n {
			samples = append(samples, Sample{Features: Features{float64(j)}, Label: i})
		}
	}

	train, test, err := StratifiedSplit(samples, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 20)
	assert.Len(t, train, 80)

	count := func(set []Sample, label string) int {
		var n int
		for _, s := range set {
			if s.Label == label {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 10, count(test, "High"))
	assert.Equal(t, 6, count(test, "Low"))
	assert.Equal(t, 4, count(test, "Medium"))

	train2, test2, err := StratifiedSplit(samples, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, train, train2)
	assert.Equal(t, test, test2)

	_, _, err = StratifiedSplit(samples, 1, 42)
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	tree, err := NewDecisionTree(testClasses, testTreeNodes())
	require.NoError(t, err)

	samples := []Sample{
		{Features: Features{6, 4, 1, 5, 6}, Label: "High"},
		{Features: Features{6, 8, 1, 5, 6}, Label: "Low"},
		{Features: Features{9, 8, 1, 5, 6}, Label: "Medium"},
		{Features: Features{9, 8, 1, 5, 6}, Label: "High"},
	}
	metrics, err := Evaluate(tree, samples)
	require.NoError(t, err)
	assert.Equal(t, 4, metrics.Samples)
	assert.InDelta(t, 0.75, metrics.Accuracy, 1e-9)
	assert.Equal(t, [][]int{
		{1, 0, 1},
		{0, 1, 0},
		{0, 0, 1},
	}, metrics.Confusion)

	_, err = Evaluate(tree, []Sample{{Label: "Unknown"}})
	assert.ErrorIs(t, err, ErrIncompatibleArtifact)
}
