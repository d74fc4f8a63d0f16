package classifier

import (
	"slices"
	"time"
)

var testClasses = []string{"High", "Low", "Medium"}

// sleep <= 5.5 is mostly High; otherwise study <= 8 is mostly Low, above is mostly Medium.
func testTreeNodes() []TreeNode {
	return []TreeNode{
		{Feature: 1, Threshold: 5.5, Left: 1, Right: 2, Counts: []float64{10, 10, 10}},
		{Feature: LeafFeature, Counts: []float64{8, 0, 2}},
		{Feature: 0, Threshold: 8, Left: 3, Right: 4, Counts: []float64{2, 10, 8}},
		{Feature: LeafFeature, Counts: []float64{0, 9, 1}},
		{Feature: LeafFeature, Counts: []float64{2, 1, 7}},
	}
}

func testTreeArtifact() Artifact {
	return Artifact{
		FormatVersion: FormatVersion,
		Kind:          KindDecisionTree,
		Classes:       slices.Clone(testClasses),
		FeatureNames:  slices.Clone(FeatureNames),
		TrainedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Tree:          &TreeParams{MaxDepth: 5, MinSamplesSplit: 10, MinSamplesLeaf: 5, Nodes: testTreeNodes()},
	}
}
