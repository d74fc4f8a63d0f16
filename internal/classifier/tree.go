package classifier

import (
	"fmt"
	"slices"
)

// LeafFeature marks a TreeNode as a leaf.
const LeafFeature = -1

// TreeNode is one node of a flattened decision tree.
// Samples with features[Feature] <= Threshold go to Left, the rest to Right.
type TreeNode struct {
	Feature   int       `json:"feature" yaml:"feature"`
	Threshold float64   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Left      int       `json:"left,omitempty" yaml:"left,omitempty"`
	Right     int       `json:"right,omitempty" yaml:"right,omitempty"`
	Counts    []float64 `json:"counts" yaml:"counts"`
}

func (n TreeNode) isLeaf() bool {
	return n.Feature == LeafFeature
}

// DecisionTree is a CART classifier. The root is nodes[0].
type DecisionTree struct {
	classes []string
	nodes   []TreeNode
}

// NewDecisionTree validates the nodes and returns a tree.
func NewDecisionTree(classes []string, nodes []TreeNode) (*DecisionTree, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: no classes", ErrIncompatibleArtifact)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: empty tree", ErrIncompatibleArtifact)
	}
	for i, node := range nodes {
		if len(node.Counts) != len(classes) {
			return nil, fmt.Errorf("%w: node %d has %d class counts, want %d", ErrIncompatibleArtifact, i, len(node.Counts), len(classes))
		}
		if node.isLeaf() {
			var total float64
			for _, c := range node.Counts {
				if c < 0 {
					return nil, fmt.Errorf("%w: node %d has a negative class count", ErrIncompatibleArtifact, i)
				}
				total += c
			}
			if total == 0 {
				return nil, fmt.Errorf("%w: leaf %d has no samples", ErrIncompatibleArtifact, i)
			}
			continue
		}
		if node.Feature < 0 || node.Feature >= NumFeatures {
			return nil, fmt.Errorf("%w: node %d splits on feature %d", ErrIncompatibleArtifact, i, node.Feature)
		}
		// Children always come after their parent, so the walk terminates.
		if node.Left <= i || node.Left >= len(nodes) || node.Right <= i || node.Right >= len(nodes) {
			return nil, fmt.Errorf("%w: node %d has invalid children %d/%d", ErrIncompatibleArtifact, i, node.Left, node.Right)
		}
	}
	return &DecisionTree{
		classes: slices.Clone(classes),
		nodes:   slices.Clone(nodes),
	}, nil
}

func (t *DecisionTree) Classes() []string {
	return slices.Clone(t.classes)
}

// Nodes returns a copy of the flattened tree.
func (t *DecisionTree) Nodes() []TreeNode {
	return slices.Clone(t.nodes)
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *DecisionTree) Depth() int {
	var depth func(i int) int
	depth = func(i int) int {
		node := t.nodes[i]
		if node.isLeaf() {
			return 0
		}
		return 1 + max(depth(node.Left), depth(node.Right))
	}
	return depth(0)
}

func (t *DecisionTree) Predict(features Features) (Result, error) {
	if err := features.validate(); err != nil {
		return Result{}, err
	}

	node := t.nodes[0]
	for !node.isLeaf() {
		if features[node.Feature] <= node.Threshold {
			node = t.nodes[node.Left]
		} else {
			node = t.nodes[node.Right]
		}
	}

	var total float64
	for _, c := range node.Counts {
		total += c
	}
	probabilities := make([]float64, len(node.Counts))
	for i, c := range node.Counts {
		probabilities[i] = c / total
	}
	return newResult(t.classes, probabilities), nil
}
