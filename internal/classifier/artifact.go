package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FormatVersion is the artifact format this package reads and writes.
const FormatVersion = 1

// Kind names the model family stored in an artifact.
type Kind string

const (
	KindDecisionTree       Kind = "decision_tree"
	KindLogisticRegression Kind = "logistic_regression"
)

// Format is the serialization of an artifact.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf infers the format from a file name or URL path. Anything but .yml/.yaml is JSON.
func FormatOf(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml":
		return FormatYAML
	}
	return FormatJSON
}

// Artifact is the versioned, serializable form of a trained classifier.
type Artifact struct {
	FormatVersion int          `json:"format_version" yaml:"format_version"`
	Kind          Kind         `json:"kind" yaml:"kind"`
	Classes       []string     `json:"classes" yaml:"classes"`
	FeatureNames  []string     `json:"feature_names" yaml:"feature_names"`
	TrainedAt     time.Time    `json:"trained_at" yaml:"trained_at"`
	Tree          *TreeParams  `json:"tree,omitempty" yaml:"tree,omitempty"`
	Logistic      *LogitParams `json:"logistic,omitempty" yaml:"logistic,omitempty"`
	Metrics       *Metrics     `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

type TreeParams struct {
	MaxDepth        int        `json:"max_depth" yaml:"max_depth"`
	MinSamplesSplit int        `json:"min_samples_split" yaml:"min_samples_split"`
	MinSamplesLeaf  int        `json:"min_samples_leaf" yaml:"min_samples_leaf"`
	Nodes           []TreeNode `json:"nodes" yaml:"nodes"`
}

type LogitParams struct {
	Weights    [][]float64 `json:"weights" yaml:"weights"`
	Intercepts []float64   `json:"intercepts" yaml:"intercepts"`
	Means      []float64   `json:"means,omitempty" yaml:"means,omitempty"`
	Scales     []float64   `json:"scales,omitempty" yaml:"scales,omitempty"`
}

// Build checks the artifact against the engine's feature layout and returns the classifier.
func (a Artifact) Build() (Classifier, error) {
	if a.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: %d, want %d", ErrUnsupportedVersion, a.FormatVersion, FormatVersion)
	}
	if !slices.Equal(a.FeatureNames, FeatureNames) {
		return nil, fmt.Errorf("%w: features %v, want %v", ErrIncompatibleArtifact, a.FeatureNames, FeatureNames)
	}
	seen := make(map[string]bool, len(a.Classes))
	for _, class := range a.Classes {
		if class == "" || seen[class] {
			return nil, fmt.Errorf("%w: classes %v must be unique and non-empty", ErrIncompatibleArtifact, a.Classes)
		}
		seen[class] = true
	}

	switch a.Kind {
	case KindDecisionTree:
		if a.Tree == nil {
			return nil, fmt.Errorf("%w: decision tree without tree parameters", ErrIncompatibleArtifact)
		}
		return NewDecisionTree(a.Classes, a.Tree.Nodes)
	case KindLogisticRegression:
		if a.Logistic == nil {
			return nil, fmt.Errorf("%w: logistic regression without parameters", ErrIncompatibleArtifact)
		}
		p := a.Logistic
		return NewLogisticRegression(a.Classes, p.Weights, p.Intercepts, p.Means, p.Scales)
	}
	return nil, fmt.Errorf("%w: unknown kind %q", ErrIncompatibleArtifact, a.Kind)
}

// Decode parses an artifact in the given format.
func Decode(data []byte, format Format) (Artifact, error) {
	var artifact Artifact
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &artifact)
	default:
		err = json.Unmarshal(data, &artifact)
	}
	if err != nil {
		return Artifact{}, fmt.Errorf("decode %s artifact: %w", format, err)
	}
	return artifact, nil
}

// Encode serializes an artifact in the given format.
func Encode(artifact Artifact, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(artifact)
		if err != nil {
			return nil, fmt.Errorf("yaml.Marshal > %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(artifact, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("json.MarshalIndent > %w", err)
		}
		return data, nil
	}
}

// Load reads an artifact file and builds its classifier.
func Load(path string) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %w", path, err)
	}
	artifact, err := Decode(data, FormatOf(path))
	if err != nil {
		return nil, err
	}
	model, err := artifact.Build()
	if err != nil {
		return nil, fmt.Errorf("build model from %s: %w", path, err)
	}
	return model, nil
}

// Save writes an artifact, choosing the format from the file extension.
func Save(path string, artifact Artifact) error {
	data, err := Encode(artifact, FormatOf(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write model artifact %s: %w", path, err)
	}
	return nil
}

// ArtifactOf captures a trained classifier in artifact form.
func ArtifactOf(model Classifier, trainedAt time.Time) (Artifact, error) {
	artifact := Artifact{
		FormatVersion: FormatVersion,
		Classes:       model.Classes(),
		FeatureNames:  slices.Clone(FeatureNames),
		TrainedAt:     trainedAt.UTC(),
	}
	switch m := model.(type) {
	case *DecisionTree:
		artifact.Kind = KindDecisionTree
		artifact.Tree = &TreeParams{Nodes: m.Nodes()}
	case *LogisticRegression:
		artifact.Kind = KindLogisticRegression
		weights := make([][]float64, len(m.weights))
		for i, row := range m.weights {
			weights[i] = slices.Clone(row)
		}
		artifact.Logistic = &LogitParams{
			Weights:    weights,
			Intercepts: slices.Clone(m.intercepts),
			Means:      slices.Clone(m.means),
			Scales:     slices.Clone(m.scales),
		}
	default:
		return Artifact{}, fmt.Errorf("unsupported classifier %T", model)
	}
	return artifact, nil
}
