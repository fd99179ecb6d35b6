package artifact

import (
	"errors"
	"strings"
)

// Predictor is an opaque trained model exposing single-item inference over
// normalized text. The services depend only on this contract; the concrete
// serialization is a loader detail.
type Predictor interface {
	// Predict returns the model's internal class code for the text.
	Predict(text string) (int, error)
}

// LinearModel is a bag-of-words linear classifier produced by the offline
// training pipeline and serialized with encoding/gob. Weights is indexed
// [class][feature]; features are term counts over Vocabulary.
type LinearModel struct {
	Vocabulary map[string]int
	Weights    [][]float64
	Bias       []float64
}

// Predict scores every class against the token counts of text and returns
// the index of the highest-scoring class.
func (m *LinearModel) Predict(text string) (int, error) {
	if len(m.Weights) == 0 {
		return 0, errors.New("model has no classes")
	}

	counts := make(map[int]float64)
	for _, tok := range strings.Fields(text) {
		if idx, ok := m.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}

	best := 0
	bestScore := 0.0
	for class, weights := range m.Weights {
		score := 0.0
		if class < len(m.Bias) {
			score = m.Bias[class]
		}
		for idx, count := range counts {
			if idx < len(weights) {
				score += weights[idx] * count
			}
		}
		if class == 0 || score > bestScore {
			best = class
			bestScore = score
		}
	}

	return best, nil
}

// LabelEncoder maps a predictor's internal class codes to human labels.
type LabelEncoder struct {
	Classes []string
}

// InverseTransform returns the label for code, or false when the code is
// outside the encoder's class range.
func (e *LabelEncoder) InverseTransform(code int) (string, bool) {
	if code < 0 || code >= len(e.Classes) {
		return "", false
	}
	return e.Classes[code], true
}
