package service

import (
	"testing"

	"legalai-backend/artifact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	code int
	got  string
}

func (s *stubPredictor) Predict(text string) (int, error) {
	s.got = text
	return s.code, nil
}

func TestPredictEmptyText(t *testing.T) {
	loaderCalled := false
	svc := NewPredictionService(
		PredictionWithArtifactLoader(func() (artifact.Predictor, *artifact.LabelEncoder) {
			loaderCalled = true
			return &stubPredictor{}, nil
		}),
	)

	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := svc.Predict(input)
		assert.ErrorIs(t, err, ErrEmptyText, "input %q", input)
	}
	assert.False(t, loaderCalled, "empty input must be rejected before artifacts load")
}

func TestPredictWithoutLoader(t *testing.T) {
	svc := NewPredictionService()
	_, err := svc.Predict("some case text")
	assert.ErrorIs(t, err, ErrModelNotReady)
}

func TestPredictDecodesLabel(t *testing.T) {
	predictor := &stubPredictor{code: 2}
	encoder := &artifact.LabelEncoder{Classes: []string{"Criminal", "Family", "Civil"}}

	svc := NewPredictionService(
		PredictionWithArtifactLoader(func() (artifact.Predictor, *artifact.LabelEncoder) {
			return predictor, encoder
		}),
	)

	label, err := svc.Predict("The Plaintiff's breach-of-contract claim...")
	require.NoError(t, err)
	assert.Equal(t, "Civil", label)

	// Predictor saw normalized text, not the raw input
	assert.NotContains(t, predictor.got, "Plaintiff")
	assert.NotContains(t, predictor.got, "'")
}

func TestPredictFallsBackToRawCode(t *testing.T) {
	svc := NewPredictionService(
		PredictionWithArtifactLoader(func() (artifact.Predictor, *artifact.LabelEncoder) {
			return &stubPredictor{code: 2}, nil
		}),
	)

	label, err := svc.Predict("some case text")
	require.NoError(t, err)
	assert.Equal(t, "2", label)
}

func TestPredictCodeOutsideEncoderRange(t *testing.T) {
	svc := NewPredictionService(
		PredictionWithArtifactLoader(func() (artifact.Predictor, *artifact.LabelEncoder) {
			return &stubPredictor{code: 7}, &artifact.LabelEncoder{Classes: []string{"Criminal"}}
		}),
	)

	label, err := svc.Predict("some case text")
	require.NoError(t, err)
	assert.Equal(t, "7", label)
}

func TestLoadCachedAfterSuccess(t *testing.T) {
	calls := 0
	svc := NewPredictionService(
		PredictionWithArtifactLoader(func() (artifact.Predictor, *artifact.LabelEncoder) {
			calls++
			return &stubPredictor{}, nil
		}),
	)

	_, err := svc.Predict("first request")
	require.NoError(t, err)
	_, err = svc.Predict("second request")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestFailedLoadRetried(t *testing.T) {
	calls := 0
	svc := NewPredictionService(
		PredictionWithArtifactLoader(func() (artifact.Predictor, *artifact.LabelEncoder) {
			calls++
			if calls < 2 {
				return nil, nil
			}
			return &stubPredictor{code: 1}, nil
		}),
	)

	_, err := svc.Predict("some case text")
	assert.ErrorIs(t, err, ErrModelNotReady)

	label, err := svc.Predict("some case text")
	require.NoError(t, err)
	assert.Equal(t, "1", label)
	assert.Equal(t, 2, calls)
}
