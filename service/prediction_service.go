package service

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"legalai-backend/artifact"
	"legalai-backend/preprocess"
)

// Artifact pair locations for the two deployed prediction services,
// resolved through the artifact search path.
const (
	classificationCollection   = "Case Classification"
	classificationPipelineFile = "voting_pipeline.gob"
	prioritizationCollection   = "Case Prioritization"
	prioritizationPipelineFile = "stacking_pipeline.gob"
	labelEncoderFile           = "label_encoder.gob"
)

// ArtifactLoader produces the predictor and label encoder a prediction
// service runs against. The encoder may be nil; the service then reports
// raw class codes.
type ArtifactLoader func() (artifact.Predictor, *artifact.LabelEncoder)

// PredictionService wraps one loaded predictor and its label decoder
// behind a single predict-text-to-label contract. Artifacts load lazily on
// first use; a successful load is cached for the process lifetime, a
// failed load is retried on the next request.
type PredictionService struct {
	mu        sync.Mutex
	load      ArtifactLoader
	predictor artifact.Predictor
	encoder   *artifact.LabelEncoder
	ready     bool
}

// PredictionServiceOption is a functional option for PredictionService
type PredictionServiceOption func(*PredictionService)

// PredictionWithArtifactLoader sets the artifact loader
func PredictionWithArtifactLoader(load ArtifactLoader) PredictionServiceOption {
	return func(s *PredictionService) {
		s.load = load
	}
}

// NewPredictionService creates a new prediction service
func NewPredictionService(opts ...PredictionServiceOption) *PredictionService {
	s := &PredictionService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewClassificationService creates the case-classification instance backed
// by the on-disk voting pipeline artifacts.
func NewClassificationService() *PredictionService {
	return NewPredictionService(
		PredictionWithArtifactLoader(diskLoader(classificationCollection, classificationPipelineFile)),
	)
}

// NewPrioritizationService creates the case-prioritization instance backed
// by the on-disk stacking pipeline artifacts.
func NewPrioritizationService() *PredictionService {
	return NewPredictionService(
		PredictionWithArtifactLoader(diskLoader(prioritizationCollection, prioritizationPipelineFile)),
	)
}

func diskLoader(collection, pipelineFile string) ArtifactLoader {
	return func() (artifact.Predictor, *artifact.LabelEncoder) {
		var predictor artifact.Predictor
		if path, ok := artifact.Resolve(collection, pipelineFile); ok {
			predictor = artifact.LoadPredictor(path)
		} else {
			log.Printf("Warning: artifact %s/%s not found on search path", collection, pipelineFile)
		}

		var encoder *artifact.LabelEncoder
		if path, ok := artifact.Resolve(collection, labelEncoderFile); ok {
			encoder = artifact.LoadLabelEncoder(path)
		}

		return predictor, encoder
	}
}

// Predict normalizes text, runs single-item inference, and decodes the
// class code to a human label. Empty or whitespace-only text fails with
// ErrEmptyText; an unloadable predictor fails with ErrModelNotReady.
func (s *PredictionService) Predict(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}

	predictor, encoder, err := s.ensureLoaded()
	if err != nil {
		return "", err
	}

	cleaned := preprocess.Normalize(text)

	code, err := predictor.Predict(cleaned)
	if err != nil {
		return "", fmt.Errorf("inference failed: %w", err)
	}

	if encoder != nil {
		if label, ok := encoder.InverseTransform(code); ok {
			return label, nil
		}
	}
	return strconv.Itoa(code), nil
}

// ensureLoaded loads the artifact pair at most once. Concurrent first
// requests block on the mutex; only a successful load is cached.
func (s *PredictionService) ensureLoaded() (artifact.Predictor, *artifact.LabelEncoder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return s.predictor, s.encoder, nil
	}
	if s.load == nil {
		return nil, nil, ErrModelNotReady
	}

	predictor, encoder := s.load()
	if predictor == nil {
		return nil, nil, ErrModelNotReady
	}

	s.predictor = predictor
	s.encoder = encoder
	s.ready = true
	return predictor, encoder, nil
}
