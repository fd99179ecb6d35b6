// Package artifact locates and deserializes the trained model files the
// prediction services run against. Artifacts are produced by an external
// training pipeline; this package only resolves and loads them.
package artifact

import (
	"encoding/gob"
	"log"
	"os"
	"path/filepath"
)

// Resolve searches for <collection>/<file> starting at the working
// directory and walking every ancestor up to the filesystem root, also
// checking a nested backend/ directory at each level. This keeps artifact
// lookup working no matter which directory the process was launched from.
func Resolve(collection, file string) (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}

	for {
		candidates := []string{
			filepath.Join(dir, collection, file),
			filepath.Join(dir, "backend", collection, file),
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// LoadPredictor gob-decodes a serialized model. A missing or corrupt
// artifact logs a warning and returns nil; callers treat nil as "model not
// ready" and must never crash on it.
func LoadPredictor(path string) Predictor {
	var model LinearModel
	if !decodeArtifact(path, &model) {
		return nil
	}
	return &model
}

// LoadLabelEncoder gob-decodes a serialized label encoder, or nil when the
// file is missing or unreadable.
func LoadLabelEncoder(path string) *LabelEncoder {
	var encoder LabelEncoder
	if !decodeArtifact(path, &encoder) {
		return nil
	}
	return &encoder
}

func decodeArtifact(path string, v interface{}) bool {
	if path == "" {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("Warning: missing artifact file %s", path)
		return false
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(v); err != nil {
		log.Printf("Warning: failed to decode artifact %s: %v", path, err)
		return false
	}
	return true
}
