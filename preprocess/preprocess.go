// Package preprocess cleans raw case-document text before classifier and
// prioritizer inference. The transform mirrors the feature pipeline the
// models were trained against, so any change here invalidates the artifacts.
package preprocess

import (
	"log"
	"regexp"
	"strings"
	"sync"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

var (
	resourceOnce sync.Once
	stopwordSet  map[string]struct{}
	lemmatizer   *golem.Lemmatizer
)

// initResources prepares the static linguistic resources. Runs once per
// process; concurrent first use blocks on the same initialization.
func initResources() {
	stopwordSet = make(map[string]struct{}, len(englishStopwords))
	for _, w := range englishStopwords {
		stopwordSet[w] = struct{}{}
	}

	l, err := golem.New(en.New())
	if err != nil {
		// Tokens pass through unlemmatized rather than failing the request.
		log.Printf("Warning: failed to load lemmatizer dictionary: %v", err)
		return
	}
	lemmatizer = l
}

// Normalize reduces text to a lowercase, alphanumeric-only, stopword-free,
// lemmatized token string joined by single spaces. Deterministic: the same
// input always yields the same output.
func Normalize(text string) string {
	resourceOnce.Do(initResources)

	cleaned := strings.ToLower(nonAlphanumeric.ReplaceAllString(text, " "))

	tokens := strings.Fields(cleaned)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopwordSet[tok]; stop {
			continue
		}
		if lemmatizer != nil {
			tok = lemmatizer.Lemma(tok)
		}
		kept = append(kept, tok)
	}

	return strings.Join(kept, " ")
}
