package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVector(t *testing.T) {
	got := formatVector([]float64{0.5, -1.0, 0.123456789})
	assert.Equal(t, "[0.500000,-1.000000,0.123457]", got)
}

func TestFormatVectorEmpty(t *testing.T) {
	assert.Equal(t, "[]", formatVector(nil))
}

func TestFormatVectorDimensionCount(t *testing.T) {
	vec := make([]float64, EmbeddingDimensions)
	got := formatVector(vec)
	assert.Equal(t, EmbeddingDimensions, strings.Count(got, ",")+1)
	assert.True(t, strings.HasPrefix(got, "["))
	assert.True(t, strings.HasSuffix(got, "]"))
}
