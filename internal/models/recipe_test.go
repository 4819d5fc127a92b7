package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingForCountsLetters(t *testing.T) {
	assert.Equal(t, []float32{8, 4, 4}, EmbeddingFor("Omelette").Slice())
	assert.Equal(t, []float32{9, 3, 5}, EmbeddingFor("Jam Toast").Slice())

	// anagrams are indistinguishable
	assert.Equal(t, EmbeddingFor("pear").Slice(), EmbeddingFor("reap").Slice())
}
