package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 0, ApproxTokens(""))
	assert.Equal(t, 1, ApproxTokens("a"))
	// "hello world" has 2 words and len 11 -> ceil(11/4) = 3, max(2,3) = 3.
	assert.Equal(t, 3, ApproxTokens("hello world"))
	// A long single "word" with no spaces is dominated by the length term.
	assert.Equal(t, 5, ApproxTokens(strings.Repeat("x", 20)))
}

func TestSplit_RejectsInvalidWindowParams(t *testing.T) {
	_, err := Split("hello", 0, 0)
	require.Error(t, err)

	_, err = Split("hello", 10, 10)
	require.Error(t, err)

	_, err = Split("hello", 10, 20)
	require.Error(t, err)
}

func TestSplit_EmptyInputYieldsNoChunks(t *testing.T) {
	chunks, err := Split("   ", 10, 2)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplit_SingleWindowWhenShorterThanChunkSize(t *testing.T) {
	chunks, err := Split("one two three", 10, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Ord)
	assert.Equal(t, "one two three", chunks[0].Text)
}

func TestSplit_SlidesWithOverlap(t *testing.T) {
	words := make([]string, 10)
	for i := range words {
		words[i] = "w"
	}
	text := strings.Join(words, " ")

	chunks, err := Split(text, 4, 1)
	require.NoError(t, err)

	// stride = 4-1 = 3; windows start at 0,3,6. The window at 6 ends at the
	// last token, so no further window is emitted.
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Ord)
	}
	last := chunks[len(chunks)-1]
	assert.Equal(t, "w w w w", last.Text) // final window covers tokens 6..9
}

// TestSplit_IsIdempotent pins spec.md §8 property 1: splitting the same
// text twice with the same parameters produces byte-identical output.
func TestSplit_IsIdempotent(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("Service desk ticket text. ", 50)
	a, err := Split(text, 32, 8)
	require.NoError(t, err)
	b, err := Split(text, 32, 8)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestSplit_TokensJoinedBySingleSpace(t *testing.T) {
	chunks, err := Split("a   b\tc\nd", 10, 2)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a b c d", chunks[0].Text)
}
