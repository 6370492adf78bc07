package entity

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract_CapitalizedPhraseExpandsToSuffixes(t *testing.T) {
	got := Extract([]Chunk{{Text: "Please escalate to Service Desk Team immediately."}})
	assertContains(t, got, "service desk team")
	assertContains(t, got, "desk team")
	assertContains(t, got, "team")
}

func TestExtract_AlphaTokenFallback(t *testing.T) {
	got := Extract([]Chunk{{Text: "the router needs a reboot"}})
	assertContains(t, got, "router")
	assertContains(t, got, "needs")
	assertContains(t, got, "reboot")
	// Short words (<4 letters) are never extracted via the fallback rule.
	assertNotContains(t, got, "the")
}

func TestExtract_DeduplicatesAndSorts(t *testing.T) {
	got := Extract([]Chunk{
		{Text: "Router Router Router"},
		{Text: "router"},
	})
	assert.True(t, sort.StringsAreSorted(got))
	count := 0
	for _, e := range got {
		if e == "router" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtract_EmptyInput(t *testing.T) {
	assert.Empty(t, Extract(nil))
	assert.Empty(t, Extract([]Chunk{{Text: ""}}))
}

// TestExtract_IsIdempotent pins spec.md §8 property 3.
func TestExtract_IsIdempotent(t *testing.T) {
	chunks := []Chunk{{Text: "The Network Operations Center escalated the VPN Gateway outage."}}
	a := Extract(chunks)
	b := Extract(chunks)
	assert.Equal(t, a, b)
}

func assertContains(t *testing.T, haystack []string, needle string) {
	t.Helper()
	for _, s := range haystack {
		if s == needle {
			return
		}
	}
	t.Fatalf("expected %v to contain %q", haystack, needle)
}

func assertNotContains(t *testing.T, haystack []string, needle string) {
	t.Helper()
	for _, s := range haystack {
		if s == needle {
			t.Fatalf("expected %v to NOT contain %q", haystack, needle)
		}
	}
}
