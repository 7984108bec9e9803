package tags_test

import (
	"testing"

	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/tags"
	"github.com/stretchr/testify/assert"
)

func TestSynthesize(t *testing.T) {
	vocab := []string{"Work", "Invoice"}

	assert.Equal(t, []string{"Invoice"}, tags.Synthesize("Invoice for client", vocab))
	assert.Equal(t, []string{"Invoice"}, tags.Synthesize("invoice", vocab))
	assert.Empty(t, tags.Synthesize("Invoices and homework", vocab))
	assert.Equal(t, []string{"Work", "Invoice"}, tags.Synthesize("INVOICE at work.", vocab))
}

func TestSynthesize_TreatsTagsLiterally(t *testing.T) {
	vocab := []string{"c++", "a.b", "new york"}

	assert.Equal(t, []string{"c++"}, tags.Synthesize("learn C++ today", vocab))
	assert.Empty(t, tags.Synthesize("axb", vocab))
	assert.Equal(t, []string{"new york"}, tags.Synthesize("trip to New York!", vocab))
}

func TestSynthesize_UnicodeBoundaries(t *testing.T) {
	vocab := []string{"café"}
	assert.Equal(t, []string{"café"}, tags.Synthesize("meet at Café", vocab))
	assert.Empty(t, tags.Synthesize("cafés", vocab))
}

func TestSynthesize_DeterministicOrder(t *testing.T) {
	vocab := []string{"b", "a", "b", " "}
	assert.Equal(t, []string{"b", "a"}, tags.Synthesize("a b", vocab))
}

func TestAuto(t *testing.T) {
	got := tags.Auto("The Meeting with Alice about #budget and #q3 plans, A note")
	assert.Equal(t, []string{"budget", "q3", "Meeting", "Alice"}, got)
}

func TestVocabulary_SkipsDeleted(t *testing.T) {
	notes := []core.Note{
		{ID: 1, Tags: []string{"Work", "Home"}},
		{ID: 2, Tags: []string{"Old"}, Deleted: true},
		{ID: 3, Tags: []string{"Home", "Bills"}},
	}
	assert.Equal(t, []string{"Work", "Home", "Bills"}, tags.Vocabulary(notes))
}

func TestMerge(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, tags.Merge([]string{"a"}, []string{"b", "a"}, []string{"c"}))
}
