package insights

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarly/insights-service/internal/domain"
)

func corpus(results ...domain.ResearchResult) []domain.ResearchResult {
	return results
}

func paper(title string, tags []string, authors ...string) domain.ResearchResult {
	return domain.ResearchResult{
		Title:   title,
		Tags:    tags,
		Authors: authors,
	}
}

func TestRelatedTopics(t *testing.T) {
	t.Run("unions tags and long title words", func(t *testing.T) {
		got := RelatedTopics(corpus(
			paper("Genome Editing Advances", []string{"CRISPR"}),
			paper("Protein Folding", []string{"alphafold"}),
		))
		assert.Equal(t, []string{"crispr", "genome", "editing", "advances", "alphafold", "protein", "folding"}, got)
	})

	t.Run("skips short words and stop words", func(t *testing.T) {
		got := RelatedTopics(corpus(
			paper("A Study of Gene Research Analysis in Mice", []string{"genetics"}),
		))
		// "study", "research", "analysis" are stopped; "a", "of", "gene",
		// "in", "mice" are too short.
		assert.Equal(t, []string{"genetics"}, got)
	})

	t.Run("deduplicates case-insensitively in first-seen order", func(t *testing.T) {
		got := RelatedTopics(corpus(
			paper("Neural Networks", []string{"neural"}),
			paper("NEURAL computation", nil),
		))
		assert.Equal(t, []string{"neural", "networks", "computation"}, got)
	})

	t.Run("truncates to ten items", func(t *testing.T) {
		tags := make([]string, 15)
		for i := range tags {
			tags[i] = fmt.Sprintf("topic%02d", i)
		}
		got := RelatedTopics(corpus(paper("short", tags)))
		require.Len(t, got, 10)
		assert.Equal(t, "topic00", got[0])
		assert.Equal(t, "topic09", got[9])
	})

	t.Run("empty corpus yields empty non-nil slice", func(t *testing.T) {
		got := RelatedTopics(nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestKeyAuthors(t *testing.T) {
	t.Run("sorts by descending frequency", func(t *testing.T) {
		got := KeyAuthors(corpus(
			paper("one", nil, "Alice", "Bob"),
			paper("two", nil, "Bob"),
			paper("three", nil, "Bob", "Carol"),
			paper("four", nil, "Carol"),
		))
		assert.Equal(t, []string{"Bob", "Alice", "Carol"}, got)
	})

	t.Run("breaks ties by first appearance", func(t *testing.T) {
		got := KeyAuthors(corpus(
			paper("one", nil, "Xavier"),
			paper("two", nil, "Yolanda"),
			paper("three", nil, "Zach"),
		))
		assert.Equal(t, []string{"Xavier", "Yolanda", "Zach"}, got)
	})

	t.Run("is deterministic across runs", func(t *testing.T) {
		input := corpus(
			paper("one", nil, "A", "B", "C"),
			paper("two", nil, "B", "C"),
			paper("three", nil, "C", "A"),
		)
		first := KeyAuthors(input)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, KeyAuthors(input))
		}
	})

	t.Run("truncates to ten authors", func(t *testing.T) {
		authors := make([]string, 14)
		for i := range authors {
			authors[i] = fmt.Sprintf("Author %02d", i)
		}
		got := KeyAuthors(corpus(paper("crowded", nil, authors...)))
		require.Len(t, got, 10)
		assert.Equal(t, "Author 00", got[0])
	})

	t.Run("skips blank names", func(t *testing.T) {
		got := KeyAuthors(corpus(paper("one", nil, " ", "", "Real Name")))
		assert.Equal(t, []string{"Real Name"}, got)
	})
}

func TestExtract(t *testing.T) {
	topics, authors := Extract(corpus(
		paper("Quantum Computing Advances", []string{"quantum"}, "Dana"),
	))
	assert.Equal(t, []string{"quantum", "computing", "advances"}, topics)
	assert.Equal(t, []string{"Dana"}, authors)
}
