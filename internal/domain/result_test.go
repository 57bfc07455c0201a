package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResult() ResearchResult {
	return ResearchResult{
		ID:              "arxiv:2301.12345",
		Title:           "CRISPR Screening at Scale",
		Authors:         []string{"Ada Lovelace"},
		Abstract:        "A study of large-scale CRISPR screens.",
		Source:          "arXiv",
		URL:             "https://arxiv.org/abs/2301.12345",
		PublicationDate: "2023-01-15",
		Kind:            KindResearch,
		Tags:            []string{"crispr"},
		CitationCount:   12,
	}
}

func TestValidateResearchResult(t *testing.T) {
	t.Run("accepts a fully normalized result", func(t *testing.T) {
		r := validResult()
		require.NoError(t, ValidateResearchResult(&r))
	})

	t.Run("accepts empty authors and missing DOI", func(t *testing.T) {
		r := validResult()
		r.Authors = []string{}
		r.DOI = ""
		r.CitationCount = 0
		require.NoError(t, ValidateResearchResult(&r))
	})

	tests := []struct {
		name   string
		mutate func(r *ResearchResult)
	}{
		{"rejects empty title", func(r *ResearchResult) { r.Title = "" }},
		{"rejects empty URL", func(r *ResearchResult) { r.URL = "" }},
		{"rejects malformed URL", func(r *ResearchResult) { r.URL = "not a url" }},
		{"rejects missing abstract", func(r *ResearchResult) { r.Abstract = "" }},
		{"rejects unknown kind", func(r *ResearchResult) { r.Kind = "podcast" }},
		{"rejects expert-only kind", func(r *ResearchResult) { r.Kind = KindCourse }},
		{"rejects empty tags", func(r *ResearchResult) { r.Tags = nil }},
		{"rejects negative citations", func(r *ResearchResult) { r.CitationCount = -1 }},
		{"rejects missing date", func(r *ResearchResult) { r.PublicationDate = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validResult()
			tt.mutate(&r)
			err := ValidateResearchResult(&r)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestValidateExpertContent(t *testing.T) {
	valid := ExpertContent{
		ID:             "yt:abc123",
		Title:          "Gene Editing Workshop",
		Description:    "Hands-on CRISPR workshop recording.",
		Author:         "Genome Academy",
		Date:           "2024-03-02",
		Source:         "YouTube",
		URL:            "https://www.youtube.com/watch?v=abc123",
		Kind:           KindWorkshop,
		RelevanceScore: 82,
	}

	t.Run("accepts a valid item", func(t *testing.T) {
		c := valid
		require.NoError(t, ValidateExpertContent(&c))
	})

	t.Run("rejects research kind", func(t *testing.T) {
		c := valid
		c.Kind = KindResearch
		require.Error(t, ValidateExpertContent(&c))
	})

	t.Run("rejects out-of-range relevance score", func(t *testing.T) {
		c := valid
		c.RelevanceScore = 101
		require.Error(t, ValidateExpertContent(&c))

		c.RelevanceScore = -1
		require.Error(t, ValidateExpertContent(&c))
	})
}

func TestProviderError(t *testing.T) {
	t.Run("matches sentinel with errors.Is", func(t *testing.T) {
		err := NewProviderError("arXiv", 503, "service unavailable", nil)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("keeps cause reachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewProviderError("PubMed", 0, "request failed", cause)
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("formats status code when present", func(t *testing.T) {
		err := NewProviderError("OpenAlex", 429, "too many requests", nil)
		assert.Contains(t, err.Error(), "429")
		assert.Contains(t, err.Error(), "OpenAlex")
	})

	t.Run("matches concrete type with errors.As", func(t *testing.T) {
		var perr *ProviderError
		err := error(NewProviderError("Crossref", 500, "boom", nil))
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "Crossref", perr.Provider)
	})
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, IsValidResearchKind(KindResearch))
	assert.True(t, IsValidResearchKind(KindConference))
	assert.False(t, IsValidResearchKind(KindCourse))
	assert.False(t, IsValidResearchKind("unknown"))

	assert.True(t, IsValidExpertKind(KindCourse))
	assert.True(t, IsValidExpertKind(KindWebinar))
	assert.False(t, IsValidExpertKind(KindResearch))
}

func TestEmptyInsights(t *testing.T) {
	got := EmptyInsights()
	assert.NotNil(t, got.Papers)
	assert.NotNil(t, got.ExpertContent)
	assert.NotNil(t, got.RelatedTopics)
	assert.NotNil(t, got.KeyAuthors)
	assert.Empty(t, got.Papers)
	assert.Empty(t, got.ExpertContent)
}
