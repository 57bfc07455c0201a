// Package domain defines the canonical types shared by every source adapter
// and pipeline stage of the insights aggregation service.
//
// Each external provider speaks its own wire format; adapters translate those
// into ResearchResult and ExpertContent at their boundary. Nothing downstream
// of an adapter ever sees a provider-native shape.
package domain

// NoAbstractSentinel is the fixed abstract text used when a provider does
// not supply one.
const NoAbstractSentinel = "No abstract available"

// ResultKind categorizes the provenance of a record.
type ResultKind string

// Result kinds for research records and expert content.
const (
	KindResearch   ResultKind = "research"
	KindWebinar    ResultKind = "webinar"
	KindWorkshop   ResultKind = "workshop"
	KindArticle    ResultKind = "article"
	KindConference ResultKind = "conference"
	KindCourse     ResultKind = "course"
)

// IsValidResearchKind reports whether k is a valid kind for a ResearchResult.
func IsValidResearchKind(k ResultKind) bool {
	switch k {
	case KindResearch, KindWebinar, KindWorkshop, KindArticle, KindConference:
		return true
	}
	return false
}

// IsValidExpertKind reports whether k is a valid kind for ExpertContent.
func IsValidExpertKind(k ResultKind) bool {
	switch k {
	case KindWebinar, KindWorkshop, KindArticle, KindConference, KindCourse:
		return true
	}
	return false
}

// ResearchResult is the canonical shape for one record returned by a research
// provider after adapter normalization.
//
// Validation tags enforce the adapter-boundary invariant: every field below
// is present and well-typed before a result leaves its adapter.
type ResearchResult struct {
	// ID is the provider-scoped identifier, opaque to this service.
	ID string `json:"id" validate:"required"`

	// Title is the record title. Never empty.
	Title string `json:"title" validate:"required"`

	// Authors holds display names in the provider's order. May be empty when
	// the provider supplies no structured names, but never nil.
	Authors []string `json:"authors"`

	// Abstract is free text; NoAbstractSentinel when the provider omits it.
	Abstract string `json:"abstract" validate:"required"`

	// Source is the human-readable provider brand (e.g. "arXiv"), not a
	// hostname.
	Source string `json:"source" validate:"required"`

	// URL is the canonical link to the original record. Adapters synthesize
	// one from an identifier when the provider returns no direct link.
	URL string `json:"url" validate:"required,url"`

	// PublicationDate is a YYYY-MM-DD calendar date. Year-only dates are
	// normalized to YYYY-01-01.
	PublicationDate string `json:"publication_date" validate:"required"`

	// Kind is the provenance category of the record.
	Kind ResultKind `json:"kind" validate:"required,oneof=research webinar workshop article conference"`

	// Tags are free-text topic strings; minimally the originating query term.
	Tags []string `json:"tags" validate:"min=1"`

	// CitationCount is the provider-reported citation count, 0 when absent.
	CitationCount int `json:"citation_count" validate:"gte=0"`

	// DOI is the optional document identifier.
	DOI string `json:"doi,omitempty"`
}

// ExpertContent is the canonical shape for one educational/expert item
// returned by an expert-content provider or the curated dataset.
type ExpertContent struct {
	ID          string     `json:"id" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Author      string     `json:"author" validate:"required"`
	Date        string     `json:"date" validate:"required"`
	Source      string     `json:"source" validate:"required"`
	URL         string     `json:"url" validate:"required,url"`
	Kind        ResultKind `json:"kind" validate:"required,oneof=webinar workshop article conference course"`

	// RelevanceScore ranks items within one federation run. Scores are in
	// [0,100] and are not comparable across runs or providers.
	RelevanceScore float64 `json:"relevance_score" validate:"gte=0,lte=100"`
}

// Insights is the composite result of one aggregation run. Values live only
// for the duration of the request that produced them; nothing is persisted.
type Insights struct {
	Papers        []ResearchResult `json:"papers"`
	ExpertContent []ExpertContent  `json:"expert_content"`
	RelatedTopics []string         `json:"related_topics"`
	KeyAuthors    []string         `json:"key_authors"`
}

// EmptyInsights returns an Insights value with all four collections empty
// but non-nil, the degraded output the facade falls back to.
func EmptyInsights() Insights {
	return Insights{
		Papers:        []ResearchResult{},
		ExpertContent: []ExpertContent{},
		RelatedTopics: []string{},
		KeyAuthors:    []string{},
	}
}
