// Package semanticscholar provides a research source adapter for the
// Semantic Scholar Graph API.
//
// API documentation: https://api.semanticscholar.org/api-docs/
package semanticscholar

// searchResponse represents the response from the paper search endpoint.
type searchResponse struct {
	// Total is the total number of papers matching the query.
	Total int `json:"total"`

	// Data contains the papers returned by the search.
	Data []paperResult `json:"data"`
}

// paperResult represents a single paper in the API response.
type paperResult struct {
	PaperID         string       `json:"paperId"`
	ExternalIDs     *externalIDs `json:"externalIds,omitempty"`
	Title           string       `json:"title"`
	Abstract        string       `json:"abstract"`
	Year            int          `json:"year"`
	PublicationDate string       `json:"publicationDate"` // YYYY-MM-DD
	FieldsOfStudy   []string     `json:"fieldsOfStudy"`
	Authors         []paperAuthor `json:"authors"`
	CitationCount   int          `json:"citationCount"`
	URL             string       `json:"url"`
}

// externalIDs holds cross-database identifiers for a paper.
type externalIDs struct {
	DOI   string `json:"DOI,omitempty"`
	ArXiv string `json:"ArXiv,omitempty"`
}

// paperAuthor represents one author entry.
type paperAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}
