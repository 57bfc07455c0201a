// Package openalex provides a research source adapter for the OpenAlex API.
//
// OpenAlex is an open catalog of scholarly works. Abstracts are stored as
// inverted indices and reconstructed during normalization.
//
// API documentation: https://docs.openalex.org/
package openalex

// searchResponse represents the response from the works search endpoint.
type searchResponse struct {
	Meta    meta   `json:"meta"`
	Results []work `json:"results"`
}

// meta holds result-set metadata.
type meta struct {
	Count int `json:"count"`
}

// work represents a single OpenAlex work.
type work struct {
	ID                    string           `json:"id"`  // "https://openalex.org/W123"
	DOI                   string           `json:"doi"` // "https://doi.org/10.1234/..."
	DisplayName           string           `json:"display_name"`
	Title                 string           `json:"title"`
	PublicationYear       int              `json:"publication_year"`
	PublicationDate       string           `json:"publication_date"` // YYYY-MM-DD
	Authorships           []authorship     `json:"authorships"`
	CitedByCount          int              `json:"cited_by_count"`
	Concepts              []concept        `json:"concepts"`
	PrimaryLocation       *location        `json:"primary_location,omitempty"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index,omitempty"`
}

// authorship links a work to one author.
type authorship struct {
	Author authorRef `json:"author"`
}

// authorRef identifies an author.
type authorRef struct {
	DisplayName string `json:"display_name"`
}

// concept is a subject tag OpenAlex assigns to a work.
type concept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// location describes where a work is hosted.
type location struct {
	LandingPageURL string `json:"landing_page_url"`
}
