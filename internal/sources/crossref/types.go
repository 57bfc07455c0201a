// Package crossref provides a research source adapter for the Crossref
// REST API.
//
// Crossref indexes DOI-registered publications across publishers.
//
// API documentation: https://api.crossref.org/swagger-ui/index.html
package crossref

// searchResponse represents the envelope of a works query.
type searchResponse struct {
	Status  string  `json:"status"`
	Message message `json:"message"`
}

// message holds the result set of a works query.
type message struct {
	TotalResults int        `json:"total-results"`
	Items        []workItem `json:"items"`
}

// workItem represents a single Crossref work.
type workItem struct {
	DOI           string     `json:"DOI"`
	Title         []string   `json:"title"`
	Abstract      string     `json:"abstract,omitempty"` // JATS XML fragments
	Author        []author   `json:"author,omitempty"`
	Published     *dateParts `json:"published,omitempty"`
	PublishedOnline *dateParts `json:"published-online,omitempty"`
	URL           string     `json:"URL"`
	Type          string     `json:"type"` // "journal-article", "proceedings-article", ...
	Subject       []string   `json:"subject,omitempty"`
	CitedByCount  int        `json:"is-referenced-by-count"`
}

// author represents one contributor.
type author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name,omitempty"` // organizations
}

// dateParts holds Crossref's [[year, month, day]] date encoding.
type dateParts struct {
	DateParts [][]int `json:"date-parts"`
}
