// Package pubmed provides a research source adapter for the NCBI PubMed
// E-utilities API.
//
// Searches are two-step: esearch.fcgi returns matching PMIDs, then
// esummary.fcgi returns record metadata for those PMIDs. Both endpoints are
// queried with retmode=json.
//
// API documentation: https://www.ncbi.nlm.nih.gov/books/NBK25499/
package pubmed

import "encoding/json"

// esearchEnvelope represents the response from esearch.fcgi.
type esearchEnvelope struct {
	ESearchResult esearchResult `json:"esearchresult"`
}

// esearchResult holds matching PMIDs for a query.
type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// esummaryEnvelope represents the response from esummary.fcgi.
type esummaryEnvelope struct {
	Result esummaryResult `json:"result"`
}

// esummaryResult maps PMIDs to document summaries. The payload mixes a
// "uids" array with one object key per PMID, so decoding is custom.
type esummaryResult struct {
	UIDs      []string
	Summaries map[string]docSummary
}

// UnmarshalJSON decodes the heterogeneous esummary result object.
func (r *esummaryResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if uids, ok := raw["uids"]; ok {
		if err := json.Unmarshal(uids, &r.UIDs); err != nil {
			return err
		}
	}

	r.Summaries = make(map[string]docSummary, len(r.UIDs))
	for _, uid := range r.UIDs {
		msg, ok := raw[uid]
		if !ok {
			continue
		}
		var summary docSummary
		if err := json.Unmarshal(msg, &summary); err != nil {
			return err
		}
		r.Summaries[uid] = summary
	}
	return nil
}

// docSummary represents one PubMed record summary.
type docSummary struct {
	UID         string      `json:"uid"`
	Title       string      `json:"title"`
	PubDate     string      `json:"pubdate"` // "2023 Jan 15", "2023 Jan", or "2023"
	Authors     []docAuthor `json:"authors"`
	FullJournal string      `json:"fulljournalname"`
	ArticleIDs  []articleID `json:"articleids"`
}

// docAuthor represents one author entry in a summary.
type docAuthor struct {
	Name     string `json:"name"`
	AuthType string `json:"authtype"`
}

// articleID is a cross-database identifier attached to a record.
type articleID struct {
	IDType string `json:"idtype"` // "doi", "pmc", "pubmed"
	Value  string `json:"value"`
}
