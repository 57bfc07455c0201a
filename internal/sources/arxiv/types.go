package arxiv

import "encoding/xml"

// feed represents the Atom XML response from the arXiv API.
type feed struct {
	XMLName      xml.Name `xml:"feed"`
	TotalResults int      `xml:"totalResults"`
	Entries      []entry  `xml:"entry"`
}

// entry represents a single arXiv paper in the Atom feed.
type entry struct {
	ID         string     `xml:"id"` // "http://arxiv.org/abs/2301.12345v1"
	Title      string     `xml:"title"`
	Summary    string     `xml:"summary"`   // abstract
	Published  string     `xml:"published"` // "2023-01-15T18:30:00Z"
	Authors    []author   `xml:"author"`
	Categories []category `xml:"category"`
	Links      []link     `xml:"link"`
	DOI        string     `xml:"doi"`
}

// author represents a paper author in the arXiv Atom feed.
type author struct {
	Name string `xml:"name"`
}

// category represents an arXiv subject category.
type category struct {
	Term string `xml:"term,attr"`
}

// link represents a link element in the Atom feed.
type link struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}
