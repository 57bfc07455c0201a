// Package insights derives aggregate signals from a deduplicated research
// corpus: related topics and frequently-appearing authors.
//
// Extraction is a pure function of the corpus: no I/O, no randomness, and
// deterministic output for a given input sequence.
package insights

import (
	"sort"
	"strings"
	"unicode"

	"github.com/scholarly/insights-service/internal/domain"
)

const (
	// topN truncates both derived lists.
	topN = 10

	// minTopicWordLen is the minimum rune length of a title word considered
	// a topic candidate.
	minTopicWordLen = 5
)

// stopWords are generic title words never offered as related topics.
var stopWords = map[string]struct{}{
	"research": {},
	"study":    {},
	"analysis": {},
}

// Extract derives related topics and key authors from a deduplicated corpus.
// Both lists are truncated to at most ten items; see RelatedTopics and
// KeyAuthors for the individual rules.
func Extract(results []domain.ResearchResult) (relatedTopics, keyAuthors []string) {
	return RelatedTopics(results), KeyAuthors(results)
}

// RelatedTopics returns the union of all result tags plus title words longer
// than four runes (excluding a small stop-list), lower-cased, in first-seen
// order, truncated to ten items.
func RelatedTopics(results []domain.ResearchResult) []string {
	seen := make(map[string]struct{})
	topics := make([]string, 0, topN)

	add := func(topic string) {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" {
			return
		}
		if _, dup := seen[topic]; dup {
			return
		}
		if _, stop := stopWords[topic]; stop {
			return
		}
		seen[topic] = struct{}{}
		if len(topics) < topN {
			topics = append(topics, topic)
		}
	}

	for _, result := range results {
		for _, tag := range result.Tags {
			add(tag)
		}
		for _, word := range titleWords(result.Title) {
			add(word)
		}
	}
	return topics
}

// KeyAuthors returns every distinct author name counted across all results,
// sorted by descending frequency with ties broken by first appearance,
// truncated to ten items.
func KeyAuthors(results []domain.ResearchResult) []string {
	type authorCount struct {
		name      string
		count     int
		firstSeen int
	}

	index := make(map[string]*authorCount)
	order := make([]*authorCount, 0)

	for _, result := range results {
		for _, name := range result.Authors {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			entry, ok := index[name]
			if !ok {
				entry = &authorCount{name: name, firstSeen: len(order)}
				index[name] = entry
				order = append(order, entry)
			}
			entry.count++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].firstSeen < order[j].firstSeen
	})

	n := len(order)
	if n > topN {
		n = topN
	}
	authors := make([]string, 0, n)
	for _, entry := range order[:n] {
		authors = append(authors, entry.name)
	}
	return authors
}

// titleWords splits a title into candidate topic words: alphanumeric runs of
// at least five runes.
func titleWords(title string) []string {
	fields := strings.FieldsFunc(title, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := make([]string, 0, len(fields))
	for _, field := range fields {
		if len([]rune(field)) >= minTopicWordLen {
			words = append(words, field)
		}
	}
	return words
}
