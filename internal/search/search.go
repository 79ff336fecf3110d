// Package search provides fuzzy free-text matching over flattened
// (item, event) pairs.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/open-atom-club/deadlines/internal/deadline"
)

// Index satisfies deadline.Searcher. It is stateless between calls; the
// haystack is rebuilt from the pairs handed in, which keeps search consistent
// with whatever snapshot the caller is ranking.
type Index struct{}

// New returns a ready Index.
func New() *Index { return &Index{} }

// source adapts a pair list to fuzzy.Source. Each pair is matched against the
// concatenation of title, description, tags, and place.
type source []deadline.Pair

func (s source) Len() int { return len(s) }

func (s source) String(i int) string {
	p := s[i]
	parts := []string{p.Item.Title, p.Item.Description}
	parts = append(parts, p.Item.Tags...)
	parts = append(parts, p.Event.Place)
	return strings.ToLower(strings.Join(parts, " "))
}

// Search returns the pairs matching query, ordered by match relevance. An
// empty or whitespace-only query returns the input unchanged.
func (ix *Index) Search(query string, pairs []deadline.Pair) []deadline.Pair {
	q := strings.TrimSpace(query)
	if q == "" {
		return pairs
	}
	matches := fuzzy.FindFrom(strings.ToLower(q), source(pairs))
	out := make([]deadline.Pair, 0, len(matches))
	for _, m := range matches {
		out = append(out, pairs[m.Index])
	}
	return out
}
