package deadline

import (
	"sort"
	"time"

	"github.com/open-atom-club/deadlines/internal/model"
)

// Pair is one flattened (item, event) combination. An item contributes one
// pair per edition.
type Pair struct {
	Item  *model.Item
	Event *model.Event
}

// Searcher is the free-text search collaborator. For a non-empty query it
// returns a subset of the input pairs in its own relevance order.
type Searcher interface {
	Search(query string, pairs []Pair) []Pair
}

// IsEnded reports whether the event's last resolvable deadline is strictly
// before now. The comparison is between real instants: the observer's display
// zone changes how the deadline is rendered, never whether it has passed.
func IsEnded(event *model.Event, now time.Time) bool {
	c, err := Classify(event.Timeline, event.Timezone, now)
	if err != nil {
		return false
	}
	return c.LastInstant.Before(now)
}

// Flatten expands every item into its (item, event) pairs, preserving input
// order so the final sort stays deterministic for equal keys.
func Flatten(items []model.Item) []Pair {
	var pairs []Pair
	for i := range items {
		item := &items[i]
		for j := range item.Events {
			pairs = append(pairs, Pair{Item: item, Event: &item.Events[j]})
		}
	}
	return pairs
}

// Rank produces the display order over the whole collection:
//
//  1. flatten items into (item, event) pairs
//  2. resolve and classify each pair against now
//  3. apply the search pre-filter when a query is present
//  4. apply the facet filter
//  5. stable-sort: not-ended before ended; not-ended ascending by remaining
//     time, ended descending (most recently ended first)
//
// Events whose timeline has no resolvable entry are dropped; one bad record
// must not blank the page.
func Rank(items []model.Item, crit Criteria, searcher Searcher, now time.Time) []model.Ranked {
	pairs := Flatten(items)

	if q := crit.SearchQuery(); q != "" && searcher != nil {
		pairs = searcher.Search(q, pairs)
	}

	ranked := make([]model.Ranked, 0, len(pairs))
	for _, p := range pairs {
		if !crit.Matches(p.Item, p.Event) {
			continue
		}
		c, err := Classify(p.Event.Timeline, p.Event.Timezone, now)
		if err != nil {
			continue
		}
		nextAt := c.LastInstant
		if c.NextIndex >= 0 {
			nextAt = c.Instants[c.NextIndex]
		}
		ranked = append(ranked, model.Ranked{
			Item:      p.Item,
			Event:     p.Event,
			NextIndex: c.NextIndex,
			NextAt:    nextAt,
			Remaining: nextAt.Sub(now),
			Ended:     c.LastInstant.Before(now),
			Statuses:  c.Statuses,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		aEnded := a.Remaining < 0
		bEnded := b.Remaining < 0
		if aEnded != bEnded {
			return !aEnded
		}
		if aEnded {
			// Both ended: least long ago first.
			return a.Remaining > b.Remaining
		}
		return a.Remaining < b.Remaining
	})
	return ranked
}
