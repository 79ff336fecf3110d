package deadline

import (
	"strings"

	"github.com/open-atom-club/deadlines/internal/model"
)

// Criteria holds the active filter state. The zero value matches everything.
type Criteria struct {
	// Category matches item.Category exactly when non-empty.
	Category string

	// Tags matches when at least one selected tag appears on the item.
	Tags []string

	// Locations matches when event.Place is one of the selected places.
	Locations []string

	// FavoritesOnly restricts output to events whose ID is in Favorites.
	FavoritesOnly bool
	Favorites     map[string]bool

	// Query is free text for the fuzzy-search stage. It is not evaluated by
	// Matches; search runs as a pipeline stage upstream of the facet filter
	// because it re-ranks by relevance.
	Query string
}

// SearchQuery returns the trimmed query, empty when search is inactive.
func (c Criteria) SearchQuery() string {
	return strings.TrimSpace(c.Query)
}

// Matches reports whether the (item, event) pair passes every facet. Facets
// are independent and ANDed; an unset facet matches all.
func (c Criteria) Matches(item *model.Item, event *model.Event) bool {
	if c.FavoritesOnly && !c.Favorites[event.ID] {
		return false
	}
	if c.Category != "" && string(item.Category) != c.Category {
		return false
	}
	if len(c.Tags) > 0 {
		any := false
		for _, tag := range c.Tags {
			if item.HasTag(tag) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	if len(c.Locations) > 0 {
		found := false
		for _, place := range c.Locations {
			if event.Place == place {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
