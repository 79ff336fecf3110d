package deadline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-atom-club/deadlines/internal/model"
)

func filterFixture() (*model.Item, *model.Event) {
	item := &model.Item{
		Title:    "Conf",
		Category: model.CategoryConference,
		Tags:     []string{"rust", "systems"},
	}
	event := &model.Event{ID: "evt-42", Place: "Remote"}
	return item, event
}

func TestCriteriaZeroValueMatchesAll(t *testing.T) {
	item, event := filterFixture()
	assert.True(t, Criteria{}.Matches(item, event))
}

func TestCriteriaCategory(t *testing.T) {
	item, event := filterFixture()
	assert.True(t, Criteria{Category: "conference"}.Matches(item, event))
	assert.False(t, Criteria{Category: "competition"}.Matches(item, event))
}

func TestCriteriaTagsORSemantics(t *testing.T) {
	item, event := filterFixture()
	assert.True(t, Criteria{Tags: []string{"go", "rust"}}.Matches(item, event))
	assert.False(t, Criteria{Tags: []string{"go", "python"}}.Matches(item, event))
}

func TestCriteriaLocations(t *testing.T) {
	item, event := filterFixture()
	assert.True(t, Criteria{Locations: []string{"Remote"}}.Matches(item, event))

	onsite := &model.Event{ID: "evt-43", Place: "Onsite"}
	assert.False(t, Criteria{Locations: []string{"Remote"}}.Matches(item, onsite))
}

func TestCriteriaFavoritesOnly(t *testing.T) {
	item, event := filterFixture()
	crit := Criteria{FavoritesOnly: true, Favorites: map[string]bool{"evt-42": true}}
	assert.True(t, crit.Matches(item, event))

	other := &model.Event{ID: "evt-99", Place: "Remote"}
	assert.False(t, crit.Matches(item, other))
}

func TestCriteriaFacetsAreANDed(t *testing.T) {
	item, event := filterFixture()
	crit := Criteria{Category: "conference", Tags: []string{"rust"}, Locations: []string{"Berlin"}}
	assert.False(t, crit.Matches(item, event))
	crit.Locations = []string{"Remote"}
	assert.True(t, crit.Matches(item, event))
}

func TestCriteriaUnknownCategoryPassesThrough(t *testing.T) {
	item := &model.Item{Title: "Odd", Category: "unconference"}
	event := &model.Event{ID: "odd-1"}
	require.False(t, item.Category.Known())
	assert.True(t, Criteria{}.Matches(item, event))
	assert.True(t, Criteria{Category: "unconference"}.Matches(item, event))
	assert.False(t, Criteria{Category: "conference"}.Matches(item, event))
}

func TestSearchQueryTrimming(t *testing.T) {
	assert.Equal(t, "", Criteria{Query: "   "}.SearchQuery())
	assert.Equal(t, "rust", Criteria{Query: " rust "}.SearchQuery())
}
