package deadline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-atom-club/deadlines/internal/model"
)

var rankNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// singleEventItem builds one item with one event whose timeline is the given
// deadlines, all authored in UTC.
func singleEventItem(title, id, place string, deadlines ...string) model.Item {
	return model.Item{
		Title:    title,
		Category: model.CategoryConference,
		Events: []model.Event{{
			Year:     2025,
			ID:       id,
			Timezone: "UTC",
			Place:    place,
			Timeline: entries(deadlines...),
		}},
	}
}

func TestRankEndedOrderedMostRecentFirst(t *testing.T) {
	// A ended 5 days ago, B one day ago: B ended more recently, B first.
	items := []model.Item{
		singleEventItem("A", "a", "Remote", "2025-05-27T12:00:00"),
		singleEventItem("B", "b", "Remote", "2025-05-31T12:00:00"),
	}
	ranked := Rank(items, Criteria{}, nil, rankNow)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b", ranked[0].Event.ID)
	assert.Equal(t, "a", ranked[1].Event.ID)
	assert.True(t, ranked[0].Ended)
	assert.Less(t, ranked[0].Remaining, time.Duration(0))
}

func TestRankUpcomingPrecedeEndedSoonestFirst(t *testing.T) {
	items := []model.Item{
		singleEventItem("Ended", "ended", "Remote", "2025-01-01T00:00:00"),
		singleEventItem("Far", "far", "Remote", "2025-09-01T00:00:00"),
		singleEventItem("Soon", "soon", "Remote", "2025-06-05T00:00:00"),
	}
	ranked := Rank(items, Criteria{}, nil, rankNow)
	require.Len(t, ranked, 3)
	assert.Equal(t, "soon", ranked[0].Event.ID)
	assert.Equal(t, "far", ranked[1].Event.ID)
	assert.Equal(t, "ended", ranked[2].Event.ID)
}

func TestRankIsStableForEqualKeys(t *testing.T) {
	items := []model.Item{
		singleEventItem("First", "first", "Remote", "2025-06-05T00:00:00"),
		singleEventItem("Second", "second", "Remote", "2025-06-05T00:00:00"),
	}
	for i := 0; i < 5; i++ {
		ranked := Rank(items, Criteria{}, nil, rankNow)
		require.Len(t, ranked, 2)
		assert.Equal(t, "first", ranked[0].Event.ID, "equal keys must keep input order")
	}
}

func TestRankFallbackNeverPromotedToUpcoming(t *testing.T) {
	items := []model.Item{singleEventItem("Done", "done", "Remote", "2025-01-01T00:00:00", "2025-03-01T00:00:00")}
	ranked := Rank(items, Criteria{}, nil, rankNow)
	require.Len(t, ranked, 1)
	assert.Equal(t, -1, ranked[0].NextIndex)
	// Ranking uses the last entry's instant, which must be negative here.
	assert.Less(t, ranked[0].Remaining, time.Duration(0))
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ranked[0].NextAt)
}

func TestRankDropsUnresolvableEventsOnly(t *testing.T) {
	bad := singleEventItem("Bad", "bad", "Remote", "garbage")
	good := singleEventItem("Good", "good", "Remote", "2025-07-01T00:00:00")
	ranked := Rank([]model.Item{bad, good}, Criteria{}, nil, rankNow)
	require.Len(t, ranked, 1)
	assert.Equal(t, "good", ranked[0].Event.ID)
}

func TestRankUsesEventOwnZoneForDeadlines(t *testing.T) {
	// 19:00 in Shanghai on June 1 is 11:00 UTC, an hour ago; the same civil
	// string in New York is still twelve hours ahead.
	sh := model.Item{Title: "SH", Events: []model.Event{{
		ID: "sh", Timezone: "Asia/Shanghai", Timeline: entries("2025-06-01T19:00:00"),
	}}}
	ny := model.Item{Title: "NY", Events: []model.Event{{
		ID: "ny", Timezone: "America/New_York", Timeline: entries("2025-06-01T19:00:00"),
	}}}
	ranked := Rank([]model.Item{sh, ny}, Criteria{}, nil, rankNow)
	require.Len(t, ranked, 2)
	assert.Equal(t, "ny", ranked[0].Event.ID)
	assert.False(t, ranked[0].Ended)
	assert.True(t, ranked[1].Ended)
}

func TestIsEndedMonotonic(t *testing.T) {
	ev := &model.Event{ID: "e", Timezone: "UTC", Timeline: entries("2025-06-01T18:00:00")}
	assert.False(t, IsEnded(ev, rankNow))
	// Once ended, later instants keep it ended.
	for _, ahead := range []time.Duration{7 * time.Hour, 24 * time.Hour, 24 * 365 * time.Hour} {
		assert.True(t, IsEnded(ev, rankNow.Add(ahead)))
	}
}

func TestIsEndedIndependentOfDisplayZone(t *testing.T) {
	// The ended boolean compares real instants: re-expressing the same "now"
	// in another zone must not change it.
	ev := &model.Event{ID: "e", Timezone: "Asia/Shanghai", Timeline: entries("2025-06-01T19:00:00")}
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	assert.Equal(t, IsEnded(ev, rankNow), IsEnded(ev, rankNow.In(loc)))

	later := rankNow.Add(12 * time.Hour)
	assert.Equal(t, IsEnded(ev, later), IsEnded(ev, later.In(loc)))
	assert.True(t, IsEnded(ev, later))
}

// fakeSearcher returns a fixed subset in its own order.
type fakeSearcher struct{ keep map[string]bool }

func (f fakeSearcher) Search(_ string, pairs []Pair) []Pair {
	var out []Pair
	for _, p := range pairs {
		if f.keep[p.Event.ID] {
			out = append(out, p)
		}
	}
	return out
}

func TestRankSearchRunsBeforeFacetFilters(t *testing.T) {
	items := []model.Item{
		singleEventItem("Alpha", "alpha", "Remote", "2025-06-05T00:00:00"),
		singleEventItem("Beta", "beta", "Onsite", "2025-06-06T00:00:00"),
		singleEventItem("Gamma", "gamma", "Remote", "2025-06-07T00:00:00"),
	}
	crit := Criteria{Query: "whatever", Locations: []string{"Remote"}}
	searcher := fakeSearcher{keep: map[string]bool{"beta": true, "gamma": true}}
	ranked := Rank(items, crit, searcher, rankNow)
	// beta survives search but not the location facet; only gamma remains.
	require.Len(t, ranked, 1)
	assert.Equal(t, "gamma", ranked[0].Event.ID)
}

func TestFlattenExpandsEditions(t *testing.T) {
	item := model.Item{Title: "Multi", Events: []model.Event{
		{ID: "e1", Timezone: "UTC", Timeline: entries("2025-06-05T00:00:00")},
		{ID: "e2", Timezone: "UTC", Timeline: entries("2026-06-05T00:00:00")},
	}}
	pairs := Flatten([]model.Item{item})
	require.Len(t, pairs, 2)
	assert.Same(t, pairs[0].Item, pairs[1].Item)
}
