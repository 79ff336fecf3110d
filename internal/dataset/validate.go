package dataset

import (
	"github.com/rs/zerolog"

	"github.com/open-atom-club/deadlines/internal/deadline"
	"github.com/open-atom-club/deadlines/internal/model"
)

// Validate checks structural rules over a merged collection and returns the
// surviving items. Violations are logged; an invalid event is dropped without
// taking its valid siblings down, and an item survives as long as it keeps at
// least one event.
//
// Rules mirror the data checks the collection is maintained against:
// required fields, known category, unique event IDs, a known IANA zone, and
// a non-empty timeline whose deadlines parse.
func Validate(items []model.Item, log zerolog.Logger) []model.Item {
	seenIDs := make(map[string]bool)
	out := make([]model.Item, 0, len(items))

	for _, item := range items {
		if item.Title == "" {
			log.Warn().Msg("dropping item without title")
			continue
		}
		if !item.Category.Known() {
			// Unknown categories pass through as opaque labels.
			log.Warn().
				Str("item", item.Title).
				Str("category", string(item.Category)).
				Msg("item has unknown category")
		}

		var kept []model.Event
		for _, ev := range item.Events {
			if !validEvent(item.Title, ev, seenIDs, log) {
				continue
			}
			seenIDs[ev.ID] = true
			kept = append(kept, ev)
		}
		if len(kept) == 0 {
			log.Warn().Str("item", item.Title).Msg("dropping item without valid events")
			continue
		}
		item.Events = kept
		out = append(out, item)
	}
	return out
}

func validEvent(itemTitle string, ev model.Event, seenIDs map[string]bool, log zerolog.Logger) bool {
	l := log.With().Str("item", itemTitle).Str("event", ev.ID).Logger()

	if ev.ID == "" {
		l.Warn().Msg("dropping event without id")
		return false
	}
	if seenIDs[ev.ID] {
		l.Warn().Msg("dropping event with duplicate id")
		return false
	}
	if len(ev.Timeline) == 0 {
		// Resolution needs at least a last deadline for the ended check.
		l.Warn().Msg("dropping event with empty timeline")
		return false
	}
	if !deadline.ValidZone(ev.Timezone) {
		l.Warn().Str("timezone", ev.Timezone).Msg("dropping event with unknown timezone")
		return false
	}
	for i, entry := range ev.Timeline {
		if _, err := deadline.Resolve(entry.Deadline, ev.Timezone); err != nil {
			// The classifier would skip this entry anyway; warn so the data
			// file gets fixed.
			l.Warn().Err(err).Int("entry", i).Msg("timeline entry does not parse")
		}
	}
	return true
}
