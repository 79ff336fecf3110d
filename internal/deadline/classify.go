package deadline

import (
	"errors"
	"time"

	"github.com/open-atom-club/deadlines/internal/model"
)

// imminentWindow is the half-width of the "imminent" band around now.
// Measured in real hours, not calendar days, so the band does not jump at
// midnight in any particular zone.
const imminentWindow = 24 * time.Hour

// ErrNoValidEntries is returned when no timeline entry of an event resolves.
var ErrNoValidEntries = errors.New("timeline has no resolvable entries")

// Classification is the engine's view of one event's timeline at a sampled
// instant.
type Classification struct {
	// Statuses aligns with the timeline by index. Entries that failed to
	// resolve carry the zero Status and are excluded from all other fields.
	Statuses []model.Status

	// Instants aligns with the timeline by index; unresolvable entries hold
	// the zero time.
	Instants []time.Time

	// NextIndex is the entry with the smallest instant strictly after now,
	// or -1 when every resolvable entry has passed. On equal instants the
	// earlier index wins.
	NextIndex int

	// LastInstant is the instant of the last resolvable entry in sequence
	// order. It drives the ended predicate and the negative-remaining
	// fallback when NextIndex is -1.
	LastInstant time.Time
}

// Classify resolves every entry of a timeline in the event's own zone and
// derives per-entry statuses plus the next upcoming entry relative to now.
// Malformed entries are skipped individually; only a timeline with zero
// resolvable entries fails as a whole.
func Classify(timeline []model.TimelineEntry, zone string, now time.Time) (Classification, error) {
	c := Classification{
		Statuses:  make([]model.Status, len(timeline)),
		Instants:  make([]time.Time, len(timeline)),
		NextIndex: -1,
	}

	valid := 0
	for i, entry := range timeline {
		instant, err := Resolve(entry.Deadline, zone)
		if err != nil {
			continue
		}
		valid++
		c.Instants[i] = instant
		c.Statuses[i] = statusAt(instant, now)
		c.LastInstant = instant

		if instant.After(now) {
			if c.NextIndex == -1 || instant.Before(c.Instants[c.NextIndex]) {
				c.NextIndex = i
			}
		}
	}
	if valid == 0 {
		return Classification{NextIndex: -1}, ErrNoValidEntries
	}
	return c, nil
}

// statusAt classifies a single instant against now using the ±24h band,
// inclusive on both edges.
func statusAt(instant, now time.Time) model.Status {
	d := instant.Sub(now)
	switch {
	case d < -imminentWindow:
		return model.StatusPast
	case d > imminentWindow:
		return model.StatusFuture
	default:
		return model.StatusImminent
	}
}
