// Package model defines shared data structures.
package model

import "time"

// Category classifies an item. Unknown labels pass through as an opaque
// string so one bad record never breaks filtering or ranking.
type Category string

const (
	CategoryConference  Category = "conference"
	CategoryCompetition Category = "competition"
	CategoryActivity    Category = "activity"
)

// Known reports whether c is one of the closed set of categories.
func (c Category) Known() bool {
	switch c {
	case CategoryConference, CategoryCompetition, CategoryActivity:
		return true
	}
	return false
}

// TimelineEntry is a single milestone of an event. Deadline is civil time in
// the owning event's timezone; it carries no zone of its own.
type TimelineEntry struct {
	Deadline string `yaml:"deadline" json:"deadline"`
	Comment  string `yaml:"comment" json:"comment"`
}

// Event is one edition of an item (a year, a venue, one timeline).
type Event struct {
	Year     int             `yaml:"year" json:"year"`
	ID       string          `yaml:"id" json:"id"`
	Link     string          `yaml:"link" json:"link"`
	Timeline []TimelineEntry `yaml:"timeline" json:"timeline"`
	Timezone string          `yaml:"timezone" json:"timezone"`
	Date     string          `yaml:"date" json:"date"` // display-only summary string
	Place    string          `yaml:"place" json:"place"`
}

// Item is a conference, competition, or activity that recurs across editions.
type Item struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Category    Category `yaml:"category" json:"category"`
	Tags        []string `yaml:"tags" json:"tags"`
	Events      []Event  `yaml:"events" json:"events"`
}

// HasTag reports whether the item carries the given tag.
func (it *Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Status is the temporal classification of one timeline entry relative to a
// sampled "now". Thresholds are 24 real hours either side, not midnight
// boundaries. The empty string marks an entry that failed to resolve.
type Status string

const (
	StatusPast     Status = "past"
	StatusImminent Status = "imminent"
	StatusFuture   Status = "future"
)

// Ranked is the per-(item, event) projection the ranking engine sorts and the
// presentation layer consumes. Derived once per render cycle, never persisted.
type Ranked struct {
	Item  *Item  `json:"item"`
	Event *Event `json:"event"`

	// NextIndex is the timeline index of the next upcoming deadline, or -1
	// when every entry is already in the past.
	NextIndex int `json:"nextIndex"`

	// NextAt is the instant ranking is computed against: the next upcoming
	// deadline, or the last resolvable entry's instant when none remain.
	NextAt time.Time `json:"nextAt"`

	// Remaining is NextAt minus now; negative once NextAt has passed.
	Remaining time.Duration `json:"remaining"`

	// Ended reports whether the event's last deadline has passed.
	Ended bool `json:"ended"`

	// Statuses holds one Status per timeline entry, aligned by index.
	Statuses []Status `json:"statuses"`
}

// Settings key constants.
const (
	SettingDisplayTimezone = "display_timezone"
)

// DefaultDisplayTimezone is the canonical zone used before a user picks one.
const DefaultDisplayTimezone = "Asia/Shanghai"
