// Package deadline implements the deadline resolution and ranking engine:
// civil-time resolution into canonical instants, per-entry temporal
// classification, the ended predicate, and the display ordering over the
// whole collection.
package deadline

import (
	"errors"
	"fmt"
	"time"
)

// Civil date-time layouts accepted in data files, tried in order. Values are
// authored without a zone; the owning event's IANA zone supplies one.
var civilLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ProjectLayout is the canonical textual form of a projected civil time.
const ProjectLayout = "2006-01-02T15:04:05"

// MalformedEntryError reports a timeline entry whose deadline or zone could
// not be interpreted. Callers exclude the entry rather than abort the pass.
type MalformedEntryError struct {
	Value string
	Zone  string
	Err   error
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("malformed timeline entry %q in zone %q: %v", e.Value, e.Zone, e.Err)
}

func (e *MalformedEntryError) Unwrap() error { return e.Err }

// Resolve interprets a civil date-time string in the given IANA zone and
// returns the canonical instant. The zone is the authoring zone, never the
// observer's: the same literal clock time names different instants in
// different zones. Full IANA rules apply, including historical offsets and
// DST transitions.
//
// DST policy: resolution delegates to time.ParseInLocation, whose
// normalization is deterministic. An ambiguous local time (clock rolled back)
// maps to the earlier offset; a nonexistent one (clock rolled forward) is
// normalized onto the following valid instant.
func Resolve(value, zone string) (time.Time, error) {
	if zone == "" {
		// time.LoadLocation("") means UTC; an event without a zone is a data
		// error and must not silently resolve against anything.
		return time.Time{}, &MalformedEntryError{Value: value, Zone: zone, Err: errors.New("empty zone identifier")}
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, &MalformedEntryError{Value: value, Zone: zone, Err: err}
	}
	var lastErr error
	for _, layout := range civilLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &MalformedEntryError{Value: value, Zone: zone, Err: lastErr}
}

// Project renders an instant as civil time in the target zone. Round-trip
// stable with Resolve: projecting a resolved instant back into its source
// zone reproduces the source civil time.
func Project(instant time.Time, zone string) (string, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", fmt.Errorf("unknown zone %q: %w", zone, err)
	}
	return instant.In(loc).Format(ProjectLayout), nil
}

// ValidZone reports whether zone is a known IANA identifier.
func ValidZone(zone string) bool {
	if zone == "" {
		return false
	}
	_, err := time.LoadLocation(zone)
	return err == nil
}
