// Package ics exports events as iCalendar payloads and external
// add-to-calendar links.
package ics

import (
	"fmt"
	"net/url"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/open-atom-club/deadlines/internal/deadline"
	"github.com/open-atom-club/deadlines/internal/model"
)

const productID = "-//open-atom-club//deadlines//EN"

// utcBasic is the iCalendar UTC timestamp form used by the link providers.
const utcBasic = "20060102T150405Z"

// eventRange resolves the first and last timeline instants of an event in its
// own zone. The exported calendar entry spans the whole timeline.
func eventRange(ev *model.Event) (start, end time.Time, err error) {
	for _, entry := range ev.Timeline {
		t, rerr := deadline.Resolve(entry.Deadline, ev.Timezone)
		if rerr != nil {
			continue
		}
		if start.IsZero() || t.Before(start) {
			start = t
		}
		if t.After(end) {
			end = t
		}
	}
	if start.IsZero() {
		return start, end, deadline.ErrNoValidEntries
	}
	return start, end, nil
}

// Export renders a VCALENDAR for one (item, event) pair. The single VEVENT
// spans first to last timeline deadline; milestones are listed in the
// description.
func Export(item *model.Item, ev *model.Event, now time.Time) (string, error) {
	start, end, err := eventRange(ev)
	if err != nil {
		return "", fmt.Errorf("event %s: %w", ev.ID, err)
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	ve := cal.AddEvent(fmt.Sprintf("%s@deadlines", uuid.NewString()))
	ve.SetDtStampTime(now.UTC())
	ve.SetStartAt(start.UTC())
	ve.SetEndAt(end.UTC())
	ve.SetSummary(fmt.Sprintf("%s %d", item.Title, ev.Year))
	ve.SetLocation(ev.Place)
	ve.SetDescription(describe(item, ev))
	if ev.Link != "" {
		ve.SetURL(ev.Link)
	}

	return cal.Serialize(), nil
}

func describe(item *model.Item, ev *model.Event) string {
	desc := item.Description
	for _, entry := range ev.Timeline {
		desc += fmt.Sprintf("\n%s: %s (%s)", entry.Comment, entry.Deadline, ev.Timezone)
	}
	return desc
}

// Links holds external add-to-calendar URLs for one event.
type Links struct {
	Google  string `json:"google"`
	Outlook string `json:"outlook"`
	Yahoo   string `json:"yahoo"`
}

// BuildLinks produces Google/Outlook/Yahoo calendar URLs for an event.
func BuildLinks(item *model.Item, ev *model.Event) (Links, error) {
	start, end, err := eventRange(ev)
	if err != nil {
		return Links{}, fmt.Errorf("event %s: %w", ev.ID, err)
	}
	title := fmt.Sprintf("%s %d", item.Title, ev.Year)

	g := url.Values{}
	g.Set("action", "TEMPLATE")
	g.Set("text", title)
	g.Set("dates", start.UTC().Format(utcBasic)+"/"+end.UTC().Format(utcBasic))
	g.Set("details", item.Description)
	g.Set("location", ev.Place)

	o := url.Values{}
	o.Set("path", "/calendar/action/compose")
	o.Set("rru", "addevent")
	o.Set("subject", title)
	o.Set("startdt", start.UTC().Format(time.RFC3339))
	o.Set("enddt", end.UTC().Format(time.RFC3339))
	o.Set("body", item.Description)
	o.Set("location", ev.Place)

	y := url.Values{}
	y.Set("v", "60")
	y.Set("title", title)
	y.Set("st", start.UTC().Format(utcBasic))
	y.Set("et", end.UTC().Format(utcBasic))
	y.Set("desc", item.Description)
	y.Set("in_loc", ev.Place)

	return Links{
		Google:  "https://calendar.google.com/calendar/render?" + g.Encode(),
		Outlook: "https://outlook.live.com/calendar/0/action/compose?" + o.Encode(),
		Yahoo:   "https://calendar.yahoo.com/?" + y.Encode(),
	}, nil
}
