package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-atom-club/deadlines/internal/model"
)

func exportFixture() (*model.Item, *model.Event) {
	item := &model.Item{
		Title:       "FOSDEM",
		Description: "Open source meeting",
		Category:    model.CategoryConference,
	}
	event := &model.Event{
		Year:     2026,
		ID:       "fosdem26",
		Link:     "https://fosdem.org/2026/",
		Timezone: "Europe/Brussels",
		Place:    "Brussels, Belgium",
		Timeline: []model.TimelineEntry{
			{Deadline: "2025-12-01T23:59:00", Comment: "CFP closes"},
			{Deadline: "2026-01-15T23:59:00", Comment: "Lightning talks due"},
		},
	}
	return item, event
}

func TestExportSpansTimeline(t *testing.T) {
	item, event := exportFixture()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload, err := Export(item, event, now)
	require.NoError(t, err)

	assert.Contains(t, payload, "BEGIN:VCALENDAR")
	assert.Contains(t, payload, "SUMMARY:FOSDEM 2026")
	// Brussels is UTC+1 in December: 23:59 local is 22:59Z.
	assert.Contains(t, payload, "DTSTART:20251201T225900Z")
	assert.Contains(t, payload, "DTEND:20260115T225900Z")
	assert.Contains(t, payload, "URL:https://fosdem.org/2026/")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(payload), "END:VCALENDAR"))
}

func TestExportSkipsMalformedEntries(t *testing.T) {
	item, event := exportFixture()
	event.Timeline = append([]model.TimelineEntry{{Deadline: "garbage", Comment: "bad"}}, event.Timeline...)
	_, err := Export(item, event, time.Now())
	assert.NoError(t, err)
}

func TestExportFailsWithoutResolvableEntries(t *testing.T) {
	item, event := exportFixture()
	event.Timeline = []model.TimelineEntry{{Deadline: "garbage"}}
	_, err := Export(item, event, time.Now())
	assert.Error(t, err)
}

func TestBuildLinks(t *testing.T) {
	item, event := exportFixture()
	links, err := BuildLinks(item, event)
	require.NoError(t, err)

	assert.Contains(t, links.Google, "calendar.google.com/calendar/render")
	assert.Contains(t, links.Google, "20251201T225900Z%2F20260115T225900Z")
	assert.Contains(t, links.Outlook, "outlook.live.com")
	assert.Contains(t, links.Outlook, "rru=addevent")
	assert.Contains(t, links.Yahoo, "calendar.yahoo.com")
	assert.Contains(t, links.Yahoo, "st=20251201T225900Z")
}
