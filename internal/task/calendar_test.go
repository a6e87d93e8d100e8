package task

import (
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthSummary(t *testing.T) {
	m := NewManager(NewMemoryStore(), log.New(io.Discard, "", 0))

	a, err := m.AddTask(Fields{Text: "first", DueDate: "2026-03-05"})
	require.NoError(t, err)
	_, err = m.AddTask(Fields{Text: "second", DueDate: "2026-03-05"})
	require.NoError(t, err)
	_, err = m.AddTask(Fields{Text: "elsewhere", DueDate: "2026-04-01"})
	require.NoError(t, err)
	m.ToggleTask(a.ID)

	days := m.MonthSummary(2026, time.March)
	require.Len(t, days, 31)
	assert.Equal(t, "2026-03-01", days[0].Date)
	assert.Equal(t, DaySummary{Date: "2026-03-05", Active: 1, Completed: 1}, days[4])
	assert.Equal(t, DaySummary{Date: "2026-03-06"}, days[5])
}

func TestMonthSummary_LeapFebruary(t *testing.T) {
	m := NewManager(NewMemoryStore(), log.New(io.Discard, "", 0))
	assert.Len(t, m.MonthSummary(2028, time.February), 29)
	assert.Len(t, m.MonthSummary(2026, time.February), 28)
}

func TestParseMonth(t *testing.T) {
	year, month, err := ParseMonth("2026-03")
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, time.March, month)

	_, _, err = ParseMonth("2026-3")
	assert.Error(t, err)
	_, _, err = ParseMonth("march")
	assert.Error(t, err)
}

func TestBuildTaskCalendarICS(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tk := Task{
		ID:      "abc-123",
		Text:    "ship release",
		DueDate: "2026-04-01",
		Notes:   "line one\nline two",
		URL:     "https://example.com",
	}

	ics, err := BuildTaskCalendarICS(tk, now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, ics, "UID:task-abc-123@taskdesk")
	assert.Contains(t, ics, "SUMMARY:ship release")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20260401")
	assert.Contains(t, ics, "DTEND;VALUE=DATE:20260402")
	assert.Contains(t, ics, "DESCRIPTION:line one\\nline two")
	assert.Contains(t, ics, "URL:https://example.com")
	assert.Contains(t, ics, "DTSTAMP:20260310T120000Z")
}

func TestBuildTaskCalendarICS_RequiresDueDate(t *testing.T) {
	_, err := BuildTaskCalendarICS(Task{ID: "x", Text: "no due"}, time.Now())
	assert.Error(t, err)
}

func TestBuildTaskCalendarICS_EscapesText(t *testing.T) {
	tk := Task{ID: "x", Text: "a;b,c", DueDate: "2026-04-01"}
	ics, err := BuildTaskCalendarICS(tk, time.Now())
	require.NoError(t, err)
	assert.Contains(t, ics, "SUMMARY:a\\;b\\,c")
}
