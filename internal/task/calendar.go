package task

import (
	"fmt"
	"strings"
	"time"
)

const icsDateLayout = "20060102"

// DaySummary carries the per-day indicators behind a calendar cell.
type DaySummary struct {
	Date      string `json:"date"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
}

// MonthSummary returns one entry per day of the given month with the
// number of active and completed tasks due that day. The grid itself is
// drawn by the client; this is only the data under it.
func (m *Manager) MonthSummary(year int, month time.Month) []DaySummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	out := make([]DaySummary, daysInMonth)
	index := make(map[string]int, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.Local).Format(dateLayout)
		out[day-1] = DaySummary{Date: date}
		index[date] = day - 1
	}

	for _, t := range m.tasks {
		i, ok := index[strings.TrimSpace(t.DueDate)]
		if !ok {
			continue
		}
		if t.Completed {
			out[i].Completed++
		} else {
			out[i].Active++
		}
	}
	return out
}

// ParseMonth reads a YYYY-MM query value.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.ParseInLocation("2006-01", strings.TrimSpace(s), time.Local)
	if err != nil {
		return 0, 0, fmt.Errorf("month must be YYYY-MM")
	}
	return t.Year(), t.Month(), nil
}

// BuildTaskCalendarICS renders a task as a single all-day iCalendar
// event on its due date, so a task can be dropped into an external
// calendar.
func BuildTaskCalendarICS(t Task, now time.Time) (string, error) {
	due, ok := parseLocalDate(t.DueDate)
	if !ok {
		return "", fmt.Errorf("task due date must be YYYY-MM-DD")
	}
	end := due.AddDate(0, 0, 1)

	summary := strings.TrimSpace(t.Text)
	if summary == "" {
		summary = "Task"
	}

	uid := fmt.Sprintf("task-%s@taskdesk", strings.TrimSpace(t.ID))
	if strings.TrimSpace(t.ID) == "" {
		uid = fmt.Sprintf("task-export-%d@taskdesk", now.UnixNano())
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Taskdesk//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:" + escapeICSText(uid),
		"DTSTAMP:" + now.UTC().Format("20060102T150405Z"),
		"SUMMARY:" + escapeICSText(summary),
		"DTSTART;VALUE=DATE:" + due.Format(icsDateLayout),
		"DTEND;VALUE=DATE:" + end.Format(icsDateLayout),
	}
	if notes := strings.TrimSpace(t.Notes); notes != "" {
		lines = append(lines, "DESCRIPTION:"+escapeICSText(notes))
	}
	if url := strings.TrimSpace(t.URL); url != "" {
		lines = append(lines, "URL:"+escapeICSText(url))
	}
	lines = append(lines, "END:VEVENT", "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
