package task

import (
	"sort"
	"strings"
	"time"
)

type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusActive    StatusFilter = "active"
	StatusCompleted StatusFilter = "completed"
)

// Filter selects tasks from the collection without mutating it.
//   - Search: case-insensitive substring over text, client and notes.
//   - Status: all | active | completed (anything else reads as all).
//   - Date: exact local calendar-date match against the due date.
type Filter struct {
	Search string
	Status StatusFilter
	Date   string
}

func (m *Manager) Filtered(f Filter) []Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	wantDate, haveDate := parseLocalDate(f.Date)

	out := []Task{}
	for _, t := range m.tasks {
		if search != "" {
			if !strings.Contains(strings.ToLower(t.Text), search) &&
				!strings.Contains(strings.ToLower(t.Client), search) &&
				!strings.Contains(strings.ToLower(t.Notes), search) {
				continue
			}
		}

		switch f.Status {
		case StatusActive:
			if t.Completed {
				continue
			}
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		}

		if haveDate {
			due, ok := parseLocalDate(t.DueDate)
			if !ok || !due.Equal(wantDate) {
				continue
			}
		}

		out = append(out, t.Clone())
	}
	return out
}

// parseLocalDate reads a YYYY-MM-DD value as midnight local time, so
// date comparisons are calendar equality rather than timestamp
// equality.
func parseLocalDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortSpec splits a "field-direction" value (e.g. "priority-desc")
// the way the UI's sort selector encodes it.
func ParseSortSpec(spec string) (SortField, SortDirection, bool) {
	field, dir, found := strings.Cut(strings.TrimSpace(spec), "-")
	if !found {
		return "", "", false
	}
	f := SortField(field)
	d := SortDirection(dir)
	switch f {
	case SortByCreatedAt, SortByDueDate, SortByPriority:
	default:
		return "", "", false
	}
	if d != SortAsc && d != SortDesc {
		return "", "", false
	}
	return f, d, true
}

// Sort orders a task slice by the given field. The sort is stable, so
// equal keys keep their original relative order. The input slice is
// returned sorted in place.
func Sort(tasks []Task, field SortField, dir SortDirection) []Task {
	cmp := func(a, b Task) int {
		switch field {
		case SortByDueDate:
			da, _ := parseLocalDate(a.DueDate)
			db, _ := parseLocalDate(b.DueDate)
			return da.Compare(db)
		case SortByPriority:
			return a.Priority.Rank() - b.Priority.Rank()
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		c := cmp(tasks[i], tasks[j])
		if dir == SortDesc {
			return c > 0
		}
		return c < 0
	})
	return tasks
}
