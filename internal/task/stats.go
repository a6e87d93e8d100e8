package task

import "time"

// Statistics are the headline counters shown above the task list.
type Statistics struct {
	Active         int `json:"active"`
	CompletedToday int `json:"completedToday"`
	DueToday       int `json:"dueToday"`
}

// Stats computes the counters against the current local day.
//
// CompletedToday deliberately keeps the existence-check semantics of
// the browser build: a task counts when it is currently completed AND
// its history holds at least one "completed" entry dated today, once
// per task no matter how many times it was toggled. A task finished
// yesterday and still complete today therefore does not count.
func (m *Manager) Stats() Statistics {
	return m.statsAt(time.Now())
}

func (m *Manager) statsAt(now time.Time) Statistics {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := localDate(now)
	var s Statistics
	for _, t := range m.tasks {
		if !t.Completed {
			s.Active++
			if t.DueDate == today {
				s.DueToday++
			}
			continue
		}
		if hasCompletedEntryOn(t, today) {
			s.CompletedToday++
		}
	}
	return s
}

func hasCompletedEntryOn(t *Task, day string) bool {
	for _, h := range t.History {
		if h.Action == ActionCompleted && localDate(h.Timestamp) == day {
			return true
		}
	}
	return false
}

// ClientStat summarizes one client's slice of the collection.
type ClientStat struct {
	Client    string `json:"client"`
	Total     int    `json:"total"`
	Active    int    `json:"active"`
	Completed int    `json:"completed"`
}

// ClientStats reports per-client totals in registry order.
func (m *Manager) ClientStats() []ClientStat {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ClientStat, 0, len(m.clients))
	for _, c := range m.clients {
		stat := ClientStat{Client: c}
		for _, t := range m.tasks {
			if t.Client != c {
				continue
			}
			stat.Total++
			if t.Completed {
				stat.Completed++
			} else {
				stat.Active++
			}
		}
		out = append(out, stat)
	}
	return out
}

// DayCount is one point of the completion trend series.
type DayCount struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

// CompletionSeries counts tasks first completed on each of the trailing
// `days` local days, oldest first. Only the first "completed" history
// entry of a task places it on the series, matching the trend chart in
// the browser build.
func (m *Manager) CompletionSeries(days int, now time.Time) []DayCount {
	if days <= 0 {
		days = 7
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	series := make([]DayCount, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := localDate(now.AddDate(0, 0, i-days+1))
		series[i] = DayCount{Date: day}
		index[day] = i
	}

	for _, t := range m.tasks {
		for _, h := range t.History {
			if h.Action != ActionCompleted {
				continue
			}
			if i, ok := index[localDate(h.Timestamp)]; ok {
				series[i].Completed++
			}
			break
		}
	}
	return series
}
