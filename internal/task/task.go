package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyText = errors.New("task text is required")

const dateLayout = "2006-01-02"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank orders priorities for sorting: low < medium < high.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

type Action string

const (
	ActionCreated        Action = "created"
	ActionCompleted      Action = "completed"
	ActionUncompleted    Action = "uncompleted"
	ActionModified       Action = "modified"
	ActionSubtaskAdded   Action = "subtask-added"
	ActionSubtaskToggled Action = "subtask-toggled"
	ActionSubtaskRemoved Action = "subtask-removed"
)

// HistoryEntry is one record in a task's append-only change log.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Details   string    `json:"details"`
}

type Subtask struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task is a single to-do item. All mutations go through its methods so
// the history log stays consistent with the tracked fields.
type Task struct {
	ID          string         `json:"id"`
	Text        string         `json:"text"`
	DueDate     string         `json:"dueDate"`
	URL         string         `json:"url,omitempty"`
	Client      string         `json:"client,omitempty"`
	Priority    Priority       `json:"priority"`
	Notes       string         `json:"notes,omitempty"`
	Completed   bool           `json:"completed"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Subtasks    []Subtask      `json:"subtasks"`
	History     []HistoryEntry `json:"history"`
}

// Fields carries the user-supplied values for a new task. Everything
// except Text is optional.
type Fields struct {
	Text     string   `json:"text"`
	DueDate  string   `json:"dueDate"`
	URL      string   `json:"url"`
	Client   string   `json:"client"`
	Priority Priority `json:"priority"`
	Notes    string   `json:"notes"`
}

// NormalizeURL prefixes https:// when the value lacks a scheme.
// Empty stays empty; anything already starting with http is kept as-is.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http") {
		return raw
	}
	return "https://" + raw
}

func localDate(t time.Time) string {
	return t.In(time.Local).Format(dateLayout)
}

// New constructs a task with a fresh id, a defaulted due date (today,
// local calendar) and a seeded "created" history entry.
func New(f Fields) (*Task, error) {
	text := strings.TrimSpace(f.Text)
	if text == "" {
		return nil, ErrEmptyText
	}

	now := time.Now()
	due := strings.TrimSpace(f.DueDate)
	if due == "" {
		due = localDate(now)
	}
	pri := f.Priority
	if !pri.Valid() {
		pri = PriorityMedium
	}

	t := &Task{
		ID:        uuid.NewString(),
		Text:      text,
		DueDate:   due,
		URL:       NormalizeURL(f.URL),
		Client:    strings.TrimSpace(f.Client),
		Priority:  pri,
		Notes:     f.Notes,
		CreatedAt: now,
		Subtasks:  []Subtask{},
		History:   []HistoryEntry{},
	}
	t.addHistory(ActionCreated, "Task created")
	return t, nil
}

func (t *Task) addHistory(action Action, details string) {
	t.History = append(t.History, HistoryEntry{
		Timestamp: time.Now(),
		Action:    action,
		Details:   details,
	})
}

// ToggleComplete flips completion, keeps CompletedAt in sync and logs
// the transition.
func (t *Task) ToggleComplete() {
	t.Completed = !t.Completed
	if t.Completed {
		now := time.Now()
		t.CompletedAt = &now
		t.addHistory(ActionCompleted, "Task marked as complete")
		return
	}
	t.CompletedAt = nil
	t.addHistory(ActionUncompleted, "Task marked as incomplete")
}

// Patch is a partial update; nil pointer means "no change".
type Patch struct {
	Text     *string   `json:"text,omitempty"`
	DueDate  *string   `json:"dueDate,omitempty"`
	URL      *string   `json:"url,omitempty"`
	Client   *string   `json:"client,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}

// Update applies the patch and, if anything actually changed, appends a
// single "modified" history entry listing every field change as
// "field: old → new". Unchanged values are ignored.
func (t *Task) Update(p Patch) bool {
	var changes []string
	record := func(field, old, next string) {
		changes = append(changes, fmt.Sprintf("%s: %s → %s", field, old, next))
	}

	if p.Text != nil && *p.Text != t.Text {
		record("text", t.Text, *p.Text)
		t.Text = *p.Text
	}
	if p.DueDate != nil && *p.DueDate != t.DueDate {
		record("dueDate", t.DueDate, *p.DueDate)
		t.DueDate = *p.DueDate
	}
	if p.URL != nil && *p.URL != t.URL {
		record("url", t.URL, *p.URL)
		t.URL = *p.URL
	}
	if p.Client != nil && *p.Client != t.Client {
		record("client", t.Client, *p.Client)
		t.Client = *p.Client
	}
	if p.Priority != nil && *p.Priority != t.Priority {
		record("priority", string(t.Priority), string(*p.Priority))
		t.Priority = *p.Priority
	}
	if p.Notes != nil && *p.Notes != t.Notes {
		record("notes", t.Notes, *p.Notes)
		t.Notes = *p.Notes
	}

	if len(changes) == 0 {
		return false
	}
	t.addHistory(ActionModified, "Changes: "+strings.Join(changes, ", "))
	return true
}

// AddSubtask appends a new subtask and logs it.
func (t *Task) AddSubtask(text string) Subtask {
	st := Subtask{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now(),
	}
	t.Subtasks = append(t.Subtasks, st)
	t.addHistory(ActionSubtaskAdded, "Added subtask: "+text)
	return st
}

// ToggleSubtask flips a subtask by id. Unknown ids are a no-op.
func (t *Task) ToggleSubtask(subtaskID string) bool {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID != subtaskID {
			continue
		}
		st := &t.Subtasks[i]
		st.Completed = !st.Completed
		state := "uncompleted"
		if st.Completed {
			state = "completed"
		}
		t.addHistory(ActionSubtaskToggled, fmt.Sprintf("Subtask %q %s", st.Text, state))
		return true
	}
	return false
}

// RemoveSubtask deletes a subtask by id. Unknown ids are a no-op.
func (t *Task) RemoveSubtask(subtaskID string) bool {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID != subtaskID {
			continue
		}
		removed := t.Subtasks[i]
		t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
		t.addHistory(ActionSubtaskRemoved, "Removed subtask: "+removed.Text)
		return true
	}
	return false
}

// StatusLabel is the tabular-export form of the completion flag.
func (t *Task) StatusLabel() string {
	if t.Completed {
		return "Completed"
	}
	return "Active"
}

// normalize repairs a task decoded from storage: nil slices become
// empty, an unknown priority falls back to medium, and a history that
// somehow arrived empty is re-seeded so the log invariant holds.
func normalize(t *Task) {
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	if t.History == nil {
		t.History = []HistoryEntry{}
	}
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}
	if len(t.History) == 0 {
		t.History = append(t.History, HistoryEntry{
			Timestamp: t.CreatedAt,
			Action:    ActionCreated,
			Details:   "Task created",
		})
	}
	if t.Completed && t.CompletedAt == nil {
		ts := t.CreatedAt
		t.CompletedAt = &ts
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
}

// Clone deep-copies a task so callers can hand copies across the
// manager boundary without sharing slices.
func (t *Task) Clone() Task {
	out := *t
	out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	out.History = append([]HistoryEntry(nil), t.History...)
	if out.Subtasks == nil {
		out.Subtasks = []Subtask{}
	}
	if out.History == nil {
		out.History = []HistoryEntry{}
	}
	if t.CompletedAt != nil {
		ts := *t.CompletedAt
		out.CompletedAt = &ts
	}
	return out
}
