package task

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// ExportColumns fixes the tabular export column order.
var ExportColumns = []string{
	"Task ID", "Text", "Due Date", "URL", "Client", "Priority",
	"Notes", "Status", "Created At", "Subtasks", "Subtasks Status",
}

// ExportRecord flattens the task into one row keyed by ExportColumns.
// Subtasks are joined with "; ", statuses as "text: Completed|Active".
func (t *Task) ExportRecord() map[string]string {
	texts := make([]string, 0, len(t.Subtasks))
	statuses := make([]string, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		label := "Active"
		if st.Completed {
			label = "Completed"
		}
		texts = append(texts, st.Text)
		statuses = append(statuses, st.Text+": "+label)
	}

	return map[string]string{
		"Task ID":         t.ID,
		"Text":            t.Text,
		"Due Date":        t.DueDate,
		"URL":             t.URL,
		"Client":          t.Client,
		"Priority":        string(t.Priority),
		"Notes":           t.Notes,
		"Status":          t.StatusLabel(),
		"Created At":      t.CreatedAt.Format(time.RFC3339),
		"Subtasks":        strings.Join(texts, "; "),
		"Subtasks Status": strings.Join(statuses, "; "),
	}
}

// WriteCSV emits a header row plus one export record per task.
func WriteCSV(w io.Writer, tasks []Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return err
	}
	for i := range tasks {
		rec := tasks[i].ExportRecord()
		row := make([]string, len(ExportColumns))
		for j, col := range ExportColumns {
			row[j] = rec[col]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportResult is the aggregate outcome of a best-effort row import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ReadCSV rebuilds tasks from tabular rows. Rows without a Text value
// are skipped; every other field is applied best-effort. Completed rows
// go through ToggleComplete so the completion invariants hold on the
// reconstructed task.
func ReadCSV(r io.Reader) ([]Task, ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ImportResult{}, nil
	}
	if err != nil {
		return nil, ImportResult{}, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var tasks []Task
	var res ImportResult
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, res, err
		}

		t, ok := taskFromRow(field, row)
		if !ok {
			res.Skipped++
			continue
		}
		tasks = append(tasks, t)
		res.Imported++
	}
	return tasks, res, nil
}

func taskFromRow(field func([]string, string) string, row []string) (Task, bool) {
	t, err := New(Fields{
		Text:     field(row, "Text"),
		DueDate:  field(row, "Due Date"),
		URL:      field(row, "URL"),
		Client:   field(row, "Client"),
		Priority: Priority(field(row, "Priority")),
		Notes:    field(row, "Notes"),
	})
	if err != nil {
		return Task{}, false
	}

	if id := field(row, "Task ID"); id != "" {
		t.ID = id
	}
	if raw := field(row, "Created At"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			t.CreatedAt = ts
		}
	}

	completedStatuses := parseSubtaskStatuses(field(row, "Subtasks Status"))
	for _, text := range splitJoined(field(row, "Subtasks")) {
		st := t.AddSubtask(text)
		if completedStatuses[text] {
			t.ToggleSubtask(st.ID)
		}
	}

	if field(row, "Status") == "Completed" {
		t.ToggleComplete()
	}
	return *t, true
}

func splitJoined(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseSubtaskStatuses(s string) map[string]bool {
	out := map[string]bool{}
	for _, pair := range splitJoined(s) {
		text, status, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(status) == "Completed" {
			out[strings.TrimSpace(text)] = true
		}
	}
	return out
}

const exportVersion = "1.0"

// ExportEnvelope is the versioned document served by the bulk export
// endpoint and accepted back on import.
type ExportEnvelope struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Tasks     []Task    `json:"tasks"`
}

func NewExportEnvelope(tasks []Task, now time.Time) ExportEnvelope {
	if tasks == nil {
		tasks = []Task{}
	}
	return ExportEnvelope{
		Version:   exportVersion,
		Timestamp: now,
		Tasks:     tasks,
	}
}

// ExportFilename is the suggested attachment name for a bulk export.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("tasks_export_%s.json", now.Format("20060102"))
}
