package task

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Handler exposes the collection over HTTP. Routing follows the
// tail-split convention: the mux hands over everything under
// /api/tasks/ and the handler picks the subresource apart itself.
//
// DefaultSort and CompletionWindow come from the server config and are
// set at wiring time; zero values fall back to unsorted lists and a
// 7-day completion window.
type Handler struct {
	manager *Manager

	DefaultSort      string
	CompletionWindow int
}

func NewHandler(m *Manager) *Handler {
	return &Handler{manager: m}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

// /api/tasks  (collection)
func (h *Handler) TasksRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		tasks := h.manager.Filtered(Filter{
			Search: q.Get("q"),
			Status: StatusFilter(q.Get("status")),
			Date:   q.Get("date"),
		})
		spec := q.Get("sort")
		if spec == "" {
			spec = h.DefaultSort
		}
		if field, dir, ok := ParseSortSpec(spec); ok {
			Sort(tasks, field, dir)
		}
		writeJSON(w, 200, tasks)
		return

	case http.MethodPost:
		var in Fields
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		t, err := h.manager.AddTask(in)
		if err != nil {
			writeErr(w, 400, err.Error())
			return
		}
		writeJSON(w, 201, t)
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/tasks/{id}[/...] plus the csv import/export tails.
func (h *Handler) TasksSub(w http.ResponseWriter, r *http.Request) {
	tail := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	tail = strings.Trim(tail, "/")
	if tail == "" {
		writeErr(w, 404, "not found")
		return
	}

	switch tail {
	case "export.csv":
		h.exportCSV(w, r)
		return
	case "import.csv":
		h.importCSV(w, r)
		return
	case "completed":
		if r.Method != http.MethodDelete {
			writeErr(w, 405, "method not allowed")
			return
		}
		removed := h.manager.ClearCompleted()
		writeJSON(w, 200, map[string]any{"ok": true, "removed": removed})
		return
	}

	parts := strings.Split(tail, "/")
	id := parts[0]

	if len(parts) == 1 {
		h.taskByID(w, r, id)
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "toggle":
			if r.Method != http.MethodPost {
				writeErr(w, 405, "method not allowed")
				return
			}
			t, ok := h.manager.ToggleTask(id)
			if !ok {
				writeErr(w, 404, "not found")
				return
			}
			writeJSON(w, 200, t)
			return

		case "subtasks":
			if r.Method != http.MethodPost {
				writeErr(w, 405, "method not allowed")
				return
			}
			var in struct {
				Text string `json:"text"`
			}
			if err := decodeJSON(r, &in); err != nil {
				writeErr(w, 400, "bad json")
				return
			}
			st, ok := h.manager.AddSubtask(id, in.Text)
			if !ok {
				writeErr(w, 404, "not found")
				return
			}
			writeJSON(w, 201, st)
			return

		case "calendar.ics":
			if r.Method != http.MethodGet {
				writeErr(w, 405, "method not allowed")
				return
			}
			t, ok := h.manager.Get(id)
			if !ok {
				writeErr(w, 404, "not found")
				return
			}
			ics, err := BuildTaskCalendarICS(t, time.Now())
			if err != nil {
				writeErr(w, 400, err.Error())
				return
			}
			w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="task.ics"`)
			_, _ = w.Write([]byte(ics))
			return
		}
	}

	if len(parts) == 3 && parts[1] == "subtasks" {
		subID := parts[2]
		switch r.Method {
		case http.MethodDelete:
			if !h.manager.RemoveSubtask(id, subID) {
				writeErr(w, 404, "not found")
				return
			}
			writeJSON(w, 200, map[string]any{"ok": true})
			return
		default:
			writeErr(w, 405, "method not allowed")
			return
		}
	}

	if len(parts) == 4 && parts[1] == "subtasks" && parts[3] == "toggle" {
		if r.Method != http.MethodPost {
			writeErr(w, 405, "method not allowed")
			return
		}
		if !h.manager.ToggleSubtask(id, parts[2]) {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true})
		return
	}

	writeErr(w, 404, "not found")
}

func (h *Handler) taskByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		t, ok := h.manager.Get(id)
		if !ok {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 200, t)
		return

	case http.MethodPatch:
		var p Patch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		t, ok := h.manager.UpdateTask(id, p)
		if !ok {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 200, t)
		return

	case http.MethodDelete:
		if !h.manager.DeleteTask(id) {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true})
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tasks_export.csv"`)
	if err := WriteCSV(w, h.manager.Tasks()); err != nil {
		// Headers are gone at this point; nothing useful left to send.
		return
	}
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	tasks, res, err := ReadCSV(r.Body)
	if err != nil {
		writeErr(w, 400, "bad csv: "+err.Error())
		return
	}
	h.manager.Append(tasks)
	writeJSON(w, 200, res)
}

// /api/clients  (registry)
func (h *Handler) ClientsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, 200, h.manager.Clients())
		return

	case http.MethodPost:
		var in struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if !h.manager.AddClient(in.Name) {
			writeErr(w, 400, "client name is empty or already registered")
			return
		}
		writeJSON(w, 201, map[string]any{"ok": true, "name": strings.TrimSpace(in.Name)})
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/clients/{name}
func (h *Handler) ClientsSub(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/clients/"), "/")
	if name == "" {
		writeErr(w, 404, "not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var in struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, 400, "bad json")
			return
		}
		if !h.manager.RenameClient(name, in.Name) {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true})
		return

	case http.MethodDelete:
		if !h.manager.DeleteClient(name) {
			writeErr(w, 404, "not found")
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true})
		return

	default:
		writeErr(w, 405, "method not allowed")
		return
	}
}

// /api/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, h.manager.Stats())
}

// /api/stats/clients
func (h *Handler) StatsClients(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, h.manager.ClientStats())
}

// /api/stats/completions?days=N
func (h *Handler) StatsCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	days := h.CompletionWindow
	if days < 1 || days > 366 {
		days = 7
	}
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 366 {
			writeErr(w, 400, "days must be between 1 and 366")
			return
		}
		days = n
	}
	writeJSON(w, 200, h.manager.CompletionSeries(days, time.Now()))
}

// /api/calendar?month=YYYY-MM
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	raw := r.URL.Query().Get("month")
	if raw == "" {
		now := time.Now()
		raw = now.Format("2006-01")
	}
	year, month, err := ParseMonth(raw)
	if err != nil {
		writeErr(w, 400, err.Error())
		return
	}
	writeJSON(w, 200, map[string]any{
		"month": raw,
		"days":  h.manager.MonthSummary(year, month),
	})
}

// POST /api/save-tasks overwrites the whole collection.
func (h *Handler) SaveTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	var in struct {
		Tasks []Task `json:"tasks"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	h.manager.ReplaceAll(in.Tasks)
	writeJSON(w, 200, map[string]any{"message": "Tasks saved successfully"})
}

// GET /api/load-tasks returns the stored collection, empty list if
// none.
func (h *Handler) LoadTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	writeJSON(w, 200, map[string]any{"tasks": h.manager.Tasks()})
}

// GET /api/export-tasks serves the versioned envelope as a download.
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, 405, "method not allowed")
		return
	}
	now := time.Now()
	env := NewExportEnvelope(h.manager.Tasks(), now)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename(now)+`"`)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(env)
}

// POST /api/import-tasks accepts {tasks: [...]} or a full export
// envelope; either way the task list replaces the collection.
func (h *Handler) ImportTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, 405, "method not allowed")
		return
	}
	var in struct {
		Tasks []Task `json:"tasks"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, 400, "bad json")
		return
	}
	h.manager.ReplaceAll(in.Tasks)
	writeJSON(w, 200, map[string]any{"message": "Tasks imported successfully"})
}
