package task

import (
	"log"
	"slices"
	"strings"
	"sync"
)

// Store is the injected persistence pair the manager writes through
// after every mutation. Load failures leave the collection empty; save
// failures are logged and never roll back the in-memory change.
type Store interface {
	Load() (tasks []Task, clients []string, err error)
	Save(tasks []Task, clients []string) error
}

// Manager owns the task list and the client tag registry. All access is
// serialized through one mutex; every mutating call persists the whole
// collection before returning.
type Manager struct {
	mu      sync.Mutex
	store   Store
	logger  *log.Logger
	tasks   []*Task
	clients []string
}

func NewManager(store Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	m := &Manager{store: store, logger: logger}
	if store == nil {
		return m
	}

	tasks, clients, err := store.Load()
	if err != nil {
		logger.Printf("load collection: %v (starting empty)", err)
		return m
	}
	for i := range tasks {
		t := tasks[i].Clone()
		normalize(&t)
		m.tasks = append(m.tasks, &t)
	}
	for _, c := range clients {
		c = strings.TrimSpace(c)
		if c != "" && !slices.Contains(m.clients, c) {
			m.clients = append(m.clients, c)
		}
	}
	return m
}

func (m *Manager) persistLocked() {
	if m.store == nil {
		return
	}
	if err := m.store.Save(m.snapshotLocked(), append([]string(nil), m.clients...)); err != nil {
		m.logger.Printf("save collection: %v", err)
	}
}

func (m *Manager) snapshotLocked() []Task {
	out := make([]Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		out = append(out, t.Clone())
	}
	return out
}

func (m *Manager) findLocked(id string) *Task {
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// AddTask constructs a task, appends it to the collection and registers
// an unseen client tag. Only empty text is an error.
func (m *Manager) AddTask(f Fields) (Task, error) {
	t, err := New(f)
	if err != nil {
		return Task{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append(m.tasks, t)
	if t.Client != "" && !slices.Contains(m.clients, t.Client) {
		m.clients = append(m.clients, t.Client)
	}
	m.persistLocked()
	return t.Clone(), nil
}

// DeleteTask removes a task by id. A missing id is a no-op, not an
// error.
func (m *Manager) DeleteTask(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.tasks {
		if t.ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			m.persistLocked()
			return true
		}
	}
	return false
}

func (m *Manager) ToggleTask(id string) (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findLocked(id)
	if t == nil {
		return Task{}, false
	}
	t.ToggleComplete()
	m.persistLocked()
	return t.Clone(), true
}

func (m *Manager) UpdateTask(id string, p Patch) (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findLocked(id)
	if t == nil {
		return Task{}, false
	}
	if t.Update(p) {
		if t.Client != "" && !slices.Contains(m.clients, t.Client) {
			m.clients = append(m.clients, t.Client)
		}
		m.persistLocked()
	}
	return t.Clone(), true
}

func (m *Manager) AddSubtask(taskID, text string) (Subtask, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Subtask{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findLocked(taskID)
	if t == nil {
		return Subtask{}, false
	}
	st := t.AddSubtask(text)
	m.persistLocked()
	return st, true
}

func (m *Manager) ToggleSubtask(taskID, subtaskID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findLocked(taskID)
	if t == nil || !t.ToggleSubtask(subtaskID) {
		return false
	}
	m.persistLocked()
	return true
}

func (m *Manager) RemoveSubtask(taskID, subtaskID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findLocked(taskID)
	if t == nil || !t.RemoveSubtask(subtaskID) {
		return false
	}
	m.persistLocked()
	return true
}

// ClearCompleted drops every completed task and reports how many went.
func (m *Manager) ClearCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.tasks[:0]
	removed := 0
	for _, t := range m.tasks {
		if t.Completed {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.tasks = kept
	if removed > 0 {
		m.persistLocked()
	}
	return removed
}

// Tasks returns the collection in insertion order as copies.
func (m *Manager) Tasks() []Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) Get(id string) (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.findLocked(id)
	if t == nil {
		return Task{}, false
	}
	return t.Clone(), true
}

func (m *Manager) Clients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.clients...)
}

// AddClient registers a client tag; duplicates and blanks are ignored.
func (m *Manager) AddClient(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if slices.Contains(m.clients, name) {
		return false
	}
	m.clients = append(m.clients, name)
	m.persistLocked()
	return true
}

// RenameClient renames the registry entry and cascades to every task
// carrying the old tag.
func (m *Manager) RenameClient(oldName, newName string) bool {
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == oldName {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.Index(m.clients, oldName)
	if idx < 0 {
		return false
	}
	m.clients[idx] = newName
	for _, t := range m.tasks {
		if t.Client == oldName {
			t.Client = newName
		}
	}
	m.persistLocked()
	return true
}

// DeleteClient removes the registry entry and clears the tag on every
// task that carried it.
func (m *Manager) DeleteClient(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.Index(m.clients, name)
	if idx < 0 {
		return false
	}
	m.clients = append(m.clients[:idx], m.clients[idx+1:]...)
	for _, t := range m.tasks {
		if t.Client == name {
			t.Client = ""
		}
	}
	m.persistLocked()
	return true
}

// ReplaceAll swaps in a whole new task list (bulk save/import). The
// client registry keeps its existing entries and absorbs any tag seen
// on the incoming tasks.
func (m *Manager) ReplaceAll(tasks []Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make([]*Task, 0, len(tasks))
	for i := range tasks {
		t := tasks[i].Clone()
		normalize(&t)
		next = append(next, &t)
		if t.Client != "" && !slices.Contains(m.clients, t.Client) {
			m.clients = append(m.clients, t.Client)
		}
	}
	m.tasks = next
	m.persistLocked()
}

// Append adds already-built tasks to the end of the collection (row
// import). Clients are absorbed the same way as ReplaceAll.
func (m *Manager) Append(tasks []Task) {
	if len(tasks) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range tasks {
		t := tasks[i].Clone()
		normalize(&t)
		m.tasks = append(m.tasks, &t)
		if t.Client != "" && !slices.Contains(m.clients, t.Client) {
			m.clients = append(m.clients, t.Client)
		}
	}
	m.persistLocked()
}
