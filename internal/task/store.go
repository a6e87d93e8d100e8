package task

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the collection as two flat JSON documents under a
// data directory: tasks.json (array of tasks) and clients.json (array
// of client names). Last write wins; there is no partial update.
type FileStore struct {
	mu          sync.Mutex
	tasksPath   string
	clientsPath string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{
		tasksPath:   filepath.Join(dataDir, "tasks.json"),
		clientsPath: filepath.Join(dataDir, "clients.json"),
	}, nil
}

func (s *FileStore) Load() ([]Task, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []Task
	if err := readJSONFile(s.tasksPath, &tasks); err != nil {
		return nil, nil, err
	}
	var clients []string
	if err := readJSONFile(s.clientsPath, &clients); err != nil {
		return nil, nil, err
	}
	return tasks, clients, nil
}

func (s *FileStore) Save(tasks []Task, clients []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tasks == nil {
		tasks = []Task{}
	}
	if clients == nil {
		clients = []string{}
	}
	if err := writeJSONFile(s.tasksPath, tasks); err != nil {
		return err
	}
	return writeJSONFile(s.clientsPath, clients)
}

func readJSONFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(b, out)
}

func writeJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// MemoryStore is an in-memory Store for tests. FailLoad/FailSave arm
// the corresponding failure path.
type MemoryStore struct {
	mu       sync.Mutex
	tasks    []Task
	clients  []string
	saves    int
	FailLoad error
	FailSave error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]Task, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailLoad != nil {
		return nil, nil, s.FailLoad
	}
	return append([]Task(nil), s.tasks...), append([]string(nil), s.clients...), nil
}

func (s *MemoryStore) Save(tasks []Task, clients []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSave != nil {
		return s.FailSave
	}
	s.tasks = append([]Task(nil), tasks...)
	s.clients = append([]string(nil), clients...)
	s.saves++
	return nil
}

// Seed preloads the store before a manager is built on top of it.
func (s *MemoryStore) Seed(tasks []Task, clients []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]Task(nil), tasks...)
	s.clients = append([]string(nil), clients...)
}

// Saves reports how many successful writes the store has seen.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Stored returns the last persisted state.
func (s *MemoryStore) Stored() ([]Task, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Task(nil), s.tasks...), append([]string(nil), s.clients...)
}
