package store

import (
	"context"
	"maps"
	"sync"
)

// Memory — бэкенд в памяти. Используется в тестах и при STORE_BACKEND=memory.
type Memory struct {
	mu      sync.RWMutex
	data    map[string][]byte
	commits []Commit
}

// NewMemory создаёт пустой бэкенд в памяти.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Load возвращает значение ключа.
func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Head возвращает последний коммит.
func (m *Memory) Head(_ context.Context) (Head, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.commits) == 0 {
		return Head{}, nil
	}
	last := m.commits[len(m.commits)-1]
	return Head{Height: last.Height, Digest: last.Digest}, nil
}

// Commit применяет записи и добавляет коммит в журнал.
func (m *Memory) Commit(_ context.Context, c *Commit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range c.Writes {
		m.data[w.Key] = w.Value
	}
	m.commits = append(m.commits, *c)
	return nil
}

// Snapshot возвращает копию состояния (ключ → закодированное значение).
func (m *Memory) Snapshot() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.data)
}

// Commits возвращает копию журнала коммитов.
func (m *Memory) Commits() []Commit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Commit(nil), m.commits...)
}
