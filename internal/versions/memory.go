package versions

import (
	"context"
	"sync"
)

// Memory is a process-local Store.
type Memory struct {
	mu       sync.Mutex
	locks    map[OutputKey]*sync.Mutex
	versions map[OutputKey]Version
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		locks:    make(map[OutputKey]*sync.Mutex),
		versions: make(map[OutputKey]Version),
	}
}

func (m *Memory) lock(key OutputKey) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

// Reserve implements Store.
func (m *Memory) Reserve(ctx context.Context, key OutputKey, up bool, note string) (Version, error) {
	if err := ctx.Err(); err != nil {
		return Version{}, err
	}
	l := m.lock(key)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	latest := m.versions[key].Number
	m.mu.Unlock()

	v := Version{Key: key, Number: next(latest, up), Note: note}

	m.mu.Lock()
	m.versions[key] = v
	m.mu.Unlock()
	return v, nil
}

// Latest returns the most recent reservation for key.
func (m *Memory) Latest(key OutputKey) (Version, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[key]
	return v, ok
}
