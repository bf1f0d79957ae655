package store

import (
	"context"
	"sync"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository and shortener.AccessLog.
type MemoryStore struct {
	mu       sync.RWMutex
	links    map[shortener.Code]shortener.ShortLink
	accesses map[shortener.Code][]shortener.AccessLogEntry
	events   map[string]struct{}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:    make(map[shortener.Code]shortener.ShortLink),
		accesses: make(map[shortener.Code][]shortener.AccessLogEntry),
		events:   make(map[string]struct{}),
	}
}

func (m *MemoryStore) Save(_ context.Context, link *shortener.ShortLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Code]; ok {
		return nil
	}

	m.links[link.Code] = *link

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

func (m *MemoryStore) Append(_ context.Context, entry *shortener.AccessLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.EventID != "" {
		if _, seen := m.events[entry.EventID]; seen {
			return nil
		}

		m.events[entry.EventID] = struct{}{}
	}

	m.accesses[entry.Code] = append(m.accesses[entry.Code], *entry)

	return nil
}

func (m *MemoryStore) ListByCode(_ context.Context, code shortener.Code) ([]shortener.AccessLogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]shortener.AccessLogEntry, len(m.accesses[code]))
	copy(entries, m.accesses[code])

	return entries, nil
}

var (
	_ shortener.Repository = (*MemoryStore)(nil)
	_ shortener.AccessLog  = (*MemoryStore)(nil)
)
