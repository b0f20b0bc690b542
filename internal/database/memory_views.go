package database

import (
	"sync"
	"time"

	"github.com/go-while/go-paradigmas/internal/models"
)

// MemoryViews is a ViewStore that keeps counters in process memory
type MemoryViews struct {
	mux    sync.RWMutex
	views  map[string]*models.PageView
	closed bool
}

func NewMemoryViews() *MemoryViews {
	return &MemoryViews{views: make(map[string]*models.PageView)}
}

func (m *MemoryViews) RecordHit(path string) {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.closed {
		return
	}
	pv, ok := m.views[path]
	if !ok {
		pv = &models.PageView{Path: path}
		m.views[path] = pv
	}
	pv.Views++
	pv.LastSeen = time.Now().UTC()
}

func (m *MemoryViews) PageViews() ([]*models.PageView, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	cp := make(map[string]*models.PageView, len(m.views))
	for path, pv := range m.views {
		v := *pv
		cp[path] = &v
	}
	return sortPageViews(cp), nil
}

func (m *MemoryViews) TotalViews() (int64, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	var total int64
	for _, pv := range m.views {
		total += pv.Views
	}
	return total, nil
}

func (m *MemoryViews) Flush() error { return nil }

func (m *MemoryViews) Close() error {
	m.mux.Lock()
	m.closed = true
	m.mux.Unlock()
	return nil
}
