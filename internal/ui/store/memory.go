package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/dashboard"
)

type pageEntry struct {
	page    *dashboard.Page
	expires time.Time
}

type reportEntry struct {
	report  *client.Report
	expires time.Time
}

// Memory implements Store with in-process maps
type Memory struct {
	mu         sync.RWMutex
	pages      map[string]pageEntry
	reports    map[string]reportEntry
	sessionTTL time.Duration
	reportTTL  time.Duration
	now        func() time.Time
}

// NewMemory creates an empty memory store. Entries expire after their ttl; Janitor removes them.
func NewMemory(sessionTTL, reportTTL time.Duration) *Memory {
	return &Memory{
		pages:      make(map[string]pageEntry),
		reports:    make(map[string]reportEntry),
		sessionTTL: sessionTTL,
		reportTTL:  reportTTL,
		now:        time.Now,
	}
}

// GetPage returns a copy of the page saved for the session
func (m *Memory) GetPage(ctx context.Context, sessionID string) (*dashboard.Page, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.pages[sessionID]
	if !ok || !m.now().Before(entry.expires) {
		return nil, ErrNotFound
	}
	return entry.page.Clone(), nil
}

// SavePage stores a copy of page for the session and extends its lifetime
func (m *Memory) SavePage(ctx context.Context, sessionID string, page *dashboard.Page) error {
	if sessionID == "" {
		return fmt.Errorf("session id is empty")
	}
	if page == nil {
		return fmt.Errorf("page is nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pages[sessionID] = pageEntry{page: page.Clone(), expires: m.now().Add(m.sessionTTL)}
	return nil
}

func (m *Memory) PutReport(ctx context.Context, r *client.Report) (string, error) {
	if r == nil {
		return "", fmt.Errorf("report is nil")
	}
	token := NewToken()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.reports[token] = reportEntry{report: r, expires: m.now().Add(m.reportTTL)}
	return token, nil
}

func (m *Memory) TakeReport(ctx context.Context, token string) (*client.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.reports[token]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.reports, token)

	if !m.now().Before(entry.expires) {
		return nil, ErrNotFound
	}
	return entry.report, nil
}

// Evict removes expired pages and reports and returns how many entries were removed
func (m *Memory) Evict() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, entry := range m.pages {
		if !now.Before(entry.expires) {
			delete(m.pages, id)
			removed++
		}
	}
	for token, entry := range m.reports {
		if !now.Before(entry.expires) {
			delete(m.reports, token)
			removed++
		}
	}
	return removed
}

// Janitor calls Evict every interval until ctx is cancelled
func (m *Memory) Janitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Evict()
		}
	}
}

func (m *Memory) Close() error {
	return nil
}
