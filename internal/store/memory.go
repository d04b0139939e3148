package store

import (
	"context"
	"sync"

	"github.com/Zachdehooge/damage-map/internal/report"
)

// Memory keeps reports in process. Used by default and in tests.
type Memory struct {
	mu      sync.Mutex
	reports []report.Report
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Add(_ context.Context, r report.Report) (report.Report, error) {
	r = stamp(r)
	m.mu.Lock()
	m.reports = append(m.reports, r)
	m.mu.Unlock()
	return r, nil
}

func (m *Memory) SetDamage(_ context.Context, userID, damage string) (report.Report, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	newest := -1
	for i, r := range m.reports {
		if !r.Pending || r.UserID != userID {
			continue
		}
		if newest < 0 || !r.CreatedAt.Before(m.reports[newest].CreatedAt) {
			newest = i
		}
	}
	if newest < 0 {
		return report.Report{}, false, nil
	}
	m.reports[newest].Damage = damage
	m.reports[newest].Pending = false
	return m.reports[newest], true, nil
}

func (m *Memory) List(_ context.Context) ([]report.Report, error) {
	m.mu.Lock()
	out := make([]report.Report, 0, len(m.reports))
	for _, r := range m.reports {
		if !r.Pending {
			out = append(out, r)
		}
	}
	m.mu.Unlock()
	sortByCreated(out)
	return out, nil
}

func (m *Memory) Close(context.Context) error { return nil }
