package incidents

import (
	"context"
	"time"

	"github.com/bissquit/incident-tracker/internal/domain"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	incidents  map[string]domain.Incident
	order      []string
	lastFilter ListFilter
	countCalls int
	err        error
	now        time.Time
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		incidents: make(map[string]domain.Incident),
		now:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockRepository) Create(_ context.Context, incident *domain.Incident) error {
	if m.err != nil {
		return m.err
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = m.now
	}
	incident.UpdatedAt = incident.CreatedAt
	m.incidents[incident.ID] = *incident
	m.order = append(m.order, incident.ID)
	return nil
}

func (m *mockRepository) Get(_ context.Context, id string) (*domain.Incident, error) {
	if m.err != nil {
		return nil, m.err
	}
	inc, ok := m.incidents[id]
	if !ok {
		return nil, ErrIncidentNotFound
	}
	return &inc, nil
}

func (m *mockRepository) List(_ context.Context, filter ListFilter) ([]domain.Incident, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Incident, 0)
	for i, id := range m.order {
		if i < filter.Offset {
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, m.incidents[id])
	}
	return out, nil
}

func (m *mockRepository) Count(_ context.Context, _ ListFilter) (int, error) {
	m.countCalls++
	if m.err != nil {
		return 0, m.err
	}
	return len(m.incidents), nil
}

func (m *mockRepository) Update(_ context.Context, incident *domain.Incident) error {
	if m.err != nil {
		return m.err
	}
	existing, ok := m.incidents[incident.ID]
	if !ok {
		return ErrIncidentNotFound
	}
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = existing.CreatedAt
	}
	incident.UpdatedAt = m.now.Add(time.Hour)
	m.incidents[incident.ID] = *incident
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.incidents[id]; !ok {
		return 0, nil
	}
	delete(m.incidents, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (m *mockRepository) Ping(_ context.Context) error {
	return m.err
}

func (m *mockRepository) seed(n int, severity domain.Severity) {
	for i := 0; i < n; i++ {
		inc := domain.Incident{
			ID:       string(severity) + "-" + string(rune('a'+i)),
			Title:    "incident",
			Service:  "api",
			Severity: severity,
			Status:   domain.StatusOpen,
		}
		_ = m.Create(context.Background(), &inc)
	}
}
