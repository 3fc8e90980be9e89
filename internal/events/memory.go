package events

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryEventRepository is an in-memory EventRepository used by tests and by
// hosts running without a database binding.
type MemoryEventRepository struct {
	mu          sync.RWMutex
	events      map[uuid.UUID]*Event
	slugIndex   map[string]uuid.UUID
	days        map[uuid.UUID][]*EventDay
	suspensions map[uuid.UUID][]*EventSuspension
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events:      make(map[uuid.UUID]*Event),
		slugIndex:   make(map[string]uuid.UUID),
		days:        make(map[uuid.UUID][]*EventDay),
		suspensions: make(map[uuid.UUID][]*EventSuspension),
	}
}

func (m *MemoryEventRepository) Create(_ context.Context, record *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneEvent(record)
	m.events[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return m.assemble(copied), nil
}

func (m *MemoryEventRepository) GetByID(_ context.Context, id uuid.UUID) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.events[id]
	if !ok {
		return nil, &NotFoundError{Resource: "event", Key: id.String()}
	}
	return m.assemble(rec), nil
}

func (m *MemoryEventRepository) GetBySlug(_ context.Context, slug string) (*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "event", Key: slug}
	}
	return m.assemble(m.events[id]), nil
}

func (m *MemoryEventRepository) List(_ context.Context) ([]*Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Event, 0, len(m.events))
	for _, rec := range m.events {
		out = append(out, m.assemble(rec))
	}
	return out, nil
}

func (m *MemoryEventRepository) Update(_ context.Context, record *Event) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.events[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "event", Key: record.ID.String()}
	}
	delete(m.slugIndex, existing.Slug)

	copied := cloneEvent(record)
	m.events[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return m.assemble(copied), nil
}

func (m *MemoryEventRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.events[id]
	if !ok {
		return &NotFoundError{Resource: "event", Key: id.String()}
	}
	delete(m.slugIndex, rec.Slug)
	delete(m.events, id)
	delete(m.days, id)
	delete(m.suspensions, id)
	return nil
}

func (m *MemoryEventRepository) ListDays(_ context.Context, eventID uuid.UUID) ([]*EventDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orderedDays(eventID), nil
}

func (m *MemoryEventRepository) AppendDay(_ context.Context, day *EventDay) (*EventDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *day
	copied.Number = len(m.days[day.EventID]) + 1
	m.days[day.EventID] = append(m.days[day.EventID], &copied)

	out := copied
	return &out, nil
}

func (m *MemoryEventRepository) RemoveDay(_ context.Context, eventID, dayID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	days := m.days[eventID]
	index := -1
	for i, day := range days {
		if day.ID == dayID {
			index = i
			break
		}
	}
	if index < 0 {
		return &NotFoundError{Resource: "event day", Key: dayID.String()}
	}

	days = append(days[:index], days[index+1:]...)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Number < days[j].Number })
	for i, day := range days {
		day.Number = i + 1
	}
	m.days[eventID] = days
	return nil
}

func (m *MemoryEventRepository) ListSuspensions(_ context.Context, eventID uuid.UUID) ([]*EventSuspension, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orderedSuspensions(eventID), nil
}

func (m *MemoryEventRepository) CreateSuspension(_ context.Context, suspension *EventSuspension) (*EventSuspension, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *suspension
	m.suspensions[suspension.EventID] = append(m.suspensions[suspension.EventID], &copied)

	out := copied
	return &out, nil
}

func (m *MemoryEventRepository) DeleteSuspension(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for eventID, suspensions := range m.suspensions {
		for i, suspension := range suspensions {
			if suspension.ID == id {
				m.suspensions[eventID] = append(suspensions[:i], suspensions[i+1:]...)
				return nil
			}
		}
	}
	return &NotFoundError{Resource: "event suspension", Key: id.String()}
}

// assemble returns a copy of the event with its children attached, ordered
// the way the database repository orders them. Callers must hold the lock.
func (m *MemoryEventRepository) assemble(rec *Event) *Event {
	out := cloneEvent(rec)
	out.Days = m.orderedDays(rec.ID)
	out.Suspensions = m.orderedSuspensions(rec.ID)
	return out
}

func (m *MemoryEventRepository) orderedDays(eventID uuid.UUID) []*EventDay {
	days := m.days[eventID]
	out := make([]*EventDay, 0, len(days))
	for _, day := range days {
		copied := *day
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (m *MemoryEventRepository) orderedSuspensions(eventID uuid.UUID) []*EventSuspension {
	suspensions := m.suspensions[eventID]
	out := make([]*EventSuspension, 0, len(suspensions))
	for _, suspension := range suspensions {
		copied := *suspension
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func cloneEvent(rec *Event) *Event {
	copied := *rec
	copied.Days = nil
	copied.Suspensions = nil
	return &copied
}
