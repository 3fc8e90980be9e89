package events

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewEventRepository(db *bun.DB) repository.Repository[*Event] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Event]{
		NewRecord: func() *Event { return &Event{} },
		GetID: func(e *Event) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Event, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(e *Event) string {
			return e.Slug
		},
	})
}

func NewEventDayRepository(db *bun.DB) repository.Repository[*EventDay] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*EventDay]{
		NewRecord: func() *EventDay { return &EventDay{} },
		GetID: func(d *EventDay) uuid.UUID {
			return d.ID
		},
		SetID: func(d *EventDay, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(d *EventDay) string {
			return d.ID.String()
		},
	})
}

func NewEventSuspensionRepository(db *bun.DB) repository.Repository[*EventSuspension] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*EventSuspension]{
		NewRecord: func() *EventSuspension { return &EventSuspension{} },
		GetID: func(s *EventSuspension) uuid.UUID {
			return s.ID
		},
		SetID: func(s *EventSuspension, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(s *EventSuspension) string {
			return s.ID.String()
		},
	})
}
