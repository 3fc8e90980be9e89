package events

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunEventRepository implements EventRepository on top of go-repository-bun,
// with day ordering and cascading deletes handled through raw bun
// transactions.
type BunEventRepository struct {
	db          *bun.DB
	events      repository.Repository[*Event]
	days        repository.Repository[*EventDay]
	suspensions repository.Repository[*EventSuspension]
}

func NewBunEventRepository(db *bun.DB) *BunEventRepository {
	return &BunEventRepository{
		db:          db,
		events:      NewEventRepository(db),
		days:        NewEventDayRepository(db),
		suspensions: NewEventSuspensionRepository(db),
	}
}

func (r *BunEventRepository) Create(ctx context.Context, record *Event) (*Event, error) {
	return r.events.Create(ctx, record)
}

func (r *BunEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	record, err := r.events.GetByID(ctx, id.String(), withEventChildren())
	if err != nil {
		return nil, mapRepositoryError(err, "event", id.String())
	}
	return record, nil
}

func (r *BunEventRepository) GetBySlug(ctx context.Context, slug string) (*Event, error) {
	record, err := r.events.GetByIdentifier(ctx, slug, withEventChildren())
	if err != nil {
		return nil, mapRepositoryError(err, "event", slug)
	}
	return record, nil
}

func (r *BunEventRepository) List(ctx context.Context) ([]*Event, error) {
	records, _, err := r.events.List(ctx, withEventChildren())
	return records, err
}

func (r *BunEventRepository) Update(ctx context.Context, record *Event) (*Event, error) {
	return r.events.Update(ctx, record)
}

// Delete removes the event and its day and suspension children in one
// transaction.
func (r *BunEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*EventDay)(nil)).
			Where("?TableAlias.event_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete event days: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*EventSuspension)(nil)).
			Where("?TableAlias.event_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete event suspensions: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*Event)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		return nil
	})
}

func (r *BunEventRepository) ListDays(ctx context.Context, eventID uuid.UUID) ([]*EventDay, error) {
	records, _, err := r.days.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.event_id = ?", eventID).Order("number ASC")
	}))
	return records, err
}

// AppendDay inserts the day as the highest-numbered entry of its event.
func (r *BunEventRepository) AppendDay(ctx context.Context, day *EventDay) (*EventDay, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().
			Model((*EventDay)(nil)).
			Where("?TableAlias.event_id = ?", day.EventID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("count event days: %w", err)
		}
		day.Number = count + 1
		if _, err := tx.NewInsert().Model(day).Exec(ctx); err != nil {
			return fmt.Errorf("insert event day: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

// RemoveDay deletes the day and renumbers the remaining days of the event
// contiguously from 1, preserving their relative order, in one transaction.
func (r *BunEventRepository) RemoveDay(ctx context.Context, eventID, dayID uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewDelete().
			Model((*EventDay)(nil)).
			Where("?TableAlias.id = ? AND ?TableAlias.event_id = ?", dayID, eventID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete event day: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return &NotFoundError{Resource: "event day", Key: dayID.String()}
		}

		var remaining []*EventDay
		if err := tx.NewSelect().
			Model(&remaining).
			Where("?TableAlias.event_id = ?", eventID).
			Order("number ASC").
			Scan(ctx); err != nil {
			return fmt.Errorf("list event days: %w", err)
		}
		for i, day := range remaining {
			if day.Number == i+1 {
				continue
			}
			if _, err := tx.NewUpdate().
				Model(day).
				Set("number = ?", i+1).
				Where("?TableAlias.id = ?", day.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("renumber event day: %w", err)
			}
		}
		return nil
	})
}

func (r *BunEventRepository) ListSuspensions(ctx context.Context, eventID uuid.UUID) ([]*EventSuspension, error) {
	records, _, err := r.suspensions.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.event_id = ?", eventID).Order("start_date ASC")
	}))
	return records, err
}

func (r *BunEventRepository) CreateSuspension(ctx context.Context, suspension *EventSuspension) (*EventSuspension, error) {
	return r.suspensions.Create(ctx, suspension)
}

func (r *BunEventRepository) DeleteSuspension(ctx context.Context, id uuid.UUID) error {
	return r.suspensions.Delete(ctx, &EventSuspension{ID: id})
}

func withEventChildren() repository.SelectCriteria {
	return repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Relation("Days", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Order("number ASC")
			}).
			Relation("Suspensions", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Order("start_date ASC")
			})
	})
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
