package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/SantoNinoNZ/admin-sub000/internal/recurrence"
)

// Kind discriminates the two event variants. A recurring event carries a
// schedule description and optional structured rule; a dated event carries
// explicit start/end dates and ordered day children.
type Kind string

const (
	KindRecurring Kind = "recurring"
	KindDated     Kind = "dated"
)

// Event is a calendar entry managed through the admin panel. Exactly one
// variant's fields are populated, enforced at validation time.
type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Kind      Kind      `bun:"kind,notnull" json:"kind"`
	Slug      string    `bun:"slug,notnull" json:"slug"`
	Title     string    `bun:"title,notnull" json:"title"`
	Venue     *string   `bun:"venue" json:"venue,omitempty"`
	Address   *string   `bun:"address" json:"address,omitempty"`
	Body      *string   `bun:"body" json:"body,omitempty"`
	ImageURL  *string   `bun:"image_url" json:"image_url,omitempty"`
	Published bool      `bun:"published,notnull,default:false" json:"published"`

	// Recurring variant.
	Schedule  *string          `bun:"schedule" json:"schedule,omitempty"`
	TimeOfDay *string          `bun:"time_of_day" json:"time_of_day,omitempty"`
	Rule      *recurrence.Rule `bun:"rule,type:jsonb,nullzero" json:"rule,omitempty"`

	// Dated variant. Dates use the "January 2, 2006" layout.
	StartDate    *string `bun:"start_date" json:"start_date,omitempty"`
	EndDate      *string `bun:"end_date" json:"end_date,omitempty"`
	Cost         *string `bun:"cost" json:"cost,omitempty"`
	Registration *string `bun:"registration" json:"registration,omitempty"`
	Contact      *string `bun:"contact" json:"contact,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Days        []*EventDay        `bun:"rel:has-many,join:id=event_id" json:"days,omitempty"`
	Suspensions []*EventSuspension `bun:"rel:has-many,join:id=event_id" json:"suspensions,omitempty"`
}

// EventDay is one ordered day of a dated event's programme. Numbers run
// contiguously from 1 and are renumbered when days are removed.
type EventDay struct {
	bun.BaseModel `bun:"table:event_days,alias:ed"`

	ID          uuid.UUID `bun:",pk,type:uuid" json:"id"`
	EventID     uuid.UUID `bun:"event_id,notnull,type:uuid" json:"event_id"`
	Number      int       `bun:"number,notnull" json:"number"`
	DateLabel   string    `bun:"date_label,notnull" json:"date_label"`
	Title       *string   `bun:"title" json:"title,omitempty"`
	Description *string   `bun:"description" json:"description,omitempty"`
	TimeOfDay   *string   `bun:"time_of_day" json:"time_of_day,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// EventSuspension pauses a recurring event for an inclusive date range.
type EventSuspension struct {
	bun.BaseModel `bun:"table:event_suspensions,alias:es"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	EventID   uuid.UUID `bun:"event_id,notnull,type:uuid" json:"event_id"`
	StartDate time.Time `bun:"start_date,notnull" json:"start_date"`
	EndDate   time.Time `bun:"end_date,notnull" json:"end_date"`
	Reason    *string   `bun:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Span converts the suspension into the expansion layer's date range form.
func (s *EventSuspension) Span() recurrence.Span {
	reason := ""
	if s.Reason != nil {
		reason = *s.Reason
	}
	return recurrence.Span{Start: s.StartDate, End: s.EndDate, Reason: reason}
}

// ScheduleText returns the human schedule line for a recurring event: the
// structured rule rendered as a sentence when possible, falling back to the
// stored free-text description.
func (e *Event) ScheduleText() string {
	if text := recurrence.RuleText(e.Rule); text != "" {
		return text
	}
	if e.Schedule != nil {
		return *e.Schedule
	}
	return ""
}
