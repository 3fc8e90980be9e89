package events

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/SantoNinoNZ/admin-sub000/internal/logging"
	"github.com/SantoNinoNZ/admin-sub000/internal/recurrence"
	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

// Service exposes calendar event management use cases.
type Service interface {
	Create(ctx context.Context, req CreateEventRequest) (*Event, error)
	Get(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, req UpdateEventRequest) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddDay(ctx context.Context, req AddDayRequest) (*EventDay, error)
	RemoveDay(ctx context.Context, eventID, dayID uuid.UUID) error

	AddSuspension(ctx context.Context, req AddSuspensionRequest) (*EventSuspension, error)
	RemoveSuspension(ctx context.Context, eventID, suspensionID uuid.UUID) error

	Occurrences(ctx context.Context, id uuid.UUID, from, to time.Time) ([]recurrence.Occurrence, error)
}

// EventFields carries the values shared by create and update requests.
type EventFields struct {
	Kind      Kind
	Slug      string
	Title     string
	Venue     *string
	Address   *string
	Body      *string
	ImageURL  *string
	Published bool

	Schedule  *string
	TimeOfDay *string
	Rule      *recurrence.Rule

	StartDate    *string
	EndDate      *string
	Cost         *string
	Registration *string
	Contact      *string
}

// validate enforces the variant exclusivity invariant: a recurring event may
// only carry schedule fields, a dated event only date fields.
func (f EventFields) validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(f.Slug) == "" {
		errs["slug"] = validation.NewError("admin.events.slug_required", "slug is required")
	}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = validation.NewError("admin.events.title_required", "title is required")
	}

	switch f.Kind {
	case KindRecurring:
		if f.StartDate != nil || f.EndDate != nil || f.Cost != nil || f.Registration != nil || f.Contact != nil {
			errs["kind"] = validation.NewError("admin.events.variant_mixed", "recurring events cannot carry dated fields")
		}
	case KindDated:
		if f.Schedule != nil || f.TimeOfDay != nil || f.Rule != nil {
			errs["kind"] = validation.NewError("admin.events.variant_mixed", "dated events cannot carry schedule fields")
		}
		if f.StartDate == nil || strings.TrimSpace(*f.StartDate) == "" {
			errs["start_date"] = validation.NewError("admin.events.start_date_required", "start date is required")
		}
	default:
		errs["kind"] = validation.NewError("admin.events.kind_invalid", "kind must be recurring or dated")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateEventRequest captures the information required to create an event.
type CreateEventRequest struct {
	EventFields
}

// Validate checks the request before any repository call.
func (r CreateEventRequest) Validate() error {
	return r.EventFields.validate()
}

// UpdateEventRequest captures the mutable fields for an existing event.
type UpdateEventRequest struct {
	ID uuid.UUID
	EventFields
}

// Validate checks the request before any repository call.
func (r UpdateEventRequest) Validate() error {
	if r.ID == uuid.Nil {
		return validation.Errors{
			"id": validation.NewError("admin.events.id_required", "event id is required"),
		}
	}
	return r.EventFields.validate()
}

// AddDayRequest appends an ordered day to a dated event.
type AddDayRequest struct {
	EventID     uuid.UUID
	DateLabel   string
	Title       *string
	Description *string
	TimeOfDay   *string
}

// Validate checks the request before any repository call.
func (r AddDayRequest) Validate() error {
	errs := validation.Errors{}
	if r.EventID == uuid.Nil {
		errs["event_id"] = validation.NewError("admin.events.id_required", "event id is required")
	}
	if strings.TrimSpace(r.DateLabel) == "" {
		errs["date_label"] = validation.NewError("admin.events.date_label_required", "date label is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AddSuspensionRequest pauses a recurring event over an inclusive range.
type AddSuspensionRequest struct {
	EventID   uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	Reason    *string
}

// Validate checks the request before any repository call.
func (r AddSuspensionRequest) Validate() error {
	errs := validation.Errors{}
	if r.EventID == uuid.Nil {
		errs["event_id"] = validation.NewError("admin.events.id_required", "event id is required")
	}
	if r.StartDate.IsZero() {
		errs["start_date"] = validation.NewError("admin.events.start_date_required", "start date is required")
	}
	if r.EndDate.IsZero() {
		errs["end_date"] = validation.NewError("admin.events.end_date_required", "end date is required")
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		errs["end_date"] = validation.NewError("admin.events.range_inverted", "end date precedes start date")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EventRepository abstracts storage operations for events and their
// children.
type EventRepository interface {
	Create(ctx context.Context, record *Event) (*Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	Update(ctx context.Context, record *Event) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListDays(ctx context.Context, eventID uuid.UUID) ([]*EventDay, error)
	AppendDay(ctx context.Context, day *EventDay) (*EventDay, error)
	RemoveDay(ctx context.Context, eventID, dayID uuid.UUID) error

	ListSuspensions(ctx context.Context, eventID uuid.UUID) ([]*EventSuspension, error)
	CreateSuspension(ctx context.Context, suspension *EventSuspension) (*EventSuspension, error)
	DeleteSuspension(ctx context.Context, id uuid.UUID) error
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo   EventRepository
	now    func() time.Time
	id     IDGenerator
	logger interfaces.Logger
}

// NewService constructs an event service with the required dependencies.
func NewService(repo EventRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) Create(ctx context.Context, req CreateEventRequest) (*Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	normalized, err := slug.Normalize(req.Slug)
	if err != nil || normalized == "" {
		return nil, ErrSlugInvalid
	}

	if err := s.ensureSlugFree(ctx, normalized, uuid.Nil); err != nil {
		return nil, err
	}

	now := s.now()
	record := &Event{
		ID:           s.id(),
		Kind:         req.Kind,
		Slug:         normalized,
		Title:        req.Title,
		Venue:        req.Venue,
		Address:      req.Address,
		Body:         req.Body,
		ImageURL:     req.ImageURL,
		Published:    req.Published,
		Schedule:     req.Schedule,
		TimeOfDay:    req.TimeOfDay,
		Rule:         req.Rule,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Cost:         req.Cost,
		Registration: req.Registration,
		Contact:      req.Contact,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("event created", "event_id", created.ID.String(), "slug", created.Slug, "kind", string(created.Kind))
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	if id == uuid.Nil {
		return nil, ErrEventIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, eventSlug string) (*Event, error) {
	eventSlug = strings.TrimSpace(eventSlug)
	if eventSlug == "" {
		return nil, ErrSlugRequired
	}
	return s.repo.GetBySlug(ctx, eventSlug)
}

func (s *service) List(ctx context.Context) ([]*Event, error) {
	return s.repo.List(ctx)
}

// Update replaces the event's mutable fields. The kind of an existing event
// never changes; the stored kind drives variant validation.
func (s *service) Update(ctx context.Context, req UpdateEventRequest) (*Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	normalized, err := slug.Normalize(req.Slug)
	if err != nil || normalized == "" {
		return nil, ErrSlugInvalid
	}

	record, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if record.Kind != req.Kind {
		return nil, ErrKindMismatch
	}

	if record.Slug != normalized {
		if err := s.ensureSlugFree(ctx, normalized, record.ID); err != nil {
			return nil, err
		}
	}

	record.Slug = normalized
	record.Title = req.Title
	record.Venue = req.Venue
	record.Address = req.Address
	record.Body = req.Body
	record.ImageURL = req.ImageURL
	record.Published = req.Published
	record.Schedule = req.Schedule
	record.TimeOfDay = req.TimeOfDay
	record.Rule = req.Rule
	record.StartDate = req.StartDate
	record.EndDate = req.EndDate
	record.Cost = req.Cost
	record.Registration = req.Registration
	record.Contact = req.Contact
	record.UpdatedAt = s.now()

	return s.repo.Update(ctx, record)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrEventIDRequired
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// AddDay appends a day with the next sequential number.
func (s *service) AddDay(ctx context.Context, req AddDayRequest) (*EventDay, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.repo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.Kind != KindDated {
		return nil, ErrKindMismatch
	}

	day := &EventDay{
		ID:          s.id(),
		EventID:     event.ID,
		DateLabel:   req.DateLabel,
		Title:       req.Title,
		Description: req.Description,
		TimeOfDay:   req.TimeOfDay,
		CreatedAt:   s.now(),
	}
	return s.repo.AppendDay(ctx, day)
}

// RemoveDay deletes the day and renumbers the survivors contiguously from 1
// while preserving their relative order.
func (s *service) RemoveDay(ctx context.Context, eventID, dayID uuid.UUID) error {
	if eventID == uuid.Nil {
		return ErrEventIDRequired
	}
	if dayID == uuid.Nil {
		return ErrDayIDRequired
	}
	return s.repo.RemoveDay(ctx, eventID, dayID)
}

func (s *service) AddSuspension(ctx context.Context, req AddSuspensionRequest) (*EventSuspension, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	event, err := s.repo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event.Kind != KindRecurring {
		return nil, ErrKindMismatch
	}

	suspension := &EventSuspension{
		ID:        s.id(),
		EventID:   event.ID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Reason:    req.Reason,
		CreatedAt: s.now(),
	}
	return s.repo.CreateSuspension(ctx, suspension)
}

func (s *service) RemoveSuspension(ctx context.Context, eventID, suspensionID uuid.UUID) error {
	if eventID == uuid.Nil || suspensionID == uuid.Nil {
		return ErrEventIDRequired
	}
	return s.repo.DeleteSuspension(ctx, suspensionID)
}

// Occurrences expands the event into concrete calendar entries for the
// window. Dated events yield a single entry spanning their stored dates.
func (s *service) Occurrences(ctx context.Context, id uuid.UUID, from, to time.Time) ([]recurrence.Occurrence, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch event.Kind {
	case KindDated:
		start, endExclusive, err := recurrence.ExpandDated(deref(event.StartDate), deref(event.EndDate))
		if err != nil {
			return nil, err
		}
		return []recurrence.Occurrence{{
			Start:  start,
			End:    endExclusive,
			AllDay: true,
			Label:  event.Title,
		}}, nil
	case KindRecurring:
		spans := make([]recurrence.Span, 0, len(event.Suspensions))
		for _, suspension := range event.Suspensions {
			spans = append(spans, suspension.Span())
		}
		return recurrence.Expand(recurrence.ExpandInput{
			Rule:        event.Rule,
			Description: deref(event.Schedule),
			TimeOfDay:   deref(event.TimeOfDay),
			Suspensions: spans,
		}, from, to), nil
	default:
		return nil, ErrKindMismatch
	}
}

func (s *service) ensureSlugFree(ctx context.Context, normalized string, selfID uuid.UUID) error {
	existing, err := s.repo.GetBySlug(ctx, normalized)
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrSlugExists
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
