package deploy

import (
	"context"
	"time"

	"github.com/SantoNinoNZ/admin-sub000/internal/logging"
	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

// DefaultRunWindow is how many recent runs are scanned for the last
// successful deploy.
const DefaultRunWindow = 20

// Service exposes build pipeline status and rebuild use cases.
type Service interface {
	Status(ctx context.Context) (Snapshot, error)
	TriggerRebuild(ctx context.Context) error
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp dispatch inputs.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
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

// WithRunWindow overrides how many recent runs Status scans.
func WithRunWindow(window int) ServiceOption {
	return func(s *service) {
		if window > 0 {
			s.window = window
		}
	}
}

type service struct {
	client ActionsClient
	window int
	now    func() time.Time
	logger interfaces.Logger
}

// NewService constructs a deploy service over the Actions client.
func NewService(client ActionsClient, opts ...ServiceOption) Service {
	s := &service{
		client: client,
		window: DefaultRunWindow,
		now:    time.Now,
		logger: logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Status returns the most recent run and the newest run that completed
// successfully. A workflow that has never run yields ErrNoRuns, which
// callers can treat as "no builds yet" rather than a failure.
func (s *service) Status(ctx context.Context) (Snapshot, error) {
	runs, err := s.client.ListRuns(ctx, s.window)
	if err != nil {
		return Snapshot{}, err
	}
	if len(runs) == 0 {
		return Snapshot{}, ErrNoRuns
	}

	snapshot := Snapshot{}
	for _, run := range runs {
		if snapshot.Latest == nil {
			snapshot.Latest = run
		}
		if snapshot.LastSuccessful == nil && run.Status == StatusCompleted && run.Conclusion == ConclusionSuccess {
			snapshot.LastSuccessful = run
		}
		if snapshot.Latest != nil && snapshot.LastSuccessful != nil {
			break
		}
	}
	return snapshot, nil
}

// TriggerRebuild dispatches the build workflow with the manual flag and a
// trigger timestamp.
func (s *service) TriggerRebuild(ctx context.Context) error {
	now := s.now()
	if err := s.client.Dispatch(ctx, dispatchInputs(now)); err != nil {
		return err
	}
	s.logger.Info("rebuild dispatched", "triggered_at", now.UTC().Format(time.RFC3339))
	return nil
}
