package deploy

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SantoNinoNZ/admin-sub000/internal/logging"
	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

// DefaultPollInterval is the fixed delay between status polls.
const DefaultPollInterval = 10 * time.Second

// Poller watches the build pipeline at a fixed interval and delivers each
// snapshot to the callback. It stops on its own once the latest run reaches
// a terminal status, or when the context is cancelled, or on Stop.
type Poller struct {
	service  Service
	interval time.Duration
	onUpdate func(Snapshot)
	logger   interfaces.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// PollerOption configures the poller at construction time.
type PollerOption func(*Poller)

// WithPollInterval overrides the fixed polling interval.
func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithPollerLogger overrides the poller logger.
func WithPollerLogger(logger interfaces.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPoller constructs a poller delivering snapshots to onUpdate.
func NewPoller(service Service, onUpdate func(Snapshot), opts ...PollerOption) *Poller {
	p := &Poller{
		service:  service,
		interval: DefaultPollInterval,
		onUpdate: onUpdate,
		logger:   logging.NoOp(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Start begins polling. It returns ErrPollerStarted when already running.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrPollerStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.started = true

	go p.run(ctx)
	return nil
}

// Stop halts polling and waits for the loop to exit. Calling Stop on an
// idle or already-stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.mu.Unlock()

	cancel()
	<-done
}

// Wait blocks until the polling loop exits. Returns immediately when the
// poller never started.
func (p *Poller) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (p *Poller) run(ctx context.Context) {
	defer func() {
		p.mu.Lock()
		p.started = false
		close(p.done)
		p.mu.Unlock()
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// First poll happens immediately so the panel is not blank for a full
	// interval.
	if p.poll(ctx) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if p.poll(ctx) {
				return
			}
		}
	}
}

// poll fetches one snapshot and reports whether polling should stop.
func (p *Poller) poll(ctx context.Context) bool {
	snapshot, err := p.service.Status(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		// A freshly dispatched run can take a moment to register, so an
		// empty run list is expected early on.
		if !errors.Is(err, ErrNoRuns) {
			p.logger.Warn("build status poll failed", "error", err)
		}
		return false
	}

	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
	return snapshot.Latest.Terminal()
}
