package deploy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeActionsClient struct {
	mu         sync.Mutex
	runs       []*Run
	listErr    error
	dispatched []map[string]any
	listCalls  int
}

func (f *fakeActionsClient) ListRuns(context.Context, int) ([]*Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.runs, nil
}

func (f *fakeActionsClient) Dispatch(_ context.Context, inputs map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, inputs)
	return nil
}

func (f *fakeActionsClient) setRuns(runs []*Run) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = runs
}

func TestStatusPicksLatestAndLastSuccessful(t *testing.T) {
	client := &fakeActionsClient{runs: []*Run{
		{ID: 3, Status: StatusInProgress},
		{ID: 2, Status: StatusCompleted, Conclusion: ConclusionFailure},
		{ID: 1, Status: StatusCompleted, Conclusion: ConclusionSuccess},
	}}
	svc := NewService(client)

	snapshot, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if snapshot.Latest == nil || snapshot.Latest.ID != 3 {
		t.Fatalf("want latest run 3, got %+v", snapshot.Latest)
	}
	if snapshot.LastSuccessful == nil || snapshot.LastSuccessful.ID != 1 {
		t.Fatalf("want last successful run 1, got %+v", snapshot.LastSuccessful)
	}
}

func TestStatusWithNoRunsReturnsErrNoRuns(t *testing.T) {
	svc := NewService(&fakeActionsClient{})

	snapshot, err := svc.Status(context.Background())
	if !errors.Is(err, ErrNoRuns) {
		t.Fatalf("want ErrNoRuns, got %v", err)
	}
	if snapshot.Latest != nil || snapshot.LastSuccessful != nil {
		t.Fatalf("want empty snapshot alongside ErrNoRuns, got %+v", snapshot)
	}
}

func TestPollerKeepsPollingBeforeFirstRunRegisters(t *testing.T) {
	client := &fakeActionsClient{}
	svc := NewService(client)

	var mu sync.Mutex
	var snapshots []Snapshot
	poller := NewPoller(svc, func(s Snapshot) {
		mu.Lock()
		snapshots = append(snapshots, s)
		mu.Unlock()
	}, WithPollInterval(time.Millisecond))

	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("start poller: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	client.setRuns([]*Run{{ID: 1, Status: StatusCompleted, Conclusion: ConclusionSuccess}})
	poller.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(snapshots) == 0 {
		t.Fatal("poller must deliver a snapshot once runs appear")
	}
	if !snapshots[len(snapshots)-1].Latest.Terminal() {
		t.Fatalf("final snapshot must be terminal, got %+v", snapshots[len(snapshots)-1].Latest)
	}
}

func TestTriggerRebuildSendsManualInputs(t *testing.T) {
	client := &fakeActionsClient{}
	stamp := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(client, WithClock(func() time.Time { return stamp }))

	if err := svc.TriggerRebuild(context.Background()); err != nil {
		t.Fatalf("trigger rebuild: %v", err)
	}
	if len(client.dispatched) != 1 {
		t.Fatalf("want 1 dispatch, got %d", len(client.dispatched))
	}
	inputs := client.dispatched[0]
	if inputs["manual"] != "true" {
		t.Fatalf("want manual flag, got %v", inputs["manual"])
	}
	if inputs["triggered_at"] != "2026-03-01T09:00:00Z" {
		t.Fatalf("unexpected trigger timestamp %v", inputs["triggered_at"])
	}
}

func TestPollerStopsOnTerminalStatus(t *testing.T) {
	client := &fakeActionsClient{runs: []*Run{{ID: 1, Status: StatusInProgress}}}
	svc := NewService(client)

	var mu sync.Mutex
	var snapshots []Snapshot
	poller := NewPoller(svc, func(s Snapshot) {
		mu.Lock()
		snapshots = append(snapshots, s)
		mu.Unlock()
		// Flip to terminal after the first delivery.
		client.setRuns([]*Run{{ID: 1, Status: StatusCompleted, Conclusion: ConclusionSuccess}})
	}, WithPollInterval(time.Millisecond))

	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("start poller: %v", err)
	}
	poller.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(snapshots) < 2 {
		t.Fatalf("want at least 2 snapshots, got %d", len(snapshots))
	}
	last := snapshots[len(snapshots)-1]
	if !last.Latest.Terminal() {
		t.Fatalf("final snapshot must be terminal, got %+v", last.Latest)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	client := &fakeActionsClient{runs: []*Run{{ID: 1, Status: StatusInProgress}}}
	svc := NewService(client)

	ctx, cancel := context.WithCancel(context.Background())
	poller := NewPoller(svc, nil, WithPollInterval(time.Millisecond))
	if err := poller.Start(ctx); err != nil {
		t.Fatalf("start poller: %v", err)
	}
	cancel()
	poller.Wait()
}

func TestPollerStopIsIdempotent(t *testing.T) {
	client := &fakeActionsClient{runs: []*Run{{ID: 1, Status: StatusInProgress}}}
	svc := NewService(client)

	poller := NewPoller(svc, nil, WithPollInterval(time.Millisecond))
	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("start poller: %v", err)
	}
	if err := poller.Start(context.Background()); !errors.Is(err, ErrPollerStarted) {
		t.Fatalf("want ErrPollerStarted, got %v", err)
	}

	poller.Stop()
	poller.Stop()
	poller.Stop()
}

func TestPollerKeepsPollingThroughTransientErrors(t *testing.T) {
	client := &fakeActionsClient{listErr: errors.New("api 502")}
	svc := NewService(client)

	poller := NewPoller(svc, nil, WithPollInterval(time.Millisecond))
	if err := poller.Start(context.Background()); err != nil {
		t.Fatalf("start poller: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	poller.Stop()

	client.mu.Lock()
	defer client.mu.Unlock()
	if client.listCalls < 2 {
		t.Fatalf("poller must keep polling through errors, got %d calls", client.listCalls)
	}
}
