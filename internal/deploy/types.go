package deploy

import (
	"errors"
	"time"
)

// RunStatus is the workflow run lifecycle reported by the Actions API.
type RunStatus string

const (
	StatusQueued     RunStatus = "queued"
	StatusInProgress RunStatus = "in_progress"
	StatusCompleted  RunStatus = "completed"
)

// RunConclusion is the outcome of a completed run; empty while running.
type RunConclusion string

const (
	ConclusionSuccess   RunConclusion = "success"
	ConclusionFailure   RunConclusion = "failure"
	ConclusionCancelled RunConclusion = "cancelled"
	ConclusionNone      RunConclusion = ""
)

// Run describes one workflow run of the site build pipeline.
type Run struct {
	ID         int64         `json:"id"`
	Status     RunStatus     `json:"status"`
	Conclusion RunConclusion `json:"conclusion"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	URL        string        `json:"url"`
}

// Terminal reports whether the run has finished.
func (r *Run) Terminal() bool {
	return r != nil && r.Status == StatusCompleted
}

// Snapshot is the build pipeline state shown in the admin panel: the most
// recent run plus the last run that deployed successfully.
type Snapshot struct {
	Latest         *Run `json:"latest,omitempty"`
	LastSuccessful *Run `json:"last_successful,omitempty"`
}

var (
	ErrNoRuns        = errors.New("deploy: no workflow runs found")
	ErrPollerStarted = errors.New("deploy: poller already started")
)
