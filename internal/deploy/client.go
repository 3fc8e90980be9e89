package deploy

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v68/github"
)

// ActionsClient abstracts the workflow API the deploy service reads build
// state from and dispatches rebuilds through.
type ActionsClient interface {
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Dispatch(ctx context.Context, inputs map[string]any) error
}

// GitHubActionsConfig locates the build workflow inside the site repository.
type GitHubActionsConfig struct {
	Owner        string
	Repo         string
	Branch       string
	WorkflowFile string
}

// GitHubActionsClient implements ActionsClient against the GitHub Actions
// API.
type GitHubActionsClient struct {
	client *github.Client
	cfg    GitHubActionsConfig
}

// NewGitHubActionsClient wraps an authenticated go-github client. The token
// needs workflow scope on the target repository.
func NewGitHubActionsClient(httpClient *http.Client, token string, cfg GitHubActionsConfig) *GitHubActionsClient {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubActionsClient{client: client, cfg: cfg}
}

func (g *GitHubActionsClient) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	runs, _, err := g.client.Actions.ListWorkflowRunsByFileName(ctx, g.cfg.Owner, g.cfg.Repo, g.cfg.WorkflowFile, &github.ListWorkflowRunsOptions{
		Branch:      g.cfg.Branch,
		ListOptions: github.ListOptions{PerPage: limit},
	})
	if err != nil {
		return nil, fmt.Errorf("list workflow runs: %w", err)
	}

	out := make([]*Run, 0, len(runs.WorkflowRuns))
	for _, run := range runs.WorkflowRuns {
		out = append(out, &Run{
			ID:         run.GetID(),
			Status:     RunStatus(run.GetStatus()),
			Conclusion: RunConclusion(run.GetConclusion()),
			CreatedAt:  run.GetCreatedAt().Time,
			UpdatedAt:  run.GetUpdatedAt().Time,
			URL:        run.GetHTMLURL(),
		})
	}
	return out, nil
}

func (g *GitHubActionsClient) Dispatch(ctx context.Context, inputs map[string]any) error {
	_, err := g.client.Actions.CreateWorkflowDispatchEventByFileName(ctx, g.cfg.Owner, g.cfg.Repo, g.cfg.WorkflowFile, github.CreateWorkflowDispatchEventRequest{
		Ref:    g.cfg.Branch,
		Inputs: inputs,
	})
	if err != nil {
		return fmt.Errorf("dispatch workflow %s: %w", g.cfg.WorkflowFile, err)
	}
	return nil
}

var _ ActionsClient = (*GitHubActionsClient)(nil)

// dispatchInputs builds the manual-trigger payload recorded on each run.
func dispatchInputs(now time.Time) map[string]any {
	return map[string]any{
		"manual":       "true",
		"triggered_at": now.UTC().Format(time.RFC3339),
	}
}
