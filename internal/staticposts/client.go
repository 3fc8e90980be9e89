package staticposts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/go-github/v68/github"
)

// ContentsClient abstracts the repository contents API the adapter writes
// through. All paths are file names relative to the configured posts folder.
type ContentsClient interface {
	ListDirectory(ctx context.Context) ([]FileDescriptor, error)
	GetFile(ctx context.Context, name string) (content []byte, sha string, err error)
	PutFile(ctx context.Context, name string, content []byte, expectedSHA, message string) (newSHA string, err error)
	DeleteFile(ctx context.Context, name, expectedSHA, message string) error
}

// GitHubClientConfig locates the posts folder inside the site repository.
type GitHubClientConfig struct {
	Owner  string
	Repo   string
	Branch string
	Dir    string
}

// GitHubClient implements ContentsClient against the GitHub contents API.
type GitHubClient struct {
	client *github.Client
	cfg    GitHubClientConfig
}

// NewGitHubClient wraps an authenticated go-github client. The token needs
// write scope on the target repository.
func NewGitHubClient(httpClient *http.Client, token string, cfg GitHubClientConfig) *GitHubClient {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHubClient{client: client, cfg: cfg}
}

func (g *GitHubClient) ListDirectory(ctx context.Context) ([]FileDescriptor, error) {
	_, entries, _, err := g.client.Repositories.GetContents(ctx, g.cfg.Owner, g.cfg.Repo, g.cfg.Dir, g.getOptions())
	if err != nil {
		return nil, fmt.Errorf("list posts directory: %w", err)
	}

	descriptors := make([]FileDescriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.GetType() != "file" {
			continue
		}
		if !strings.HasSuffix(entry.GetName(), ".md") {
			continue
		}
		descriptors = append(descriptors, FileDescriptor{
			Name: entry.GetName(),
			SHA:  entry.GetSHA(),
		})
	}
	return descriptors, nil
}

func (g *GitHubClient) GetFile(ctx context.Context, name string) ([]byte, string, error) {
	file, _, resp, err := g.client.Repositories.GetContents(ctx, g.cfg.Owner, g.cfg.Repo, g.filePath(name), g.getOptions())
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, "", &NotFoundError{Name: name}
		}
		return nil, "", fmt.Errorf("read post %s: %w", name, err)
	}
	if file == nil {
		return nil, "", &NotFoundError{Name: name}
	}

	decoded, err := file.GetContent()
	if err != nil {
		return nil, "", fmt.Errorf("decode post %s: %w", name, err)
	}
	return []byte(decoded), file.GetSHA(), nil
}

func (g *GitHubClient) PutFile(ctx context.Context, name string, content []byte, expectedSHA, message string) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: content,
	}
	if g.cfg.Branch != "" {
		opts.Branch = github.Ptr(g.cfg.Branch)
	}

	var (
		result *github.RepositoryContentResponse
		err    error
	)
	if expectedSHA == "" {
		result, _, err = g.client.Repositories.CreateFile(ctx, g.cfg.Owner, g.cfg.Repo, g.filePath(name), opts)
	} else {
		opts.SHA = github.Ptr(expectedSHA)
		result, _, err = g.client.Repositories.UpdateFile(ctx, g.cfg.Owner, g.cfg.Repo, g.filePath(name), opts)
	}
	if err != nil {
		return "", mapWriteError(err, name, expectedSHA)
	}
	return result.Content.GetSHA(), nil
}

func (g *GitHubClient) DeleteFile(ctx context.Context, name, expectedSHA, message string) error {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		SHA:     github.Ptr(expectedSHA),
	}
	if g.cfg.Branch != "" {
		opts.Branch = github.Ptr(g.cfg.Branch)
	}
	if _, _, err := g.client.Repositories.DeleteFile(ctx, g.cfg.Owner, g.cfg.Repo, g.filePath(name), opts); err != nil {
		return mapWriteError(err, name, expectedSHA)
	}
	return nil
}

func (g *GitHubClient) filePath(name string) string {
	return path.Join(g.cfg.Dir, name)
}

func (g *GitHubClient) getOptions() *github.RepositoryContentGetOptions {
	if g.cfg.Branch == "" {
		return nil
	}
	return &github.RepositoryContentGetOptions{Ref: g.cfg.Branch}
}

// mapWriteError surfaces stale-hash rejections as ConflictError. GitHub
// answers 409 when the sha is stale and 422 when it is missing or malformed.
func mapWriteError(err error, name, expectedSHA string) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return &ConflictError{Name: name, ExpectedSHA: expectedSHA}
		case http.StatusNotFound:
			return &NotFoundError{Name: name}
		}
	}
	return fmt.Errorf("write post %s: %w", name, err)
}
