package staticposts

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/SantoNinoNZ/admin-sub000/internal/identity"
	"github.com/SantoNinoNZ/admin-sub000/internal/logging"
	"github.com/SantoNinoNZ/admin-sub000/internal/markdown"
	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

const (
	defaultMaxFiles  = 50
	defaultBatchSize = 5
)

// Service exposes the file-backed post store. Every write presents the
// content hash read immediately prior; stale hashes surface as ConflictError.
type Service interface {
	List(ctx context.Context) ([]FileDescriptor, error)
	Load(ctx context.Context) ([]*StaticPost, error)
	Get(ctx context.Context, name string) (*StaticPost, error)
	Create(ctx context.Context, req SaveRequest) (*StaticPost, error)
	Update(ctx context.Context, req SaveRequest) (*StaticPost, error)
	Delete(ctx context.Context, name, expectedSHA string) error
}

// SaveRequest carries the post fields written into the markdown document.
type SaveRequest struct {
	FileName string
	Slug     string
	Title    string
	Excerpt  string
	Body     string
	ImageURL string
	Date     string
	// ExpectedSHA must hold the hash from the preceding read on update;
	// empty on create.
	ExpectedSHA string
	// CommitMessage overrides the generated commit message when set.
	CommitMessage string
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithMaxFiles bounds how many files a listing returns.
func WithMaxFiles(limit int) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.maxFiles = limit
		}
	}
}

// WithBatchSize bounds how many file bodies are fetched concurrently.
func WithBatchSize(size int) ServiceOption {
	return func(s *service) {
		if size > 0 {
			s.batchSize = size
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
	client    ContentsClient
	maxFiles  int
	batchSize int
	logger    interfaces.Logger
}

// NewService constructs the adapter over the provided contents client.
func NewService(client ContentsClient, opts ...ServiceOption) Service {
	s := &service{
		client:    client,
		maxFiles:  defaultMaxFiles,
		batchSize: defaultBatchSize,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns file descriptors, truncated to the configured limit.
func (s *service) List(ctx context.Context) ([]FileDescriptor, error) {
	descriptors, err := s.client.ListDirectory(ctx)
	if err != nil {
		return nil, err
	}
	if len(descriptors) > s.maxFiles {
		s.logger.Warn("post listing truncated", "total", len(descriptors), "limit", s.maxFiles)
		descriptors = descriptors[:s.maxFiles]
	}
	return descriptors, nil
}

// Load lists the posts folder and fetches file bodies in fixed-size batches:
// concurrent within a batch, sequential across batches, so the number of
// outstanding requests stays bounded.
func (s *service) Load(ctx context.Context) ([]*StaticPost, error) {
	descriptors, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*StaticPost, len(descriptors))
	for start := 0; start < len(descriptors); start += s.batchSize {
		end := start + s.batchSize
		if end > len(descriptors) {
			end = len(descriptors)
		}

		var wg sync.WaitGroup
		errs := make([]error, end-start)
		for i, descriptor := range descriptors[start:end] {
			wg.Add(1)
			go func(offset int, descriptor FileDescriptor) {
				defer wg.Done()
				post, err := s.Get(ctx, descriptor.Name)
				if err != nil {
					errs[offset] = err
					return
				}
				out[start+offset] = post
			}(i, descriptor)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// Get reads and parses a single post file.
func (s *service) Get(ctx context.Context, name string) (*StaticPost, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFileNameRequired
	}

	raw, sha, err := s.client.GetFile(ctx, name)
	if err != nil {
		return nil, err
	}
	return parsePost(name, raw, sha)
}

// Create commits a new markdown file. The file must not already exist.
func (s *service) Create(ctx context.Context, req SaveRequest) (*StaticPost, error) {
	req.ExpectedSHA = ""
	return s.save(ctx, req, "Add post")
}

// Update rewrites an existing file, presenting the previously read hash.
func (s *service) Update(ctx context.Context, req SaveRequest) (*StaticPost, error) {
	if strings.TrimSpace(req.ExpectedSHA) == "" {
		return nil, ErrSHARequired
	}
	return s.save(ctx, req, "Update post")
}

// Delete removes the file, presenting the previously read hash.
func (s *service) Delete(ctx context.Context, name, expectedSHA string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrFileNameRequired
	}
	if strings.TrimSpace(expectedSHA) == "" {
		return ErrSHARequired
	}

	message := fmt.Sprintf("Delete post %s", name)
	if err := s.client.DeleteFile(ctx, name, expectedSHA, message); err != nil {
		return err
	}
	s.logger.Info("static post deleted", "file", name)
	return nil
}

func (s *service) save(ctx context.Context, req SaveRequest, verb string) (*StaticPost, error) {
	name := strings.TrimSpace(req.FileName)
	if name == "" {
		return nil, ErrFileNameRequired
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}

	meta := markdown.FrontMatter{
		Title:    req.Title,
		Date:     req.Date,
		Slug:     req.Slug,
		ImageURL: req.ImageURL,
		Excerpt:  req.Excerpt,
	}
	document, err := markdown.SerializeDocument(meta, []byte(req.Body))
	if err != nil {
		return nil, err
	}

	message := req.CommitMessage
	if message == "" {
		message = fmt.Sprintf("%s %s", verb, name)
	}

	newSHA, err := s.client.PutFile(ctx, name, document, req.ExpectedSHA, message)
	if err != nil {
		return nil, err
	}
	s.logger.Info("static post written", "file", name, "sha", newSHA)

	return parsePost(name, document, newSHA)
}

// parsePost turns a raw markdown document into a StaticPost. A document
// without a frontmatter block is treated as all body; a missing slug falls
// back to the file name with its extension stripped.
func parsePost(name string, raw []byte, sha string) (*StaticPost, error) {
	meta, body, err := markdown.ParseFrontMatter(raw)
	if err != nil {
		return nil, fmt.Errorf("parse post %s: %w", name, err)
	}

	postSlug := strings.TrimSpace(meta.Slug)
	if postSlug == "" {
		postSlug = strings.TrimSuffix(name, path.Ext(name))
	}

	return &StaticPost{
		ID:       identity.StaticPostUUID(name),
		FileName: name,
		Slug:     postSlug,
		Title:    meta.Title,
		Excerpt:  meta.Excerpt,
		Body:     string(body),
		ImageURL: meta.ImageURL,
		Date:     meta.ParsedDate(),
		SHA:      sha,
		Source:   Source,
	}, nil
}
