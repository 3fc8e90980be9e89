package unified

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/SantoNinoNZ/admin-sub000/internal/logging"
	"github.com/SantoNinoNZ/admin-sub000/internal/markdown"
	"github.com/SantoNinoNZ/admin-sub000/internal/posts"
	"github.com/SantoNinoNZ/admin-sub000/internal/staticposts"
	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

// Service exposes the unified view over database-backed and file-backed posts.
type Service interface {
	List(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, post Post, input EditInput) (Post, error)
	Delete(ctx context.Context, post Post) error
	Preview(post Post) ([]byte, error)
}

// EditInput carries the fields shared by both post variants plus the
// database-only extras. Static posts ignore the database-only fields; the
// reverse holds for Date.
type EditInput struct {
	Slug      string
	Title     string
	Excerpt   *string
	Body      string
	ImageURL  *string
	Published bool

	// Database-only fields.
	CategoryID      *uuid.UUID
	AuthorID        uuid.UUID
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
	SocialImageURL  *string
	TagIDs          []uuid.UUID

	// Static-only fields.
	Date          string
	CommitMessage string
}

// DatabaseStore is the slice of the posts service the unifier depends on.
type DatabaseStore interface {
	List(ctx context.Context) ([]*posts.Post, error)
	Update(ctx context.Context, req posts.UpdatePostRequest) (*posts.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StaticStore is the slice of the file-backed adapter the unifier depends on.
type StaticStore interface {
	Load(ctx context.Context) ([]*staticposts.StaticPost, error)
	Update(ctx context.Context, req staticposts.SaveRequest) (*staticposts.StaticPost, error)
	Delete(ctx context.Context, name, expectedSHA string) error
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer overrides the markdown renderer used for previews.
func WithRenderer(renderer *markdown.Renderer) ServiceOption {
	return func(s *service) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

type service struct {
	database DatabaseStore
	static   StaticStore
	renderer *markdown.Renderer
	logger   interfaces.Logger
}

// NewService constructs the unification layer over both stores. The static
// store may be nil when the file-backed source is unconfigured; listings then
// contain database posts only.
func NewService(database DatabaseStore, static StaticStore, opts ...ServiceOption) Service {
	s := &service{
		database: database,
		static:   static,
		renderer: markdown.NewRenderer(),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches both sources concurrently and merges them sorted descending by
// effective timestamp. The database source is required: its failure fails the
// whole call. The file-backed source may legitimately be empty or
// unconfigured, so its failure degrades to an empty contribution with a
// warning instead.
func (s *service) List(ctx context.Context) ([]Post, error) {
	var (
		databasePosts []*posts.Post
		staticPosts   []*staticposts.StaticPost
		staticErr     error
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		records, err := s.database.List(ctx)
		if err != nil {
			return err
		}
		databasePosts = records
		return nil
	})
	group.Go(func() error {
		if s.static == nil {
			return nil
		}
		records, err := s.static.Load(ctx)
		if err != nil {
			staticErr = err
			return nil
		}
		staticPosts = records
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if staticErr != nil {
		s.logger.Warn("static post source unavailable, continuing with database posts only", "error", staticErr.Error())
	}

	merged := make([]Post, 0, len(databasePosts)+len(staticPosts))
	for _, record := range databasePosts {
		merged = append(merged, FromDatabase(record))
	}
	for _, record := range staticPosts {
		merged = append(merged, FromStatic(record))
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].EffectiveTimestamp().After(merged[j].EffectiveTimestamp())
	})
	return merged, nil
}

// Update routes the edit to the backend matching the post's provenance.
func (s *service) Update(ctx context.Context, post Post, input EditInput) (Post, error) {
	if err := post.Valid(); err != nil {
		return Post{}, err
	}

	switch post.Source {
	case SourceDatabase:
		updated, err := s.database.Update(ctx, posts.UpdatePostRequest{
			ID:              post.Database.ID,
			Slug:            input.Slug,
			Title:           input.Title,
			Excerpt:         input.Excerpt,
			Body:            input.Body,
			ImageURL:        input.ImageURL,
			Published:       input.Published,
			CategoryID:      input.CategoryID,
			AuthorID:        input.AuthorID,
			MetaTitle:       input.MetaTitle,
			MetaDescription: input.MetaDescription,
			MetaKeywords:    input.MetaKeywords,
			SocialImageURL:  input.SocialImageURL,
			TagIDs:          input.TagIDs,
		})
		if err != nil {
			return Post{}, err
		}
		return FromDatabase(updated), nil
	case SourceStatic:
		req := staticposts.SaveRequest{
			FileName:      post.Static.FileName,
			Slug:          input.Slug,
			Title:         input.Title,
			Body:          input.Body,
			Date:          input.Date,
			ExpectedSHA:   post.Static.SHA,
			CommitMessage: input.CommitMessage,
		}
		if input.Excerpt != nil {
			req.Excerpt = *input.Excerpt
		}
		if input.ImageURL != nil {
			req.ImageURL = *input.ImageURL
		}
		updated, err := s.static.Update(ctx, req)
		if err != nil {
			return Post{}, err
		}
		return FromStatic(updated), nil
	default:
		return Post{}, ErrUnknownSource
	}
}

// Delete routes the removal to the backend matching the post's provenance.
func (s *service) Delete(ctx context.Context, post Post) error {
	if err := post.Valid(); err != nil {
		return err
	}

	switch post.Source {
	case SourceDatabase:
		return s.database.Delete(ctx, post.Database.ID)
	case SourceStatic:
		return s.static.Delete(ctx, post.Static.FileName, post.Static.SHA)
	default:
		return ErrUnknownSource
	}
}

// Preview renders the post's markdown body to HTML.
func (s *service) Preview(post Post) ([]byte, error) {
	if err := post.Valid(); err != nil {
		return nil, err
	}
	return s.renderer.Render([]byte(post.Body()))
}
