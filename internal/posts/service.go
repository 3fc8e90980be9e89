package posts

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/SantoNinoNZ/admin-sub000/internal/logging"
	"github.com/SantoNinoNZ/admin-sub000/pkg/interfaces"
)

// Service exposes database-backed post management use cases.
type Service interface {
	Create(ctx context.Context, req CreatePostRequest) (*Post, error)
	Get(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	Update(ctx context.Context, req UpdatePostRequest) (*Post, error)
	SetPublished(ctx context.Context, id uuid.UUID, published bool) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context) ([]*Category, error)
	CreateCategory(ctx context.Context, name string) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListTags(ctx context.Context) ([]*Tag, error)
	CreateTag(ctx context.Context, name string) (*Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
	ListAuthors(ctx context.Context) ([]*Author, error)
	CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*Author, error)
}

// CreatePostRequest captures the information required to create a post.
type CreatePostRequest struct {
	Slug            string
	Title           string
	Excerpt         *string
	Body            string
	ImageURL        *string
	Published       bool
	CategoryID      *uuid.UUID
	AuthorID        uuid.UUID
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
	SocialImageURL  *string
	TagIDs          []uuid.UUID
}

// Validate checks the request before any repository call.
func (r CreatePostRequest) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(r.Slug) == "" {
		errs["slug"] = validation.NewError("admin.posts.slug_required", "slug is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		errs["title"] = validation.NewError("admin.posts.title_required", "title is required")
	}
	if r.AuthorID == uuid.Nil {
		errs["author_id"] = validation.NewError("admin.posts.author_required", "author is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdatePostRequest captures mutable fields for an existing post. Tag
// associations are replaced wholesale with TagIDs; an empty slice clears
// every tag.
type UpdatePostRequest struct {
	ID              uuid.UUID
	Slug            string
	Title           string
	Excerpt         *string
	Body            string
	ImageURL        *string
	Published       bool
	CategoryID      *uuid.UUID
	AuthorID        uuid.UUID
	MetaTitle       *string
	MetaDescription *string
	MetaKeywords    *string
	SocialImageURL  *string
	TagIDs          []uuid.UUID
}

// Validate checks the request before any repository call.
func (r UpdatePostRequest) Validate() error {
	errs := validation.Errors{}
	if r.ID == uuid.Nil {
		errs["id"] = validation.NewError("admin.posts.id_required", "post id is required")
	}
	if strings.TrimSpace(r.Slug) == "" {
		errs["slug"] = validation.NewError("admin.posts.slug_required", "slug is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		errs["title"] = validation.NewError("admin.posts.title_required", "title is required")
	}
	if r.AuthorID == uuid.Nil {
		errs["author_id"] = validation.NewError("admin.posts.author_required", "author is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CreateAuthorRequest captures the fields for a new author record.
type CreateAuthorRequest struct {
	Name      string
	Email     *string
	AvatarURL *string
}

// PostRepository abstracts storage operations for posts.
type PostRepository interface {
	Create(ctx context.Context, record *Post) (*Post, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context) ([]*Post, error)
	Update(ctx context.Context, record *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error
}

// CategoryRepository abstracts storage operations for categories.
type CategoryRepository interface {
	Create(ctx context.Context, record *Category) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TagRepository abstracts storage operations for tags.
type TagRepository interface {
	Create(ctx context.Context, record *Tag) (*Tag, error)
	List(ctx context.Context) ([]*Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthorRepository abstracts storage operations for authors.
type AuthorRepository interface {
	Create(ctx context.Context, record *Author) (*Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Author, error)
	List(ctx context.Context) ([]*Author, error)
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
	posts      PostRepository
	categories CategoryRepository
	tags       TagRepository
	authors    AuthorRepository
	now        func() time.Time
	id         IDGenerator
	logger     interfaces.Logger
}

// NewService constructs a post service with the required dependencies.
func NewService(postsRepo PostRepository, categories CategoryRepository, tags TagRepository, authors AuthorRepository, opts ...ServiceOption) Service {
	s := &service{
		posts:      postsRepo,
		categories: categories,
		tags:       tags,
		authors:    authors,
		now:        time.Now,
		id:         uuid.New,
		logger:     logging.NoOp(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) Create(ctx context.Context, req CreatePostRequest) (*Post, error) {
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
	record := &Post{
		ID:              s.id(),
		Slug:            normalized,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		Body:            req.Body,
		ImageURL:        req.ImageURL,
		Published:       req.Published,
		CategoryID:      req.CategoryID,
		AuthorID:        req.AuthorID,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
		SocialImageURL:  req.SocialImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if record.Published {
		record.PublishedAt = &now
	}

	created, err := s.posts.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	if err := s.posts.ReplaceTags(ctx, created.ID, req.TagIDs); err != nil {
		return nil, err
	}

	s.logger.Info("post created", "post_id", created.ID.String(), "slug", created.Slug)
	return s.posts.GetByID(ctx, created.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	if id == uuid.Nil {
		return nil, ErrPostIDRequired
	}
	return s.posts.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, postSlug string) (*Post, error) {
	postSlug = strings.TrimSpace(postSlug)
	if postSlug == "" {
		return nil, ErrSlugRequired
	}
	return s.posts.GetBySlug(ctx, postSlug)
}

func (s *service) List(ctx context.Context) ([]*Post, error) {
	return s.posts.List(ctx)
}

// Update replaces the post's mutable fields. Publishing a previously
// unpublished post stamps published_at when it was never set.
func (s *service) Update(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	normalized, err := slug.Normalize(req.Slug)
	if err != nil || normalized == "" {
		return nil, ErrSlugInvalid
	}

	record, err := s.posts.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if record.Slug != normalized {
		if err := s.ensureSlugFree(ctx, normalized, record.ID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	record.Slug = normalized
	record.Title = req.Title
	record.Excerpt = req.Excerpt
	record.Body = req.Body
	record.ImageURL = req.ImageURL
	record.CategoryID = req.CategoryID
	record.AuthorID = req.AuthorID
	record.MetaTitle = req.MetaTitle
	record.MetaDescription = req.MetaDescription
	record.MetaKeywords = req.MetaKeywords
	record.SocialImageURL = req.SocialImageURL
	record.UpdatedAt = now

	if req.Published && !record.Published && record.PublishedAt == nil {
		record.PublishedAt = &now
	}
	record.Published = req.Published

	if _, err := s.posts.Update(ctx, record); err != nil {
		return nil, err
	}

	if err := s.posts.ReplaceTags(ctx, record.ID, req.TagIDs); err != nil {
		return nil, err
	}

	return s.posts.GetByID(ctx, record.ID)
}

// SetPublished toggles the published flag without touching the rest of the
// post. The first publish stamps published_at; later toggles leave it alone.
func (s *service) SetPublished(ctx context.Context, id uuid.UUID, published bool) (*Post, error) {
	if id == uuid.Nil {
		return nil, ErrPostIDRequired
	}

	record, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if record.Published == published {
		return record, nil
	}

	now := s.now()
	if published && record.PublishedAt == nil {
		record.PublishedAt = &now
	}
	record.Published = published
	record.UpdatedAt = now

	if _, err := s.posts.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("post publish state changed", "post_id", record.ID.String(), "published", published)
	return s.posts.GetByID(ctx, record.ID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrPostIDRequired
	}
	if _, err := s.posts.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", "post_id", id.String())
	return nil
}

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.categories.List(ctx)
}

func (s *service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	normalized, err := slug.Normalize(name)
	if err != nil {
		return nil, ErrSlugInvalid
	}
	return s.categories.Create(ctx, &Category{
		ID:        s.id(),
		Slug:      normalized,
		Name:      name,
		CreatedAt: s.now(),
	})
}

func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}

func (s *service) ListTags(ctx context.Context) ([]*Tag, error) {
	return s.tags.List(ctx)
}

func (s *service) CreateTag(ctx context.Context, name string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	normalized, err := slug.Normalize(name)
	if err != nil {
		return nil, ErrSlugInvalid
	}
	return s.tags.Create(ctx, &Tag{
		ID:        s.id(),
		Slug:      normalized,
		Name:      name,
		CreatedAt: s.now(),
	})
}

func (s *service) DeleteTag(ctx context.Context, id uuid.UUID) error {
	return s.tags.Delete(ctx, id)
}

func (s *service) ListAuthors(ctx context.Context) ([]*Author, error) {
	return s.authors.List(ctx)
}

func (s *service) CreateAuthor(ctx context.Context, req CreateAuthorRequest) (*Author, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	return s.authors.Create(ctx, &Author{
		ID:        s.id(),
		Name:      name,
		Email:     req.Email,
		AvatarURL: req.AvatarURL,
		CreatedAt: s.now(),
	})
}

func (s *service) ensureSlugFree(ctx context.Context, postSlug string, selfID uuid.UUID) error {
	existing, err := s.posts.GetBySlug(ctx, postSlug)
	if err == nil && existing != nil && existing.ID != selfID {
		return ErrSlugExists
	}
	if err != nil {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}
