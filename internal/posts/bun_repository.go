package posts

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPostRepository implements PostRepository on top of go-repository-bun,
// with the post/tag join handled through raw bun transactions.
type BunPostRepository struct {
	db   *bun.DB
	repo repository.Repository[*Post]
}

func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return NewBunPostRepositoryWithCache(db, nil, nil)
}

func NewBunPostRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPostRepository {
	db.RegisterModel((*PostTag)(nil))
	base := NewPostRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunPostRepository{db: db, repo: wrapped}
}

func (r *BunPostRepository) Create(ctx context.Context, record *Post) (*Post, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	record, err := r.repo.GetByID(ctx, id.String(), withPostDetails())
	if err != nil {
		return nil, mapRepositoryError(err, "post", id.String())
	}
	return record, nil
}

func (r *BunPostRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug, withPostDetails())
	if err != nil {
		return nil, mapRepositoryError(err, "post", slug)
	}
	return record, nil
}

// List returns posts with category, author, and tags loaded, mirroring the
// posts_with_details read view.
func (r *BunPostRepository) List(ctx context.Context) ([]*Post, error) {
	records, _, err := r.repo.List(ctx, withPostDetails())
	return records, err
}

func (r *BunPostRepository) Update(ctx context.Context, record *Post) (*Post, error) {
	return r.repo.Update(ctx, record)
}

func (r *BunPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PostTag)(nil)).
			Where("?TableAlias.post_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete post tags: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*Post)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		return nil
	})
	return err
}

// ReplaceTags removes every tag association for the post and inserts the
// provided set. An empty set therefore clears all tags.
func (r *BunPostRepository) ReplaceTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PostTag)(nil)).
			Where("?TableAlias.post_id = ?", postID).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear post tags: %w", err)
		}
		if len(tagIDs) == 0 {
			return nil
		}
		rows := make([]*PostTag, 0, len(tagIDs))
		for _, tagID := range tagIDs {
			rows = append(rows, &PostTag{PostID: postID, TagID: tagID})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert post tags: %w", err)
		}
		return nil
	})
}

func withPostDetails() repository.SelectCriteria {
	return repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Category").Relation("Author").Relation("Tags")
	})
}

// BunCategoryRepository implements CategoryRepository with optional caching.
type BunCategoryRepository struct {
	repo repository.Repository[*Category]
}

func NewBunCategoryRepository(db *bun.DB) *BunCategoryRepository {
	return NewBunCategoryRepositoryWithCache(db, nil, nil)
}

func NewBunCategoryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunCategoryRepository {
	base := NewCategoryRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunCategoryRepository{repo: wrapped}
}

func (r *BunCategoryRepository) Create(ctx context.Context, record *Category) (*Category, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "category", id.String())
	}
	return record, nil
}

func (r *BunCategoryRepository) List(ctx context.Context) ([]*Category, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Category{ID: id})
}

// BunTagRepository implements TagRepository with optional caching.
type BunTagRepository struct {
	repo repository.Repository[*Tag]
}

func NewBunTagRepository(db *bun.DB) *BunTagRepository {
	return NewBunTagRepositoryWithCache(db, nil, nil)
}

func NewBunTagRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunTagRepository {
	base := NewTagRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunTagRepository{repo: wrapped}
}

func (r *BunTagRepository) Create(ctx context.Context, record *Tag) (*Tag, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunTagRepository) List(ctx context.Context) ([]*Tag, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunTagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Tag{ID: id})
}

// BunAuthorRepository implements AuthorRepository with optional caching.
type BunAuthorRepository struct {
	repo repository.Repository[*Author]
}

func NewBunAuthorRepository(db *bun.DB) *BunAuthorRepository {
	return NewBunAuthorRepositoryWithCache(db, nil, nil)
}

func NewBunAuthorRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunAuthorRepository {
	base := NewAuthorRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunAuthorRepository{repo: wrapped}
}

func (r *BunAuthorRepository) Create(ctx context.Context, record *Author) (*Author, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunAuthorRepository) GetByID(ctx context.Context, id uuid.UUID) (*Author, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "author", id.String())
	}
	return record, nil
}

func (r *BunAuthorRepository) List(ctx context.Context) ([]*Author, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
