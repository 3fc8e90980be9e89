package posts

import (
	"context"
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

func newTestService(t *testing.T) (Service, *MemoryPostRepository) {
	t.Helper()
	repo := NewMemoryPostRepository()
	svc := NewService(
		repo,
		NewMemoryCategoryRepository(),
		NewMemoryTagRepository(),
		NewMemoryAuthorRepository(),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
	)
	return svc, repo
}

func TestCreatePublishedPostStampsPublishedAt(t *testing.T) {
	svc, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreatePostRequest{
		Slug:      "parish-news",
		Title:     "Parish News",
		Body:      "# News",
		Published: true,
		AuthorID:  uuid.New(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PublishedAt == nil {
		t.Fatal("expected published_at to be set for a published post")
	}
	if created.Slug != "parish-news" {
		t.Fatalf("unexpected slug %q", created.Slug)
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	author := uuid.New()

	if _, err := svc.Create(ctx, CreatePostRequest{Slug: "fiesta", Title: "Fiesta", Body: "b", AuthorID: author}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, CreatePostRequest{Slug: "fiesta", Title: "Other", Body: "b", AuthorID: author}); !errors.Is(err, ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
}

func TestCreateValidationRunsBeforeStorage(t *testing.T) {
	svc, repo := newTestService(t)

	_, err := svc.Create(context.Background(), CreatePostRequest{Slug: "", Title: ""})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var errs validation.Errors
	if !errors.As(err, &errs) {
		t.Fatalf("expected validation.Errors, got %T", err)
	}
	if _, ok := errs["slug"]; !ok {
		t.Fatalf("expected slug validation failure: %v", errs)
	}
	stored, _ := repo.List(context.Background())
	if len(stored) != 0 {
		t.Fatalf("expected no records, got %d", len(stored))
	}
}

func TestUpdateReplacesTagsWholesale(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	author := uuid.New()
	tagA, tagB := uuid.New(), uuid.New()

	created, err := svc.Create(ctx, CreatePostRequest{
		Slug: "novena", Title: "Novena", Body: "b", AuthorID: author,
		TagIDs: []uuid.UUID{tagA, tagB},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := repo.TagIDs(created.ID); len(got) != 2 {
		t.Fatalf("expected 2 tag associations, got %d", len(got))
	}

	if _, err := svc.Update(ctx, UpdatePostRequest{
		ID: created.ID, Slug: "novena", Title: "Novena", Body: "b", AuthorID: author,
		TagIDs: nil,
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := repo.TagIDs(created.ID); len(got) != 0 {
		t.Fatalf("expected tag associations cleared, got %d", len(got))
	}
}

func TestUpdatePublishStampsTimestampOnce(t *testing.T) {
	repo := NewMemoryPostRepository()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, NewMemoryCategoryRepository(), NewMemoryTagRepository(), NewMemoryAuthorRepository(),
		WithClock(func() time.Time { return current }),
	)
	ctx := context.Background()
	author := uuid.New()

	created, err := svc.Create(ctx, CreatePostRequest{Slug: "draft", Title: "Draft", Body: "b", AuthorID: author})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PublishedAt != nil {
		t.Fatal("unpublished post must not carry published_at")
	}

	current = current.Add(24 * time.Hour)
	published, err := svc.Update(ctx, UpdatePostRequest{
		ID: created.ID, Slug: "draft", Title: "Draft", Body: "b", AuthorID: author, Published: true,
	})
	if err != nil {
		t.Fatalf("Update publish: %v", err)
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(current) {
		t.Fatalf("expected published_at %v, got %v", current, published.PublishedAt)
	}
	first := *published.PublishedAt

	current = current.Add(24 * time.Hour)
	republished, err := svc.Update(ctx, UpdatePostRequest{
		ID: created.ID, Slug: "draft", Title: "Draft v2", Body: "b", AuthorID: author, Published: true,
	})
	if err != nil {
		t.Fatalf("Update again: %v", err)
	}
	if !republished.PublishedAt.Equal(first) {
		t.Fatalf("published_at changed on re-save: %v vs %v", republished.PublishedAt, first)
	}
}

func TestSetPublishedTogglesFlagAndKeepsFirstStamp(t *testing.T) {
	repo := NewMemoryPostRepository()
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(repo, NewMemoryCategoryRepository(), NewMemoryTagRepository(), NewMemoryAuthorRepository(),
		WithClock(func() time.Time { return current }),
	)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreatePostRequest{Slug: "notice", Title: "Notice", Body: "b", AuthorID: uuid.New()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	current = current.Add(time.Hour)
	published, err := svc.SetPublished(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("SetPublished: %v", err)
	}
	if !published.Published || published.PublishedAt == nil || !published.PublishedAt.Equal(current) {
		t.Fatalf("expected published at %v, got %+v", current, published)
	}
	first := *published.PublishedAt

	current = current.Add(time.Hour)
	unpublished, err := svc.SetPublished(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("SetPublished off: %v", err)
	}
	if unpublished.Published {
		t.Fatal("expected post to be unpublished")
	}

	current = current.Add(time.Hour)
	again, err := svc.SetPublished(ctx, created.ID, true)
	if err != nil {
		t.Fatalf("SetPublished again: %v", err)
	}
	if !again.PublishedAt.Equal(first) {
		t.Fatalf("published_at changed on republish: %v vs %v", again.PublishedAt, first)
	}
}

func TestDeleteMissingPostReturnsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), uuid.New())
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
