package unified

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SantoNinoNZ/admin-sub000/internal/posts"
	"github.com/SantoNinoNZ/admin-sub000/internal/staticposts"
)

type fakeDatabaseStore struct {
	records    []*posts.Post
	listErr    error
	updated    []posts.UpdatePostRequest
	deleted    []uuid.UUID
	lastUpdate *posts.Post
}

func (f *fakeDatabaseStore) List(context.Context) ([]*posts.Post, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeDatabaseStore) Update(_ context.Context, req posts.UpdatePostRequest) (*posts.Post, error) {
	f.updated = append(f.updated, req)
	if f.lastUpdate != nil {
		return f.lastUpdate, nil
	}
	return &posts.Post{ID: req.ID, Slug: req.Slug, Title: req.Title}, nil
}

func (f *fakeDatabaseStore) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStaticStore struct {
	records []*staticposts.StaticPost
	loadErr error
	updated []staticposts.SaveRequest
	deleted []string
}

func (f *fakeStaticStore) Load(context.Context) ([]*staticposts.StaticPost, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.records, nil
}

func (f *fakeStaticStore) Update(_ context.Context, req staticposts.SaveRequest) (*staticposts.StaticPost, error) {
	f.updated = append(f.updated, req)
	return &staticposts.StaticPost{FileName: req.FileName, Slug: req.Slug, Title: req.Title, SHA: "next-sha", Source: staticposts.Source}, nil
}

func (f *fakeStaticStore) Delete(_ context.Context, name, _ string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func dbPost(slug string, updated time.Time) *posts.Post {
	return &posts.Post{ID: uuid.New(), Slug: slug, Title: slug, UpdatedAt: updated}
}

func staticPost(name string, date time.Time) *staticposts.StaticPost {
	return &staticposts.StaticPost{
		FileName: name,
		Slug:     name,
		Title:    name,
		Date:     &date,
		SHA:      "sha-" + name,
		Source:   staticposts.Source,
	}
}

func TestListMergesAndSortsDescending(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	database := &fakeDatabaseStore{records: []*posts.Post{
		dbPost("oldest", base),
		dbPost("newest", base.Add(72*time.Hour)),
	}}
	static := &fakeStaticStore{records: []*staticposts.StaticPost{
		staticPost("middle.md", base.Add(24*time.Hour)),
	}}

	svc := NewService(database, static)
	merged, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(merged) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(merged))
	}
	wantOrder := []string{"newest", "middle.md", "oldest"}
	for i, want := range wantOrder {
		if merged[i].Slug() != want {
			t.Fatalf("position %d: want %q, got %q", i, want, merged[i].Slug())
		}
	}
	if merged[1].Source != SourceStatic {
		t.Fatalf("provenance lost: %v", merged[1].Source)
	}
}

func TestListFailsWhenDatabaseSourceFails(t *testing.T) {
	database := &fakeDatabaseStore{listErr: errors.New("backend unreachable")}
	static := &fakeStaticStore{}

	svc := NewService(database, static)
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatal("expected database failure to fail the aggregation")
	}
}

func TestListToleratesStaticSourceFailure(t *testing.T) {
	database := &fakeDatabaseStore{records: []*posts.Post{dbPost("only", time.Now())}}
	static := &fakeStaticStore{loadErr: errors.New("repo unavailable")}

	svc := NewService(database, static)
	merged, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(merged) != 1 || merged[0].Slug() != "only" {
		t.Fatalf("expected degraded database-only listing, got %+v", merged)
	}
}

func TestUpdateRoutesByProvenance(t *testing.T) {
	database := &fakeDatabaseStore{}
	static := &fakeStaticStore{}
	svc := NewService(database, static)
	ctx := context.Background()

	record := dbPost("db-post", time.Now())
	if _, err := svc.Update(ctx, FromDatabase(record), EditInput{Slug: "db-post", Title: "t", AuthorID: uuid.New()}); err != nil {
		t.Fatalf("Update database post: %v", err)
	}
	if len(database.updated) != 1 || len(static.updated) != 0 {
		t.Fatal("database post routed to wrong backend")
	}

	file := staticPost("file.md", time.Now())
	if _, err := svc.Update(ctx, FromStatic(file), EditInput{Slug: "file", Title: "t"}); err != nil {
		t.Fatalf("Update static post: %v", err)
	}
	if len(static.updated) != 1 {
		t.Fatal("static post routed to wrong backend")
	}
	if static.updated[0].ExpectedSHA != file.SHA {
		t.Fatalf("stored content hash not presented: %q", static.updated[0].ExpectedSHA)
	}
}

func TestDeleteRoutesByProvenance(t *testing.T) {
	database := &fakeDatabaseStore{}
	static := &fakeStaticStore{}
	svc := NewService(database, static)
	ctx := context.Background()

	record := dbPost("db-post", time.Now())
	if err := svc.Delete(ctx, FromDatabase(record)); err != nil {
		t.Fatalf("Delete database post: %v", err)
	}
	file := staticPost("file.md", time.Now())
	if err := svc.Delete(ctx, FromStatic(file)); err != nil {
		t.Fatalf("Delete static post: %v", err)
	}
	if len(database.deleted) != 1 || len(static.deleted) != 1 {
		t.Fatal("deletes not routed one per backend")
	}
}

func TestMalformedPostRejectedBeforeAnyCall(t *testing.T) {
	database := &fakeDatabaseStore{}
	static := &fakeStaticStore{}
	svc := NewService(database, static)
	ctx := context.Background()

	if err := svc.Delete(ctx, Post{Source: "mystery"}); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
	if err := svc.Delete(ctx, Post{Source: SourceDatabase, Database: &posts.Post{}}); !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("expected ErrMissingIdentifier, got %v", err)
	}
	if len(database.deleted) != 0 && len(static.deleted) != 0 {
		t.Fatal("malformed posts must not reach a backend")
	}
}
