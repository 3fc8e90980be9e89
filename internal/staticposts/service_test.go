package staticposts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type fakeContentsClient struct {
	mu        sync.Mutex
	files     map[string]fakeFile
	inflight  int
	peak      int
	listOrder []string
}

type fakeFile struct {
	content []byte
	sha     string
}

func newFakeClient() *fakeContentsClient {
	return &fakeContentsClient{files: map[string]fakeFile{}}
}

func (f *fakeContentsClient) put(name, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[name] = fakeFile{content: []byte(content), sha: fmt.Sprintf("sha-%s-%d", name, len(content))}
	f.listOrder = append(f.listOrder, name)
}

func (f *fakeContentsClient) ListDirectory(context.Context) ([]FileDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FileDescriptor, 0, len(f.listOrder))
	for _, name := range f.listOrder {
		out = append(out, FileDescriptor{Name: name, SHA: f.files[name].sha})
	}
	return out, nil
}

func (f *fakeContentsClient) GetFile(_ context.Context, name string) ([]byte, string, error) {
	f.mu.Lock()
	f.inflight++
	if f.inflight > f.peak {
		f.peak = f.inflight
	}
	file, ok := f.files[name]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inflight--
		f.mu.Unlock()
	}()

	if !ok {
		return nil, "", &NotFoundError{Name: name}
	}
	return file.content, file.sha, nil
}

func (f *fakeContentsClient) PutFile(_ context.Context, name string, content []byte, expectedSHA, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, exists := f.files[name]
	if exists && existing.sha != expectedSHA {
		return "", &ConflictError{Name: name, ExpectedSHA: expectedSHA}
	}
	if !exists && expectedSHA != "" {
		return "", &ConflictError{Name: name, ExpectedSHA: expectedSHA}
	}

	sha := fmt.Sprintf("sha-%s-%d", name, len(content))
	f.files[name] = fakeFile{content: content, sha: sha}
	if !exists {
		f.listOrder = append(f.listOrder, name)
	}
	return sha, nil
}

func (f *fakeContentsClient) DeleteFile(_ context.Context, name, expectedSHA, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, exists := f.files[name]
	if !exists {
		return &NotFoundError{Name: name}
	}
	if existing.sha != expectedSHA {
		return &ConflictError{Name: name, ExpectedSHA: expectedSHA}
	}
	delete(f.files, name)
	for i, listed := range f.listOrder {
		if listed == name {
			f.listOrder = append(f.listOrder[:i], f.listOrder[i+1:]...)
			break
		}
	}
	return nil
}

func TestGetParsesFrontmatterAndBody(t *testing.T) {
	client := newFakeClient()
	client.put("fiesta.md", "---\ntitle: Fiesta\nslug: fiesta-2025\ndate: \"2025-01-12\"\n---\n# Fiesta\n\nBody here.\n")
	svc := NewService(client)

	post, err := svc.Get(context.Background(), "fiesta.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.Title != "Fiesta" || post.Slug != "fiesta-2025" {
		t.Fatalf("unexpected metadata: %+v", post)
	}
	if !strings.Contains(post.Body, "# Fiesta") {
		t.Fatalf("body not preserved: %q", post.Body)
	}
	if post.Date == nil || post.Date.Year() != 2025 {
		t.Fatalf("date not parsed: %v", post.Date)
	}
	if post.Source != Source {
		t.Fatalf("expected static source, got %q", post.Source)
	}
}

func TestGetWithoutFrontmatterTreatsWholeFileAsBody(t *testing.T) {
	client := newFakeClient()
	client.put("note.md", "Just a body, no delimiters.\n")
	svc := NewService(client)

	post, err := svc.Get(context.Background(), "note.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.Title != "" {
		t.Fatalf("expected empty title, got %q", post.Title)
	}
	if post.Slug != "note" {
		t.Fatalf("expected slug fallback to file name, got %q", post.Slug)
	}
	if !strings.Contains(post.Body, "no delimiters") {
		t.Fatalf("body lost: %q", post.Body)
	}
}

func TestGetSlugFallbackStripsAnyExtension(t *testing.T) {
	client := newFakeClient()
	client.put("novena.markdown", "---\ntitle: Novena\n---\nSchedule inside.\n")
	svc := NewService(client)

	post, err := svc.Get(context.Background(), "novena.markdown")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.Slug != "novena" {
		t.Fatalf("expected extension stripped from slug fallback, got %q", post.Slug)
	}
}

func TestUpdateWithStaleHashConflicts(t *testing.T) {
	client := newFakeClient()
	client.put("fiesta.md", "---\ntitle: Fiesta\n---\nold body\n")
	svc := NewService(client)
	ctx := context.Background()

	before, err := svc.Get(ctx, "fiesta.md")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	_, err = svc.Update(ctx, SaveRequest{
		FileName:    "fiesta.md",
		Title:       "Fiesta",
		Body:        "new body",
		ExpectedSHA: "stale-hash",
	})
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}

	after, err := svc.Get(ctx, "fiesta.md")
	if err != nil {
		t.Fatalf("Get after conflict: %v", err)
	}
	if after.SHA != before.SHA || !strings.Contains(after.Body, "old body") {
		t.Fatal("conflicting write must not change the file")
	}

	updated, err := svc.Update(ctx, SaveRequest{
		FileName:    "fiesta.md",
		Title:       "Fiesta",
		Body:        "new body",
		ExpectedSHA: before.SHA,
	})
	if err != nil {
		t.Fatalf("Update with current hash: %v", err)
	}
	if !strings.Contains(updated.Body, "new body") {
		t.Fatalf("update not applied: %q", updated.Body)
	}
}

func TestSaveRoundTripsFrontmatter(t *testing.T) {
	client := newFakeClient()
	svc := NewService(client)

	created, err := svc.Create(context.Background(), SaveRequest{
		FileName: "new-post.md",
		Title:    "New Post",
		Slug:     "new-post",
		Excerpt:  "Short summary",
		ImageURL: "https://example.org/cover.jpg",
		Date:     "2025-03-09",
		Body:     "Body line one.\n\nBody line two.\n",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Title != "New Post" || created.Excerpt != "Short summary" || created.ImageURL != "https://example.org/cover.jpg" {
		t.Fatalf("frontmatter did not round trip: %+v", created)
	}
	if created.Body != "Body line one.\n\nBody line two.\n" {
		t.Fatalf("body changed in round trip: %q", created.Body)
	}
}

func TestLoadBoundsConcurrentFetches(t *testing.T) {
	client := newFakeClient()
	for i := 0; i < 17; i++ {
		client.put(fmt.Sprintf("post-%02d.md", i), fmt.Sprintf("---\ntitle: Post %d\n---\nbody\n", i))
	}
	svc := NewService(client, WithBatchSize(5))

	loaded, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 17 {
		t.Fatalf("expected 17 posts, got %d", len(loaded))
	}
	if client.peak > 5 {
		t.Fatalf("batch size exceeded: %d concurrent fetches", client.peak)
	}
}

func TestListTruncatesToLimit(t *testing.T) {
	client := newFakeClient()
	for i := 0; i < 8; i++ {
		client.put(fmt.Sprintf("post-%d.md", i), "body")
	}
	svc := NewService(client, WithMaxFiles(3))

	descriptors, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(descriptors) != 3 {
		t.Fatalf("expected 3 descriptors, got %d", len(descriptors))
	}
}
