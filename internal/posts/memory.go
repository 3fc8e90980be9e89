package posts

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryPostRepository is an in-memory PostRepository used by tests and by
// hosts running without a database binding.
type MemoryPostRepository struct {
	mu        sync.RWMutex
	posts     map[uuid.UUID]*Post
	slugIndex map[string]uuid.UUID
	tags      map[uuid.UUID][]uuid.UUID
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts:     make(map[uuid.UUID]*Post),
		slugIndex: make(map[string]uuid.UUID),
		tags:      make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *MemoryPostRepository) Create(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := clonePost(record)
	m.posts[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePost(copied), nil
}

func (m *MemoryPostRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.posts[id]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: id.String()}
	}
	return clonePost(rec), nil
}

func (m *MemoryPostRepository) GetBySlug(_ context.Context, slug string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return clonePost(m.posts[id]), nil
}

func (m *MemoryPostRepository) List(_ context.Context) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Post, 0, len(m.posts))
	for _, rec := range m.posts {
		out = append(out, clonePost(rec))
	}
	return out, nil
}

func (m *MemoryPostRepository) Update(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.posts[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: record.ID.String()}
	}
	delete(m.slugIndex, existing.Slug)

	copied := clonePost(record)
	m.posts[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePost(copied), nil
}

func (m *MemoryPostRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec, ok := m.posts[id]; ok {
		delete(m.slugIndex, rec.Slug)
	}
	delete(m.posts, id)
	delete(m.tags, id)
	return nil
}

func (m *MemoryPostRepository) ReplaceTags(_ context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tags[postID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

// TagIDs exposes the stored associations for assertions in tests.
func (m *MemoryPostRepository) TagIDs(postID uuid.UUID) []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]uuid.UUID(nil), m.tags[postID]...)
}

// MemoryCategoryRepository is an in-memory CategoryRepository.
type MemoryCategoryRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Category
}

func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{records: make(map[uuid.UUID]*Category)}
}

func (m *MemoryCategoryRepository) Create(_ context.Context, record *Category) (*Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records[record.ID] = &copied
	return &copied, nil
}

func (m *MemoryCategoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "category", Key: id.String()}
	}
	copied := *rec
	return &copied, nil
}

func (m *MemoryCategoryRepository) List(_ context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Category, 0, len(m.records))
	for _, rec := range m.records {
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MemoryCategoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// MemoryTagRepository is an in-memory TagRepository.
type MemoryTagRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Tag
}

func NewMemoryTagRepository() *MemoryTagRepository {
	return &MemoryTagRepository{records: make(map[uuid.UUID]*Tag)}
}

func (m *MemoryTagRepository) Create(_ context.Context, record *Tag) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records[record.ID] = &copied
	return &copied, nil
}

func (m *MemoryTagRepository) List(_ context.Context) ([]*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Tag, 0, len(m.records))
	for _, rec := range m.records {
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MemoryTagRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

// MemoryAuthorRepository is an in-memory AuthorRepository.
type MemoryAuthorRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Author
}

func NewMemoryAuthorRepository() *MemoryAuthorRepository {
	return &MemoryAuthorRepository{records: make(map[uuid.UUID]*Author)}
}

func (m *MemoryAuthorRepository) Create(_ context.Context, record *Author) (*Author, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *record
	m.records[record.ID] = &copied
	return &copied, nil
}

func (m *MemoryAuthorRepository) GetByID(_ context.Context, id uuid.UUID) (*Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "author", Key: id.String()}
	}
	copied := *rec
	return &copied, nil
}

func (m *MemoryAuthorRepository) List(_ context.Context) ([]*Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Author, 0, len(m.records))
	for _, rec := range m.records {
		copied := *rec
		out = append(out, &copied)
	}
	return out, nil
}

func clonePost(record *Post) *Post {
	if record == nil {
		return nil
	}
	copied := *record
	if record.Tags != nil {
		copied.Tags = make([]*Tag, len(record.Tags))
		for i, tag := range record.Tags {
			tagCopy := *tag
			copied.Tags[i] = &tagCopy
		}
	}
	return &copied
}
