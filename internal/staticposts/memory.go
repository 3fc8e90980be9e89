package staticposts

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"sync"
)

// MemoryContentsClient is an in-memory ContentsClient used by tests and by
// hosts running without a site repository binding. SHAs are content hashes,
// so the optimistic concurrency checks behave like the real contents API.
type MemoryContentsClient struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryContentsClient() *MemoryContentsClient {
	return &MemoryContentsClient{files: make(map[string][]byte)}
}

func (m *MemoryContentsClient) ListDirectory(_ context.Context) ([]FileDescriptor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]FileDescriptor, 0, len(m.files))
	for name, content := range m.files {
		out = append(out, FileDescriptor{Name: name, SHA: contentSHA(content)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryContentsClient) GetFile(_ context.Context, name string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.files[name]
	if !ok {
		return nil, "", &NotFoundError{Name: name}
	}
	copied := append([]byte(nil), content...)
	return copied, contentSHA(content), nil
}

func (m *MemoryContentsClient) PutFile(_ context.Context, name string, content []byte, expectedSHA, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.files[name]
	if exists && expectedSHA != contentSHA(existing) {
		return "", &ConflictError{Name: name, ExpectedSHA: expectedSHA}
	}
	if !exists && expectedSHA != "" {
		return "", &ConflictError{Name: name, ExpectedSHA: expectedSHA}
	}

	copied := append([]byte(nil), content...)
	m.files[name] = copied
	return contentSHA(copied), nil
}

func (m *MemoryContentsClient) DeleteFile(_ context.Context, name, expectedSHA, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.files[name]
	if !ok {
		return &NotFoundError{Name: name}
	}
	if expectedSHA != contentSHA(existing) {
		return &ConflictError{Name: name, ExpectedSHA: expectedSHA}
	}
	delete(m.files, name)
	return nil
}

func contentSHA(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}
