package posts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryPostRepository is an in-memory implementation for scaffolding and tests.
type MemoryPostRepository struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]*Post
	slugIndex map[string]uuid.UUID
}

// NewMemoryPostRepository creates an empty in-memory post repository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		records:   make(map[uuid.UUID]*Post),
		slugIndex: make(map[string]uuid.UUID),
	}
}

// Upsert inserts the record or replaces the entry sharing its slug.
func (m *MemoryPostRepository) Upsert(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := clonePost(record)
	if existingID, ok := m.slugIndex[copied.Slug]; ok {
		existing := m.records[existingID]
		copied.ID = existing.ID
		copied.CreatedAt = existing.CreatedAt
	}
	if copied.UpdatedAt.IsZero() {
		copied.UpdatedAt = time.Now()
	}
	m.records[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePost(copied), nil
}

// GetByID retrieves a post by identifier.
func (m *MemoryPostRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: id.String()}
	}
	return clonePost(rec), nil
}

// GetBySlug retrieves a post by slug, returning NotFoundError when absent.
func (m *MemoryPostRepository) GetBySlug(_ context.Context, slug string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return clonePost(m.records[id]), nil
}

// List returns every stored post.
func (m *MemoryPostRepository) List(_ context.Context) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Post, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, clonePost(rec))
	}
	return out, nil
}

// DeleteBySlug removes the post with the supplied slug.
func (m *MemoryPostRepository) DeleteBySlug(_ context.Context, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return &NotFoundError{Resource: "post", Key: slug}
	}
	delete(m.records, id)
	delete(m.slugIndex, slug)
	return nil
}

func clonePost(input *Post) *Post {
	if input == nil {
		return nil
	}
	copied := *input
	copied.Tags = append([]string(nil), input.Tags...)
	if input.Summary != nil {
		summary := *input.Summary
		copied.Summary = &summary
	}
	if input.DeletedAt != nil {
		deleted := *input.DeletedAt
		copied.DeletedAt = &deleted
	}
	return &copied
}
