package posts

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPostRepository persists the post index through go-repository-bun.
type BunPostRepository struct {
	repo repository.Repository[*Post]
}

func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return NewBunPostRepositoryWithCache(db, nil, nil)
}

func NewBunPostRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPostRepository {
	base := NewPostRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunPostRepository{repo: wrapped}
}

func (r *BunPostRepository) Upsert(ctx context.Context, record *Post) (*Post, error) {
	existing, err := r.repo.GetByIdentifier(ctx, record.Slug)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			created, createErr := r.repo.Create(ctx, record)
			if createErr != nil {
				return nil, fmt.Errorf("post repository create %s: %w", record.Slug, createErr)
			}
			return created, nil
		}
		return nil, mapRepositoryError(err, "post", record.Slug)
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("post repository update %s: %w", record.Slug, err)
	}
	return updated, nil
}

func (r *BunPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "post", id.String())
	}
	return result, nil
}

func (r *BunPostRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	result, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "post", slug)
	}
	return result, nil
}

func (r *BunPostRepository) List(ctx context.Context) ([]*Post, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunPostRepository) DeleteBySlug(ctx context.Context, slug string) error {
	existing, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return mapRepositoryError(err, "post", slug)
	}
	return r.repo.Delete(ctx, &Post{ID: existing.ID})
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
