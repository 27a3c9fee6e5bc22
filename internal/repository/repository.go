// Package repository provides the anti-corruption layer between the domain
// and storage layers. The generic repository owns id generation, timestamps,
// and the fixed filter-sort-page query order; entity repositories extend it
// with domain-specific finders and legacy-tolerant mapping.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pathwayhq/pathway/internal/domain"
	"github.com/pathwayhq/pathway/internal/storage"
)

// Filter narrows queries by top-level field equality. Keys are JSON field
// names of the entity.
type Filter map[string]any

// QueryOptions orders and pages FindMany results. Filtering, sorting, and
// pagination always apply in that order, identically on every backend.
type QueryOptions struct {
	OrderBy        string
	OrderDirection storage.Direction
	Limit          int
	Offset         int
}

// Repository is the generic CRUD layer over a storage port, parameterized by
// the entity pointer type. Every write is exactly one port call; the
// repository never caches.
type Repository[T domain.Entity] struct {
	port       storage.Port
	collection string
	newEntity  func() T
	now        func() time.Time
	newID      func() string
	notFound   error

	// normalize, when set, repairs decoded entities: zero-value defaults for
	// fields that older stored records may lack.
	normalize func(T)
}

// New creates a generic repository for one collection. notFound is the
// entity-specific sentinel returned when lookups miss.
func New[T domain.Entity](port storage.Port, collection string, newEntity func() T, notFound error) *Repository[T] {
	return &Repository[T]{
		port:       port,
		collection: collection,
		newEntity:  newEntity,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
		notFound:   notFound,
	}
}

// FindByID retrieves one entity by id.
func (r *Repository[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	data, err := r.port.Get(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return zero, r.notFound
		}
		return zero, &domain.StorageError{Op: "get", Collection: r.collection, Key: id, Err: err}
	}
	return r.decode(data)
}

// FindOne returns the first entity matching the filter, or the not-found
// sentinel. Ordering follows the same determinism rules as FindMany, so
// "first" is stable across backends.
func (r *Repository[T]) FindOne(ctx context.Context, filter Filter) (T, error) {
	var zero T
	items, err := r.FindMany(ctx, filter, QueryOptions{Limit: 1})
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, r.notFound
	}
	return items[0], nil
}

// FindMany returns all entities matching the filter, sorted and paged per
// opts. Documents that fail to decode are skipped; partial legacy data must
// not break listings.
func (r *Repository[T]) FindMany(ctx context.Context, filter Filter, opts QueryOptions) ([]T, error) {
	docs, err := r.port.List(ctx, r.collection, storage.ListOptions{
		Filter:         filter,
		OrderBy:        opts.OrderBy,
		OrderDirection: opts.OrderDirection,
		Limit:          opts.Limit,
		Offset:         opts.Offset,
	})
	if err != nil {
		return nil, &domain.StorageError{Op: "list", Collection: r.collection, Err: err}
	}

	items := make([]T, 0, len(docs))
	for _, data := range docs {
		entity, err := r.decode(data)
		if err != nil {
			continue
		}
		items = append(items, entity)
	}
	return items, nil
}

// Create persists a new entity, generating an id when absent and stamping
// createdAt/updatedAt.
func (r *Repository[T]) Create(ctx context.Context, entity T) (T, error) {
	var zero T
	if entity.EntityID() == "" {
		entity.SetEntityID(r.newID())
	}
	now := r.now().UTC()
	entity.Stamp(now, now)

	if err := r.save(ctx, entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// Update applies a mutation to an existing entity and re-stamps updatedAt.
// Returns the not-found sentinel if the entity is absent.
func (r *Repository[T]) Update(ctx context.Context, id string, mutate func(T)) (T, error) {
	var zero T
	entity, err := r.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}

	mutate(entity)
	entity.SetEntityID(id) // mutation must not reassign identity
	entity.Touch(r.now().UTC())

	if err := r.save(ctx, entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// Save persists the entity as-is, re-stamping updatedAt. Used by entity
// repositories that mutate a loaded entity directly.
func (r *Repository[T]) Save(ctx context.Context, entity T) (T, error) {
	var zero T
	if entity.EntityID() == "" {
		return zero, &domain.ValidationError{Field: "id", Reason: "missing identifier"}
	}
	entity.Touch(r.now().UTC())
	if err := r.save(ctx, entity); err != nil {
		return zero, err
	}
	return entity, nil
}

// Delete removes an entity. Returns false without error when it was already
// absent.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	err := r.port.Delete(ctx, r.collection, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, &domain.StorageError{Op: "delete", Collection: r.collection, Key: id, Err: err}
	}
	return true, nil
}

// Exists reports whether an entity is present.
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.port.Exists(ctx, r.collection, id)
	if err != nil {
		return false, &domain.StorageError{Op: "exists", Collection: r.collection, Key: id, Err: err}
	}
	return ok, nil
}

func (r *Repository[T]) save(ctx context.Context, entity T) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.collection, err)
	}
	if err := r.port.Save(ctx, r.collection, entity.EntityID(), data, storage.SaveOptions{}); err != nil {
		return &domain.StorageError{Op: "save", Collection: r.collection, Key: entity.EntityID(), Err: err}
	}
	return nil
}

func (r *Repository[T]) decode(data []byte) (T, error) {
	entity := r.newEntity()
	if err := json.Unmarshal(data, entity); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", r.collection, err)
	}
	if r.normalize != nil {
		r.normalize(entity)
	}
	return entity, nil
}
