package gametype

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/twilightcoders/cardgames/internal/models"
)

// Repository persists game types. Implementations must reject (never overwrite) a write whose
// shortId or url is already held by another record, atomically with the write itself, and
// report that as a *ConflictError. Update applies only while the stored revision equals
// expectedRevision, otherwise it returns StaleRevision. Misses are reported with ErrNotFound.
type Repository interface {
	Insert(ctx context.Context, g *models.GameConfiguration) error
	Get(ctx context.Context, id uuid.UUID) (*models.GameConfiguration, error)
	GetByShortID(ctx context.Context, shortID string) (*models.GameConfiguration, error)
	GetByURL(ctx context.Context, url string) (*models.GameConfiguration, error)
	List(ctx context.Context) ([]*models.GameConfiguration, error)
	Update(ctx context.Context, g *models.GameConfiguration, expectedRevision int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

// MemoryRepository keeps game types in process memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*models.GameConfiguration
	byShort map[string]uuid.UUID
	byURL   map[string]uuid.UUID
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[uuid.UUID]*models.GameConfiguration),
		byShort: make(map[string]uuid.UUID),
		byURL:   make(map[string]uuid.UUID),
	}
}

func (r *MemoryRepository) Insert(_ context.Context, g *models.GameConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[g.ID]; ok {
		return &ConflictError{Field: "id", Value: g.ID.String()}
	}
	if _, ok := r.byShort[g.ShortID]; ok {
		return &ConflictError{Field: "shortId", Value: g.ShortID}
	}
	if _, ok := r.byURL[g.URL]; ok {
		return &ConflictError{Field: "url", Value: g.URL}
	}

	r.byID[g.ID] = g.Clone()
	r.byShort[g.ShortID] = g.ID
	r.byURL[g.URL] = g.ID
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*models.GameConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return nil, NotFoundByID(id.String())
	}
	return g.Clone(), nil
}

func (r *MemoryRepository) GetByShortID(_ context.Context, shortID string) (*models.GameConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byShort[shortID]
	if !ok {
		return nil, NotFoundByShortID(shortID)
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) GetByURL(_ context.Context, url string) (*models.GameConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byURL[url]
	if !ok {
		return nil, NotFoundByURL(url)
	}
	return r.byID[id].Clone(), nil
}

// List returns every game type, oldest first, matching the SQL backends.
func (r *MemoryRepository) List(_ context.Context) ([]*models.GameConfiguration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.GameConfiguration, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, g.Clone())
	}
	slices.SortFunc(out, func(a, b *models.GameConfiguration) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out, nil
}

// Update replaces the stored record with the same id. The url may change; the shortId may not.
func (r *MemoryRepository) Update(_ context.Context, g *models.GameConfiguration, expectedRevision int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[g.ID]
	if !ok {
		return NotFoundByID(g.ID.String())
	}
	if old.Revision != expectedRevision {
		return StaleRevision(expectedRevision)
	}
	if owner, taken := r.byURL[g.URL]; taken && owner != g.ID {
		return &ConflictError{Field: "url", Value: g.URL}
	}

	delete(r.byURL, old.URL)
	r.byURL[g.URL] = g.ID
	r.byID[g.ID] = g.Clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[id]
	if !ok {
		return NotFoundByID(id.String())
	}
	delete(r.byShort, g.ShortID)
	delete(r.byURL, g.URL)
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.byID)
	clear(r.byShort)
	clear(r.byURL)
	return nil
}
