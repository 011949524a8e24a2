// internal/gametype/store.go
package gametype

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/twilightcoders/cardgames/internal/models"
)

// ShortIDLength is the number of characters in a generated shortId.
const ShortIDLength = 10

// ShortIDCache is an optional read-through cache for lookups by shortId.
//
// Every shortId has a generation that Invalidate advances. Get reports the generation it
// observed (with a nil record on a miss), and Set stores g only if the generation is still the
// one passed in, so a fill racing an update or delete can never outlive the invalidation.
type ShortIDCache interface {
	Get(ctx context.Context, shortID string) (g *models.GameConfiguration, generation int64, err error)
	Set(ctx context.Context, g *models.GameConfiguration, generation int64) (stored bool, err error)
	Invalidate(ctx context.Context, shortID string) error
}

// Store is the single entry point for creating, reading, updating and deleting game types.
// Every write is validated in full before it reaches the repository.
type Store struct {
	repo       Repository
	cache      ShortIDCache
	log        *logrus.Logger
	newShortID func() string
	now        func() time.Time
}

type Option func(*Store)

// WithCache enables the shortId read-through cache.
func WithCache(c ShortIDCache) Option {
	return func(s *Store) { s.cache = c }
}

func WithLogger(l *logrus.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithShortIDGenerator overrides shortId generation.
func WithShortIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newShortID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore wraps repo. Without WithLogger the store logs nothing.
func NewStore(repo Repository, opts ...Option) *Store {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Store{
		repo:       repo,
		log:        discard,
		newShortID: NewShortID,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewShortID returns ShortIDLength URL-safe characters drawn from a random UUID.
func NewShortID() string {
	id := uuid.New()
	return base64.RawURLEncoding.EncodeToString(id[:])[:ShortIDLength]
}

func (s *Store) timestamp() time.Time {
	// postgres keeps microseconds; truncating keeps round trips equal on every backend
	return s.now().UTC().Truncate(time.Microsecond)
}

// Create builds a game type from the defaults plus in, validates it, assigns id and shortId,
// and persists it once.
func (s *Store) Create(ctx context.Context, in models.GameTypeInput) (*models.GameConfiguration, error) {
	g := models.DefaultGameConfiguration()
	in.ApplyTo(&g)
	g.Normalize()

	if err := Validate(&g); err != nil {
		return nil, err
	}

	g.ID = uuid.New()
	g.ShortID = s.newShortID()
	g.CreatedAt = s.timestamp()
	g.UpdatedAt = g.CreatedAt
	g.Revision = 1

	if err := s.repo.Insert(ctx, &g); err != nil {
		return nil, fmt.Errorf("create game type %q: %w", g.Name, err)
	}

	s.log.WithFields(logrus.Fields{
		"id":      g.ID,
		"shortId": g.ShortID,
		"url":     g.URL,
	}).Info("game type created")
	return &g, nil
}

func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*models.GameConfiguration, error) {
	return s.repo.Get(ctx, id)
}

// GetByShortID is the lookup path for shared links. It reads through the cache when one is set.
func (s *Store) GetByShortID(ctx context.Context, shortID string) (*models.GameConfiguration, error) {
	shortID = strings.TrimSpace(shortID)

	fill := false
	var generation int64
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx, shortID)
		switch {
		case err != nil:
			s.log.WithError(err).WithField("shortId", shortID).Warn("short id cache read failed")
		case cached != nil:
			return cached, nil
		default:
			fill, generation = true, gen
		}
	}

	// the generation is read before the repository so an invalidation in between voids the fill
	g, err := s.repo.GetByShortID(ctx, shortID)
	if err != nil {
		return nil, err
	}

	if fill {
		stored, err := s.cache.Set(ctx, g, generation)
		if err != nil {
			s.log.WithError(err).WithField("shortId", shortID).Warn("short id cache write failed")
		} else if !stored {
			s.log.WithField("shortId", shortID).Debug("short id cache fill skipped after invalidation")
		}
	}
	return g, nil
}

// GetByURL looks a game type up by url, compared case-insensitively.
func (s *Store) GetByURL(ctx context.Context, url string) (*models.GameConfiguration, error) {
	return s.repo.GetByURL(ctx, strings.ToLower(strings.TrimSpace(url)))
}

func (s *Store) List(ctx context.Context) ([]*models.GameConfiguration, error) {
	return s.repo.List(ctx)
}

// Update merges in onto the stored record and re-validates the merged result as a whole,
// since a single changed field can break a cross-field invariant. The write only lands if no
// other update committed since the record was read; otherwise a revision *ConflictError is
// returned and nothing changes.
func (s *Store) Update(ctx context.Context, id uuid.UUID, in models.GameTypeInput) (*models.GameConfiguration, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := existing.Clone()
	in.ApplyTo(merged)
	merged.Normalize()
	merged.ID = existing.ID
	merged.ShortID = existing.ShortID
	merged.CreatedAt = existing.CreatedAt
	merged.Revision = existing.Revision + 1

	if err := Validate(merged); err != nil {
		return nil, err
	}
	merged.UpdatedAt = s.timestamp()

	if err := s.repo.Update(ctx, merged, existing.Revision); err != nil {
		return nil, fmt.Errorf("update game type %s: %w", id, err)
	}
	s.invalidate(ctx, merged.ShortID)

	s.log.WithFields(logrus.Fields{"id": id, "shortId": merged.ShortID}).Info("game type updated")
	return merged, nil
}

// Delete removes the game type, freeing its shortId and url.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete game type %s: %w", id, err)
	}
	s.invalidate(ctx, existing.ShortID)

	s.log.WithFields(logrus.Fields{"id": id, "shortId": existing.ShortID}).Info("game type deleted")
	return nil
}

func (s *Store) invalidate(ctx context.Context, shortID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, shortID); err != nil {
		s.log.WithError(err).WithField("shortId", shortID).Warn("short id cache invalidation failed")
	}
}

// Seed creates each input whose url is not yet taken and returns how many were created.
// With reset, every stored game type is removed first.
func (s *Store) Seed(ctx context.Context, inputs []models.GameTypeInput, reset bool) (int, error) {
	if reset {
		if s.cache != nil {
			all, err := s.repo.List(ctx)
			if err != nil {
				return 0, fmt.Errorf("list game types before reset: %w", err)
			}
			for _, g := range all {
				s.invalidate(ctx, g.ShortID)
			}
		}
		if err := s.repo.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("reset game types: %w", err)
		}
	}

	created := 0
	for i, in := range inputs {
		if _, err := s.Create(ctx, in); err != nil {
			if errors.Is(err, ErrConflict) {
				s.log.WithField("index", i).Debug("seed game type already present")
				continue
			}
			return created, fmt.Errorf("seed game type %d: %w", i, err)
		}
		created++
	}

	s.log.WithField("created", created).Info("game types seeded")
	return created, nil
}
