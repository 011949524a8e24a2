// Package gametypetest holds helpers shared by the tests of every gametype.Repository backend.
package gametypetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/models"
)

// NewGameType returns a valid, fully materialized record with unique id, shortId and url.
func NewGameType(name string) *models.GameConfiguration {
	g := models.DefaultGameConfiguration()
	g.ID = uuid.New()
	g.ShortID = gametype.NewShortID()
	g.Name = name
	g.URL = models.Slugify(name + " " + g.ShortID)
	g.WinType = []models.WinType{models.WinTypeRounds}
	g.LevelLabels = []models.LevelLabel{{Value: 11, Label: "Jack"}}
	g.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	g.UpdatedAt = g.CreatedAt
	g.Revision = 1
	return &g
}

// bump prepares g as the next revision and returns the revision it was based on.
func bump(g *models.GameConfiguration) int64 {
	prev := g.Revision
	g.Revision++
	return prev
}

// RunRepositoryTests exercises the Repository contract against a fresh repository per subtest.
func RunRepositoryTests(t *testing.T, newRepo func(t *testing.T) gametype.Repository) {
	ctx := context.Background()

	t.Run("insert then read by every key", func(t *testing.T) {
		repo := newRepo(t)
		g := NewGameType("Five Crowns")
		require.NoError(t, repo.Insert(ctx, g))

		byID, err := repo.Get(ctx, g.ID)
		require.NoError(t, err)
		byShort, err := repo.GetByShortID(ctx, g.ShortID)
		require.NoError(t, err)
		byURL, err := repo.GetByURL(ctx, g.URL)
		require.NoError(t, err)

		if diff := cmp.Diff(g, byID); diff != "" {
			t.Fatalf("Get mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(byID, byShort); diff != "" {
			t.Fatalf("GetByShortID mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(byID, byURL); diff != "" {
			t.Fatalf("GetByURL mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("misses are ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, gametype.ErrNotFound)
		_, err = repo.GetByShortID(ctx, "missing")
		assert.ErrorIs(t, err, gametype.ErrNotFound)
		_, err = repo.GetByURL(ctx, "missing")
		assert.ErrorIs(t, err, gametype.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), gametype.ErrNotFound)
		assert.ErrorIs(t, repo.Update(ctx, NewGameType("ghost"), 1), gametype.ErrNotFound)
	})

	t.Run("duplicate url and shortId conflict", func(t *testing.T) {
		repo := newRepo(t)
		first := NewGameType("Hearts")
		require.NoError(t, repo.Insert(ctx, first))

		sameURL := NewGameType("Hearts again")
		sameURL.URL = first.URL
		assertConflict(t, repo.Insert(ctx, sameURL), "url")

		sameShort := NewGameType("Spades")
		sameShort.ShortID = first.ShortID
		assertConflict(t, repo.Insert(ctx, sameShort), "shortId")

		// the original is untouched
		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hearts", got.Name)
	})

	t.Run("update rewrites the document and guards url", func(t *testing.T) {
		repo := newRepo(t)
		a := NewGameType("Rummy")
		b := NewGameType("Gin")
		require.NoError(t, repo.Insert(ctx, a))
		require.NoError(t, repo.Insert(ctx, b))

		a.MaxPlayers = 6
		a.URL = "rummy-500"
		require.NoError(t, repo.Update(ctx, a, bump(a)))
		got, err := repo.GetByURL(ctx, "rummy-500")
		require.NoError(t, err)
		assert.Equal(t, 6, got.MaxPlayers)
		assert.Equal(t, int64(2), got.Revision)

		b.URL = "rummy-500"
		assertConflict(t, repo.Update(ctx, b, bump(b)), "url")
	})

	t.Run("update from a stale revision is rejected", func(t *testing.T) {
		repo := newRepo(t)
		g := NewGameType("Cribbage")
		require.NoError(t, repo.Insert(ctx, g))

		first := g.Clone()
		first.Name = "Cribbage (first)"
		require.NoError(t, repo.Update(ctx, first, bump(first)))

		// second writer also read revision 1
		second := g.Clone()
		second.Name = "Cribbage (second)"
		assertConflict(t, repo.Update(ctx, second, bump(second)), "revision")

		got, err := repo.Get(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cribbage (first)", got.Name)
		assert.Equal(t, int64(2), got.Revision)
	})

	t.Run("delete frees shortId and url", func(t *testing.T) {
		repo := newRepo(t)
		g := NewGameType("Euchre")
		require.NoError(t, repo.Insert(ctx, g))
		require.NoError(t, repo.Delete(ctx, g.ID))

		_, err := repo.Get(ctx, g.ID)
		assert.ErrorIs(t, err, gametype.ErrNotFound)

		again := NewGameType("Euchre")
		again.ShortID = g.ShortID
		again.URL = g.URL
		require.NoError(t, repo.Insert(ctx, again))
	})

	t.Run("list oldest first and delete all", func(t *testing.T) {
		repo := newRepo(t)
		base := time.Now().UTC().Truncate(time.Microsecond)
		want := make([]string, 0, 3)
		// inserted newest first
		for i := 2; i >= 0; i-- {
			g := NewGameType(fmt.Sprintf("Game %d", i))
			g.CreatedAt = base.Add(time.Duration(i) * time.Second)
			g.UpdatedAt = g.CreatedAt
			require.NoError(t, repo.Insert(ctx, g))
			want = append([]string{g.Name}, want...)
		}
		all, err := repo.List(ctx)
		require.NoError(t, err)
		got := make([]string, 0, len(all))
		for _, g := range all {
			got = append(got, g.Name)
		}
		assert.Equal(t, want, got)

		require.NoError(t, repo.DeleteAll(ctx))
		all, err = repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("concurrent inserts of one url admit exactly one", func(t *testing.T) {
		repo := newRepo(t)
		const writers = 8

		var wg sync.WaitGroup
		errs := make([]error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				g := NewGameType(fmt.Sprintf("Racer %d", i))
				g.URL = "race"
				errs[i] = repo.Insert(ctx, g)
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assertConflict(t, err, "url")
		}
		assert.Equal(t, 1, ok)
	})
}

func assertConflict(t *testing.T, err error, field string) {
	t.Helper()
	var cerr *gametype.ConflictError
	require.True(t, errors.As(err, &cerr), "expected ConflictError, got %v", err)
	assert.Equal(t, field, cerr.Field)
	assert.ErrorIs(t, err, gametype.ErrConflict)
}
