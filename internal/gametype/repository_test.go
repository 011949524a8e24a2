package gametype_test

import (
	"testing"

	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/gametype/gametypetest"
)

func TestMemoryRepository(t *testing.T) {
	gametypetest.RunRepositoryTests(t, func(t *testing.T) gametype.Repository {
		return gametype.NewMemoryRepository()
	})
}
