// Package graph exposes the game type store over GraphQL.
package graph

import (
	_ "embed"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"

	"github.com/twilightcoders/cardgames/internal/gametype"
)

//go:embed schema.graphql
var schemaSDL string

// NewSchema parses the schema and binds it to a resolver over store.
// Mutations resolve only when mutationsEnabled is set and the caller carries admin claims.
func NewSchema(store *gametype.Store, logger *logrus.Logger, mutationsEnabled bool) *graphql.Schema {
	r := &Resolver{
		store:            store,
		log:              logger,
		mutationsEnabled: mutationsEnabled,
	}
	return graphql.MustParseSchema(schemaSDL, r,
		graphql.MaxDepth(8),
		graphql.Logger(&panicLogger{log: logger}),
	)
}
