package graph

import (
	"context"
	"errors"

	"github.com/google/uuid"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"

	"github.com/twilightcoders/cardgames/internal/auth"
	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/models"
)

// Resolver is the root resolver for both queries and mutations.
type Resolver struct {
	store            *gametype.Store
	log              *logrus.Logger
	mutationsEnabled bool
}

// Query resolvers

func (r *Resolver) GameConfigs(ctx context.Context) ([]*gameSettingsResolver, error) {
	all, err := r.store.List(ctx)
	if err != nil {
		return nil, r.toGraphQLError(err)
	}
	return wrapAll(all), nil
}

func (r *Resolver) GameTypeByID(ctx context.Context, args struct{ ID graphql.ID }) ([]*gameSettingsResolver, error) {
	id, err := uuid.Parse(string(args.ID))
	if err != nil {
		// an id that cannot exist matches nothing
		return []*gameSettingsResolver{}, nil
	}
	return r.single(r.store.GetByID(ctx, id))
}

func (r *Resolver) GameTypeByShortID(ctx context.Context, args struct{ ID graphql.ID }) ([]*gameSettingsResolver, error) {
	return r.single(r.store.GetByShortID(ctx, string(args.ID)))
}

func (r *Resolver) GameTypeByURL(ctx context.Context, args struct{ URL string }) ([]*gameSettingsResolver, error) {
	return r.single(r.store.GetByURL(ctx, args.URL))
}

// single turns a point lookup into a zero-or-one element list.
func (r *Resolver) single(g *models.GameConfiguration, err error) ([]*gameSettingsResolver, error) {
	if errors.Is(err, gametype.ErrNotFound) {
		return []*gameSettingsResolver{}, nil
	}
	if err != nil {
		return nil, r.toGraphQLError(err)
	}
	return []*gameSettingsResolver{{g: g}}, nil
}

// Mutation resolvers

func (r *Resolver) CreateGameType(ctx context.Context, args struct{ Input gameTypeInput }) (*gameSettingsResolver, error) {
	if err := r.authorizeWrite(ctx); err != nil {
		return nil, err
	}
	in, err := args.Input.toModel()
	if err != nil {
		return nil, err
	}
	g, err := r.store.Create(ctx, in)
	if err != nil {
		return nil, r.toGraphQLError(err)
	}
	return &gameSettingsResolver{g: g}, nil
}

func (r *Resolver) UpdateGameType(ctx context.Context, args struct {
	ID    graphql.ID
	Input gameTypeInput
}) (*gameSettingsResolver, error) {
	if err := r.authorizeWrite(ctx); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(string(args.ID))
	if err != nil {
		return nil, r.toGraphQLError(gametype.NotFoundByID(string(args.ID)))
	}
	in, err := args.Input.toModel()
	if err != nil {
		return nil, err
	}
	g, err := r.store.Update(ctx, id, in)
	if err != nil {
		return nil, r.toGraphQLError(err)
	}
	return &gameSettingsResolver{g: g}, nil
}

func (r *Resolver) DeleteGameType(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := r.authorizeWrite(ctx); err != nil {
		return false, err
	}
	id, err := uuid.Parse(string(args.ID))
	if err != nil {
		return false, r.toGraphQLError(gametype.NotFoundByID(string(args.ID)))
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return false, r.toGraphQLError(err)
	}
	return true, nil
}

func (r *Resolver) authorizeWrite(ctx context.Context) error {
	if !r.mutationsEnabled {
		return newError(CodeForbidden, "mutations are disabled on this server")
	}
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok || !claims.Admin {
		return newError(CodeForbidden, "an admin token is required to modify game types")
	}
	return nil
}

func wrapAll(gs []*models.GameConfiguration) []*gameSettingsResolver {
	out := make([]*gameSettingsResolver, 0, len(gs))
	for _, g := range gs {
		out = append(out, &gameSettingsResolver{g: g})
	}
	return out
}
