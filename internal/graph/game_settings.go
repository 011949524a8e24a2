package graph

import (
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/twilightcoders/cardgames/internal/models"
)

// gameSettingsResolver resolves the GameSettings type.
type gameSettingsResolver struct {
	g *models.GameConfiguration
}

func (r *gameSettingsResolver) ID() graphql.ID {
	return graphql.ID(r.g.ID.String())
}

func (r *gameSettingsResolver) ShortID() string {
	return r.g.ShortID
}

func (r *gameSettingsResolver) URL() string {
	return r.g.URL
}

func (r *gameSettingsResolver) Name() string {
	return r.g.Name
}

func (r *gameSettingsResolver) MinPlayers() int32 {
	return int32(r.g.MinPlayers)
}

func (r *gameSettingsResolver) MaxPlayers() int32 {
	return int32(r.g.MaxPlayers)
}

func (r *gameSettingsResolver) StartScore() int32 {
	return int32(r.g.StartScore)
}

func (r *gameSettingsResolver) Whammies() bool {
	return r.g.Whammies
}

func (r *gameSettingsResolver) WhammieScore() int32 {
	return int32(r.g.WhammieScore)
}

func (r *gameSettingsResolver) WhammieName() *string {
	return r.g.WhammieName
}

func (r *gameSettingsResolver) PassesAllowed() bool {
	return r.g.PassesAllowed
}

func (r *gameSettingsResolver) FixedRounds() *int32 {
	return int32Ptr(r.g.FixedRounds)
}

func (r *gameSettingsResolver) WinCondition() string {
	return string(r.g.WinCondition)
}

func (r *gameSettingsResolver) WinScore() *int32 {
	return int32Ptr(r.g.WinScore)
}

func (r *gameSettingsResolver) TieBreaker() string {
	return string(r.g.TieBreaker)
}

func (r *gameSettingsResolver) DealerRotates() bool {
	return r.g.DealerRotates
}

func (r *gameSettingsResolver) PreRenderScoreboard() bool {
	return r.g.PreRenderScoreboard
}

func (r *gameSettingsResolver) Description() *string {
	return r.g.Description
}

func (r *gameSettingsResolver) ScoreTypes() []string {
	out := make([]string, len(r.g.ScoreTypes))
	for i, st := range r.g.ScoreTypes {
		out[i] = string(st)
	}
	return out
}

func (r *gameSettingsResolver) WinType() []string {
	out := make([]string, len(r.g.WinType))
	for i, wt := range r.g.WinType {
		out[i] = string(wt)
	}
	return out
}

func (r *gameSettingsResolver) WhammieStyle() *string {
	if r.g.WhammieStyle == nil {
		return nil
	}
	s := string(*r.g.WhammieStyle)
	return &s
}

// LevelLabels keeps the opaque string contract; no labels resolve to null.
func (r *gameSettingsResolver) LevelLabels() (*string, error) {
	s, err := models.EncodeLevelLabels(r.g.LevelLabels)
	if err != nil {
		return nil, err
	}
	if s == "" {
		return nil, nil
	}
	return &s, nil
}

func int32Ptr(p *int) *int32 {
	if p == nil {
		return nil
	}
	v := int32(*p)
	return &v
}
