package graph

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twilightcoders/cardgames/internal/auth"
	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/models"
)

type settings struct {
	ID                  string   `json:"id"`
	ShortID             string   `json:"shortId"`
	URL                 string   `json:"url"`
	Name                string   `json:"name"`
	MinPlayers          int      `json:"minPlayers"`
	MaxPlayers          int      `json:"maxPlayers"`
	ScoreTypes          []string `json:"scoreTypes"`
	WhammieStyle        *string  `json:"whammieStyle"`
	FixedRounds         *int     `json:"fixedRounds"`
	WinType             []string `json:"winType"`
	WinCondition        string   `json:"winCondition"`
	WinScore            *int     `json:"winScore"`
	TieBreaker          string   `json:"tieBreaker"`
	PreRenderScoreboard bool     `json:"preRenderScoreboard"`
	LevelLabels         *string  `json:"levelLabels"`
	Description         *string  `json:"description"`
}

const settingsFields = `id shortId url name minPlayers maxPlayers scoreTypes whammieStyle fixedRounds
	winType winCondition winScore tieBreaker preRenderScoreboard levelLabels description`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestSchema(t *testing.T, mutations bool) (*graphql.Schema, *gametype.Store) {
	t.Helper()
	store := gametype.NewStore(gametype.NewMemoryRepository())
	return NewSchema(store, quietLogger(), mutations), store
}

func adminCtx() context.Context {
	return auth.WithClaims(context.Background(), auth.Claims{Subject: "ops", Admin: true})
}

func exec(t *testing.T, ctx context.Context, schema *graphql.Schema, query string, out interface{}) *graphql.Response {
	t.Helper()
	resp := schema.Exec(ctx, query, "", nil)
	if out != nil && len(resp.Errors) == 0 {
		require.NoError(t, json.Unmarshal(resp.Data, out))
	}
	return resp
}

func errorCode(t *testing.T, resp *graphql.Response) string {
	t.Helper()
	require.NotEmpty(t, resp.Errors, "expected an error")
	code, _ := resp.Errors[0].Extensions["code"].(string)
	return code
}

func ptr[T any](v T) *T { return &v }

func seedOne(t *testing.T, store *gametype.Store) *models.GameConfiguration {
	t.Helper()
	g, err := store.Create(context.Background(), models.GameTypeInput{
		Name:        ptr("Five Crowns"),
		MaxPlayers:  ptr(7),
		WinType:     []models.WinType{models.WinTypeRounds},
		LevelLabels: []models.LevelLabel{{Value: 11, Label: "Jack"}},
	})
	require.NoError(t, err)
	return g
}

func TestQueryGameConfigs(t *testing.T) {
	schema, store := newTestSchema(t, false)

	var empty struct{ GameConfigs []settings }
	resp := exec(t, context.Background(), schema, `{ gameConfigs { id } }`, &empty)
	require.Empty(t, resp.Errors)
	assert.NotNil(t, empty.GameConfigs)
	assert.Empty(t, empty.GameConfigs)

	g := seedOne(t, store)

	var got struct{ GameConfigs []settings }
	resp = exec(t, context.Background(), schema, `{ gameConfigs { `+settingsFields+` } }`, &got)
	require.Empty(t, resp.Errors)
	require.Len(t, got.GameConfigs, 1)

	s := got.GameConfigs[0]
	assert.Equal(t, g.ID.String(), s.ID)
	assert.Equal(t, g.ShortID, s.ShortID)
	assert.Equal(t, "five-crowns", s.URL)
	assert.Equal(t, 2, s.MinPlayers)
	assert.Equal(t, 7, s.MaxPlayers)
	assert.Equal(t, []string{"positive"}, s.ScoreTypes)
	assert.Equal(t, []string{"rounds"}, s.WinType)
	assert.Equal(t, "low", s.WinCondition)
	assert.Equal(t, "rounds", s.TieBreaker)
	assert.Nil(t, s.WinScore)
	assert.Nil(t, s.WhammieStyle)
	require.NotNil(t, s.FixedRounds)
	assert.Equal(t, 11, *s.FixedRounds)
	require.NotNil(t, s.LevelLabels)
	assert.JSONEq(t, `[{"value":11,"label":"Jack"}]`, *s.LevelLabels)
	assert.Nil(t, s.Description)
}

func TestQueryPointLookups(t *testing.T) {
	schema, store := newTestSchema(t, false)
	g := seedOne(t, store)

	queries := map[string]string{
		"by id":       `{ GameTypeById(id: "` + g.ID.String() + `") { id } }`,
		"by short id": `{ GameTypeByShortId(id: "` + g.ShortID + `") { id } }`,
		"by url":      `{ GameTypeByUrl(url: "FIVE-crowns") { id } }`,
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			var got map[string][]settings
			resp := exec(t, context.Background(), schema, q, &got)
			require.Empty(t, resp.Errors)
			for _, list := range got {
				require.Len(t, list, 1)
				assert.Equal(t, g.ID.String(), list[0].ID)
			}
		})
	}
}

func TestQueryMissesReturnEmptyList(t *testing.T) {
	schema, _ := newTestSchema(t, false)

	queries := map[string]string{
		"unknown id":    `{ GameTypeById(id: "6f1c1f5e-6a53-4d8e-9a55-4b1c0f0e2a11") { id } }`,
		"malformed id":  `{ GameTypeById(id: "not-a-uuid") { id } }`,
		"unknown short": `{ GameTypeByShortId(id: "zzzzzzzzzz") { id } }`,
		"unknown url":   `{ GameTypeByUrl(url: "nope") { id } }`,
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			var got map[string][]settings
			resp := exec(t, context.Background(), schema, q, &got)
			require.Empty(t, resp.Errors)
			for _, list := range got {
				assert.NotNil(t, list)
				assert.Empty(t, list)
			}
		})
	}
}

const createBowling = `mutation {
	createGameType(input: {
		name: "Bowling Scorer", minPlayers: 2, maxPlayers: 4,
		scoreTypes: [positive], winType: [score], winCondition: high, winScore: 300,
		levelLabels: "[{\"10\":\"Strike\"}]"
	}) { ` + settingsFields + ` }
}`

func TestMutationsDisabled(t *testing.T) {
	schema, store := newTestSchema(t, false)

	resp := exec(t, adminCtx(), schema, createBowling, nil)
	assert.Equal(t, CodeForbidden, errorCode(t, resp))

	all, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMutationsRequireAdmin(t *testing.T) {
	schema, _ := newTestSchema(t, true)

	resp := exec(t, context.Background(), schema, createBowling, nil)
	assert.Equal(t, CodeForbidden, errorCode(t, resp))

	player := auth.WithClaims(context.Background(), auth.Claims{Subject: "p1"})
	resp = exec(t, player, schema, createBowling, nil)
	assert.Equal(t, CodeForbidden, errorCode(t, resp))
}

func TestCreateGameType(t *testing.T) {
	schema, store := newTestSchema(t, true)

	var got struct{ CreateGameType settings }
	resp := exec(t, adminCtx(), schema, createBowling, &got)
	require.Empty(t, resp.Errors)

	s := got.CreateGameType
	assert.NotEmpty(t, s.ID)
	assert.Len(t, s.ShortID, gametype.ShortIDLength)
	assert.Equal(t, "bowling-scorer", s.URL)
	require.NotNil(t, s.WinScore)
	assert.Equal(t, 300, *s.WinScore)
	assert.Equal(t, "high", s.WinCondition)
	assert.True(t, s.PreRenderScoreboard)
	require.NotNil(t, s.LevelLabels)
	assert.JSONEq(t, `[{"value":10,"label":"Strike"}]`, *s.LevelLabels)

	stored, err := store.GetByShortID(context.Background(), s.ShortID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, stored.ID.String())
}

func TestCreateGameTypeErrors(t *testing.T) {
	schema, _ := newTestSchema(t, true)

	resp := exec(t, adminCtx(), schema, `mutation {
		createGameType(input: {name: "X", minPlayers: 5, maxPlayers: 2, winType: [rounds]}) { id }
	}`, nil)
	assert.Equal(t, CodeValidation, errorCode(t, resp))
	violations, ok := resp.Errors[0].Extensions["violations"].([]gametype.Violation)
	require.True(t, ok)
	require.Len(t, violations, 1)
	assert.Equal(t, "maxPlayers", violations[0].Field)

	resp = exec(t, adminCtx(), schema, `mutation {
		createGameType(input: {name: "X", winType: [rounds], levelLabels: "Jack"}) { id }
	}`, nil)
	assert.Equal(t, CodeValidation, errorCode(t, resp))

	resp = exec(t, adminCtx(), schema, createBowling, nil)
	require.Empty(t, resp.Errors)
	resp = exec(t, adminCtx(), schema, createBowling, nil)
	assert.Equal(t, CodeConflict, errorCode(t, resp))
	assert.Equal(t, "url", resp.Errors[0].Extensions["field"])
}

func TestUpdateGameType(t *testing.T) {
	schema, store := newTestSchema(t, true)
	g := seedOne(t, store)

	var got struct{ UpdateGameType settings }
	resp := exec(t, adminCtx(), schema, `mutation {
		updateGameType(id: "`+g.ID.String()+`", input: {
			fixedRounds: null, preRenderScoreboard: false, description: "Wilds rotate.", levelLabels: ""
		}) { `+settingsFields+` }
	}`, &got)
	require.Empty(t, resp.Errors)

	s := got.UpdateGameType
	assert.Equal(t, g.ID.String(), s.ID)
	assert.Equal(t, g.ShortID, s.ShortID)
	assert.Nil(t, s.FixedRounds)
	assert.False(t, s.PreRenderScoreboard)
	assert.Nil(t, s.LevelLabels)
	require.NotNil(t, s.Description)
	assert.Equal(t, "Wilds rotate.", *s.Description)
	assert.Equal(t, 7, s.MaxPlayers, "omitted fields are unchanged")

	resp = exec(t, adminCtx(), schema, `mutation {
		updateGameType(id: "`+g.ID.String()+`", input: {preRenderScoreboard: true}) { id }
	}`, nil)
	assert.Equal(t, CodeValidation, errorCode(t, resp))

	resp = exec(t, adminCtx(), schema, `mutation {
		updateGameType(id: "6f1c1f5e-6a53-4d8e-9a55-4b1c0f0e2a11", input: {name: "Y"}) { id }
	}`, nil)
	assert.Equal(t, CodeNotFound, errorCode(t, resp))
}

func TestDeleteGameType(t *testing.T) {
	schema, store := newTestSchema(t, true)
	g := seedOne(t, store)

	var got struct{ DeleteGameType bool }
	resp := exec(t, adminCtx(), schema, `mutation { deleteGameType(id: "`+g.ID.String()+`") }`, &got)
	require.Empty(t, resp.Errors)
	assert.True(t, got.DeleteGameType)

	resp = exec(t, adminCtx(), schema, `mutation { deleteGameType(id: "`+g.ID.String()+`") }`, nil)
	assert.Equal(t, CodeNotFound, errorCode(t, resp))

	resp = exec(t, adminCtx(), schema, `mutation { deleteGameType(id: "nope") }`, nil)
	assert.Equal(t, CodeNotFound, errorCode(t, resp))
}

func TestUpdateClearsWhammieStyle(t *testing.T) {
	schema, store := newTestSchema(t, true)
	g := seedOne(t, store)

	var set struct{ UpdateGameType settings }
	resp := exec(t, adminCtx(), schema, `mutation {
		updateGameType(id: "`+g.ID.String()+`", input: {whammies: true, whammieStyle: blockout}) { whammieStyle }
	}`, &set)
	require.Empty(t, resp.Errors)
	require.NotNil(t, set.UpdateGameType.WhammieStyle)
	assert.Equal(t, "blockout", *set.UpdateGameType.WhammieStyle)

	// both at once is ambiguous
	resp = exec(t, adminCtx(), schema, `mutation {
		updateGameType(id: "`+g.ID.String()+`", input: {whammieStyle: circled, clearWhammieStyle: true}) { id }
	}`, nil)
	assert.Equal(t, CodeValidation, errorCode(t, resp))

	var cleared struct{ UpdateGameType settings }
	resp = exec(t, adminCtx(), schema, `mutation {
		updateGameType(id: "`+g.ID.String()+`", input: {clearWhammieStyle: true}) { whammieStyle }
	}`, &cleared)
	require.Empty(t, resp.Errors)
	assert.Nil(t, cleared.UpdateGameType.WhammieStyle)

	stored, err := store.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.WhammieStyle)
	assert.True(t, stored.Whammies)
}

func TestCreateRejectsRepeatedLevelLabelValues(t *testing.T) {
	schema, _ := newTestSchema(t, true)

	resp := exec(t, adminCtx(), schema, `mutation {
		createGameType(input: {name: "Dupes", winType: [rounds], levelLabels: "[{\"11\":\"Jack\"},{\"11\":\"Knave\"}]"}) { id }
	}`, nil)
	assert.Equal(t, CodeValidation, errorCode(t, resp))
	violations, ok := resp.Errors[0].Extensions["violations"].([]gametype.Violation)
	require.True(t, ok)
	require.Len(t, violations, 1)
	assert.Equal(t, "levelLabels", violations[0].Field)
}
