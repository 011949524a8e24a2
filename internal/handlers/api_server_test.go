package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twilightcoders/cardgames/internal/auth"
	"github.com/twilightcoders/cardgames/internal/gametype"
	"github.com/twilightcoders/cardgames/internal/graph"
	"github.com/twilightcoders/cardgames/internal/models"
)

type testServer struct {
	*httptest.Server
	store  *gametype.Store
	signer *auth.Signer
}

func newTestServer(t *testing.T, mutations bool) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := gametype.NewStore(gametype.NewMemoryRepository())
	signer, err := auth.NewSigner("", 0)
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(Deps{
		Logger:         logger,
		Store:          store,
		Schema:         graph.NewSchema(store, logger, mutations),
		Signer:         signer,
		Registry:       prometheus.NewRegistry(),
		PublicBaseURL:  "https://cards.example.com/",
		RateLimitRPS:   100,
		RateLimitBurst: 100,
	}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store, signer: signer}
}

func (s *testServer) seed(t *testing.T) *models.GameConfiguration {
	t.Helper()
	name := "Five Crowns"
	g, err := s.store.Create(context.Background(), models.GameTypeInput{
		Name:    &name,
		WinType: []models.WinType{models.WinTypeRounds},
	})
	require.NoError(t, err)
	return g
}

func (s *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message    string                 `json:"message"`
		Extensions map[string]interface{} `json:"extensions"`
	} `json:"errors"`
}

func (s *testServer) graphql(t *testing.T, token, query string) (int, gqlResponse) {
	t.Helper()
	body, err := json.Marshal(map[string]string{"query": query})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, s.URL+"/graphql", strings.NewReader(string(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out gqlResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, false)
	resp := srv.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestShareDescribe(t *testing.T) {
	srv := newTestServer(t, false)
	g := srv.seed(t)

	resp := srv.get(t, "/share/"+g.ShortID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body shareResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, shareResponse{
		ShortID:  g.ShortID,
		Name:     "Five Crowns",
		URL:      "five-crowns",
		ShareURL: "https://cards.example.com/share/" + g.ShortID,
		QRCode:   "https://cards.example.com/share/" + g.ShortID + "/qr.png",
	}, body)
}

func TestShareQRCode(t *testing.T) {
	srv := newTestServer(t, false)
	g := srv.seed(t)

	resp := srv.get(t, "/share/"+g.ShortID+"/qr.png")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	png, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, "\x89PNG\r\n\x1a\n", string(png[:8]))
}

func TestShareMissing(t *testing.T) {
	srv := newTestServer(t, false)
	assert.Equal(t, http.StatusNotFound, srv.get(t, "/share/missing").StatusCode)
	assert.Equal(t, http.StatusNotFound, srv.get(t, "/share/missing/qr.png").StatusCode)
}

func TestGraphQLOverHTTP(t *testing.T) {
	srv := newTestServer(t, true)
	g := srv.seed(t)

	code, resp := srv.graphql(t, "", `{ GameTypeByShortId(id: "`+g.ShortID+`") { name url } }`)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"GameTypeByShortId":[{"name":"Five Crowns","url":"five-crowns"}]}`, string(resp.Data))

	const create = `mutation { createGameType(input: {name: "Hearts", winType: [score], winScore: 100}) { url } }`

	// anonymous callers cannot write
	code, resp = srv.graphql(t, "", create)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, resp.Errors)
	assert.Equal(t, graph.CodeForbidden, resp.Errors[0].Extensions["code"])

	code, _ = srv.graphql(t, "forged", create)
	assert.Equal(t, http.StatusUnauthorized, code)

	token, err := srv.signer.CreateJWT("ops", true)
	require.NoError(t, err)
	code, resp = srv.graphql(t, token, create)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"createGameType":{"url":"hearts"}}`, string(resp.Data))
}

func (s *testServer) graphqlGet(t *testing.T, params url.Values, accept string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.URL+"/graphql?"+params.Encode(), nil)
	require.NoError(t, err)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestGraphQLOverGet(t *testing.T) {
	srv := newTestServer(t, true)
	g := srv.seed(t)

	resp := srv.graphqlGet(t, url.Values{
		"query":         {`query Lookup($id: ID!) { GameTypeByShortId(id: $id) { name } } query Other { gameConfigs { id } }`},
		"operationName": {"Lookup"},
		"variables":     {`{"id":"` + g.ShortID + `"}`},
	}, "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out gqlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"GameTypeByShortId":[{"name":"Five Crowns"}]}`, string(out.Data))

	// GET never carries write authority
	token, err := srv.signer.CreateJWT("ops", true)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/graphql?"+url.Values{
		"query": {`mutation { deleteGameType(id: "` + g.ID.String() + `") }`},
	}.Encode(), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	mresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer mresp.Body.Close()

	out = gqlResponse{}
	require.NoError(t, json.NewDecoder(mresp.Body).Decode(&out))
	require.NotEmpty(t, out.Errors)
	assert.Equal(t, graph.CodeForbidden, out.Errors[0].Extensions["code"])
	_, err = srv.store.GetByID(context.Background(), g.ID)
	assert.NoError(t, err)
}

func TestGraphiQL(t *testing.T) {
	srv := newTestServer(t, false)

	resp := srv.graphqlGet(t, url.Values{}, "text/html,application/xhtml+xml,*/*;q=0.8")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(string(body)), "graphiql")

	assert.Equal(t, http.StatusBadRequest, srv.graphqlGet(t, url.Values{}, "application/json").StatusCode)
	assert.Equal(t, http.StatusBadRequest, srv.graphqlGet(t, url.Values{
		"query":     {"{ gameConfigs { id } }"},
		"variables": {"not json"},
	}, "").StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, false)
	srv.get(t, "/healthz")

	resp := srv.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `cardgames_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}
