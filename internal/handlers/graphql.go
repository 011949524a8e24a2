// internal/handlers/graphql.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/sirupsen/logrus"
)

// graphqlHandler serves /graphql. POST bodies go through relay; GET reads the
// operation from the query string, and a browser GET without one gets GraphiQL.
type graphqlHandler struct {
	schema *graphql.Schema
	post   *relay.Handler
	log    *logrus.Logger
}

func newGraphQLHandler(schema *graphql.Schema, log *logrus.Logger) *graphqlHandler {
	return &graphqlHandler{schema: schema, post: &relay.Handler{Schema: schema}, log: log}
}

func (h *graphqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.post.ServeHTTP(w, r)
	case http.MethodGet, http.MethodHead:
		h.serveGet(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (h *graphqlHandler) serveGet(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := params.Get("query")
	if query == "" {
		if strings.Contains(r.Header.Get("Accept"), "text/html") {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write(graphiqlPage)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing query parameter"})
		return
	}

	var variables map[string]interface{}
	if raw := params.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variables); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "variables must be a JSON object"})
			return
		}
	}

	resp := h.schema.Exec(r.Context(), query, params.Get("operationName"), variables)
	out, err := json.Marshal(resp)
	if err != nil {
		h.log.WithError(err).Error("failed to encode graphql response")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

var graphiqlPage = []byte(`<!DOCTYPE html>
<html>
<head>
  <title>cardgames graphiql</title>
  <link href="https://unpkg.com/graphiql@3/graphiql.min.css" rel="stylesheet" />
  <style>body { margin: 0; height: 100vh; } #graphiql { height: 100vh; }</style>
</head>
<body>
  <div id="graphiql">Loading...</div>
  <script src="https://unpkg.com/react@18/umd/react.production.min.js" crossorigin></script>
  <script src="https://unpkg.com/react-dom@18/umd/react-dom.production.min.js" crossorigin></script>
  <script src="https://unpkg.com/graphiql@3/graphiql.min.js" crossorigin></script>
  <script>
    const fetcher = GraphiQL.createFetcher({ url: window.location.pathname });
    ReactDOM.createRoot(document.getElementById('graphiql'))
      .render(React.createElement(GraphiQL, { fetcher: fetcher }));
  </script>
</body>
</html>
`)
