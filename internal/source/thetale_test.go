package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godmon/internal/logger"
)

func newTestTheTale(t *testing.T, handler http.Handler) (*TheTale, *httptest.Server) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tale := NewTheTale(server.Client(), logger.NopLogger())
	tale.root = server.URL
	return tale, server
}

func TestTheTale_Fetch_AuthorizedSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(theTaleAuthState, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","data":{"state":2,"account_id":42}}`)
	})
	mux.HandleFunc(theTaleAPIInfo, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("account"))
		fmt.Fprint(w, `{"status":"ok","data":{"account":{"hero":{
			"base":{"name":"Strategist","level":7,"health":95,"max_health":120,
				"experience":50,"experience_to_level":200,"money":340},
			"bag":{"0":{},"1":{}},
			"messages":[[1,"sender","walked into town"]],
			"quests":{"quests":[{"line":[{"name":"deliver the letter"}]}]}
		}}}}`)
	})

	tale, _ := newTestTheTale(t, mux)

	body, err := tale.Fetch(context.Background(), "", "")
	require.NoError(t, err)

	var state map[string]any
	require.NoError(t, json.Unmarshal(body, &state))
	assert.Equal(t, "Strategist", state["name"])
	assert.Equal(t, float64(95), state["health"])
	assert.Equal(t, float64(25), state["exp_progress"])
	assert.Equal(t, float64(2), state["inventory_num"])
	assert.Equal(t, "walked into town", state["diary_last"])
	assert.Equal(t, "deliver the letter", state["quest"])
}

func TestTheTale_Fetch_PendingAuthorizationReportsTokenExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(theTaleAuthState, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","data":{"state":0}}`)
	})
	mux.HandleFunc(theTaleAuthReq, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		fmt.Fprint(w, `{"status":"ok","data":{"authorisation_page":"/confirm/abc"}}`)
	})

	tale, server := newTestTheTale(t, mux)

	body, err := tale.Fetch(context.Background(), "", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"token_expired":true}`, string(body))
	assert.Equal(t, server.URL+"/confirm/abc", tale.TokenURL())
}

func TestTheTale_Fetch_RefusedAuthorizationIsProtocolError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(theTaleAuthState, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"ok","data":{"state":3}}`)
	})

	tale, _ := newTestTheTale(t, mux)

	_, err := tale.Fetch(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, KindProtocol, KindOf(err))
}

func TestTheTale_Fetch_APIErrorEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(theTaleAuthState, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status":"error","error":"api disabled"}`)
	})

	tale, _ := newTestTheTale(t, mux)

	_, err := tale.Fetch(context.Background(), "", "")
	require.Error(t, err)
	assert.ErrorContains(t, err, "api disabled")
}
