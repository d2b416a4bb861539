package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sampleLayout = `{"sitecore":{"context":{"language":"en"},"route":{"name":"home","itemId":"c91b1c4b-c37b-4709-b6b7-3c83053b9f0d","placeholders":{}}}}`

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newLayoutClient(srv *httptest.Server) *LayoutClient {
	c := NewLayoutClient(srv.URL+"/", "sitecore/api/layout/render/jss", "", time.Second)
	c.HttpClient.Transport = srv.Client().Transport
	return c
}

func TestBuildURL(t *testing.T) {
	req := LayoutRequest{
		"item":      "/",
		"sc_lang":   "en",
		"sc_site":   "mvp site",
		"sc_mode":   "  ",
		"unlisted":  "x",
		"sc_apikey": "{KEY}",
	}

	got := BuildURL("https://cm/api", req, DefaultRequestKeys)

	assert.Equal(t, "https://cm/api?sc_site=mvp+site&item=%2F&sc_lang=en&sc_apikey=%7BKEY%7D", got)
	assert.Equal(t, "https://cm/api", BuildURL("https://cm/api", LayoutRequest{"other": "x"}, DefaultRequestKeys))
	assert.Equal(t, "https://cm/api?a=1&item=home", BuildURL("https://cm/api?a=1", LayoutRequest{"item": "home"}, DefaultRequestKeys))
}

func TestNewLayoutRequest(t *testing.T) {
	q := url.Values{"item": {"/about"}, "sc_auth_header_key": {"tok"}, "debug": {"1"}, "sc_lang": {""}}

	assert.Equal(t, LayoutRequest{"item": "/about", "sc_auth_header_key": "tok"}, NewLayoutRequest(q))
}

func TestBuildHeaders(t *testing.T) {
	incoming := http.Header{}
	incoming.Add("Cookie", "a=1")
	incoming.Add("X-Forwarded-For", "10.0.0.1")
	incoming.Add("X-Secret", "nope")

	h := BuildHeaders(incoming, []string{"cookie", " X-Forwarded-For", ""}, LayoutRequest{AuthHeaderKey: "token-1"})

	assert.Equal(t, "a=1", h.Get("Cookie"))
	assert.Equal(t, "10.0.0.1", h.Get("X-Forwarded-For"))
	assert.Empty(t, h.Get("X-Secret"))
	assert.Equal(t, "Bearer token-1", h.Get("Authorization"))

	assert.Empty(t, BuildHeaders(incoming, nil, LayoutRequest{}))
}

func TestLayoutClient_Fetch(t *testing.T) {
	var gotQuery url.Values
	var gotAuth, gotPath string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleLayout)
	})
	c := newLayoutClient(srv)
	c.APIKey = "{DEFAULT}"

	req := LayoutRequest{"item": "/", "sc_site": "mvp-site", AuthHeaderKey: "tok"}
	resp, err := c.Fetch(context.Background(), req, BuildHeaders(nil, nil, req))
	require.NoError(t, err)

	assert.Equal(t, "/sitecore/api/layout/render/jss", gotPath)
	assert.Equal(t, url.Values{"item": {"/"}, "sc_site": {"mvp-site"}, "sc_apikey": {"{DEFAULT}"}}, gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, sampleLayout, string(resp.Body))
	assert.Equal(t, "application/json", resp.ContentType)
	require.NotNil(t, resp.Document.Sitecore.Route)
	assert.Equal(t, "home", resp.Document.Sitecore.Route.Name)
	_, defaulted := req[APIKeyKey]
	assert.False(t, defaulted, "caller's request is not modified")
}

func TestLayoutClient_CallerAPIKeyWins(t *testing.T) {
	var gotKey string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("sc_apikey")
		io.WriteString(w, sampleLayout)
	})
	c := newLayoutClient(srv)
	c.APIKey = "{DEFAULT}"

	_, err := c.Fetch(context.Background(), LayoutRequest{"sc_apikey": "{MINE}"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "{MINE}", gotKey)
}

func TestLayoutClient_Failures(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		})
		_, err := newLayoutClient(srv).Fetch(context.Background(), LayoutRequest{}, nil)

		var ue *Error
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, KindStatus, ue.Kind)
		assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
		assert.False(t, IsTimeout(err))
	})

	t.Run("empty document", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		_, err := newLayoutClient(srv).Fetch(context.Background(), LayoutRequest{}, nil)

		assert.ErrorIs(t, err, ErrEmptyDocument)
		var ue *Error
		assert.False(t, errors.As(err, &ue), "an empty document is not an upstream failure")
	})

	t.Run("payload", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "<html>maintenance</html>")
		})
		_, err := newLayoutClient(srv).Fetch(context.Background(), LayoutRequest{}, nil)

		assert.True(t, IsPayload(err))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)
		c := newLayoutClient(srv)
		c.HttpClient.Timeout = 20 * time.Millisecond

		_, err := c.Fetch(context.Background(), LayoutRequest{}, nil)

		assert.True(t, IsTimeout(err), "got %v", err)
	})

	t.Run("cancelled", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, sampleLayout)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newLayoutClient(srv).Fetch(ctx, LayoutRequest{}, nil)

		var ue *Error
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, KindTransport, ue.Kind)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestGraphQLClient_Do(t *testing.T) {
	var got GraphQLRequest
	var gotKey, gotCookie string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("sc_apikey")
		gotCookie = r.Header.Get("Cookie")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"data":{"item":{"name":"home","version":3}}}`)
	})
	c := NewGraphQLClient(srv.URL, "{KEY}", time.Second)
	c.HttpClient.Transport = srv.Client().Transport

	headers := http.Header{"Cookie": {"a=1"}}
	resp, err := c.Do(context.Background(), GraphQLRequest{
		Query:         "query Q($p: String!) { item(path: $p) { name } }",
		OperationName: "Q",
		Variables:     json.RawMessage(`{"p":"/"}`),
	}, headers)
	require.NoError(t, err)

	assert.Equal(t, "{KEY}", gotKey)
	assert.Equal(t, "a=1", gotCookie)
	assert.Equal(t, "Q", got.OperationName)
	assert.JSONEq(t, `{"p":"/"}`, string(got.Variables))
	assert.Equal(t, map[string]any{"data": map[string]any{"item": map[string]any{"name": "home", "version": int64(3)}}}, resp)
}

func TestGraphQLClient_Failures(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("mode") == "status" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, `[1, 2]`)
	})
	c := NewGraphQLClient(srv.URL+"?mode=status", "", time.Second)
	c.HttpClient.Transport = srv.Client().Transport

	_, err := c.Do(context.Background(), GraphQLRequest{Query: "{ a }"}, nil)
	var ue *Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, KindStatus, ue.Kind)
	assert.Equal(t, http.StatusBadGateway, ue.StatusCode)

	c.Endpoint = srv.URL
	_, err = c.Do(context.Background(), GraphQLRequest{Query: "{ a }"}, nil)
	assert.True(t, IsPayload(err))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "status", KindStatus.String())
	assert.Equal(t, "payload", KindPayload.String())
	assert.Contains(t, (&Error{Kind: KindStatus, Op: "fetch layout", URL: "u", StatusCode: 404}).Error(), "status 404")
}
