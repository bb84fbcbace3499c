package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Query  string `json:"query"`
	Header string `json:"header"`
	Body   string `json:"body"`
}

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/api/failure":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		case "/api/empty":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"error":null}`))
		case "/api/text":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("hello"))
		default:
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_ = json.NewEncoder(w).Encode(map[string]any{"result": echo{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  r.URL.RawQuery,
				Header: r.Header.Get("X-Api-Key"),
				Body:   string(body),
			}})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	srv := newEchoServer(t)
	client, err := New(srv.URL+"/api?v=1", Config{
		Headers: map[string]string{"X-Api-Key": "secret"},
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	ctx := context.Background()

	resp, err := client.Get(ctx, "/stakes/0xalice", RequestOptions{Query: map[string][]string{"at": {"10"}}})
	require.NoError(t, err)
	require.True(t, resp.IsSuccess())
	got, err := Result[echo](resp)
	require.NoError(t, err)
	assert.Equal(t, echo{Method: http.MethodGet, Path: "/api/stakes/0xalice", Query: "at=10&v=1", Header: "secret"}, got)

	resp, err = client.Post(ctx, "/transfers", RequestOptions{JSON: map[string]string{"amount": "5"}})
	require.NoError(t, err)
	got, err = Result[echo](resp)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, got.Method)
	assert.JSONEq(t, `{"amount":"5"}`, got.Body)
	assert.Equal(t, "/api", client.BaseURL().Path)
}

func TestResultErrors(t *testing.T) {
	srv := newEchoServer(t)
	client, err := New(srv.URL + "/api")
	require.NoError(t, err)
	ctx := context.Background()

	for _, p := range []string{"/failure", "/empty", "/text"} {
		t.Run(p, func(t *testing.T) {
			resp, err := client.Get(ctx, p, RequestOptions{})
			require.NoError(t, err)
			_, err = Result[echo](resp)
			assert.Error(t, err)
		})
	}
}

func TestDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client, err := New(srv.URL)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Get(ctx, "/", RequestOptions{})
	assert.Error(t, err)
}
